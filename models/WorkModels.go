package models

import (
	"time"
)

// WorkType represents the work_type lookup table
type WorkType struct {
	ID       uint   `gorm:"primaryKey;column:id" json:"id"`
	Code     string `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Name     string `gorm:"column:name;not null" json:"name"`
	IsActive bool   `gorm:"column:is_active;default:true" json:"is_active"`
}

// TableName specifies the table name for WorkType
func (WorkType) TableName() string {
	return "work_type"
}

// OutputType represents the output_type lookup table
type OutputType struct {
	ID       uint   `gorm:"primaryKey;column:id" json:"id"`
	Code     string `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Name     string `gorm:"column:name;not null" json:"name"`
	IsActive bool   `gorm:"column:is_active;default:true" json:"is_active"`
}

// TableName specifies the table name for OutputType
func (OutputType) TableName() string {
	return "output_type"
}

// Address represents the address table with GORM tags
type Address struct {
	ID           uint   `gorm:"primaryKey;column:id" json:"id"`
	ProjectID    uint   `gorm:"column:project_id;not null" json:"project_id"`
	Street       string `gorm:"column:street;not null" json:"street"`
	Suburb       string `gorm:"column:suburb;not null" json:"suburb"`
	Postcode     string `gorm:"column:postcode;not null" json:"postcode"`
	State        string `gorm:"column:state;default:'QLD'" json:"state"`
	LotNumber    string `gorm:"column:lot_number" json:"lot_number"`
	PlanNumber   string `gorm:"column:plan_number" json:"plan_number"`
	WorkTypeID   *uint  `gorm:"column:work_type_id" json:"work_type_id"`
	OutputTypeID *uint  `gorm:"column:output_type_id" json:"output_type_id"`

	Project    Project     `gorm:"foreignKey:ProjectID" json:"-"`
	WorkType   *WorkType   `gorm:"foreignKey:WorkTypeID" json:"-"`
	OutputType *OutputType `gorm:"foreignKey:OutputTypeID" json:"-"`
	Works      []Work      `gorm:"foreignKey:AddressID" json:"works,omitempty"`
}

// TableName specifies the table name for Address
func (Address) TableName() string {
	return "address"
}

// FullAddress joins street, suburb, state and postcode for display
func (a *Address) FullAddress() string {
	s := a.Street
	if a.Suburb != "" {
		s += ", " + a.Suburb
	}
	if a.State != "" {
		s += " " + a.State
	}
	if a.Postcode != "" {
		s += " " + a.Postcode
	}
	return s
}

// Work represents the work table with GORM tags. Budget cohorts key off
// output type and bedroom count, so both live here rather than on the project.
type Work struct {
	ID             uint       `gorm:"primaryKey;column:id" json:"id"`
	AddressID      uint       `gorm:"column:address_id;not null" json:"address_id"`
	WorkTypeID     *uint      `gorm:"column:work_type_id" json:"work_type_id"`
	OutputTypeID   *uint      `gorm:"column:output_type_id" json:"output_type_id"`
	OutputQuantity int        `gorm:"column:output_quantity;default:1" json:"output_quantity"`
	Bedrooms       *int       `gorm:"column:bedrooms" json:"bedrooms"`
	Bathrooms      *int       `gorm:"column:bathrooms" json:"bathrooms"`
	Kitchens       *int       `gorm:"column:kitchens" json:"kitchens"`
	EstimatedCost  *float64   `gorm:"column:estimated_cost;type:numeric(15,2)" json:"estimated_cost"`
	ActualCost     *float64   `gorm:"column:actual_cost;type:numeric(15,2)" json:"actual_cost"`
	StartDate      *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate        *time.Time `gorm:"column:end_date" json:"end_date"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Address    Address     `gorm:"foreignKey:AddressID" json:"-"`
	WorkType   *WorkType   `gorm:"foreignKey:WorkTypeID" json:"-"`
	OutputType *OutputType `gorm:"foreignKey:OutputTypeID" json:"-"`
}

// TableName specifies the table name for Work
func (Work) TableName() string {
	return "work"
}
