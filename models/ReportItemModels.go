package models

import (
	"strings"
	"time"
)

// Data type values for tracker and report items
const (
	DataTypeDate     = "date"
	DataTypeCheckbox = "checkbox"
	DataTypeText     = "text"
	DataTypeNumber   = "number"
	DataTypeCurrency = "currency"
	DataTypeDropdown = "dropdown"
	DataTypeYesNo    = "yes_no"
)

// MonthlyTrackerItem configures one column of the monthly tracker table
type MonthlyTrackerItem struct {
	ID              uint      `gorm:"primaryKey;column:id" json:"id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Description     string    `gorm:"column:description" json:"description"`
	DataType        string    `gorm:"column:data_type;default:'date'" json:"data_type"`
	DropdownOptions string    `gorm:"column:dropdown_options" json:"dropdown_options"`
	Required        bool      `gorm:"column:required;default:false" json:"required"`
	NAAcceptable    bool      `gorm:"column:na_acceptable;default:true" json:"na_acceptable"`
	Order           int       `gorm:"column:display_order;default:1" json:"order"`
	IsActive        bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for MonthlyTrackerItem
func (MonthlyTrackerItem) TableName() string {
	return "monthly_tracker_item"
}

// Options splits the comma-separated dropdown options
func (i *MonthlyTrackerItem) Options() []string {
	return splitOptions(i.DropdownOptions)
}

// QuarterlyReportItem configures one column of the quarterly report table
type QuarterlyReportItem struct {
	ID              uint      `gorm:"primaryKey;column:id" json:"id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Description     string    `gorm:"column:description" json:"description"`
	DataType        string    `gorm:"column:data_type;default:'number'" json:"data_type"`
	DropdownOptions string    `gorm:"column:dropdown_options" json:"dropdown_options"`
	Required        bool      `gorm:"column:required;default:false" json:"required"`
	NAAcceptable    bool      `gorm:"column:na_acceptable;default:true" json:"na_acceptable"`
	Order           int       `gorm:"column:display_order;default:1" json:"order"`
	IsActive        bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for QuarterlyReportItem
func (QuarterlyReportItem) TableName() string {
	return "quarterly_report_item"
}

// Options splits the comma-separated dropdown options
func (i *QuarterlyReportItem) Options() []string {
	return splitOptions(i.DropdownOptions)
}

func splitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MonthlyTrackerItemGroup is a named set of tracker items
type MonthlyTrackerItemGroup struct {
	ID          uint                 `gorm:"primaryKey;column:id" json:"id"`
	Name        string               `gorm:"column:name;not null" json:"name"`
	Description string               `gorm:"column:description" json:"description"`
	IsActive    bool                 `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time            `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"column:updated_at" json:"updated_at"`
	Items       []MonthlyTrackerItem `gorm:"many2many:monthly_tracker_item_group_items;" json:"items,omitempty"`
}

// TableName specifies the table name for MonthlyTrackerItemGroup
func (MonthlyTrackerItemGroup) TableName() string {
	return "monthly_tracker_item_group"
}

// QuarterlyReportItemGroup is a named set of quarterly report items
type QuarterlyReportItemGroup struct {
	ID          uint                  `gorm:"primaryKey;column:id" json:"id"`
	Name        string                `gorm:"column:name;not null" json:"name"`
	Description string                `gorm:"column:description" json:"description"`
	IsActive    bool                  `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time             `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"column:updated_at" json:"updated_at"`
	Items       []QuarterlyReportItem `gorm:"many2many:quarterly_report_item_group_items;" json:"items,omitempty"`
}

// TableName specifies the table name for QuarterlyReportItemGroup
func (QuarterlyReportItemGroup) TableName() string {
	return "quarterly_report_item_group"
}

// Stage1Step configures one checklist step of a stage 1 report
type Stage1Step struct {
	ID                  uint      `gorm:"primaryKey;column:id" json:"id"`
	Name                string    `gorm:"column:name;not null" json:"name"`
	Description         string    `gorm:"column:description" json:"description"`
	RequiredEvidence    string    `gorm:"column:required_evidence" json:"required_evidence"`
	DocumentRequired    bool      `gorm:"column:document_required;default:false" json:"document_required"`
	DocumentDescription string    `gorm:"column:document_description" json:"document_description"`
	Order               int       `gorm:"column:display_order;default:1" json:"order"`
	IsActive            bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt           time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Stage1Step
func (Stage1Step) TableName() string {
	return "stage1_step"
}

// Stage2Step configures one checklist step of a stage 2 report
type Stage2Step struct {
	ID                  uint      `gorm:"primaryKey;column:id" json:"id"`
	Name                string    `gorm:"column:name;not null" json:"name"`
	Description         string    `gorm:"column:description" json:"description"`
	RequiredEvidence    string    `gorm:"column:required_evidence" json:"required_evidence"`
	DocumentRequired    bool      `gorm:"column:document_required;default:false" json:"document_required"`
	DocumentDescription string    `gorm:"column:document_description" json:"document_description"`
	Order               int       `gorm:"column:display_order;default:1" json:"order"`
	IsActive            bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt           time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Stage2Step
func (Stage2Step) TableName() string {
	return "stage2_step"
}

// Stage1StepGroup is a named set of stage 1 steps
type Stage1StepGroup struct {
	ID          uint         `gorm:"primaryKey;column:id" json:"id"`
	Name        string       `gorm:"column:name;not null" json:"name"`
	Description string       `gorm:"column:description" json:"description"`
	IsActive    bool         `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at" json:"updated_at"`
	Steps       []Stage1Step `gorm:"many2many:stage1_step_group_steps;" json:"steps,omitempty"`
}

// TableName specifies the table name for Stage1StepGroup
func (Stage1StepGroup) TableName() string {
	return "stage1_step_group"
}

// Stage2StepGroup is a named set of stage 2 steps
type Stage2StepGroup struct {
	ID          uint         `gorm:"primaryKey;column:id" json:"id"`
	Name        string       `gorm:"column:name;not null" json:"name"`
	Description string       `gorm:"column:description" json:"description"`
	IsActive    bool         `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at" json:"updated_at"`
	Steps       []Stage2Step `gorm:"many2many:stage2_step_group_steps;" json:"steps,omitempty"`
}

// TableName specifies the table name for Stage2StepGroup
func (Stage2StepGroup) TableName() string {
	return "stage2_step_group"
}
