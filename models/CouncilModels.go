package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Council represents the council table with GORM tags
type Council struct {
	ID                          uint           `gorm:"primaryKey;column:id" json:"id"`
	Name                        string         `gorm:"column:name;not null" json:"name"`
	ABN                         string         `gorm:"column:abn" json:"abn"`
	DefaultSuburb               string         `gorm:"column:default_suburb" json:"default_suburb"`
	DefaultPostcode             string         `gorm:"column:default_postcode" json:"default_postcode"`
	DefaultState                string         `gorm:"column:default_state;default:'QLD'" json:"default_state"`
	FederalElectorate           string         `gorm:"column:federal_electorate" json:"federal_electorate"`
	StateElectorate             string         `gorm:"column:state_electorate" json:"state_electorate"`
	QHIGIRegion                 string         `gorm:"column:qhigi_region" json:"qhigi_region"`
	IsRegisteredHousingProvider bool           `gorm:"column:is_registered_housing_provider;default:false" json:"is_registered_housing_provider"`
	CreatedAt                   time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                   time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt                   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Council
func (Council) TableName() string {
	return "council"
}

var abnPattern = regexp.MustCompile(`^\d{11}$`)
var postcodePattern = regexp.MustCompile(`^\d{4}$`)

// Validate checks council fields before save. ABN must be exactly 11 digits
// and postcodes 4 digits; these surface as field-level errors to the form layer.
func (c *Council) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name: council name is required")
	}
	if c.ABN != "" && !abnPattern.MatchString(c.ABN) {
		return errors.New("abn: ABN must be exactly 11 digits")
	}
	if c.DefaultPostcode != "" && !postcodePattern.MatchString(c.DefaultPostcode) {
		return errors.New("default_postcode: postcode must be exactly 4 digits")
	}
	return nil
}

// BeforeSave runs council validation through GORM
func (c *Council) BeforeSave(tx *gorm.DB) error {
	return c.Validate()
}

// UserProfile links a portal user to a council with a council-level role
type UserProfile struct {
	ID          uint    `gorm:"primaryKey;column:id" json:"id"`
	UserID      uint    `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	CouncilID   *uint   `gorm:"column:council_id" json:"council_id"`
	CouncilRole string  `gorm:"column:council_role" json:"council_role"` // "manager" or "user"
	Council     Council `gorm:"foreignKey:CouncilID" json:"-"`
}

// TableName specifies the table name for UserProfile
func (UserProfile) TableName() string {
	return "user_profile"
}

// Council role values for UserProfile.CouncilRole
const (
	CouncilRoleManager = "manager"
	CouncilRoleUser    = "user"
)

// Notification represents the notification table, populated by the nightly
// overdue-report scan
type Notification struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	ProjectID uint      `gorm:"column:project_id;not null" json:"project_id"`
	CouncilID uint      `gorm:"column:council_id;not null" json:"council_id"`
	AlertType string    `gorm:"column:alert_type;not null" json:"alert_type"`
	Severity  string    `gorm:"column:severity;not null" json:"severity"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	AlertDate time.Time `gorm:"column:alert_date;not null" json:"alert_date"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notification"
}
