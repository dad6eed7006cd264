package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ProjectReportConfiguration selects which item and step groups apply to a
// project's reports. At most one row per project. A project without a row
// falls back to the default applicability policy.
type ProjectReportConfiguration struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	ProjectID uint      `gorm:"column:project_id;uniqueIndex;not null" json:"project_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`

	MonthlyTrackerGroups  []MonthlyTrackerItemGroup  `gorm:"many2many:project_report_config_monthly_groups;" json:"monthly_tracker_groups,omitempty"`
	QuarterlyReportGroups []QuarterlyReportItemGroup `gorm:"many2many:project_report_config_quarterly_groups;" json:"quarterly_report_groups,omitempty"`
	Stage1StepGroups      []Stage1StepGroup          `gorm:"many2many:project_report_config_stage1_groups;" json:"stage1_step_groups,omitempty"`
	Stage2StepGroups      []Stage2StepGroup          `gorm:"many2many:project_report_config_stage2_groups;" json:"stage2_step_groups,omitempty"`
}

// TableName specifies the table name for ProjectReportConfiguration
func (ProjectReportConfiguration) TableName() string {
	return "project_report_configuration"
}

// ErrSiteConfigurationExists is returned when a second site configuration row
// would be created
var ErrSiteConfigurationExists = errors.New("site configuration already exists; only one row is allowed")

// SiteConfiguration holds site-wide formatting preferences. Exactly one row
// may exist; creation of a second row is rejected at save time.
type SiteConfiguration struct {
	ID uint `gorm:"primaryKey;column:id" json:"id"`

	DateFormat string `gorm:"column:date_format;default:'DD/MM/YYYY'" json:"date_format"`
	TimeFormat string `gorm:"column:time_format;default:'24H'" json:"time_format"`
	Timezone   string `gorm:"column:timezone;default:'Australia/Brisbane'" json:"timezone"`

	DefaultCurrency  string `gorm:"column:default_currency;default:'AUD'" json:"default_currency"`
	CurrencySymbol   string `gorm:"column:currency_symbol;default:'$'" json:"currency_symbol"`
	CurrencyPosition string `gorm:"column:currency_position;default:'before'" json:"currency_position"`

	DecimalPlaces       int    `gorm:"column:decimal_places;default:2" json:"decimal_places"`
	ThousandsSeparator  string `gorm:"column:thousands_separator;default:','" json:"thousands_separator"`
	DecimalSeparator    string `gorm:"column:decimal_separator;default:'.'" json:"decimal_separator"`
	DefaultLanguage     string `gorm:"column:default_language;default:'en-au'" json:"default_language"`
	SiteTitle           string `gorm:"column:site_title;default:'RICD Portal'" json:"site_title"`
	SiteDescription     string `gorm:"column:site_description" json:"site_description"`
	SupportEmail        string `gorm:"column:support_email" json:"support_email"`
	SupportPhone        string `gorm:"column:support_phone" json:"support_phone"`
	MaintenanceMode     bool   `gorm:"column:maintenance_mode;default:false" json:"maintenance_mode"`
	MaintenanceMessage  string `gorm:"column:maintenance_message" json:"maintenance_message"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for SiteConfiguration
func (SiteConfiguration) TableName() string {
	return "site_configuration"
}

// Validate checks formatting fields
func (s *SiteConfiguration) Validate() error {
	if s.DecimalPlaces < 0 || s.DecimalPlaces > 10 {
		return errors.New("decimal_places: must be between 0 and 10")
	}
	if len(s.ThousandsSeparator) != 1 {
		return errors.New("thousands_separator: must be a single character")
	}
	if len(s.DecimalSeparator) != 1 {
		return errors.New("decimal_separator: must be a single character")
	}
	return nil
}

// BeforeCreate rejects a second configuration row
func (s *SiteConfiguration) BeforeCreate(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&SiteConfiguration{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSiteConfigurationExists
	}
	return s.Validate()
}

// BeforeUpdate validates formatting fields on update
func (s *SiteConfiguration) BeforeUpdate(tx *gorm.DB) error {
	return s.Validate()
}

// GetSiteConfiguration returns the singleton row, creating it with defaults
// when missing
func GetSiteConfiguration(db *gorm.DB) (*SiteConfiguration, error) {
	var cfg SiteConfiguration
	err := db.First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cfg = SiteConfiguration{
		DateFormat:         "DD/MM/YYYY",
		TimeFormat:         "24H",
		Timezone:           "Australia/Brisbane",
		DefaultCurrency:    "AUD",
		CurrencySymbol:     "$",
		CurrencyPosition:   "before",
		DecimalPlaces:      2,
		ThousandsSeparator: ",",
		DecimalSeparator:   ".",
		DefaultLanguage:    "en-au",
		SiteTitle:          "RICD Portal",
	}
	if err := db.Create(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
