package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidProjectState is returned when a project carries an unknown state value
var ErrInvalidProjectState = errors.New("state: invalid project state")

// Project lifecycle states
const (
	ProjectStateProspective       = "prospective"
	ProjectStateProgrammed        = "programmed"
	ProjectStateFunded            = "funded"
	ProjectStateCommenced         = "commenced"
	ProjectStateUnderConstruction = "under_construction"
	ProjectStateCompleted         = "completed"
)

// ValidProjectStates maps every allowed project state
var ValidProjectStates = map[string]bool{
	ProjectStateProspective:       true,
	ProjectStateProgrammed:        true,
	ProjectStateFunded:            true,
	ProjectStateCommenced:         true,
	ProjectStateUnderConstruction: true,
	ProjectStateCompleted:         true,
}

// Program represents the program table with GORM tags
type Program struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Program
func (Program) TableName() string {
	return "program"
}

// FundingSchedule represents the funding_schedule table with GORM tags
type FundingSchedule struct {
	ID                uint     `gorm:"primaryKey;column:id" json:"id"`
	CouncilID         uint     `gorm:"column:council_id;not null" json:"council_id"`
	ScheduleNumber    string   `gorm:"column:schedule_number" json:"schedule_number"`
	FundingAmount     float64  `gorm:"column:funding_amount;type:numeric(15,2);not null" json:"funding_amount"`
	ContingencyAmount *float64 `gorm:"column:contingency_amount;type:numeric(15,2)" json:"contingency_amount"`
}

// TableName specifies the table name for FundingSchedule
func (FundingSchedule) TableName() string {
	return "funding_schedule"
}

// TotalFunding returns funding plus contingency
func (fs *FundingSchedule) TotalFunding() float64 {
	total := fs.FundingAmount
	if fs.ContingencyAmount != nil {
		total += *fs.ContingencyAmount
	}
	return total
}

// Project represents the project table with GORM tags
type Project struct {
	ID                      uint       `gorm:"primaryKey;column:id" json:"id"`
	CouncilID               uint       `gorm:"column:council_id;not null" json:"council_id"`
	ProgramID               *uint      `gorm:"column:program_id" json:"program_id"`
	FundingScheduleID       *uint      `gorm:"column:funding_schedule_id" json:"funding_schedule_id"`
	Name                    string     `gorm:"column:name;not null" json:"name"`
	Description             string     `gorm:"column:description" json:"description"`
	FundingScheduleAmount   *float64   `gorm:"column:funding_schedule_amount;type:numeric(15,2)" json:"funding_schedule_amount"`
	ContingencyAmount       *float64   `gorm:"column:contingency_amount;type:numeric(15,2)" json:"contingency_amount"`
	ContingencyPercentage   float64    `gorm:"column:contingency_percentage;type:numeric(5,2);default:0.10" json:"contingency_percentage"`
	PrincipalOfficer        string     `gorm:"column:principal_officer" json:"principal_officer"`
	SeniorOfficer           string     `gorm:"column:senior_officer" json:"senior_officer"`
	StartDate               *time.Time `gorm:"column:start_date" json:"start_date"`
	Stage1Target            *time.Time `gorm:"column:stage1_target" json:"stage1_target"`
	Stage1Sunset            *time.Time `gorm:"column:stage1_sunset" json:"stage1_sunset"`
	Stage2Target            *time.Time `gorm:"column:stage2_target" json:"stage2_target"`
	Stage2Sunset            *time.Time `gorm:"column:stage2_sunset" json:"stage2_sunset"`
	State                   string     `gorm:"column:state;not null;default:'prospective'" json:"state"`
	SAPProject              string     `gorm:"column:sap_project" json:"sap_project"`
	CLINumber               string     `gorm:"column:cli_no" json:"cli_no"`
	Commitments             *float64   `gorm:"column:commitments;type:numeric(15,2)" json:"commitments"`
	ForecastFinalCost       *float64   `gorm:"column:forecast_final_cost;type:numeric(15,2)" json:"forecast_final_cost"`
	FinalCost               *float64   `gorm:"column:final_cost;type:numeric(15,2)" json:"final_cost"`
	CostsFinalised          bool       `gorm:"column:costs_finalised;default:false" json:"costs_finalised"`
	DatePhysicallyCommenced *time.Time `gorm:"column:date_physically_commenced" json:"date_physically_commenced"`
	EstimatedCompletion     *time.Time `gorm:"column:estimated_completion" json:"estimated_completion"`
	ActualCompletion        *time.Time `gorm:"column:actual_completion" json:"actual_completion"`
	CreatedAt               time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Council         Council          `gorm:"foreignKey:CouncilID" json:"-"`
	Program         *Program         `gorm:"foreignKey:ProgramID" json:"-"`
	FundingSchedule *FundingSchedule `gorm:"foreignKey:FundingScheduleID" json:"-"`
	Addresses       []Address        `gorm:"foreignKey:ProjectID" json:"addresses,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "project"
}

// HasCommenced reports whether the project is physically underway. Lazy
// creation of period records only happens for commenced projects.
func (p *Project) HasCommenced() bool {
	if p.DatePhysicallyCommenced == nil {
		return false
	}
	return p.State == ProjectStateCommenced || p.State == ProjectStateUnderConstruction
}

// TotalFunding returns the project funding amount plus contingency
func (p *Project) TotalFunding() float64 {
	var total float64
	if p.FundingScheduleAmount != nil {
		total += *p.FundingScheduleAmount
	}
	if p.ContingencyAmount != nil {
		total += *p.ContingencyAmount
	}
	return total
}

// BeforeSave validates the project state value
func (p *Project) BeforeSave(tx *gorm.DB) error {
	if p.State != "" && !ValidProjectStates[p.State] {
		return ErrInvalidProjectState
	}
	return nil
}
