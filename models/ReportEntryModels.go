package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Workflow status values for tracker and report entries
const (
	WorkflowDraft                  = "draft"
	WorkflowSubmitted              = "submitted"
	WorkflowApprovedCouncilManager = "approved_council_manager"
	WorkflowApprovedRICDOfficer    = "approved_ricd_officer"
	WorkflowArchived               = "archived"
)

// ErrStepCompletionDate is returned when completed and completed_date disagree
var ErrStepCompletionDate = errors.New("completed_date: completion date is required when step is marked as completed")

// ErrStepCompletedFlag is returned when a completion date exists without the flag
var ErrStepCompletedFlag = errors.New("completed: step must be marked as completed when completion date is provided")

// MonthlyTrackerEntry holds one cell value of a monthly tracker record.
// Value is stored as text and interpreted per the item's data type.
type MonthlyTrackerEntry struct {
	ID                 uint    `gorm:"primaryKey;column:id" json:"id"`
	MonthlyTrackerID   uint    `gorm:"column:monthly_tracker_id;not null;uniqueIndex:idx_tracker_entry" json:"monthly_tracker_id"`
	TrackerItemID      uint    `gorm:"column:tracker_item_id;not null;uniqueIndex:idx_tracker_entry" json:"tracker_item_id"`
	Value              *string `gorm:"column:value" json:"value"`
	SupportingDocument string  `gorm:"column:supporting_document" json:"supporting_document"`

	WorkflowStatus         string     `gorm:"column:workflow_status;default:'draft'" json:"workflow_status"`
	SubmittedByID          *uint      `gorm:"column:submitted_by_id" json:"submitted_by_id"`
	SubmittedDate          *time.Time `gorm:"column:submitted_date" json:"submitted_date"`
	CouncilManagerID       *uint      `gorm:"column:council_manager_id" json:"council_manager_id"`
	CouncilManagerComments string     `gorm:"column:council_manager_comments" json:"council_manager_comments"`
	CouncilManagerDate     *time.Time `gorm:"column:council_manager_date" json:"council_manager_date"`
	RICDOfficerID          *uint      `gorm:"column:ricd_officer_id" json:"ricd_officer_id"`
	RICDOfficerComments    string     `gorm:"column:ricd_officer_comments" json:"ricd_officer_comments"`
	RICDOfficerDate        *time.Time `gorm:"column:ricd_officer_date" json:"ricd_officer_date"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	MonthlyTracker MonthlyTracker     `gorm:"foreignKey:MonthlyTrackerID" json:"-"`
	TrackerItem    MonthlyTrackerItem `gorm:"foreignKey:TrackerItemID" json:"-"`
}

// TableName specifies the table name for MonthlyTrackerEntry
func (MonthlyTrackerEntry) TableName() string {
	return "monthly_tracker_entry"
}

// QuarterlyReportItemEntry holds one cell value of a quarterly report record
type QuarterlyReportItemEntry struct {
	ID                 uint    `gorm:"primaryKey;column:id" json:"id"`
	QuarterlyReportID  uint    `gorm:"column:quarterly_report_id;not null;uniqueIndex:idx_quarterly_entry" json:"quarterly_report_id"`
	ReportItemID       uint    `gorm:"column:report_item_id;not null;uniqueIndex:idx_quarterly_entry" json:"report_item_id"`
	Value              *string `gorm:"column:value" json:"value"`
	SupportingDocument string  `gorm:"column:supporting_document" json:"supporting_document"`

	WorkflowStatus         string     `gorm:"column:workflow_status;default:'draft'" json:"workflow_status"`
	SubmittedByID          *uint      `gorm:"column:submitted_by_id" json:"submitted_by_id"`
	SubmittedDate          *time.Time `gorm:"column:submitted_date" json:"submitted_date"`
	CouncilManagerID       *uint      `gorm:"column:council_manager_id" json:"council_manager_id"`
	CouncilManagerComments string     `gorm:"column:council_manager_comments" json:"council_manager_comments"`
	CouncilManagerDate     *time.Time `gorm:"column:council_manager_date" json:"council_manager_date"`
	RICDOfficerID          *uint      `gorm:"column:ricd_officer_id" json:"ricd_officer_id"`
	RICDOfficerComments    string     `gorm:"column:ricd_officer_comments" json:"ricd_officer_comments"`
	RICDOfficerDate        *time.Time `gorm:"column:ricd_officer_date" json:"ricd_officer_date"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	QuarterlyReport QuarterlyReport     `gorm:"foreignKey:QuarterlyReportID" json:"-"`
	ReportItem      QuarterlyReportItem `gorm:"foreignKey:ReportItemID" json:"-"`
}

// TableName specifies the table name for QuarterlyReportItemEntry
func (QuarterlyReportItemEntry) TableName() string {
	return "quarterly_report_item_entry"
}

// Stage1StepCompletion records completion of one stage 1 step on a report.
// completed and completed_date must agree in both directions.
type Stage1StepCompletion struct {
	ID                 uint       `gorm:"primaryKey;column:id" json:"id"`
	Stage1ReportID     uint       `gorm:"column:stage1_report_id;not null;uniqueIndex:idx_stage1_completion" json:"stage1_report_id"`
	StepID             uint       `gorm:"column:step_id;not null;uniqueIndex:idx_stage1_completion" json:"step_id"`
	Completed          bool       `gorm:"column:completed;default:false" json:"completed"`
	CompletedDate      *time.Time `gorm:"column:completed_date" json:"completed_date"`
	EvidenceNotes      string     `gorm:"column:evidence_notes" json:"evidence_notes"`
	SupportingDocument string     `gorm:"column:supporting_document" json:"supporting_document"`
	CreatedAt          time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Stage1Report Stage1Report `gorm:"foreignKey:Stage1ReportID" json:"-"`
	Step         Stage1Step   `gorm:"foreignKey:StepID" json:"-"`
}

// TableName specifies the table name for Stage1StepCompletion
func (Stage1StepCompletion) TableName() string {
	return "stage1_step_completion"
}

// Validate enforces the completed/completed_date agreement
func (c *Stage1StepCompletion) Validate() error {
	return validateStepCompletion(c.Completed, c.CompletedDate)
}

// BeforeSave runs completion validation through GORM
func (c *Stage1StepCompletion) BeforeSave(tx *gorm.DB) error {
	return c.Validate()
}

// Stage2StepCompletion records completion of one stage 2 step on a report
type Stage2StepCompletion struct {
	ID                 uint       `gorm:"primaryKey;column:id" json:"id"`
	Stage2ReportID     uint       `gorm:"column:stage2_report_id;not null;uniqueIndex:idx_stage2_completion" json:"stage2_report_id"`
	StepID             uint       `gorm:"column:step_id;not null;uniqueIndex:idx_stage2_completion" json:"step_id"`
	Completed          bool       `gorm:"column:completed;default:false" json:"completed"`
	CompletedDate      *time.Time `gorm:"column:completed_date" json:"completed_date"`
	EvidenceNotes      string     `gorm:"column:evidence_notes" json:"evidence_notes"`
	SupportingDocument string     `gorm:"column:supporting_document" json:"supporting_document"`
	CreatedAt          time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Stage2Report Stage2Report `gorm:"foreignKey:Stage2ReportID" json:"-"`
	Step         Stage2Step   `gorm:"foreignKey:StepID" json:"-"`
}

// TableName specifies the table name for Stage2StepCompletion
func (Stage2StepCompletion) TableName() string {
	return "stage2_step_completion"
}

// Validate enforces the completed/completed_date agreement
func (c *Stage2StepCompletion) Validate() error {
	return validateStepCompletion(c.Completed, c.CompletedDate)
}

// BeforeSave runs completion validation through GORM
func (c *Stage2StepCompletion) BeforeSave(tx *gorm.DB) error {
	return c.Validate()
}

func validateStepCompletion(completed bool, completedDate *time.Time) error {
	if completed && completedDate == nil {
		return ErrStepCompletionDate
	}
	if !completed && completedDate != nil {
		return ErrStepCompletedFlag
	}
	return nil
}
