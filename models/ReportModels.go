package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Report type values for stage reports
const (
	ReportTypeConstruction = "construction"
	ReportTypeLand         = "land"
)

// Decision values for quarterly report approvals
const (
	DecisionPending  = "pending"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// MonthlyTracker represents the monthly_tracker table with GORM tags.
// Month is always the first day of the reporting month; SubmissionDate is
// stamped when entries for the record are saved.
type MonthlyTracker struct {
	ID             uint       `gorm:"primaryKey;column:id" json:"id"`
	WorkID         uint       `gorm:"column:work_id;not null" json:"work_id"`
	Month          time.Time  `gorm:"column:month;not null" json:"month"`
	SubmissionDate *time.Time `gorm:"column:submission_date" json:"submission_date"`
	ProgressNotes  string     `gorm:"column:progress_notes" json:"progress_notes"`

	PercentageWorksCompleted *float64 `gorm:"column:percentage_works_completed;type:numeric(5,2)" json:"percentage_works_completed"`
	TotalConstructionCost    *float64 `gorm:"column:total_construction_cost;type:numeric(15,2)" json:"total_construction_cost"`
	TotalExpenditureCouncil  *float64 `gorm:"column:total_expenditure_council;type:numeric(15,2)" json:"total_expenditure_council"`
	TotalExpenditureRICD     *float64 `gorm:"column:total_expenditure_ricd;type:numeric(15,2)" json:"total_expenditure_ricd"`

	DesignTenderDate       *time.Time `gorm:"column:design_tender_date" json:"design_tender_date"`
	DesignAwardDate        *time.Time `gorm:"column:design_award_date" json:"design_award_date"`
	ConstructionTenderDate *time.Time `gorm:"column:construction_tender_date" json:"construction_tender_date"`
	ConstructionAwardDate  *time.Time `gorm:"column:construction_award_date" json:"construction_award_date"`
	SiteEstablishmentDate  *time.Time `gorm:"column:site_establishment_date" json:"site_establishment_date"`
	EarthworksDate         *time.Time `gorm:"column:earthworks_date" json:"earthworks_date"`
	SlabDate               *time.Time `gorm:"column:slab_date" json:"slab_date"`
	WallFramesMasonryDate  *time.Time `gorm:"column:wall_frames_masonry_date" json:"wall_frames_masonry_date"`
	RoofSheetingDate       *time.Time `gorm:"column:roof_sheeting_date" json:"roof_sheeting_date"`
	InternalFitOutDate     *time.Time `gorm:"column:internal_fit_out_date" json:"internal_fit_out_date"`
	ExternalPaintingDate   *time.Time `gorm:"column:external_painting_date" json:"external_painting_date"`
	HandoverCleanDate      *time.Time `gorm:"column:handover_clean_date" json:"handover_clean_date"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	Work Work `gorm:"foreignKey:WorkID" json:"-"`
}

// TableName specifies the table name for MonthlyTracker
func (MonthlyTracker) TableName() string {
	return "monthly_tracker"
}

// MonthDisplay returns the month label, e.g. "August 2024"
func (m *MonthlyTracker) MonthDisplay() string {
	return MonthLabel(m.Month)
}

// Validate checks the month anchor and milestone ordering
func (m *MonthlyTracker) Validate() error {
	if m.Month.Day() != 1 {
		return errors.New("month: month must be the first day of the month")
	}
	if m.DesignTenderDate != nil && m.DesignAwardDate != nil && m.DesignTenderDate.After(*m.DesignAwardDate) {
		return errors.New("design_tender_date: design tender date must be before design award date")
	}
	if m.ConstructionTenderDate != nil && m.ConstructionAwardDate != nil && m.ConstructionTenderDate.After(*m.ConstructionAwardDate) {
		return errors.New("construction_tender_date: construction tender date must be before construction award date")
	}
	return nil
}

// BeforeSave runs monthly tracker validation through GORM
func (m *MonthlyTracker) BeforeSave(tx *gorm.DB) error {
	return m.Validate()
}

// CopyMilestonesFrom carries milestone dates over from the prior month's record
func (m *MonthlyTracker) CopyMilestonesFrom(prev *MonthlyTracker) {
	m.DesignTenderDate = prev.DesignTenderDate
	m.DesignAwardDate = prev.DesignAwardDate
	m.ConstructionTenderDate = prev.ConstructionTenderDate
	m.ConstructionAwardDate = prev.ConstructionAwardDate
	m.SiteEstablishmentDate = prev.SiteEstablishmentDate
	m.EarthworksDate = prev.EarthworksDate
	m.SlabDate = prev.SlabDate
	m.WallFramesMasonryDate = prev.WallFramesMasonryDate
	m.RoofSheetingDate = prev.RoofSheetingDate
	m.InternalFitOutDate = prev.InternalFitOutDate
	m.ExternalPaintingDate = prev.ExternalPaintingDate
	m.HandoverCleanDate = prev.HandoverCleanDate
}

// QuarterlyReport represents the quarterly_report table with GORM tags.
// Quarter is derived from the submission date on save, e.g. "Jan-Mar 2024".
type QuarterlyReport struct {
	ID                       uint      `gorm:"primaryKey;column:id" json:"id"`
	WorkID                   uint      `gorm:"column:work_id;not null" json:"work_id"`
	Quarter                  string    `gorm:"column:quarter" json:"quarter"`
	SubmissionDate           time.Time `gorm:"column:submission_date;not null" json:"submission_date"`
	PercentageWorksCompleted *float64  `gorm:"column:percentage_works_completed;type:numeric(5,2)" json:"percentage_works_completed"`
	TotalExpenditureCouncil  *float64  `gorm:"column:total_expenditure_council;type:numeric(15,2)" json:"total_expenditure_council"`
	UnspentFundingAmount     *float64  `gorm:"column:unspent_funding_amount;type:numeric(15,2)" json:"unspent_funding_amount"`

	PracticalCompletionForecastDate *time.Time `gorm:"column:practical_completion_forecast_date" json:"practical_completion_forecast_date"`
	PracticalCompletionActualDate   *time.Time `gorm:"column:practical_completion_actual_date" json:"practical_completion_actual_date"`

	AdverseMatters              string   `gorm:"column:adverse_matters" json:"adverse_matters"`
	CouncilContributionsDetails string   `gorm:"column:council_contributions_details" json:"council_contributions_details"`
	OtherContributionsDetails   string   `gorm:"column:other_contributions_details" json:"other_contributions_details"`
	CouncilContributionsAmount  *float64 `gorm:"column:council_contributions_amount;type:numeric(15,2)" json:"council_contributions_amount"`
	OtherContributionsAmount    *float64 `gorm:"column:other_contributions_amount;type:numeric(15,2)" json:"other_contributions_amount"`
	SummaryNotes                string   `gorm:"column:summary_notes" json:"summary_notes"`

	StaffAssessmentNotes string     `gorm:"column:staff_assessment_notes" json:"staff_assessment_notes"`
	StaffAssessedDate    *time.Time `gorm:"column:staff_assessed_date" json:"staff_assessed_date"`

	CouncilManagerDecision     string     `gorm:"column:council_manager_decision;default:'pending'" json:"council_manager_decision"`
	CouncilManagerComments     string     `gorm:"column:council_manager_comments" json:"council_manager_comments"`
	CouncilManagerDecisionDate *time.Time `gorm:"column:council_manager_decision_date" json:"council_manager_decision_date"`

	ManagerDecision     string     `gorm:"column:manager_decision;default:'pending'" json:"manager_decision"`
	ManagerComments     string     `gorm:"column:manager_comments" json:"manager_comments"`
	ManagerDecisionDate *time.Time `gorm:"column:manager_decision_date" json:"manager_decision_date"`

	SupportingDocumentDescription string    `gorm:"column:supporting_document_description" json:"supporting_document_description"`
	CreatedAt                     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                     time.Time `gorm:"column:updated_at" json:"updated_at"`

	Work Work `gorm:"foreignKey:WorkID" json:"-"`
}

// TableName specifies the table name for QuarterlyReport
func (QuarterlyReport) TableName() string {
	return "quarterly_report"
}

// BeforeSave derives the quarter label when it has not been set
func (q *QuarterlyReport) BeforeSave(tx *gorm.DB) error {
	if q.Quarter == "" {
		d := q.SubmissionDate
		if d.IsZero() {
			d = time.Now()
		}
		q.Quarter = QuarterLabel(d)
	}
	if q.PercentageWorksCompleted != nil && (*q.PercentageWorksCompleted < 0 || *q.PercentageWorksCompleted > 100) {
		return errors.New("percentage_works_completed: must be between 0 and 100")
	}
	return nil
}

// Stage1Report represents the stage1_report table with GORM tags. Stage 1
// covers land acquisition and pre-construction approvals for a project.
type Stage1Report struct {
	ID             uint       `gorm:"primaryKey;column:id" json:"id"`
	ProjectID      uint       `gorm:"column:project_id;not null" json:"project_id"`
	ReportType     string     `gorm:"column:report_type;default:'construction'" json:"report_type"`
	SubmissionDate time.Time  `gorm:"column:submission_date;not null" json:"submission_date"`
	StateAccepted  bool       `gorm:"column:state_accepted;default:false" json:"state_accepted"`
	AcceptanceDate *time.Time `gorm:"column:acceptance_date" json:"acceptance_date"`

	ExpenditureRecordsMaintained bool `gorm:"column:expenditure_records_maintained;default:false" json:"expenditure_records_maintained"`
	QuarterlyReportsProvided     bool `gorm:"column:quarterly_reports_provided;default:false" json:"quarterly_reports_provided"`

	NativeTitleAddressed               bool `gorm:"column:native_title_addressed;default:false" json:"native_title_addressed"`
	HeritageMattersAddressed           bool `gorm:"column:heritage_matters_addressed;default:false" json:"heritage_matters_addressed"`
	DevelopmentApprovalObtained        bool `gorm:"column:development_approval_obtained;default:false" json:"development_approval_obtained"`
	TenureObtained                     bool `gorm:"column:tenure_obtained;default:false" json:"tenure_obtained"`
	LandSurveyed                       bool `gorm:"column:land_surveyed;default:false" json:"land_surveyed"`
	SubdivisionRequired                bool `gorm:"column:subdivision_required;default:false" json:"subdivision_required"`
	SubdivisionPlanPrepared            bool `gorm:"column:subdivision_plan_prepared;default:false" json:"subdivision_plan_prepared"`
	DesignApproved                     bool `gorm:"column:design_approved;default:false" json:"design_approved"`
	StructuralCertificationObtained    bool `gorm:"column:structural_certification_obtained;default:false" json:"structural_certification_obtained"`
	TendersCalled                      bool `gorm:"column:tenders_called;default:false" json:"tenders_called"`
	ContractorAppointed                bool `gorm:"column:contractor_appointed;default:false" json:"contractor_appointed"`
	BuildingApprovalObtained           bool `gorm:"column:building_approval_obtained;default:false" json:"building_approval_obtained"`
	InfrastructureApprovalsObtained    bool `gorm:"column:infrastructure_approvals_obtained;default:false" json:"infrastructure_approvals_obtained"`

	CompletionNotes string    `gorm:"column:completion_notes" json:"completion_notes"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// TableName specifies the table name for Stage1Report
func (Stage1Report) TableName() string {
	return "stage1_report"
}

// IsComplete reports whether every milestone for the report type is done
func (r *Stage1Report) IsComplete() bool {
	if r.ReportType == ReportTypeLand {
		return r.ExpenditureRecordsMaintained &&
			r.NativeTitleAddressed &&
			r.TenureObtained &&
			r.SubdivisionPlanPrepared &&
			r.LandSurveyed
	}
	return r.ExpenditureRecordsMaintained &&
		r.NativeTitleAddressed &&
		r.DevelopmentApprovalObtained &&
		r.TenureObtained &&
		r.DesignApproved &&
		r.ContractorAppointed &&
		r.BuildingApprovalObtained
}

// Stage2Report represents the stage2_report table with GORM tags. Stage 2
// covers construction completion and handover for a project.
type Stage2Report struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	ProjectID      uint      `gorm:"column:project_id;not null" json:"project_id"`
	ReportType     string    `gorm:"column:report_type;default:'construction'" json:"report_type"`
	SubmissionDate time.Time `gorm:"column:submission_date;not null" json:"submission_date"`

	ScheduleProvided     bool       `gorm:"column:schedule_provided;default:false" json:"schedule_provided"`
	ScheduleProvidedDate *time.Time `gorm:"column:schedule_provided_date" json:"schedule_provided_date"`

	QuarterlyReportsProvided bool `gorm:"column:quarterly_reports_provided;default:false" json:"quarterly_reports_provided"`
	MonthlyTrackersProvided  bool `gorm:"column:monthly_trackers_provided;default:false" json:"monthly_trackers_provided"`

	PracticalCompletionAchieved         bool       `gorm:"column:practical_completion_achieved;default:false" json:"practical_completion_achieved"`
	PracticalCompletionDate             *time.Time `gorm:"column:practical_completion_date" json:"practical_completion_date"`
	PracticalCompletionNotificationSent bool       `gorm:"column:practical_completion_notification_sent;default:false" json:"practical_completion_notification_sent"`
	NotificationDate                    *time.Time `gorm:"column:notification_date" json:"notification_date"`

	HandoverRequirementsMet    bool       `gorm:"column:handover_requirements_met;default:false" json:"handover_requirements_met"`
	HandoverChecklistCompleted bool       `gorm:"column:handover_checklist_completed;default:false" json:"handover_checklist_completed"`
	WarrantiesProvided         bool       `gorm:"column:warranties_provided;default:false" json:"warranties_provided"`
	FinalPlansProvided         bool       `gorm:"column:final_plans_provided;default:false" json:"final_plans_provided"`
	JointInspectionCompleted   bool       `gorm:"column:joint_inspection_completed;default:false" json:"joint_inspection_completed"`
	JointInspectionDate        *time.Time `gorm:"column:joint_inspection_date" json:"joint_inspection_date"`
	LandWorksCompleted         bool       `gorm:"column:land_works_completed;default:false" json:"land_works_completed"`

	CompletionNotes string    `gorm:"column:completion_notes" json:"completion_notes"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// TableName specifies the table name for Stage2Report
func (Stage2Report) TableName() string {
	return "stage2_report"
}

// IsComplete reports whether every milestone for the report type is done
func (r *Stage2Report) IsComplete() bool {
	if r.ReportType == ReportTypeLand {
		return r.QuarterlyReportsProvided &&
			r.MonthlyTrackersProvided &&
			r.PracticalCompletionAchieved &&
			r.HandoverRequirementsMet &&
			r.LandWorksCompleted
	}
	return r.ScheduleProvided &&
		r.QuarterlyReportsProvided &&
		r.MonthlyTrackersProvided &&
		r.PracticalCompletionAchieved &&
		r.HandoverRequirementsMet &&
		r.HandoverChecklistCompleted
}

var quarterNames = [4]string{"Jan-Mar", "Apr-Jun", "Jul-Sep", "Oct-Dec"}

// QuarterLabel returns the calendar-quarter label for a date, e.g. "Jan-Mar 2024"
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", quarterNames[(int(t.Month())-1)/3], t.Year())
}

// MonthLabel returns the month label for a date, e.g. "August 2024"
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}

// QuarterStart returns the first day of the calendar quarter containing t
func QuarterStart(t time.Time) time.Time {
	startMonth := time.Month(((int(t.Month())-1)/3)*3 + 1)
	return time.Date(t.Year(), startMonth, 1, 0, 0, 0, 0, t.Location())
}

// PreviousQuarterStart returns the first day of the quarter before the one
// containing t
func PreviousQuarterStart(t time.Time) time.Time {
	return QuarterStart(QuarterStart(t).AddDate(0, -1, 0))
}

// MonthStart returns the first day of the month containing t
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
