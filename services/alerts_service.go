package services

import (
	"errors"
	"sort"
	"time"

	"portal/models"

	"gorm.io/gorm"
)

// Alert severity values, most urgent first
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// ReportAlert is one missing or overdue report finding for a project
type ReportAlert struct {
	Type             string `json:"type"`
	Council          string `json:"council"`
	Project          string `json:"project"`
	Severity         string `json:"severity"`
	ProjectID        uint   `json:"project_id"`
	DaysOverdue      int    `json:"days_overdue,omitempty"`
	DueMonth         string `json:"due_month,omitempty"`
	MonthsSinceStart int    `json:"months_since_start,omitempty"`
	DaysSinceStart   int    `json:"days_since_start,omitempty"`
	LastReportDate   string `json:"last_report_date,omitempty"`
	TargetDate       string `json:"target_date,omitempty"`
	DaysPastTarget   int    `json:"days_past_target,omitempty"`
	SunsetDate       string `json:"sunset_date,omitempty"`
	DaysPastSunset   int    `json:"days_past_sunset,omitempty"`
}

// ProjectReportStatus is a snapshot of one project's reporting history, the
// only input the alert rules need. Keeping it flat lets the rules run
// without touching the database.
type ProjectReportStatus struct {
	ProjectID               uint
	ProjectName             string
	CouncilID               uint
	CouncilName             string
	State                   string
	DatePhysicallyCommenced *time.Time
	Stage1Target            *time.Time
	Stage1Sunset            *time.Time
	Stage2Target            *time.Time
	Stage2Sunset            *time.Time

	HasPriorMonthTracker      bool
	LatestQuarterlySubmission *time.Time
	HasStage1Report           bool
	Stage1Accepted            bool
	HasStage2Report           bool
	Stage2Complete            bool
}

// SeverityRank orders alert severities critical < high < medium < other
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// AnalyzeReportAlerts evaluates all overdue-report rules against project
// snapshots. Only commenced or under-construction projects are required to
// report. The returned list is sorted by severity, stable within rank.
func AnalyzeReportAlerts(statuses []ProjectReportStatus, today time.Time) []ReportAlert {
	var alerts []ReportAlert

	for _, s := range statuses {
		if s.State != models.ProjectStateCommenced && s.State != models.ProjectStateUnderConstruction {
			continue
		}

		// Monthly trackers are only required while under construction
		if s.State == models.ProjectStateUnderConstruction && !s.HasPriorMonthTracker {
			priorMonthStart := models.MonthStart(today).AddDate(0, -1, 0)
			daysOverdue := daysBetween(priorMonthStart, today)
			severity := SeverityMedium
			if daysOverdue >= 14 {
				severity = SeverityHigh
			}
			alerts = append(alerts, ReportAlert{
				Type:        "Overdue Monthly Report",
				Council:     s.CouncilName,
				Project:     s.ProjectName,
				Severity:    severity,
				DaysOverdue: daysOverdue,
				DueMonth:    models.MonthLabel(priorMonthStart),
				ProjectID:   s.ProjectID,
			})
		}

		if s.LatestQuarterlySubmission == nil {
			if s.DatePhysicallyCommenced != nil {
				monthsSinceStart := monthsBetween(*s.DatePhysicallyCommenced, today)
				commencedQuarter := models.QuarterStart(*s.DatePhysicallyCommenced)
				if monthsSinceStart >= 3 && models.QuarterStart(today).After(commencedQuarter) {
					alerts = append(alerts, ReportAlert{
						Type:             "Missing Initial Quarterly Report",
						Council:          s.CouncilName,
						Project:          s.ProjectName,
						Severity:         SeverityHigh,
						MonthsSinceStart: monthsSinceStart,
						ProjectID:        s.ProjectID,
					})
				} else if daysSince := daysBetween(*s.DatePhysicallyCommenced, today); daysSince > 90 {
					alerts = append(alerts, ReportAlert{
						Type:           "Missing Quarterly Report",
						Council:        s.CouncilName,
						Project:        s.ProjectName,
						Severity:       SeverityHigh,
						DaysSinceStart: daysSince,
						ProjectID:      s.ProjectID,
					})
				}
			}
		} else {
			monthsSinceLast := monthsBetween(*s.LatestQuarterlySubmission, today)
			if monthsSinceLast > 3 {
				daysOverdue := daysBetween(*s.LatestQuarterlySubmission, today) - 90
				if daysOverdue < 0 {
					daysOverdue = 0
				}
				severity := SeverityMedium
				if monthsSinceLast >= 4 {
					severity = SeverityHigh
				}
				alerts = append(alerts, ReportAlert{
					Type:           "Overdue Quarterly Report",
					Council:        s.CouncilName,
					Project:        s.ProjectName,
					Severity:       severity,
					DaysOverdue:    daysOverdue,
					LastReportDate: s.LatestQuarterlySubmission.Format("02/01/2006"),
					ProjectID:      s.ProjectID,
				})
			}
		}

		if s.Stage1Target != nil && today.After(*s.Stage1Target) && !s.HasStage1Report {
			daysPast := daysBetween(*s.Stage1Target, today)
			severity := SeverityMedium
			if daysPast >= 14 {
				severity = SeverityHigh
			}
			alerts = append(alerts, ReportAlert{
				Type:           "Missing Stage 1 Report",
				Council:        s.CouncilName,
				Project:        s.ProjectName,
				Severity:       severity,
				TargetDate:     s.Stage1Target.Format("02/01/2006"),
				DaysPastTarget: daysPast,
				ProjectID:      s.ProjectID,
			})
		}

		if s.Stage2Target != nil && today.After(*s.Stage2Target) && (!s.HasStage2Report || !s.Stage2Complete) {
			daysPast := daysBetween(*s.Stage2Target, today)
			severity := SeverityMedium
			if daysPast >= 14 {
				severity = SeverityHigh
			}
			alertType := "Stage 2 Report Not Submitted"
			if s.HasStage2Report {
				alertType = "Stage 2 Report Incomplete"
			}
			alerts = append(alerts, ReportAlert{
				Type:           alertType,
				Council:        s.CouncilName,
				Project:        s.ProjectName,
				Severity:       severity,
				TargetDate:     s.Stage2Target.Format("02/01/2006"),
				DaysPastTarget: daysPast,
				ProjectID:      s.ProjectID,
			})
		}

		// Sunset dates are hard deadlines; missing acceptance past sunset is
		// always critical regardless of elapsed days
		if s.Stage1Sunset != nil && today.After(*s.Stage1Sunset) && (!s.HasStage1Report || !s.Stage1Accepted) {
			alerts = append(alerts, ReportAlert{
				Type:           "Stage 1 Sunset Date Passed",
				Council:        s.CouncilName,
				Project:        s.ProjectName,
				Severity:       SeverityCritical,
				SunsetDate:     s.Stage1Sunset.Format("02/01/2006"),
				DaysPastSunset: daysBetween(*s.Stage1Sunset, today),
				ProjectID:      s.ProjectID,
			})
		}

		if s.Stage2Sunset != nil && today.After(*s.Stage2Sunset) && (!s.HasStage2Report || !s.Stage2Complete) {
			alerts = append(alerts, ReportAlert{
				Type:           "Stage 2 Sunset Date Passed",
				Council:        s.CouncilName,
				Project:        s.ProjectName,
				Severity:       SeverityCritical,
				SunsetDate:     s.Stage2Sunset.Format("02/01/2006"),
				DaysPastSunset: daysBetween(*s.Stage2Sunset, today),
				ProjectID:      s.ProjectID,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return SeverityRank(alerts[i].Severity) < SeverityRank(alerts[j].Severity)
	})

	return alerts
}

// BuildProjectReportStatuses loads the reporting snapshot for each project.
// A failed lookup skips that project rather than failing the whole scan.
func BuildProjectReportStatuses(db *gorm.DB, projects []models.Project, today time.Time) []ProjectReportStatus {
	statuses := make([]ProjectReportStatus, 0, len(projects))

	for _, p := range projects {
		s := ProjectReportStatus{
			ProjectID:               p.ID,
			ProjectName:             p.Name,
			CouncilID:               p.CouncilID,
			CouncilName:             p.Council.Name,
			State:                   p.State,
			DatePhysicallyCommenced: p.DatePhysicallyCommenced,
			Stage1Target:            p.Stage1Target,
			Stage1Sunset:            p.Stage1Sunset,
			Stage2Target:            p.Stage2Target,
			Stage2Sunset:            p.Stage2Sunset,
		}

		priorMonth := models.MonthStart(today).AddDate(0, -1, 0)
		var trackerCount int64
		db.Model(&models.MonthlyTracker{}).
			Joins("JOIN work ON work.id = monthly_tracker.work_id").
			Joins("JOIN address ON address.id = work.address_id").
			Where("address.project_id = ?", p.ID).
			Where("monthly_tracker.month >= ? AND monthly_tracker.month < ?", priorMonth, models.MonthStart(today)).
			Count(&trackerCount)
		s.HasPriorMonthTracker = trackerCount > 0

		var latest models.QuarterlyReport
		err := db.
			Joins("JOIN work ON work.id = quarterly_report.work_id").
			Joins("JOIN address ON address.id = work.address_id").
			Where("address.project_id = ?", p.ID).
			Order("quarterly_report.submission_date DESC").
			First(&latest).Error
		if err == nil {
			sub := latest.SubmissionDate
			s.LatestQuarterlySubmission = &sub
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}

		var stage1 models.Stage1Report
		err = db.Where("project_id = ?", p.ID).Order("id").First(&stage1).Error
		if err == nil {
			s.HasStage1Report = true
			s.Stage1Accepted = stage1.StateAccepted
		}

		var stage2 models.Stage2Report
		err = db.Where("project_id = ?", p.ID).Order("id").First(&stage2).Error
		if err == nil {
			s.HasStage2Report = true
			s.Stage2Complete = stage2.IsComplete()
		}

		statuses = append(statuses, s)
	}

	return statuses
}
