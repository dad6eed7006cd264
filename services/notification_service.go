package services

import (
	"fmt"
	"log"
	"time"

	"portal/models"

	"gorm.io/gorm"
)

// OverdueScanResult summarizes one run of the nightly overdue-report scan
type OverdueScanResult struct {
	ProjectsScanned int `json:"projects_scanned"`
	AlertsFound     int `json:"alerts_found"`
	Created         int `json:"created"`
	Skipped         int `json:"skipped"`
}

func alertMessage(a ReportAlert) string {
	switch {
	case a.DueMonth != "":
		return fmt.Sprintf("%s for %s (%d days overdue)", a.Type, a.DueMonth, a.DaysOverdue)
	case a.SunsetDate != "":
		return fmt.Sprintf("%s on %s (%d days past)", a.Type, a.SunsetDate, a.DaysPastSunset)
	case a.TargetDate != "":
		return fmt.Sprintf("%s, target %s (%d days past)", a.Type, a.TargetDate, a.DaysPastTarget)
	case a.LastReportDate != "":
		return fmt.Sprintf("%s, last report %s (%d days overdue)", a.Type, a.LastReportDate, a.DaysOverdue)
	default:
		return a.Type
	}
}

// RunOverdueScan evaluates the overdue-report rules for every project and
// records one notification per project, alert type and calendar day. Alerts
// already recorded today are skipped so repeated runs stay idempotent.
func RunOverdueScan(db *gorm.DB, now time.Time) (*OverdueScanResult, error) {
	var projects []models.Project
	if err := db.Preload("Council").Find(&projects).Error; err != nil {
		return nil, err
	}

	statuses := BuildProjectReportStatuses(db, projects, now)
	alerts := AnalyzeReportAlerts(statuses, now)

	councilByProject := make(map[uint]uint, len(statuses))
	for _, s := range statuses {
		councilByProject[s.ProjectID] = s.CouncilID
	}

	result := &OverdueScanResult{
		ProjectsScanned: len(projects),
		AlertsFound:     len(alerts),
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, a := range alerts {
		var existing int64
		err := db.Model(&models.Notification{}).
			Where("project_id = ? AND alert_type = ?", a.ProjectID, a.Type).
			Where("alert_date >= ? AND alert_date < ?", dayStart, dayStart.AddDate(0, 0, 1)).
			Count(&existing).Error
		if err != nil {
			return result, err
		}
		if existing > 0 {
			result.Skipped++
			continue
		}

		n := models.Notification{
			ProjectID: a.ProjectID,
			CouncilID: councilByProject[a.ProjectID],
			AlertType: a.Type,
			Severity:  a.Severity,
			Message:   alertMessage(a),
			AlertDate: now,
		}
		if err := db.Create(&n).Error; err != nil {
			log.Printf("overdue scan: failed to record %s for project %d: %v", a.Type, a.ProjectID, err)
			continue
		}
		result.Created++
	}

	log.Printf("overdue scan: %d projects, %d alerts, %d created, %d skipped",
		result.ProjectsScanned, result.AlertsFound, result.Created, result.Skipped)

	sendAlertDigests(db, alerts, councilByProject)
	return result, nil
}

// sendAlertDigests emails each council's managers their outstanding alerts.
// Delivery is best effort; a failed send never fails the scan.
func sendAlertDigests(db *gorm.DB, alerts []ReportAlert, councilByProject map[uint]uint) {
	emailSvc := NewEmailService()
	if !emailSvc.Enabled() || len(alerts) == 0 {
		return
	}

	byCouncil := make(map[uint][]ReportAlert)
	for _, a := range alerts {
		councilID := councilByProject[a.ProjectID]
		byCouncil[councilID] = append(byCouncil[councilID], a)
	}

	for councilID, councilAlerts := range byCouncil {
		var council models.Council
		if err := db.First(&council, councilID).Error; err != nil {
			continue
		}

		var emails []string
		err := db.Model(&models.User{}).
			Joins("JOIN user_profile ON user_profile.user_id = users.id").
			Where("user_profile.council_id = ? AND user_profile.council_role = ?", councilID, models.CouncilRoleManager).
			Where("users.is_active = ?", true).
			Pluck("users.email", &emails).Error
		if err != nil {
			log.Printf("alert digest: council %d managers: %v", councilID, err)
			continue
		}

		for _, email := range emails {
			if err := emailSvc.SendAlertDigest(email, council.Name, councilAlerts); err != nil {
				log.Printf("alert digest: send to %s: %v", email, err)
			}
		}
	}
}
