package services

import (
	"testing"
	"time"

	"portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// reportingStatus returns a project snapshot with nothing overdue: prior
// month tracker present and a quarterly report submitted today.
func reportingStatus(today time.Time) ProjectReportStatus {
	sub := today
	return ProjectReportStatus{
		ProjectID:                 1,
		ProjectName:               "New Housing 2024",
		CouncilID:                 7,
		CouncilName:               "Palm Island",
		State:                     models.ProjectStateUnderConstruction,
		HasPriorMonthTracker:      true,
		LatestQuarterlySubmission: &sub,
	}
}

func TestAnalyzeReportAlertsQuietProject(t *testing.T) {
	today := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
	alerts := AnalyzeReportAlerts([]ProjectReportStatus{reportingStatus(today)}, today)
	assert.Empty(t, alerts)
}

func TestAnalyzeReportAlertsIgnoresNonReportingStates(t *testing.T) {
	today := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
	for _, state := range []string{"prospective", "approved", "completed"} {
		s := reportingStatus(today)
		s.State = state
		s.HasPriorMonthTracker = false
		s.LatestQuarterlySubmission = nil
		s.Stage1Sunset = datePtr(2024, 1, 1)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)
		assert.Empty(t, alerts, "state %s must not alert", state)
	}
}

func TestAnalyzeReportAlertsOverdueMonthly(t *testing.T) {
	today := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	t.Run("missing prior month tracker while under construction", func(t *testing.T) {
		s := reportingStatus(today)
		s.HasPriorMonthTracker = false

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)

		require.Len(t, alerts, 1)
		assert.Equal(t, "Overdue Monthly Report", alerts[0].Type)
		assert.Equal(t, SeverityHigh, alerts[0].Severity)
		assert.Equal(t, "February 2024", alerts[0].DueMonth)
		// Feb 1 to Mar 20 2024
		assert.Equal(t, 48, alerts[0].DaysOverdue)
	})

	t.Run("commenced projects are exempt from monthly tracking", func(t *testing.T) {
		s := reportingStatus(today)
		s.State = models.ProjectStateCommenced
		s.HasPriorMonthTracker = false

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)
		assert.Empty(t, alerts)
	})

	t.Run("overdue days count from the start of the missed month", func(t *testing.T) {
		early := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		s := reportingStatus(early)
		s.HasPriorMonthTracker = false

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, early)

		require.Len(t, alerts, 1)
		assert.Equal(t, 38, alerts[0].DaysOverdue)
		assert.Equal(t, SeverityHigh, alerts[0].Severity)
	})
}

func TestAnalyzeReportAlertsQuarterly(t *testing.T) {
	t.Run("missing initial report a full quarter after commencement", func(t *testing.T) {
		today := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
		s := reportingStatus(today)
		s.State = models.ProjectStateCommenced
		s.LatestQuarterlySubmission = nil
		s.DatePhysicallyCommenced = datePtr(2024, 1, 10)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)

		require.Len(t, alerts, 1)
		assert.Equal(t, "Missing Initial Quarterly Report", alerts[0].Type)
		assert.Equal(t, SeverityHigh, alerts[0].Severity)
		assert.Equal(t, 3, alerts[0].MonthsSinceStart)
	})

	t.Run("no alert shortly after commencement", func(t *testing.T) {
		today := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
		s := reportingStatus(today)
		s.State = models.ProjectStateCommenced
		s.LatestQuarterlySubmission = nil
		s.DatePhysicallyCommenced = datePtr(2024, 1, 10)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)
		assert.Empty(t, alerts)
	})

	t.Run("overdue after four months of silence", func(t *testing.T) {
		today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
		s := reportingStatus(today)
		s.LatestQuarterlySubmission = datePtr(2024, 1, 5)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)

		require.Len(t, alerts, 1)
		assert.Equal(t, "Overdue Quarterly Report", alerts[0].Type)
		assert.Equal(t, SeverityHigh, alerts[0].Severity)
		assert.Equal(t, "05/01/2024", alerts[0].LastReportDate)
		assert.Equal(t, 46, alerts[0].DaysOverdue)
	})

	t.Run("recent report suppresses the alert", func(t *testing.T) {
		today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
		s := reportingStatus(today)
		s.LatestQuarterlySubmission = datePtr(2024, 3, 5)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)
		assert.Empty(t, alerts)
	})
}

func TestAnalyzeReportAlertsStageDeadlines(t *testing.T) {
	today := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("stage 1 target passed without a report", func(t *testing.T) {
		s := reportingStatus(today)
		s.Stage1Target = datePtr(2024, 7, 1)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)

		require.Len(t, alerts, 1)
		assert.Equal(t, "Missing Stage 1 Report", alerts[0].Type)
		assert.Equal(t, SeverityHigh, alerts[0].Severity)
		assert.Equal(t, "01/07/2024", alerts[0].TargetDate)
		assert.Equal(t, 45, alerts[0].DaysPastTarget)
	})

	t.Run("submitted stage 1 report clears the target alert", func(t *testing.T) {
		s := reportingStatus(today)
		s.Stage1Target = datePtr(2024, 7, 1)
		s.HasStage1Report = true

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)
		assert.Empty(t, alerts)
	})

	t.Run("incomplete stage 2 report past target", func(t *testing.T) {
		s := reportingStatus(today)
		s.Stage2Target = datePtr(2024, 8, 10)
		s.HasStage2Report = true
		s.Stage2Complete = false

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)

		require.Len(t, alerts, 1)
		assert.Equal(t, "Stage 2 Report Incomplete", alerts[0].Type)
		assert.Equal(t, SeverityMedium, alerts[0].Severity)
	})

	t.Run("stage 2 not submitted past target", func(t *testing.T) {
		s := reportingStatus(today)
		s.Stage2Target = datePtr(2024, 8, 10)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)

		require.Len(t, alerts, 1)
		assert.Equal(t, "Stage 2 Report Not Submitted", alerts[0].Type)
	})

	t.Run("sunset passed yesterday is exactly one critical alert", func(t *testing.T) {
		s := reportingStatus(today)
		s.Stage1Sunset = datePtr(2024, 8, 14)

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)

		require.Len(t, alerts, 1)
		assert.Equal(t, "Stage 1 Sunset Date Passed", alerts[0].Type)
		assert.Equal(t, SeverityCritical, alerts[0].Severity)
		assert.Equal(t, 1, alerts[0].DaysPastSunset)
	})

	t.Run("accepted stage 1 report clears the sunset alert", func(t *testing.T) {
		s := reportingStatus(today)
		s.Stage1Sunset = datePtr(2024, 8, 1)
		s.HasStage1Report = true
		s.Stage1Accepted = true

		alerts := AnalyzeReportAlerts([]ProjectReportStatus{s}, today)
		assert.Empty(t, alerts)
	})
}

func TestAnalyzeReportAlertsSeveritySort(t *testing.T) {
	today := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)

	medium := reportingStatus(today)
	medium.ProjectID = 2
	medium.Stage2Target = datePtr(2024, 8, 10)

	critical := reportingStatus(today)
	critical.ProjectID = 3
	critical.Stage2Sunset = datePtr(2024, 8, 1)

	high := reportingStatus(today)
	high.ProjectID = 4
	high.Stage1Target = datePtr(2024, 7, 1)

	alerts := AnalyzeReportAlerts([]ProjectReportStatus{medium, critical, high}, today)

	require.Len(t, alerts, 3)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Equal(t, SeverityHigh, alerts[1].Severity)
	assert.Equal(t, SeverityMedium, alerts[2].Severity)
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityRank(SeverityCritical), SeverityRank(SeverityHigh))
	assert.Less(t, SeverityRank(SeverityHigh), SeverityRank(SeverityMedium))
	assert.Less(t, SeverityRank(SeverityMedium), SeverityRank("anything else"))
}
