package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"portal/models"
	"portal/repository"
	"portal/services"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func visibleProjectIDs(gdb *gorm.DB, userID uint) ([]uint, []models.Project, error) {
	query, err := repository.ScopeProjectsToUser(gdb, gdb.Model(&models.Project{}), userID)
	if err != nil {
		return nil, nil, err
	}
	var projects []models.Project
	if err := query.Preload("Council").Find(&projects).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]uint, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids, projects, nil
}

// GetDashboardHandler returns the portal dashboard: project state counts,
// output summaries, budget anomaly alerts, forecasts and report alerts,
// all scoped to the caller's council unless the caller is RICD.
// @Summary Get dashboard
// @Tags Analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.Response
// @Router /api/dashboard [get]
func GetDashboardHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		now := time.Now()

		projectIDs, projects, err := visibleProjectIDs(gdb, user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}

		stateCounts := map[string]int{}
		for _, p := range projects {
			stateCounts[p.State]++
		}
		states := make([]models.ProjectStateCount, 0, len(stateCounts))
		for _, state := range []string{
			models.ProjectStateProspective,
			models.ProjectStateProgrammed,
			models.ProjectStateFunded,
			models.ProjectStateCommenced,
			models.ProjectStateUnderConstruction,
			models.ProjectStateCompleted,
		} {
			if count, found := stateCounts[state]; found {
				states = append(states, models.ProjectStateCount{State: state, Count: count})
			}
		}

		outputs, err := collectOutputSummaries(gdb, projectIDs)
		if err != nil {
			utils.ErrorResponse(c, "Failed to aggregate outputs", http.StatusInternalServerError)
			return
		}

		groups, councils, err := services.CollectQuarterlySpending(gdb, projectIDs, now)
		if err != nil {
			utils.ErrorResponse(c, "Failed to collect spending data", http.StatusInternalServerError)
			return
		}
		budget := services.AnalyzeBudget(groups, councils)

		statuses := services.BuildProjectReportStatuses(gdb, projects, now)
		reportAlerts := services.AnalyzeReportAlerts(statuses, now)

		c.JSON(http.StatusOK, gin.H{
			"project_states":   states,
			"output_summaries": outputs,
			"budget_alerts":    budget.Alerts,
			"forecasts":        budget.ForecastSummary,
			"report_alerts":    reportAlerts,
			"generated_at":     now,
		})
	}
}

// collectOutputSummaries aggregates work counts and output quantities by
// output type across the visible projects
func collectOutputSummaries(gdb *gorm.DB, projectIDs []uint) ([]models.OutputSummary, error) {
	if len(projectIDs) == 0 {
		return []models.OutputSummary{}, nil
	}

	var rows []struct {
		Label    string
		Count    int
		Quantity int
	}
	err := gdb.Raw(`
		SELECT COALESCE(ot.name, 'Unknown') AS label,
		       COUNT(w.id) AS count,
		       COALESCE(SUM(w.output_quantity), 0) AS quantity
		FROM work w
		JOIN address a ON a.id = w.address_id
		LEFT JOIN output_type ot ON ot.id = w.output_type_id
		WHERE a.project_id IN ?
		GROUP BY ot.name
		ORDER BY label`, projectIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]models.OutputSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.OutputSummary{
			Label:    row.Label,
			Count:    row.Count,
			Quantity: row.Quantity,
		})
	}
	return summaries, nil
}

// GetBudgetAnalyticsHandler returns budget anomaly alerts and per-council
// forecasts over the trailing six quarters
// @Summary Get budget analytics
// @Tags Analytics
// @Produce json
// @Success 200 {object} services.BudgetAnalytics
// @Failure 401 {object} utils.Response
// @Router /api/analytics/budget [get]
func GetBudgetAnalyticsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		projectIDs, _, err := visibleProjectIDs(gdb, user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}

		groups, councils, err := services.CollectQuarterlySpending(gdb, projectIDs, time.Now())
		if err != nil {
			utils.ErrorResponse(c, "Failed to collect spending data", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, services.AnalyzeBudget(groups, councils))
	}
}

// GetReportAlertsHandler returns the current overdue-report alerts for the
// caller's visible projects
// @Summary Get report alerts
// @Tags Analytics
// @Produce json
// @Success 200 {array} services.ReportAlert
// @Failure 401 {object} utils.Response
// @Router /api/analytics/report-alerts [get]
func GetReportAlertsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		_, projects, err := visibleProjectIDs(gdb, user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}

		now := time.Now()
		statuses := services.BuildProjectReportStatuses(gdb, projects, now)
		c.JSON(http.StatusOK, services.AnalyzeReportAlerts(statuses, now))
	}
}

// RunOverdueScanHandler triggers the overdue-report scan on demand.
// Restricted to RICD staff; the nightly cron runs the same scan.
// @Summary Run overdue report scan
// @Tags Analytics
// @Produce json
// @Success 200 {object} services.OverdueScanResult
// @Failure 403 {object} utils.Response
// @Router /api/analytics/overdue-scan [post]
func RunOverdueScanHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		if !repository.IsRICDOfficer(gdb, user.ID) {
			utils.ErrorResponse(c, "RICD staff only", http.StatusForbidden)
			return
		}

		result, err := services.RunOverdueScan(gdb, time.Now())
		if err != nil {
			utils.ErrorResponse(c, "Overdue scan failed", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
