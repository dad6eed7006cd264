package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"portal/models"
	"portal/repository"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListNotificationsHandler lists overdue-report notifications, newest first.
// Council users see only their own council's notifications.
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Param severity query string false "Filter by severity"
// @Param limit query int false "Maximum rows, default 100"
// @Success 200 {array} models.NotificationResponse
// @Failure 401 {object} utils.Response
// @Router /api/notifications [get]
func ListNotificationsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		query := gdb.Model(&models.Notification{})
		if !repository.IsRICDOfficer(gdb, user.ID) {
			council, scoped := repository.ResolveUserCouncil(gdb, user.ID)
			if !scoped {
				utils.ErrorResponse(c, "No council access", http.StatusForbidden)
				return
			}
			query = query.Where("council_id = ?", council.ID)
		}
		if severity := c.Query("severity"); severity != "" {
			query = query.Where("severity = ?", severity)
		}

		limit := 100
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
				limit = parsed
			}
		}

		var notifications []models.Notification
		if err := query.Order("alert_date DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load notifications", http.StatusInternalServerError)
			return
		}

		resp := make([]models.NotificationResponse, 0, len(notifications))
		for _, n := range notifications {
			resp = append(resp, models.NotificationResponse{
				ID:        n.ID,
				ProjectID: n.ProjectID,
				CouncilID: n.CouncilID,
				AlertType: n.AlertType,
				Severity:  n.Severity,
				Message:   n.Message,
				AlertDate: n.AlertDate,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}
