package handlers

import (
	"database/sql"
	"math"
	"strconv"
	"time"

	"portal/models"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SaveActivityLog appends one audit row. Failures are returned to the
// caller, which normally just logs them; auditing never blocks the action
// it describes.
func SaveActivityLog(db *sql.DB, entry models.ActivityLog) error {
	query := `
    INSERT INTO activity_log (
        created_at, user_name, user_email, ip_address,
        event_context, event_name, description, project_id
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db.Exec(query,
		entry.CreatedAt, entry.UserName, entry.UserEmail, entry.IPAddress,
		entry.EventContext, entry.EventName, entry.Description, entry.ProjectID,
	)
	return err
}

// RecordActivity builds and saves an audit row for the current request
func RecordActivity(db *sql.DB, c *gin.Context, user *models.User, context, event, description string, projectID *uint) error {
	return SaveActivityLog(db, models.ActivityLog{
		CreatedAt:    time.Now(),
		UserName:     user.FullName(),
		UserEmail:    user.Email,
		IPAddress:    c.ClientIP(),
		EventContext: context,
		EventName:    event,
		Description:  description,
		ProjectID:    projectID,
	})
}

// GetActivityLogsHandler godoc
// @Summary      List audit log entries
// @Description  Paginated audit trail of logins, password changes and workflow actions. Department staff only.
// @Tags         activity-logs
// @Produce      json
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Page size"
// @Param        event  query  string  false  "Filter by event context"
// @Success      200    {object}  object
// @Failure      403    {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/activity_logs [get]
func GetActivityLogsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "25"))
		if err != nil || limit < 1 || limit > 500 {
			limit = 25
		}

		query := gdb.Model(&models.ActivityLog{})
		if event := c.Query("event"); event != "" {
			query = query.Where("event_context = ?", event)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			utils.ErrorResponse(c, "Failed to count activity logs", 500)
			return
		}

		var logs []models.ActivityLog
		err = query.
			Order("created_at DESC, id DESC").
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&logs).Error
		if err != nil {
			utils.ErrorResponse(c, "Failed to load activity logs", 500)
			return
		}

		totalPages := int(math.Ceil(float64(total) / float64(limit)))
		c.JSON(200, gin.H{
			"logs":          logs,
			"total_records": total,
			"total_pages":   totalPages,
			"current_page":  page,
			"has_next":      page < totalPages,
			"has_prev":      page > 1,
		})
	}
}
