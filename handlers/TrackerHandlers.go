package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portal/models"
	"portal/repository"
	"portal/services"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// monthlyDeadlineDay is the day of the month council reports are due by
const monthlyDeadlineDay = 8

func deadlineMessage(now time.Time) string {
	if now.Day() <= monthlyDeadlineDay {
		return fmt.Sprintf("Monthly reports for %s are due by the %dth of this month",
			models.MonthLabel(models.MonthStart(now).AddDate(0, -1, 0)), monthlyDeadlineDay)
	}
	return ""
}

// GetMonthlyTrackerTableHandler renders the enhanced monthly tracker table
// for every work visible to the caller. Cells are created lazily, so
// rendering the table for a newly commenced project seeds its tracker rows.
// @Summary Get monthly tracker table
// @Tags Tracker
// @Produce json
// @Success 200 {object} models.TrackerTableResponse
// @Failure 401 {object} utils.Response
// @Router /api/tracker/monthly [get]
func GetMonthlyTrackerTableHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		now := time.Now()

		var items []models.MonthlyTrackerItem
		if err := gdb.Where("is_active = ?", true).Order("display_order").Find(&items).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load tracker items", http.StatusInternalServerError)
			return
		}

		columns := make([]models.TrackerColumn, 0, len(items))
		for _, item := range items {
			columns = append(columns, models.TrackerColumn{
				ItemID:       item.ID,
				Name:         item.Name,
				DataType:     item.DataType,
				Required:     item.Required,
				NAAcceptable: item.NAAcceptable,
				Options:      item.Options(),
			})
		}

		query, err := repository.ScopeWorksToUser(gdb, gdb.Model(&models.Work{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}
		var works []models.Work
		if err := query.Preload("Address").Preload("Address.Project").Find(&works).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load works", http.StatusInternalServerError)
			return
		}

		configs := map[uint]*models.ProjectReportConfiguration{}
		activeEntryIDs := map[uint]bool{}
		rows := make([]models.TrackerRow, 0, len(works))
		for i := range works {
			work := &works[i]
			project := &work.Address.Project

			config, found := configs[project.ID]
			if !found {
				config, _ = repository.LoadReportConfiguration(gdb, project.ID)
				configs[project.ID] = config
			}

			row := models.TrackerRow{
				WorkID:      work.ID,
				AddressID:   work.AddressID,
				Address:     work.Address.FullAddress(),
				ProjectID:   project.ID,
				ProjectName: project.Name,
				Cells:       make(map[string]models.TrackerCell, len(items)),
			}
			for j := range items {
				cell := repository.ResolveMonthlyCell(gdb, config, work, project, &items[j], now)
				if cell.EntryID != 0 {
					activeEntryIDs[cell.EntryID] = true
				}
				row.Cells[strconv.FormatUint(uint64(items[j].ID), 10)] = cell
			}
			rows = append(rows, row)
		}

		// Entries no longer reachable from any rendered work are archived,
		// never deleted, so the audit trail survives work removal
		if council, scoped := repository.ResolveUserCouncil(gdb, user.ID); scoped {
			if _, err := repository.ArchiveOrphanedMonthlyEntries(gdb, council.ID, activeEntryIDs); err != nil {
				utils.ErrorResponse(c, "Failed to archive orphaned entries", http.StatusInternalServerError)
				return
			}
		}

		c.JSON(http.StatusOK, models.TrackerTableResponse{
			Columns:         columns,
			Rows:            rows,
			Period:          models.MonthLabel(models.MonthStart(now)),
			DeadlineMessage: deadlineMessage(now),
		})
	}
}

type entryUpdate struct {
	value     *string
	trackerID uint
	itemID    uint
}

// parseBulkForm groups form fields of shape form-<entry_id>-<field> by entry
// token. The token "new" (or any non-numeric token) carries tracker_id and
// item_id fields so a fresh entry can be created.
func parseBulkForm(form map[string][]string) map[string]*entryUpdate {
	updates := map[string]*entryUpdate{}
	for key, values := range form {
		if !strings.HasPrefix(key, "form-") || len(values) == 0 {
			continue
		}
		rest := strings.TrimPrefix(key, "form-")
		sep := strings.LastIndex(rest, "-")
		if sep <= 0 {
			continue
		}
		token, field := rest[:sep], rest[sep+1:]

		update, found := updates[token]
		if !found {
			update = &entryUpdate{}
			updates[token] = update
		}
		switch field {
		case "value":
			v := values[0]
			update.value = &v
		case "tracker_id":
			if id, err := strconv.ParseUint(values[0], 10, 32); err == nil {
				update.trackerID = uint(id)
			}
		case "item_id":
			if id, err := strconv.ParseUint(values[0], 10, 32); err == nil {
				update.itemID = uint(id)
			}
		}
	}
	return updates
}

// applyBulkMonthlyUpdates saves each parsed cell edit in its own
// transaction. A failed entry is reported and skipped without touching the
// others. Every tracker that received a save gets its submission date
// stamped, a last-touched signal only.
func applyBulkMonthlyUpdates(gdb *gorm.DB, updates map[string]*entryUpdate, now time.Time) models.BulkSaveResponse {
	resp := models.BulkSaveResponse{}
	touchedTrackers := map[uint]bool{}

	for token, update := range updates {
		if update.value == nil {
			continue
		}

		err := gdb.Transaction(func(tx *gorm.DB) error {
			var entry models.MonthlyTrackerEntry
			if entryID, parseErr := strconv.ParseUint(token, 10, 32); parseErr == nil {
				if err := tx.First(&entry, uint(entryID)).Error; err != nil {
					return fmt.Errorf("entry %s not found", token)
				}
			} else {
				if update.trackerID == 0 || update.itemID == 0 {
					return fmt.Errorf("new entry %s missing tracker_id or item_id", token)
				}
				entry = models.MonthlyTrackerEntry{
					MonthlyTrackerID: update.trackerID,
					TrackerItemID:    update.itemID,
					WorkflowStatus:   models.WorkflowDraft,
				}
			}
			entry.Value = update.value
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
			touchedTrackers[entry.MonthlyTrackerID] = true
			return nil
		})
		if err != nil {
			resp.ErrorCount++
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		resp.SuccessCount++
	}

	// Any saved cell counts as a submission for the parent record
	for trackerID := range touchedTrackers {
		if err := gdb.Model(&models.MonthlyTracker{}).Where("id = ?", trackerID).
			Update("submission_date", now).Error; err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("tracker %d: failed to stamp submission date", trackerID))
		}
	}
	return resp
}

// BulkSaveMonthlyEntriesHandler saves a page worth of tracker cell edits.
// Each entry commits independently so one bad cell never rolls back the
// rest of the submission.
// @Summary Bulk save monthly tracker entries
// @Tags Tracker
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} models.BulkSaveResponse
// @Failure 401 {object} utils.Response
// @Router /api/tracker/monthly/bulk-save [post]
func BulkSaveMonthlyEntriesHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			utils.ErrorResponse(c, "Invalid form data", http.StatusBadRequest)
			return
		}

		now := time.Now()
		resp := applyBulkMonthlyUpdates(gdb, parseBulkForm(c.Request.PostForm), now)
		resp.Message = fmt.Sprintf("Saved %d entries, %d failed", resp.SuccessCount, resp.ErrorCount)
		if msg := deadlineMessage(now); msg != "" {
			resp.Message += ". " + msg
		}
		c.JSON(http.StatusOK, resp)
	}
}

func workflowErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrEntryNotFound):
		utils.ErrorResponse(c, "Entry not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotPermitted):
		utils.ErrorResponse(c, "You are not permitted to perform this action", http.StatusForbidden)
	default:
		utils.ErrorResponse(c, "Workflow action failed", http.StatusInternalServerError)
	}
}

// MonthlyEntryWorkflowHandler applies a workflow action to one entry
// @Summary Apply workflow action to monthly entry
// @Tags Tracker
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param request body models.WorkflowActionRequest true "Action"
// @Success 200 {object} services.WorkflowResult
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/tracker/monthly/entries/{id}/workflow [post]
func MonthlyEntryWorkflowHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		entryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, "Invalid entry id", http.StatusBadRequest)
			return
		}
		var req models.WorkflowActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		result, err := services.ApplyMonthlyEntryAction(gdb, uint(entryID), req.Action, req.Comments, user.ID, time.Now())
		if err != nil {
			workflowErrorResponse(c, err)
			return
		}
		if err := RecordActivity(db, c, user, "Monthly Tracker", req.Action,
			fmt.Sprintf("Entry %d moved from %s to %s", result.EntryID, result.OldStatus, result.NewStatus), nil); err != nil {
			log.Printf("monthly workflow: audit log: %v", err)
		}
		c.JSON(http.StatusOK, result)
	}
}
