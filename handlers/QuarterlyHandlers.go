package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"portal/models"
	"portal/repository"
	"portal/services"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetQuarterlyReportTableHandler renders the enhanced quarterly report table
// for every work visible to the caller
// @Summary Get quarterly report table
// @Tags Quarterly
// @Produce json
// @Success 200 {object} models.TrackerTableResponse
// @Failure 401 {object} utils.Response
// @Router /api/reports/quarterly [get]
func GetQuarterlyReportTableHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		now := time.Now()

		var items []models.QuarterlyReportItem
		if err := gdb.Where("is_active = ?", true).Order("display_order").Find(&items).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load report items", http.StatusInternalServerError)
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
				cell := repository.ResolveQuarterlyCell(gdb, config, work, project, &items[j], now)
				if cell.EntryID != 0 {
					activeEntryIDs[cell.EntryID] = true
				}
				row.Cells[strconv.FormatUint(uint64(items[j].ID), 10)] = cell
			}
			rows = append(rows, row)
		}

		if council, scoped := repository.ResolveUserCouncil(gdb, user.ID); scoped {
			if _, err := repository.ArchiveOrphanedQuarterlyEntries(gdb, council.ID, activeEntryIDs); err != nil {
				utils.ErrorResponse(c, "Failed to archive orphaned entries", http.StatusInternalServerError)
				return
			}
		}

		c.JSON(http.StatusOK, models.TrackerTableResponse{
			Columns: columns,
			Rows:    rows,
			Period:  models.QuarterLabel(now),
		})
	}
}

// BulkSaveQuarterlyEntriesHandler saves a page worth of quarterly cell
// edits, each entry in its own transaction
// @Summary Bulk save quarterly report entries
// @Tags Quarterly
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} models.BulkSaveResponse
// @Failure 401 {object} utils.Response
// @Router /api/reports/quarterly/bulk-save [post]
func BulkSaveQuarterlyEntriesHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			utils.ErrorResponse(c, "Invalid form data", http.StatusBadRequest)
			return
		}

		now := time.Now()
		resp := models.BulkSaveResponse{}
		touchedReports := map[uint]bool{}

		for token, update := range parseBulkForm(c.Request.PostForm) {
			if update.value == nil {
				continue
			}

			err := gdb.Transaction(func(tx *gorm.DB) error {
				var entry models.QuarterlyReportItemEntry
				if entryID, parseErr := strconv.ParseUint(token, 10, 32); parseErr == nil {
					if err := tx.First(&entry, uint(entryID)).Error; err != nil {
						return fmt.Errorf("entry %s not found", token)
					}
				} else {
					if update.trackerID == 0 || update.itemID == 0 {
						return fmt.Errorf("new entry %s missing tracker_id or item_id", token)
					}
					entry = models.QuarterlyReportItemEntry{
						QuarterlyReportID: update.trackerID,
						ReportItemID:      update.itemID,
						WorkflowStatus:    models.WorkflowDraft,
					}
				}
				entry.Value = update.value
				if err := tx.Save(&entry).Error; err != nil {
					return err
				}
				touchedReports[entry.QuarterlyReportID] = true
				return nil
			})
			if err != nil {
				resp.ErrorCount++
				resp.Errors = append(resp.Errors, err.Error())
				continue
			}
			resp.SuccessCount++
		}

		for reportID := range touchedReports {
			if err := gdb.Model(&models.QuarterlyReport{}).Where("id = ?", reportID).
				Update("submission_date", now).Error; err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("report %d: failed to stamp submission date", reportID))
			}
		}

		resp.Message = fmt.Sprintf("Saved %d entries, %d failed", resp.SuccessCount, resp.ErrorCount)
		c.JSON(http.StatusOK, resp)
	}
}

// QuarterlyEntryWorkflowHandler applies a workflow action to one entry
// @Summary Apply workflow action to quarterly entry
// @Tags Quarterly
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param request body models.WorkflowActionRequest true "Action"
// @Success 200 {object} services.WorkflowResult
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/reports/quarterly/entries/{id}/workflow [post]
func QuarterlyEntryWorkflowHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
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

		result, err := services.ApplyQuarterlyEntryAction(gdb, uint(entryID), req.Action, req.Comments, user.ID, time.Now())
		if err != nil {
			workflowErrorResponse(c, err)
			return
		}
		if err := RecordActivity(db, c, user, "Quarterly Report", req.Action,
			fmt.Sprintf("Entry %d moved from %s to %s", result.EntryID, result.OldStatus, result.NewStatus), nil); err != nil {
			log.Printf("quarterly workflow: audit log: %v", err)
		}
		c.JSON(http.StatusOK, result)
	}
}

// UpdateQuarterlyReportHandler updates the structured fields of one
// quarterly report record. Council users may edit figures and narrative;
// decision fields are restricted to managers.
// @Summary Update quarterly report
// @Tags Quarterly
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} models.QuarterlyReport
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/reports/quarterly/{id} [put]
func UpdateQuarterlyReportHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		reportID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, "Invalid report id", http.StatusBadRequest)
			return
		}

		var report models.QuarterlyReport
		if err := gdb.First(&report, uint(reportID)).Error; err != nil {
			utils.ErrorResponse(c, "Report not found", http.StatusNotFound)
			return
		}

		var input models.QuarterlyReport
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		report.PercentageWorksCompleted = input.PercentageWorksCompleted
		report.TotalExpenditureCouncil = input.TotalExpenditureCouncil
		report.UnspentFundingAmount = input.UnspentFundingAmount
		report.PracticalCompletionForecastDate = input.PracticalCompletionForecastDate
		report.PracticalCompletionActualDate = input.PracticalCompletionActualDate
		report.AdverseMatters = input.AdverseMatters
		report.CouncilContributionsDetails = input.CouncilContributionsDetails
		report.OtherContributionsDetails = input.OtherContributionsDetails
		report.CouncilContributionsAmount = input.CouncilContributionsAmount
		report.OtherContributionsAmount = input.OtherContributionsAmount
		report.SummaryNotes = input.SummaryNotes

		// Decision columns require the matching role
		if input.CouncilManagerDecision != "" && input.CouncilManagerDecision != models.DecisionPending {
			council, cerr := repository.CouncilForWork(gdb, report.WorkID)
			if cerr != nil || !repository.IsCouncilManagerOf(gdb, user.ID, council.ID) {
				utils.ErrorResponse(c, "Only the council manager may record a decision", http.StatusForbidden)
				return
			}
			now := time.Now()
			report.CouncilManagerDecision = input.CouncilManagerDecision
			report.CouncilManagerComments = input.CouncilManagerComments
			report.CouncilManagerDecisionDate = &now
		}
		if input.ManagerDecision != "" && input.ManagerDecision != models.DecisionPending {
			if !repository.IsRICDManager(gdb, user.ID) {
				utils.ErrorResponse(c, "Only a RICD manager may record a decision", http.StatusForbidden)
				return
			}
			now := time.Now()
			report.ManagerDecision = input.ManagerDecision
			report.ManagerComments = input.ManagerComments
			report.ManagerDecisionDate = &now
		}
		if input.StaffAssessmentNotes != "" {
			if !repository.IsRICDOfficer(gdb, user.ID) {
				utils.ErrorResponse(c, "Only RICD staff may record an assessment", http.StatusForbidden)
				return
			}
			report.StaffAssessmentNotes = input.StaffAssessmentNotes
		}

		if err := gdb.Save(&report).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save report", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
