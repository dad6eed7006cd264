package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"portal/models"
	"portal/repository"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func projectIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("project_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, "Invalid project id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

// stageStepView pairs a configured step with its completion state
type stageStepView struct {
	Step       interface{} `json:"step"`
	Applicable bool        `json:"applicable"`
	Completed  bool        `json:"completed"`
	Completion interface{} `json:"completion,omitempty"`
}

// GetStage1ReportHandler returns a project's stage 1 report with its step
// checklist. Steps not enabled for the project render as not applicable.
// @Summary Get stage 1 report
// @Tags Stage Reports
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.Response
// @Router /api/projects/{project_id}/stage1-report [get]
func GetStage1ReportHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}

		var report models.Stage1Report
		err := gdb.Where("project_id = ?", projectID).Order("id").First(&report).Error
		hasReport := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, "Failed to load report", http.StatusInternalServerError)
			return
		}

		config, _ := repository.LoadReportConfiguration(gdb, projectID)

		var steps []models.Stage1Step
		if err := gdb.Where("is_active = ?", true).Order("display_order").Find(&steps).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load steps", http.StatusInternalServerError)
			return
		}

		completions := map[uint]models.Stage1StepCompletion{}
		if hasReport {
			var rows []models.Stage1StepCompletion
			if err := gdb.Where("stage1_report_id = ?", report.ID).Find(&rows).Error; err != nil {
				utils.ErrorResponse(c, "Failed to load step completions", http.StatusInternalServerError)
				return
			}
			for _, row := range rows {
				completions[row.StepID] = row
			}
		}

		views := make([]stageStepView, 0, len(steps))
		for _, step := range steps {
			view := stageStepView{
				Step:       step,
				Applicable: repository.Stage1StepApplicable(config, step.ID),
			}
			if completion, found := completions[step.ID]; found {
				view.Completed = completion.Completed
				view.Completion = completion
			}
			views = append(views, view)
		}

		resp := gin.H{"steps": views, "has_report": hasReport}
		if hasReport {
			resp["report"] = report
			resp["complete"] = report.IsComplete()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UpsertStage1ReportHandler creates or updates a project's stage 1 report.
// State acceptance is stripped from council input; only RICD staff can set it.
// @Summary Create or update stage 1 report
// @Tags Stage Reports
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.Stage1Report
// @Failure 401 {object} utils.Response
// @Router /api/projects/{project_id}/stage1-report [put]
func UpsertStage1ReportHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}

		var input models.Stage1Report
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if input.ReportType != models.ReportTypeConstruction && input.ReportType != models.ReportTypeLand {
			utils.ErrorResponse(c, "report_type must be construction or land", http.StatusBadRequest)
			return
		}

		var report models.Stage1Report
		err := gdb.Where("project_id = ?", projectID).Order("id").First(&report).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			report = models.Stage1Report{ProjectID: projectID, SubmissionDate: time.Now()}
		} else if err != nil {
			utils.ErrorResponse(c, "Failed to load report", http.StatusInternalServerError)
			return
		}

		accepted, acceptanceDate := report.StateAccepted, report.AcceptanceDate
		input.ID = report.ID
		input.ProjectID = projectID
		input.SubmissionDate = report.SubmissionDate
		report = input

		// Acceptance is a state decision, not a council submission field
		report.StateAccepted = accepted
		report.AcceptanceDate = acceptanceDate
		if input.StateAccepted && !accepted {
			if !repository.IsRICDOfficer(gdb, user.ID) {
				utils.ErrorResponse(c, "Only RICD staff may accept a stage 1 report", http.StatusForbidden)
				return
			}
			now := time.Now()
			report.StateAccepted = true
			report.AcceptanceDate = &now
		}

		if err := gdb.Save(&report).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save report", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// GetStage2ReportHandler returns a project's stage 2 report with its step
// checklist
// @Summary Get stage 2 report
// @Tags Stage Reports
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.Response
// @Router /api/projects/{project_id}/stage2-report [get]
func GetStage2ReportHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}

		var report models.Stage2Report
		err := gdb.Where("project_id = ?", projectID).Order("id").First(&report).Error
		hasReport := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, "Failed to load report", http.StatusInternalServerError)
			return
		}

		config, _ := repository.LoadReportConfiguration(gdb, projectID)

		var steps []models.Stage2Step
		if err := gdb.Where("is_active = ?", true).Order("display_order").Find(&steps).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load steps", http.StatusInternalServerError)
			return
		}

		completions := map[uint]models.Stage2StepCompletion{}
		if hasReport {
			var rows []models.Stage2StepCompletion
			if err := gdb.Where("stage2_report_id = ?", report.ID).Find(&rows).Error; err != nil {
				utils.ErrorResponse(c, "Failed to load step completions", http.StatusInternalServerError)
				return
			}
			for _, row := range rows {
				completions[row.StepID] = row
			}
		}

		views := make([]stageStepView, 0, len(steps))
		for _, step := range steps {
			view := stageStepView{
				Step:       step,
				Applicable: repository.Stage2StepApplicable(config, step.ID),
			}
			if completion, found := completions[step.ID]; found {
				view.Completed = completion.Completed
				view.Completion = completion
			}
			views = append(views, view)
		}

		resp := gin.H{"steps": views, "has_report": hasReport}
		if hasReport {
			resp["report"] = report
			resp["complete"] = report.IsComplete()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UpsertStage2ReportHandler creates or updates a project's stage 2 report
// @Summary Create or update stage 2 report
// @Tags Stage Reports
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.Stage2Report
// @Failure 401 {object} utils.Response
// @Router /api/projects/{project_id}/stage2-report [put]
func UpsertStage2ReportHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}

		var input models.Stage2Report
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if input.ReportType != models.ReportTypeConstruction && input.ReportType != models.ReportTypeLand {
			utils.ErrorResponse(c, "report_type must be construction or land", http.StatusBadRequest)
			return
		}

		var report models.Stage2Report
		err := gdb.Where("project_id = ?", projectID).Order("id").First(&report).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			report = models.Stage2Report{ProjectID: projectID, SubmissionDate: time.Now()}
		} else if err != nil {
			utils.ErrorResponse(c, "Failed to load report", http.StatusInternalServerError)
			return
		}

		input.ID = report.ID
		input.ProjectID = projectID
		input.SubmissionDate = report.SubmissionDate
		report = input

		if err := gdb.Save(&report).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save report", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

type stepCompletionRequest struct {
	StepID        uint       `json:"step_id" binding:"required"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completed_date"`
	EvidenceNotes string     `json:"evidence_notes"`
}

// SetStage1StepCompletionHandler records completion of one stage 1 step.
// The completed flag and date must agree; the model validates on save.
// @Summary Set stage 1 step completion
// @Tags Stage Reports
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.Stage1StepCompletion
// @Failure 400 {object} utils.Response
// @Router /api/projects/{project_id}/stage1-report/steps [post]
func SetStage1StepCompletionHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}
		var req stepCompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		var report models.Stage1Report
		if err := gdb.Where("project_id = ?", projectID).Order("id").First(&report).Error; err != nil {
			utils.ErrorResponse(c, "No stage 1 report for project", http.StatusNotFound)
			return
		}

		var completion models.Stage1StepCompletion
		err := gdb.Where("stage1_report_id = ? AND step_id = ?", report.ID, req.StepID).First(&completion).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			completion = models.Stage1StepCompletion{Stage1ReportID: report.ID, StepID: req.StepID}
		} else if err != nil {
			utils.ErrorResponse(c, "Failed to load step completion", http.StatusInternalServerError)
			return
		}

		completion.Completed = req.Completed
		completion.CompletedDate = req.CompletedDate
		completion.EvidenceNotes = req.EvidenceNotes
		if err := gdb.Save(&completion).Error; err != nil {
			if errors.Is(err, models.ErrStepCompletionDate) || errors.Is(err, models.ErrStepCompletedFlag) {
				utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
				return
			}
			utils.ErrorResponse(c, "Failed to save step completion", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, completion)
	}
}

// SetStage2StepCompletionHandler records completion of one stage 2 step
// @Summary Set stage 2 step completion
// @Tags Stage Reports
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.Stage2StepCompletion
// @Failure 400 {object} utils.Response
// @Router /api/projects/{project_id}/stage2-report/steps [post]
func SetStage2StepCompletionHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}
		var req stepCompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		var report models.Stage2Report
		if err := gdb.Where("project_id = ?", projectID).Order("id").First(&report).Error; err != nil {
			utils.ErrorResponse(c, "No stage 2 report for project", http.StatusNotFound)
			return
		}

		var completion models.Stage2StepCompletion
		err := gdb.Where("stage2_report_id = ? AND step_id = ?", report.ID, req.StepID).First(&completion).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			completion = models.Stage2StepCompletion{Stage2ReportID: report.ID, StepID: req.StepID}
		} else if err != nil {
			utils.ErrorResponse(c, "Failed to load step completion", http.StatusInternalServerError)
			return
		}

		completion.Completed = req.Completed
		completion.CompletedDate = req.CompletedDate
		completion.EvidenceNotes = req.EvidenceNotes
		if err := gdb.Save(&completion).Error; err != nil {
			if errors.Is(err, models.ErrStepCompletionDate) || errors.Is(err, models.ErrStepCompletedFlag) {
				utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
				return
			}
			utils.ErrorResponse(c, "Failed to save step completion", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, completion)
	}
}
