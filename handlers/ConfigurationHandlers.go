package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"portal/models"
	"portal/repository"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ricdOnly resolves the caller and rejects anyone outside RICD staff.
// Report configuration is a department concern, never a council one.
func ricdOnly(c *gin.Context, db *sql.DB, gdb *gorm.DB) (*models.User, bool) {
	user, ok := authenticatedUser(c, db)
	if !ok {
		return nil, false
	}
	if !repository.IsRICDOfficer(gdb, user.ID) {
		utils.ErrorResponse(c, "RICD staff only", http.StatusForbidden)
		return nil, false
	}
	return user, true
}

// ListMonthlyTrackerItemsHandler lists all monthly tracker items
// @Summary List monthly tracker items
// @Tags Configuration
// @Produce json
// @Success 200 {array} models.MonthlyTrackerItem
// @Router /api/config/monthly-items [get]
func ListMonthlyTrackerItemsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		var items []models.MonthlyTrackerItem
		if err := gdb.Order("display_order").Find(&items).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load items", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// SaveMonthlyTrackerItemHandler creates or updates a monthly tracker item
// @Summary Save monthly tracker item
// @Tags Configuration
// @Accept json
// @Produce json
// @Success 200 {object} models.MonthlyTrackerItem
// @Failure 403 {object} utils.Response
// @Router /api/config/monthly-items [post]
func SaveMonthlyTrackerItemHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		var item models.MonthlyTrackerItem
		if err := c.ShouldBindJSON(&item); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if err := gdb.Save(&item).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save item", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DeactivateMonthlyTrackerItemHandler deactivates an item instead of
// deleting it, so historical entries keep their column definition
// @Summary Deactivate monthly tracker item
// @Tags Configuration
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /api/config/monthly-items/{id} [delete]
func DeactivateMonthlyTrackerItemHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, "Invalid item id", http.StatusBadRequest)
			return
		}
		result := gdb.Model(&models.MonthlyTrackerItem{}).Where("id = ?", uint(id)).Update("is_active", false)
		if result.Error != nil {
			utils.ErrorResponse(c, "Failed to deactivate item", http.StatusInternalServerError)
			return
		}
		if result.RowsAffected == 0 {
			utils.ErrorResponse(c, "Item not found", http.StatusNotFound)
			return
		}
		utils.SuccessResponse(c, "Item deactivated", http.StatusOK)
	}
}

// ListQuarterlyReportItemsHandler lists all quarterly report items
// @Summary List quarterly report items
// @Tags Configuration
// @Produce json
// @Success 200 {array} models.QuarterlyReportItem
// @Router /api/config/quarterly-items [get]
func ListQuarterlyReportItemsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		var items []models.QuarterlyReportItem
		if err := gdb.Order("display_order").Find(&items).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load items", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// SaveQuarterlyReportItemHandler creates or updates a quarterly report item
// @Summary Save quarterly report item
// @Tags Configuration
// @Accept json
// @Produce json
// @Success 200 {object} models.QuarterlyReportItem
// @Failure 403 {object} utils.Response
// @Router /api/config/quarterly-items [post]
func SaveQuarterlyReportItemHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		var item models.QuarterlyReportItem
		if err := c.ShouldBindJSON(&item); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if err := gdb.Save(&item).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save item", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// ListStage1StepsHandler lists all stage 1 steps
// @Summary List stage 1 steps
// @Tags Configuration
// @Produce json
// @Success 200 {array} models.Stage1Step
// @Router /api/config/stage1-steps [get]
func ListStage1StepsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		var steps []models.Stage1Step
		if err := gdb.Order("display_order").Find(&steps).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load steps", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, steps)
	}
}

// SaveStage1StepHandler creates or updates a stage 1 step
// @Summary Save stage 1 step
// @Tags Configuration
// @Accept json
// @Produce json
// @Success 200 {object} models.Stage1Step
// @Failure 403 {object} utils.Response
// @Router /api/config/stage1-steps [post]
func SaveStage1StepHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		var step models.Stage1Step
		if err := c.ShouldBindJSON(&step); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if err := gdb.Save(&step).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save step", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, step)
	}
}

// ListStage2StepsHandler lists all stage 2 steps
// @Summary List stage 2 steps
// @Tags Configuration
// @Produce json
// @Success 200 {array} models.Stage2Step
// @Router /api/config/stage2-steps [get]
func ListStage2StepsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		var steps []models.Stage2Step
		if err := gdb.Order("display_order").Find(&steps).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load steps", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, steps)
	}
}

// SaveStage2StepHandler creates or updates a stage 2 step
// @Summary Save stage 2 step
// @Tags Configuration
// @Accept json
// @Produce json
// @Success 200 {object} models.Stage2Step
// @Failure 403 {object} utils.Response
// @Router /api/config/stage2-steps [post]
func SaveStage2StepHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		var step models.Stage2Step
		if err := c.ShouldBindJSON(&step); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if err := gdb.Save(&step).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save step", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, step)
	}
}

// GetProjectReportConfigurationHandler returns a project's report
// configuration, creating an empty one when none exists
// @Summary Get project report configuration
// @Tags Configuration
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.ProjectReportConfiguration
// @Failure 403 {object} utils.Response
// @Router /api/projects/{project_id}/report-configuration [get]
func GetProjectReportConfigurationHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}

		config, err := repository.LoadReportConfiguration(gdb, projectID)
		if err != nil {
			utils.ErrorResponse(c, "Failed to load configuration", http.StatusInternalServerError)
			return
		}
		if config == nil {
			config = &models.ProjectReportConfiguration{ProjectID: projectID}
			if err := gdb.Create(config).Error; err != nil {
				utils.ErrorResponse(c, "Failed to create configuration", http.StatusInternalServerError)
				return
			}
		}
		c.JSON(http.StatusOK, config)
	}
}

type reportConfigurationRequest struct {
	MonthlyGroupIDs   []uint `json:"monthly_group_ids"`
	QuarterlyGroupIDs []uint `json:"quarterly_group_ids"`
	Stage1GroupIDs    []uint `json:"stage1_group_ids"`
	Stage2GroupIDs    []uint `json:"stage2_group_ids"`
}

// UpdateProjectReportConfigurationHandler replaces the group selections of a
// project's report configuration
// @Summary Update project report configuration
// @Tags Configuration
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.ProjectReportConfiguration
// @Failure 403 {object} utils.Response
// @Router /api/projects/{project_id}/report-configuration [put]
func UpdateProjectReportConfigurationHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		projectID, ok := projectIDParam(c)
		if !ok {
			return
		}
		var req reportConfigurationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		var config models.ProjectReportConfiguration
		err := gdb.Where("project_id = ?", projectID).First(&config).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config = models.ProjectReportConfiguration{ProjectID: projectID}
			if err := gdb.Create(&config).Error; err != nil {
				utils.ErrorResponse(c, "Failed to create configuration", http.StatusInternalServerError)
				return
			}
		} else if err != nil {
			utils.ErrorResponse(c, "Failed to load configuration", http.StatusInternalServerError)
			return
		}

		var monthlyGroups []models.MonthlyTrackerItemGroup
		if len(req.MonthlyGroupIDs) > 0 {
			if err := gdb.Find(&monthlyGroups, req.MonthlyGroupIDs).Error; err != nil {
				utils.ErrorResponse(c, "Failed to load monthly groups", http.StatusInternalServerError)
				return
			}
		}
		var quarterlyGroups []models.QuarterlyReportItemGroup
		if len(req.QuarterlyGroupIDs) > 0 {
			if err := gdb.Find(&quarterlyGroups, req.QuarterlyGroupIDs).Error; err != nil {
				utils.ErrorResponse(c, "Failed to load quarterly groups", http.StatusInternalServerError)
				return
			}
		}
		var stage1Groups []models.Stage1StepGroup
		if len(req.Stage1GroupIDs) > 0 {
			if err := gdb.Find(&stage1Groups, req.Stage1GroupIDs).Error; err != nil {
				utils.ErrorResponse(c, "Failed to load stage 1 groups", http.StatusInternalServerError)
				return
			}
		}
		var stage2Groups []models.Stage2StepGroup
		if len(req.Stage2GroupIDs) > 0 {
			if err := gdb.Find(&stage2Groups, req.Stage2GroupIDs).Error; err != nil {
				utils.ErrorResponse(c, "Failed to load stage 2 groups", http.StatusInternalServerError)
				return
			}
		}

		if err := gdb.Model(&config).Association("MonthlyTrackerGroups").Replace(monthlyGroups); err != nil {
			utils.ErrorResponse(c, "Failed to update monthly groups", http.StatusInternalServerError)
			return
		}
		if err := gdb.Model(&config).Association("QuarterlyReportGroups").Replace(quarterlyGroups); err != nil {
			utils.ErrorResponse(c, "Failed to update quarterly groups", http.StatusInternalServerError)
			return
		}
		if err := gdb.Model(&config).Association("Stage1StepGroups").Replace(stage1Groups); err != nil {
			utils.ErrorResponse(c, "Failed to update stage 1 groups", http.StatusInternalServerError)
			return
		}
		if err := gdb.Model(&config).Association("Stage2StepGroups").Replace(stage2Groups); err != nil {
			utils.ErrorResponse(c, "Failed to update stage 2 groups", http.StatusInternalServerError)
			return
		}

		updated, err := repository.LoadReportConfiguration(gdb, projectID)
		if err != nil {
			utils.ErrorResponse(c, "Failed to reload configuration", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// GetSiteConfigurationHandler returns the site configuration singleton,
// creating it with defaults on first access
// @Summary Get site configuration
// @Tags Configuration
// @Produce json
// @Success 200 {object} models.SiteConfiguration
// @Router /api/config/site [get]
func GetSiteConfigurationHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		config, err := models.GetSiteConfiguration(gdb)
		if err != nil {
			utils.ErrorResponse(c, "Failed to load site configuration", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, config)
	}
}

// UpdateSiteConfigurationHandler updates the site configuration singleton
// @Summary Update site configuration
// @Tags Configuration
// @Accept json
// @Produce json
// @Success 200 {object} models.SiteConfiguration
// @Failure 403 {object} utils.Response
// @Router /api/config/site [put]
func UpdateSiteConfigurationHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}

		config, err := models.GetSiteConfiguration(gdb)
		if err != nil {
			utils.ErrorResponse(c, "Failed to load site configuration", http.StatusInternalServerError)
			return
		}

		var input models.SiteConfiguration
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		input.ID = config.ID
		if err := input.Validate(); err != nil {
			utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
			return
		}

		if err := gdb.Save(&input).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save site configuration", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, input)
	}
}
