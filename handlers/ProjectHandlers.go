package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"portal/models"
	"portal/repository"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListProjectsHandler lists projects visible to the caller, optionally
// filtered by state
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param state query string false "Filter by project state"
// @Success 200 {array} models.Project
// @Failure 401 {object} utils.Response
// @Router /api/projects [get]
func ListProjectsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		query, err := repository.ScopeProjectsToUser(gdb, gdb.Model(&models.Project{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}

		if state := c.Query("state"); state != "" {
			if !models.ValidProjectStates[state] {
				utils.ErrorResponse(c, "Invalid project state", http.StatusBadRequest)
				return
			}
			query = query.Where("state = ?", state)
		}

		var projects []models.Project
		if err := query.Preload("Council").Preload("Program").Order("name").Find(&projects).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load projects", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

// GetProjectHandler returns one project with its addresses and works
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} utils.Response
// @Router /api/projects/{project_id} [get]
func GetProjectHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		id, ok := projectIDParam(c)
		if !ok {
			return
		}

		query, err := repository.ScopeProjectsToUser(gdb, gdb.Model(&models.Project{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}

		var project models.Project
		err = query.
			Preload("Council").
			Preload("Program").
			Preload("FundingSchedule").
			Preload("Addresses").
			Preload("Addresses.Works").
			Preload("Addresses.Works.WorkType").
			Preload("Addresses.Works.OutputType").
			Where("project.id = ?", id).
			First(&project).Error
		if err != nil {
			utils.ErrorResponse(c, "Project not found", http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// CreateProjectHandler creates a project. RICD staff only; councils report
// against projects, they do not create them.
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Success 201 {object} models.Project
// @Failure 403 {object} utils.Response
// @Router /api/projects [post]
func CreateProjectHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}

		var project models.Project
		if err := c.ShouldBindJSON(&project); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if project.CouncilID == 0 || project.Name == "" {
			utils.ErrorResponse(c, "council_id and name are required", http.StatusBadRequest)
			return
		}
		if project.State == "" {
			project.State = models.ProjectStateProspective
		}

		if err := gdb.Create(&project).Error; err != nil {
			if errors.Is(err, models.ErrInvalidProjectState) {
				utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
				return
			}
			utils.ErrorResponse(c, "Failed to create project", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

// UpdateProjectHandler updates a project's details and state
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/projects/{project_id} [put]
func UpdateProjectHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}
		id, ok := projectIDParam(c)
		if !ok {
			return
		}

		var project models.Project
		if err := gdb.First(&project, id).Error; err != nil {
			utils.ErrorResponse(c, "Project not found", http.StatusNotFound)
			return
		}

		var input models.Project
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		input.ID = project.ID
		input.CreatedAt = project.CreatedAt

		if err := gdb.Save(&input).Error; err != nil {
			if errors.Is(err, models.ErrInvalidProjectState) {
				utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
				return
			}
			utils.ErrorResponse(c, "Failed to update project", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, input)
	}
}
