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

// ListWorksHandler lists works visible to the caller
// @Summary List works
// @Tags Works
// @Produce json
// @Param project_id query int false "Filter by project"
// @Success 200 {array} models.Work
// @Failure 401 {object} utils.Response
// @Router /api/works [get]
func ListWorksHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		query, err := repository.ScopeWorksToUser(gdb, gdb.Model(&models.Work{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}
		if projectID := c.Query("project_id"); projectID != "" {
			id, perr := strconv.ParseUint(projectID, 10, 32)
			if perr != nil {
				utils.ErrorResponse(c, "Invalid project id", http.StatusBadRequest)
				return
			}
			query = query.Where("address.project_id = ?", uint(id))
		}

		var works []models.Work
		err = query.
			Preload("Address").
			Preload("WorkType").
			Preload("OutputType").
			Find(&works).Error
		if err != nil {
			utils.ErrorResponse(c, "Failed to load works", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, works)
	}
}

// CreateAddressHandler adds an address to a project
// @Summary Create address
// @Tags Works
// @Accept json
// @Produce json
// @Success 201 {object} models.Address
// @Failure 403 {object} utils.Response
// @Router /api/addresses [post]
func CreateAddressHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var address models.Address
		if err := c.ShouldBindJSON(&address); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if address.ProjectID == 0 || address.Street == "" {
			utils.ErrorResponse(c, "project_id and street are required", http.StatusBadRequest)
			return
		}

		// The target project must be visible to the caller
		query, err := repository.ScopeProjectsToUser(gdb, gdb.Model(&models.Project{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}
		var count int64
		if err := query.Where("project.id = ?", address.ProjectID).Count(&count).Error; err != nil || count == 0 {
			utils.ErrorResponse(c, "Project not found", http.StatusNotFound)
			return
		}

		if err := gdb.Create(&address).Error; err != nil {
			utils.ErrorResponse(c, "Failed to create address", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, address)
	}
}

// CreateWorkHandler adds a work to an address
// @Summary Create work
// @Tags Works
// @Accept json
// @Produce json
// @Success 201 {object} models.Work
// @Failure 403 {object} utils.Response
// @Router /api/works [post]
func CreateWorkHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var work models.Work
		if err := c.ShouldBindJSON(&work); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if work.AddressID == 0 {
			utils.ErrorResponse(c, "address_id is required", http.StatusBadRequest)
			return
		}

		var address models.Address
		if err := gdb.First(&address, work.AddressID).Error; err != nil {
			utils.ErrorResponse(c, "Address not found", http.StatusNotFound)
			return
		}
		query, err := repository.ScopeProjectsToUser(gdb, gdb.Model(&models.Project{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}
		var count int64
		if err := query.Where("project.id = ?", address.ProjectID).Count(&count).Error; err != nil || count == 0 {
			utils.ErrorResponse(c, "Project not found", http.StatusNotFound)
			return
		}

		if work.OutputQuantity == 0 {
			work.OutputQuantity = 1
		}
		if err := gdb.Create(&work).Error; err != nil {
			utils.ErrorResponse(c, "Failed to create work", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, work)
	}
}

// UpdateWorkHandler updates a work's details
// @Summary Update work
// @Tags Works
// @Accept json
// @Produce json
// @Param id path int true "Work ID"
// @Success 200 {object} models.Work
// @Failure 404 {object} utils.Response
// @Router /api/works/{id} [put]
func UpdateWorkHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, "Invalid work id", http.StatusBadRequest)
			return
		}

		query, err := repository.ScopeWorksToUser(gdb, gdb.Model(&models.Work{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}
		var work models.Work
		if err := query.Where("work.id = ?", uint(id)).First(&work).Error; err != nil {
			utils.ErrorResponse(c, "Work not found", http.StatusNotFound)
			return
		}

		var input models.Work
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		input.ID = work.ID
		input.AddressID = work.AddressID
		input.CreatedAt = work.CreatedAt

		if err := gdb.Save(&input).Error; err != nil {
			utils.ErrorResponse(c, "Failed to update work", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, input)
	}
}

// ListWorkTypesHandler lists the work type lookup table
// @Summary List work types
// @Tags Works
// @Produce json
// @Success 200 {array} models.WorkType
// @Router /api/work-types [get]
func ListWorkTypesHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		var types []models.WorkType
		if err := gdb.Where("is_active = ?", true).Order("name").Find(&types).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load work types", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, types)
	}
}

// ListOutputTypesHandler lists the output type lookup table
// @Summary List output types
// @Tags Works
// @Produce json
// @Success 200 {array} models.OutputType
// @Router /api/output-types [get]
func ListOutputTypesHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		var types []models.OutputType
		if err := gdb.Where("is_active = ?", true).Order("name").Find(&types).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load output types", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, types)
	}
}
