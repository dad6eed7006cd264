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

// ListCouncilsHandler lists councils. Council users see only their own.
// @Summary List councils
// @Tags Councils
// @Produce json
// @Success 200 {array} models.Council
// @Failure 401 {object} utils.Response
// @Router /api/councils [get]
func ListCouncilsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		if repository.IsRICDOfficer(gdb, user.ID) {
			var councils []models.Council
			if err := gdb.Order("name").Find(&councils).Error; err != nil {
				utils.ErrorResponse(c, "Failed to load councils", http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, councils)
			return
		}

		council, scoped := repository.ResolveUserCouncil(gdb, user.ID)
		if !scoped {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}
		c.JSON(http.StatusOK, []models.Council{*council})
	}
}

// GetCouncilHandler returns one council
// @Summary Get council
// @Tags Councils
// @Produce json
// @Param id path int true "Council ID"
// @Success 200 {object} models.Council
// @Failure 404 {object} utils.Response
// @Router /api/councils/{id} [get]
func GetCouncilHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, "Invalid council id", http.StatusBadRequest)
			return
		}

		if !repository.IsRICDOfficer(gdb, user.ID) {
			council, scoped := repository.ResolveUserCouncil(gdb, user.ID)
			if !scoped || council.ID != uint(id) {
				utils.ErrorResponse(c, "No council access", http.StatusForbidden)
				return
			}
		}

		var council models.Council
		if err := gdb.First(&council, uint(id)).Error; err != nil {
			utils.ErrorResponse(c, "Council not found", http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, council)
	}
}

// SaveCouncilHandler creates or updates a council. RICD staff only.
// Council details are validated on save (ABN checksum, postcode range).
// @Summary Save council
// @Tags Councils
// @Accept json
// @Produce json
// @Success 200 {object} models.Council
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /api/councils [post]
func SaveCouncilHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}

		var council models.Council
		if err := c.ShouldBindJSON(&council); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if err := council.Validate(); err != nil {
			utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
			return
		}

		if err := gdb.Save(&council).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save council", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, council)
	}
}

type userProfileRequest struct {
	UserID      uint   `json:"user_id" binding:"required"`
	CouncilID   *uint  `json:"council_id"`
	CouncilRole string `json:"council_role"`
}

// SaveUserProfileHandler assigns a user to a council with a role. RICD
// staff only.
// @Summary Save user council profile
// @Tags Councils
// @Accept json
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /api/user-profiles [post]
func SaveUserProfileHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}

		var req userProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}
		if req.CouncilRole != "" && req.CouncilRole != models.CouncilRoleManager && req.CouncilRole != models.CouncilRoleUser {
			utils.ErrorResponse(c, "council_role must be manager or user", http.StatusBadRequest)
			return
		}

		var profile models.UserProfile
		err := gdb.Where("user_id = ?", req.UserID).First(&profile).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			utils.ErrorResponse(c, "Failed to load profile", http.StatusInternalServerError)
			return
		}
		profile.UserID = req.UserID
		profile.CouncilID = req.CouncilID
		profile.CouncilRole = req.CouncilRole

		if err := gdb.Save(&profile).Error; err != nil {
			utils.ErrorResponse(c, "Failed to save profile", http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
