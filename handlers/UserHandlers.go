package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"

	"portal/models"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListUsersHandler godoc
// @Summary      List portal users
// @Description  All users with their role groups and council link. Department staff only.
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      403  {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/users [get]
func ListUsersHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}

		var users []models.User
		if err := gdb.Preload("Groups").Order("last_name, first_name").Find(&users).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load users", 500)
			return
		}
		c.JSON(200, users)
	}
}

type userRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhoneNo   string `json:"phone_no"`
	IsActive  *bool  `json:"is_active"`
	GroupIDs  []uint `json:"group_ids"`
}

// CreateUserHandler godoc
// @Summary      Create a portal user
// @Description  Creates a user account with role groups. Department staff only.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      handlers.userRequest  true  "User"
// @Success      201   {object}  models.User
// @Failure      400   {object}  utils.Response
// @Failure      403   {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/users [post]
func CreateUserHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ricdOnly(c, db, gdb)
		if !ok {
			return
		}

		var input userRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid user data", 400)
			return
		}
		input.Email = strings.TrimSpace(strings.ToLower(input.Email))
		if input.Email == "" || input.FirstName == "" || len(input.Password) < 8 {
			utils.ErrorResponse(c, "Email, first name and a password of at least 8 characters are required", 400)
			return
		}

		var existing int64
		gdb.Model(&models.User{}).Where("LOWER(email) = ?", input.Email).Count(&existing)
		if existing > 0 {
			utils.ErrorResponse(c, "A user with that email already exists", 400)
			return
		}

		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			utils.ErrorResponse(c, "Failed to secure password", 500)
			return
		}

		user := models.User{
			Email:     input.Email,
			Password:  hashed,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			PhoneNo:   input.PhoneNo,
			IsActive:  true,
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}

		if err := gdb.Create(&user).Error; err != nil {
			utils.ErrorResponse(c, "Failed to create user", 500)
			return
		}
		if len(input.GroupIDs) > 0 {
			if err := replaceUserGroups(gdb, &user, input.GroupIDs); err != nil {
				utils.ErrorResponse(c, "User created but assigning groups failed", 500)
				return
			}
		}

		if err := RecordActivity(db, c, actor, "User Management", "Create",
			fmt.Sprintf("Created user %s", user.Email), nil); err != nil {
			log.Printf("create user: audit log: %v", err)
		}

		gdb.Preload("Groups").First(&user, user.ID)
		c.JSON(201, user)
	}
}

// UpdateUserHandler godoc
// @Summary      Update a portal user
// @Description  Updates name, phone, active flag and role groups. Email and password are managed through their own flows.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user_id  path      int                   true  "User ID"
// @Param        user     body      handlers.userRequest  true  "Fields to update"
// @Success      200      {object}  models.User
// @Failure      400      {object}  utils.Response
// @Failure      404      {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/users/{user_id} [put]
func UpdateUserHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ricdOnly(c, db, gdb)
		if !ok {
			return
		}

		id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
		if err != nil {
			utils.ErrorResponse(c, "Invalid user id", 400)
			return
		}

		var user models.User
		if err := gdb.First(&user, uint(id)).Error; err != nil {
			utils.ErrorResponse(c, "User not found", 404)
			return
		}

		var input userRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid user data", 400)
			return
		}

		if input.FirstName != "" {
			user.FirstName = input.FirstName
		}
		if input.LastName != "" {
			user.LastName = input.LastName
		}
		if input.PhoneNo != "" {
			user.PhoneNo = input.PhoneNo
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
			if !user.IsActive {
				// Deactivation kills live sessions immediately
				if _, err := db.Exec(`DELETE FROM session WHERE user_id = $1`, user.ID); err != nil {
					log.Printf("deactivate user %d: clearing sessions: %v", user.ID, err)
				}
			}
		}

		if err := gdb.Save(&user).Error; err != nil {
			utils.ErrorResponse(c, "Failed to update user", 500)
			return
		}
		if input.GroupIDs != nil {
			if err := replaceUserGroups(gdb, &user, input.GroupIDs); err != nil {
				utils.ErrorResponse(c, "User updated but replacing groups failed", 500)
				return
			}
		}

		if err := RecordActivity(db, c, actor, "User Management", "Update",
			fmt.Sprintf("Updated user %s", user.Email), nil); err != nil {
			log.Printf("update user: audit log: %v", err)
		}

		gdb.Preload("Groups").First(&user, user.ID)
		c.JSON(200, user)
	}
}

func replaceUserGroups(gdb *gorm.DB, user *models.User, groupIDs []uint) error {
	var groups []models.Group
	if len(groupIDs) > 0 {
		if err := gdb.Find(&groups, groupIDs).Error; err != nil {
			return err
		}
	}
	return gdb.Model(user).Association("Groups").Replace(groups)
}

// ListGroupsHandler godoc
// @Summary      List role groups
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.Group
// @Failure      403  {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/groups [get]
func ListGroupsHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ricdOnly(c, db, gdb); !ok {
			return
		}

		var groups []models.Group
		if err := gdb.Order("name").Find(&groups).Error; err != nil {
			utils.ErrorResponse(c, "Failed to load groups", 500)
			return
		}
		c.JSON(200, groups)
	}
}
