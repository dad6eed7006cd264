package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"portal/models"
	"portal/storage"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func userInfo(db *sql.DB, gdb *gorm.DB, user *models.User) models.UserInfo {
	info := models.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if groups, err := storage.GetUserGroups(db, int(user.ID)); err == nil {
		info.Groups = groups
	}

	var profile models.UserProfile
	if err := gdb.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
		info.CouncilID = profile.CouncilID
		info.CouncilRole = profile.CouncilRole
	}
	return info
}

// LoginHandler authenticates a user with a bearer token or credentials
// @Summary Login user
// @Description Authenticate user and return session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /api/login [post]
func LoginHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

		// A valid bearer token short-circuits the credential check. Invalid
		// tokens fall through so a user with an expired token can still log
		// in with email and password.
		if token != "" {
			parsedToken, err := utils.ValidateJWT(token)
			if err == nil && parsedToken.Valid {
				claims, ok := parsedToken.Claims.(jwt.MapClaims)
				if !ok {
					utils.ErrorResponse(c, "Invalid token claims structure", http.StatusUnauthorized)
					return
				}
				email, ok := claims["email"].(string)
				if !ok || email == "" {
					utils.ErrorResponse(c, "Email claim missing or invalid", http.StatusUnauthorized)
					return
				}
				user, err := storage.GetUserByEmail(db, email)
				if err != nil {
					utils.ErrorResponse(c, "User not found", http.StatusUnauthorized)
					return
				}
				if !user.IsActive {
					utils.ErrorResponse(c, "Account is inactive", http.StatusForbidden)
					return
				}
				if err := storage.UpdateLastAccess(db, int(user.ID)); err != nil {
					utils.ErrorResponse(c, "Failed to record access", http.StatusInternalServerError)
					return
				}
				c.JSON(http.StatusOK, gin.H{
					"message":      "User successfully logged in via token",
					"access_token": token,
					"user":         userInfo(db, gdb, user),
				})
				return
			}
		}

		var loginData models.LoginRequest
		if err := c.ShouldBindJSON(&loginData); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		user, err := storage.GetUserByEmail(db, loginData.Email)
		if err != nil || !utils.ValidatePassword(user.Password, loginData.Password) {
			utils.ErrorResponse(c, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		if !user.IsActive {
			utils.ErrorResponse(c, "Account is inactive", http.StatusForbidden)
			return
		}

		newToken, err := utils.GenerateJWT(user.Email)
		if err != nil {
			utils.ErrorResponse(c, "Failed to generate token", http.StatusInternalServerError)
			return
		}
		refreshToken, err := utils.GenerateRefreshToken(user.Email, newToken)
		if err != nil {
			utils.ErrorResponse(c, "Failed to generate refresh token", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		refreshExpiry := now.Add(15 * 24 * time.Hour)
		session := &models.Session{
			UserID:                int(user.ID),
			SessionID:             newToken,
			HostName:              user.Email,
			IPAddress:             c.ClientIP(),
			Timestamp:             now,
			ExpiresAt:             now.Add(15 * time.Minute),
			RefreshToken:          &refreshToken,
			RefreshTokenExpiresAt: &refreshExpiry,
		}
		if err := storage.SaveSession(db, session, true); err != nil {
			utils.ErrorResponse(c, "Failed to save session", http.StatusInternalServerError)
			return
		}
		if err := storage.UpdateLastAccess(db, int(user.ID)); err != nil {
			utils.ErrorResponse(c, "Failed to record access", http.StatusInternalServerError)
			return
		}
		if err := RecordActivity(db, c, user, "Authentication", "Login",
			user.Email+" logged in", nil); err != nil {
			log.Printf("login: audit log: %v", err)
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			AccessToken:  newToken,
			RefreshToken: refreshToken,
			SessionID:    newToken,
			User:         userInfo(db, gdb, user),
		})
	}
}

// RefreshTokenHandler exchanges a valid refresh token for a new access token
// @Summary Refresh access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} utils.Response
// @Router /api/refresh [post]
func RefreshTokenHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SessionID    string `json:"session_id" binding:"required"`
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		stored, err := storage.GetRefreshTokenBySession(db, req.SessionID)
		if err != nil || stored != req.RefreshToken {
			utils.ErrorResponse(c, "Invalid refresh token", http.StatusUnauthorized)
			return
		}

		parsedToken, err := utils.ValidateJWT(req.RefreshToken)
		if err != nil || !parsedToken.Valid {
			utils.ErrorResponse(c, "Refresh token expired", http.StatusUnauthorized)
			return
		}
		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			utils.ErrorResponse(c, "Invalid token claims", http.StatusUnauthorized)
			return
		}
		email, _ := claims["email"].(string)

		user, err := storage.GetUserByEmail(db, email)
		if err != nil || !user.IsActive {
			utils.ErrorResponse(c, "User not found or inactive", http.StatusUnauthorized)
			return
		}

		newToken, err := utils.GenerateJWT(user.Email)
		if err != nil {
			utils.ErrorResponse(c, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		session := &models.Session{
			UserID:       int(user.ID),
			SessionID:    newToken,
			HostName:     user.Email,
			IPAddress:    c.ClientIP(),
			Timestamp:    now,
			ExpiresAt:    now.Add(15 * time.Minute),
			RefreshToken: &req.RefreshToken,
		}
		if err := storage.SaveSession(db, session, true); err != nil {
			utils.ErrorResponse(c, "Failed to save session", http.StatusInternalServerError)
			return
		}
		if err := storage.DeleteRefreshToken(db, req.SessionID); err != nil {
			utils.ErrorResponse(c, "Failed to rotate session", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": newToken,
			"session_id":   newToken,
			"expires_in":   900,
		})
	}
}

// LogoutHandler removes the caller's session
// @Summary Logout user
// @Tags Authentication
// @Produce json
// @Success 200 {object} utils.Response
// @Router /api/logout [post]
func LogoutHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			utils.ErrorResponse(c, "Missing Authorization header", http.StatusBadRequest)
			return
		}

		user, err := storage.GetUserBySessionID(db, token)
		if err != nil {
			utils.ErrorResponse(c, "Invalid session", http.StatusUnauthorized)
			return
		}
		if err := storage.DeleteSessionByID(db, token, int(user.ID)); err != nil {
			utils.ErrorResponse(c, "Failed to remove session", http.StatusInternalServerError)
			return
		}
		utils.SuccessResponse(c, "Logged out", http.StatusOK)
	}
}
