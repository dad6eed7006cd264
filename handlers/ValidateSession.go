package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"portal/models"
	"portal/storage"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func sessionToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
}

// authenticatedUser resolves the caller from the Authorization header. It
// writes the error response itself, so callers just return when ok is false.
func authenticatedUser(c *gin.Context, db *sql.DB) (*models.User, bool) {
	token := sessionToken(c)
	if token == "" {
		utils.ErrorResponse(c, "Missing Authorization header", http.StatusBadRequest)
		return nil, false
	}

	user, err := storage.GetUserBySessionID(db, token)
	if err != nil {
		utils.ErrorResponse(c, "Invalid or expired session", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

// ValidateSession validates the caller's session token
// @Summary Validate session
// @Description Validate user session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.UserInfo
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /api/validate-session [post]
func ValidateSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			utils.ErrorResponse(c, "Missing Authorization header", http.StatusBadRequest)
			return
		}

		parsedToken, err := utils.ValidateJWT(token)
		if err != nil || !parsedToken.Valid {
			utils.ErrorResponse(c, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			utils.ErrorResponse(c, "Invalid token claims", http.StatusUnauthorized)
			return
		}
		exp, ok := claims["exp"].(float64)
		if !ok || time.Now().Unix() > int64(exp) {
			utils.ErrorResponse(c, "Token expired", http.StatusUnauthorized)
			return
		}

		user, err := storage.GetUserBySessionID(db, token)
		if err != nil {
			utils.ErrorResponse(c, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		groups, err := storage.GetUserGroups(db, int(user.ID))
		if err != nil {
			utils.ErrorResponse(c, "Failed to fetch user groups", http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Session validated",
			"session_id": token,
			"user": models.UserInfo{
				ID:        user.ID,
				Email:     user.Email,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Groups:    groups,
			},
		})
	}
}
