package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"portal/services"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func resetBaseURL() string {
	if base := os.Getenv("FRONTEND_ORIGIN"); base != "" {
		return strings.TrimRight(base, "/") + "/reset-password/"
	}
	return "http://localhost:3000/reset-password/"
}

// ForgotPasswordHandler godoc
// @Summary      Request a password reset link
// @Description  Emails a single-use reset token valid for 15 minutes. Always answers 200 so the endpoint cannot be used to probe for accounts.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "email"
// @Success      200   {object}  utils.Response
// @Failure      400   {object}  utils.Response
// @Router       /api/auth/forgot_password [post]
func ForgotPasswordHandler(db *sql.DB) gin.HandlerFunc {
	emailSvc := services.NewEmailService()
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "A valid email address is required", 400)
			return
		}

		done := func() {
			utils.SuccessResponse(c, "If the account exists, a reset link has been sent", 200)
		}

		var userID int
		err := db.QueryRow(`SELECT id FROM users WHERE email = $1 AND is_active = true AND deleted_at IS NULL`,
			req.Email).Scan(&userID)
		if err == sql.ErrNoRows {
			done()
			return
		}
		if err != nil {
			utils.ErrorResponse(c, "Database error", 500)
			return
		}

		token := uuid.NewString()
		expiry := time.Now().Add(15 * time.Minute)
		_, err = db.Exec(`UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`,
			token, expiry, userID)
		if err != nil {
			utils.ErrorResponse(c, "Failed to create reset token", 500)
			return
		}

		resetLink := resetBaseURL() + token
		if !emailSvc.Enabled() {
			// Dev fallback when SMTP is not configured
			log.Printf("password reset link for %s: %s", req.Email, resetLink)
			done()
			return
		}
		if err := emailSvc.SendPasswordReset(req.Email, resetLink); err != nil {
			log.Printf("forgot password: send to %s failed: %v", req.Email, err)
		}
		done()
	}
}

// ResetPasswordHandler godoc
// @Summary      Reset password with a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string  true  "Reset token"
// @Param        body   body      object  true  "new_password"
// @Success      200    {object}  utils.Response
// @Failure      400    {object}  utils.Response
// @Router       /api/auth/reset_password/{token} [post]
func ResetPasswordHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			utils.ErrorResponse(c, "Reset token is required", 400)
			return
		}

		var req struct {
			NewPassword string `json:"new_password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Password must be at least 8 characters", 400)
			return
		}

		var userID int
		var expiry time.Time
		err := db.QueryRow(`SELECT id, reset_token_expiry FROM users WHERE reset_token = $1`, token).
			Scan(&userID, &expiry)
		if err == sql.ErrNoRows || (err == nil && time.Now().After(expiry)) {
			utils.ErrorResponse(c, "Invalid or expired token", 400)
			return
		}
		if err != nil {
			utils.ErrorResponse(c, "Database error", 500)
			return
		}

		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			utils.ErrorResponse(c, "Failed to secure password", 500)
			return
		}

		_, err = db.Exec(`UPDATE users SET password = $1, reset_token = NULL, reset_token_expiry = NULL WHERE id = $2`,
			hashed, userID)
		if err != nil {
			utils.ErrorResponse(c, "Failed to update password", 500)
			return
		}

		// All sessions die with the old password
		if _, err := db.Exec(`DELETE FROM session WHERE user_id = $1`, userID); err != nil {
			log.Printf("reset password: clearing sessions for user %d: %v", userID, err)
		}

		utils.SuccessResponse(c, "Password reset successful", 200)
	}
}

// ChangePasswordHandler godoc
// @Summary      Change password
// @Description  Changes the authenticated user's password after verifying the current one.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "old_password, new_password"
// @Success      200   {object}  utils.Response
// @Failure      400   {object}  utils.Response
// @Failure      401   {object}  utils.Response
// @Security     BearerAuth
// @Router       /api/change_password [post]
func ChangePasswordHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var req struct {
			OldPassword string `json:"old_password" binding:"required"`
			NewPassword string `json:"new_password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Old and new passwords are required; new password must be at least 8 characters", 400)
			return
		}

		// Session lookups never carry the hash; fetch it here
		var currentHash string
		if err := db.QueryRow(`SELECT password FROM users WHERE id = $1`, user.ID).Scan(&currentHash); err != nil {
			utils.ErrorResponse(c, "Database error", 500)
			return
		}

		if !utils.ValidatePassword(currentHash, req.OldPassword) {
			utils.ErrorResponse(c, "Old password is incorrect", 400)
			return
		}

		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			utils.ErrorResponse(c, "Failed to secure password", 500)
			return
		}
		if _, err := db.Exec(`UPDATE users SET password = $1 WHERE id = $2`, hashed, user.ID); err != nil {
			utils.ErrorResponse(c, "Failed to update password", 500)
			return
		}

		if err := RecordActivity(db, c, user, "Authentication", "Change Password",
			fmt.Sprintf("%s changed their password", user.Email), nil); err != nil {
			log.Printf("change password: audit log: %v", err)
		}

		utils.SuccessResponse(c, "Password changed successfully", 200)
	}
}
