package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Defendu/models"
	"github.com/Defendu/services"
	"github.com/gin-gonic/gin"
)

// PasswordResetController implements the reset token lifecycle: issue a
// token and email a reset link, validate a token, and consume a token by
// changing the account password exactly once. Dependencies are injected at
// construction so the handlers never reach for process globals.
type PasswordResetController struct {
	Store    services.TokenStore
	Identity services.IdentityService
	Mailer   services.ResetMailer
	Now      func() time.Time
}

func NewPasswordResetController(store services.TokenStore, identity services.IdentityService, mailer services.ResetMailer) *PasswordResetController {
	return &PasswordResetController{
		Store:    store,
		Identity: identity,
		Mailer:   mailer,
		Now:      time.Now,
	}
}

const genericResetMessage = "If this email exists in our system, a password reset link has been sent."

// RequestPasswordReset issues a reset token and emails the reset link.
// POST /api/password-reset
func (p *PasswordResetController) RequestPasswordReset(c *gin.Context) {
	var req models.RequestPasswordResetRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email address is required"})
		return
	}

	account, err := p.Identity.FindAccountByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			// Same response whether the account exists or not
			c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
			return
		}
		log.Printf("Failed to look up account for password reset: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password reset request", "message": err.Error()})
		return
	}

	token, err := generateResetToken()
	if err != nil {
		log.Printf("Failed to generate reset token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password reset request", "message": err.Error()})
		return
	}

	record := models.PasswordResetToken{
		Token:      token,
		Email:      account.Email,
		Expires_At: p.Now().Add(models.ResetTokenLifetime).UnixMilli(),
		Used:       false,
	}

	if err := p.Store.Put(record); err != nil {
		log.Printf("Failed to store password reset token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password reset request", "message": err.Error()})
		return
	}

	if p.Mailer == nil {
		log.Println("Email service not initialized")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Email service unavailable", "message": "email service not initialized"})
		return
	}

	resetLink := os.Getenv("RESET_LINK_BASE_URL") + "?token=" + token
	if err := p.Mailer.SendPasswordResetEmail(account.Email, resetLink); err != nil {
		log.Printf("Failed to send password reset email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email", "message": err.Error()})
		return
	}

	log.Printf("Password reset link sent to %s", account.Email)

	c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
}

// ValidateResetToken answers whether a token is currently usable and how
// much of its validity window remains. Read-only except for lazy deletion
// of expired records.
// POST /validate-reset-token
func (p *PasswordResetController) ValidateResetToken(c *gin.Context) {
	var req models.ValidateResetTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "Valid token is required"})
		return
	}

	record, found, err := p.Store.Get(req.Token)
	if err != nil {
		log.Printf("Failed to look up reset token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate token", "message": err.Error()})
		return
	}

	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "Invalid or expired token"})
		return
	}

	if record.Used {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "This token has already been used"})
		return
	}

	now := p.Now().UnixMilli()
	if now > record.Expires_At {
		if err := p.Store.Delete(req.Token); err != nil {
			log.Printf("Failed to delete expired reset token: %v", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "Token has expired. Please request a new password reset link."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"email":         record.Email,
		"expiresAt":     record.Expires_At,
		"timeRemaining": record.Expires_At - now,
	})
}

// ConfirmPasswordReset re-validates the token, claims it, and performs the
// password change. The claim is a conditional update on the used flag, so
// two concurrent requests for the same token cannot both reach the
// identity provider.
// POST /confirm-password-reset
func (p *PasswordResetController) ConfirmPasswordReset(c *gin.Context) {
	var req models.ConfirmPasswordResetRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token and new password are required"})
		return
	}

	if len(req.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long"})
		return
	}

	record, found, err := p.Store.Get(req.Token)
	if err != nil {
		log.Printf("Failed to look up reset token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password", "message": err.Error()})
		return
	}

	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if p.Now().UnixMilli() > record.Expires_At {
		if err := p.Store.Delete(req.Token); err != nil {
			log.Printf("Failed to delete expired reset token: %v", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token has expired. Please request a new password reset link."})
		return
	}

	if record.Used {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This token has already been used"})
		return
	}

	// Claim the token before touching the identity provider. Losing the
	// claim means another request already consumed this token.
	claimed, err := p.Store.MarkUsed(req.Token)
	if err != nil {
		log.Printf("Failed to mark reset token as used: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password", "message": err.Error()})
		return
	}
	if !claimed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This token has already been used"})
		return
	}

	account, err := p.Identity.FindAccountByEmail(c.Request.Context(), record.Email)
	if err != nil {
		log.Printf("Failed to resolve account for reset token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password", "message": err.Error()})
		return
	}

	if err := p.Identity.SetAccountPassword(c.Request.Context(), account.ID, req.NewPassword); err != nil {
		log.Printf("Failed to update password for %s: %v", record.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password", "message": err.Error()})
		return
	}

	log.Printf("Password successfully reset for %s", record.Email)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successfully. You can now log in with your new password.",
	})
}

// generateResetToken returns a 32-byte URL-safe random token.
func generateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
