package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeledger/internal/auth"
	"timeledger/pkg/database"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	Username        string `json:"username" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type resetRequestRequest struct {
	Username string `json:"username" binding:"required"`
}

type resetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *Handlers) recordLogin(c *gin.Context, username string, success bool, reason string) {
	h.loginAudit.Record(auth.LoginAttempt{
		Username: username,
		RemoteIP: c.ClientIP(),
		Success:  success,
		Reason:   reason,
		At:       time.Now().UTC(),
	})
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			h.respondRepoError(c, err, "login")
			return
		}
		h.recordLogin(c, req.Username, false, "unknown user")
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid credentials"})
		return
	}

	if !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.recordLogin(c, req.Username, false, "bad credentials")
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid credentials"})
		return
	}

	if user.PasswordExpired(h.cfg.Auth.PasswordMaxAge, time.Now()) {
		h.recordLogin(c, req.Username, false, "password expired")
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "password expired"})
		return
	}

	token, claims, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.String("username", user.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "login failed"})
		return
	}

	h.recordLogin(c, req.Username, true, "")
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"token":      token,
			"expires_at": claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
			"user":       user,
		},
	})
}

// Logout handles POST /api/v1/auth/logout. The presented token is revoked
// until it would have expired anyway.
func (h *Handlers) Logout(c *gin.Context) {
	claims := identity(c)
	if err := h.tokens.Revoke(c.Request.Context(), claims); err != nil {
		h.logger.Error("Failed to revoke token", zap.String("username", claims.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "logout failed"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ChangePassword handles POST /api/v1/auth/change-password. It
// authenticates by current credentials rather than a token: an account
// whose password has expired can no longer obtain a token, yet changing
// the password is exactly what it must still be able to do.
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, current_password and new_password (min 8 chars) are required")
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid credentials"})
			return
		}
		h.respondRepoError(c, err, "change password")
		return
	}

	if !user.Active || !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid credentials"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "change password failed"})
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.respondRepoError(c, err, "change password")
		return
	}

	// The old credential is gone, so any session presented alongside the
	// request goes too.
	h.revokePresentedToken(c, user.Username)

	c.JSON(http.StatusOK, Response{Success: true})
}

// revokePresentedToken revokes the caller's bearer token, when one is both
// present and theirs. Best effort: the password change already succeeded.
func (h *Handlers) revokePresentedToken(c *gin.Context, username string) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return
	}
	claims, err := h.tokens.Verify(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
	if err != nil || claims.Username != username {
		return
	}
	if err := h.tokens.Revoke(c.Request.Context(), claims); err != nil {
		h.logger.Warn("Failed to revoke token after password change",
			zap.String("username", username), zap.Error(err))
	}
}

// ResetRequest handles POST /api/v1/auth/reset-request. The response is
// the same whether or not the account exists.
func (h *Handlers) ResetRequest(c *gin.Context) {
	var req resetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username is required")
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err == nil && user.Active {
		token := h.resetTokens.Issue(user.Username)
		if err := h.mailer.SendPasswordReset(user, token); err != nil {
			h.logger.Error("Failed to send reset email",
				zap.String("username", user.Username), zap.Error(err))
		}
	} else if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.logger.Error("Reset request lookup failed", zap.Error(err))
	}

	c.JSON(http.StatusAccepted, Response{Success: true})
}

// ResetConfirm handles POST /api/v1/auth/reset-confirm
func (h *Handlers) ResetConfirm(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token and new_password (min 8 chars) are required")
		return
	}

	username, ok := h.resetTokens.Consume(req.Token)
	if !ok {
		badRequest(c, "invalid or expired reset token")
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		h.respondRepoError(c, err, "reset password")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "reset password failed"})
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.respondRepoError(c, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}
