package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeledger/internal/auth"
	"timeledger/internal/config"
	"timeledger/internal/email"
	"timeledger/internal/importer"
	"timeledger/internal/models"
	"timeledger/internal/ops"
	"timeledger/internal/repository"
	"timeledger/internal/storage"
	"timeledger/pkg/database"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	cfg         *config.Config
	tasks       *repository.TaskActivityRepository
	expenses    *repository.ExpenseRepository
	dropdowns   *repository.DropdownValueRepository
	users       *repository.UserRepository
	tokens      *auth.TokenManager
	resetTokens *auth.ResetTokenStore
	loginAudit  *auth.LoginAudit
	visitors    *ops.VisitorCounter
	receipts    storage.ReceiptStorage
	mailer      *email.Sender
	importer    *importer.Service
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cfg *config.Config, deps Deps) *Handlers {
	return &Handlers{
		cfg:         cfg,
		tasks:       deps.Tasks,
		expenses:    deps.Expenses,
		dropdowns:   deps.Dropdowns,
		users:       deps.Users,
		tokens:      deps.Tokens,
		resetTokens: deps.ResetTokens,
		loginAudit:  deps.LoginAudit,
		visitors:    deps.Visitors,
		receipts:    deps.Receipts,
		mailer:      deps.Mailer,
		importer:    deps.Importer,
		logger:      deps.Logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "timeledger",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// VisitorStats handles GET /api/v1/stats/visitors
func (h *Handlers) VisitorStats(c *gin.Context) {
	total, active := h.visitors.Stats()
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"total_visits":    total,
			"active_visitors": active,
		},
	})
}

// ListLoginAttempts handles GET /api/v1/audit/logins
func (h *Handlers) ListLoginAttempts(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.loginAudit.Recent(),
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: message})
}

// respondRepoError maps repository sentinels onto HTTP statuses.
func (h *Handlers) respondRepoError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "already exists"})
	default:
		h.logger.Error("Request failed", zap.String("action", action), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: action + " failed"})
	}
}

// identity returns the verified claims; the auth middleware guarantees
// they are present on protected routes.
func identity(c *gin.Context) *auth.Claims {
	claims, _ := auth.Identity(c)
	return claims
}

// canAccess reports whether the caller may touch a record owned by
// username. Admins see everything.
func canAccess(claims *auth.Claims, username string) bool {
	return claims.Role == models.RoleAdmin || claims.Username == username
}
