// Package server provides the HTTP adapter over the application services.
// It is a thin layer that translates HTTP requests to repository and
// service calls.
package server

import (
	"context"
	"fmt"
	"net/http"
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
)

// Deps bundles everything the handlers need. All fields are required
// except Mailer, which may be a disabled sender.
type Deps struct {
	Tasks       *repository.TaskActivityRepository
	Expenses    *repository.ExpenseRepository
	Dropdowns   *repository.DropdownValueRepository
	Users       *repository.UserRepository
	Tokens      *auth.TokenManager
	ResetTokens *auth.ResetTokenStore
	LoginAudit  *auth.LoginAudit
	Visitors    *ops.VisitorCounter
	Receipts    storage.ReceiptStorage
	Mailer      *email.Sender
	Importer    *importer.Service
	Logger      *zap.Logger
}

// Server is the HTTP server adapter
type Server struct {
	config     *config.Config
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given dependencies
func NewServer(cfg *config.Config, deps Deps) *Server {
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config:   cfg,
		router:   gin.New(),
		handlers: NewHandlers(cfg, deps),
		logger:   deps.Logger,
	}

	server.setupMiddleware(deps.Visitors)
	server.setupRoutes(deps.Tokens)

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware(visitors *ops.VisitorCounter) {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
	s.router.Use(func(c *gin.Context) {
		visitors.Touch(c.ClientIP())
		c.Next()
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(tokens *auth.TokenManager) {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api/v1")

	api.POST("/auth/login", s.handlers.Login)
	api.POST("/auth/reset-request", s.handlers.ResetRequest)
	api.POST("/auth/reset-confirm", s.handlers.ResetConfirm)
	// Credentialed, not token-guarded: an expired password can still be
	// changed even though login refuses to issue a token for it.
	api.POST("/auth/change-password", s.handlers.ChangePassword)

	authed := api.Group("")
	authed.Use(auth.Middleware(tokens))
	{
		authed.POST("/auth/logout", s.handlers.Logout)

		authed.GET("/tasks", s.handlers.ListTasks)
		authed.POST("/tasks", s.handlers.CreateTask)
		authed.GET("/tasks/:id", s.handlers.GetTask)
		authed.PUT("/tasks/:id", s.handlers.UpdateTask)
		authed.DELETE("/tasks/:id", s.handlers.DeleteTask)

		authed.GET("/expenses", s.handlers.ListExpenses)
		authed.POST("/expenses", s.handlers.CreateExpense)
		authed.GET("/expenses/:id", s.handlers.GetExpense)
		authed.PUT("/expenses/:id", s.handlers.UpdateExpense)
		authed.DELETE("/expenses/:id", s.handlers.DeleteExpense)
		authed.POST("/expenses/:id/status", s.handlers.ChangeExpenseStatus)
		authed.POST("/expenses/:id/receipt", s.handlers.UploadReceipt)
		authed.GET("/expenses/:id/receipt", s.handlers.DownloadReceipt)

		authed.GET("/dropdowns", s.handlers.ListDropdowns)

		authed.POST("/import/tasks", s.handlers.ImportTasks)
		authed.POST("/import/expenses", s.handlers.ImportExpenses)

		authed.GET("/export/tasks.csv", s.handlers.ExportTasksCSV)
		authed.GET("/export/tasks.xlsx", s.handlers.ExportTasksXLSX)
		authed.GET("/export/expenses.csv", s.handlers.ExportExpensesCSV)
		authed.GET("/export/expenses.xlsx", s.handlers.ExportExpensesXLSX)
	}

	admin := api.Group("")
	admin.Use(auth.Middleware(tokens), auth.RequireRole(models.RoleAdmin))
	{
		admin.POST("/dropdowns", s.handlers.CreateDropdown)
		admin.PUT("/dropdowns/:id", s.handlers.UpdateDropdown)
		admin.DELETE("/dropdowns/:id", s.handlers.DeleteDropdown)

		admin.GET("/users", s.handlers.ListUsers)
		admin.POST("/users", s.handlers.CreateUser)
		admin.GET("/users/:id", s.handlers.GetUser)
		admin.PUT("/users/:id", s.handlers.UpdateUser)
		admin.DELETE("/users/:id", s.handlers.DeleteUser)

		admin.POST("/import/dropdowns", s.handlers.ImportDropdowns)

		admin.GET("/audit/logins", s.handlers.ListLoginAttempts)
		admin.GET("/stats/visitors", s.handlers.VisitorStats)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
