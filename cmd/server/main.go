package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"timeledger/internal/auth"
	"timeledger/internal/config"
	"timeledger/internal/email"
	"timeledger/internal/importer"
	"timeledger/internal/ops"
	"timeledger/internal/repository"
	"timeledger/internal/server"
	"timeledger/internal/storage"
	"timeledger/pkg/database"
	"timeledger/pkg/utils"
)

func main() {
	// Optional .env for local development
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting timeledger",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	taskRepo := repository.NewTaskActivityRepository(db.DB, logger)
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	dropdownRepo := repository.NewDropdownValueRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	revokedRepo := repository.NewRevokedTokenRepository(db.DB, logger)

	if err := server.EnsureBootstrapAdmin(context.Background(), userRepo,
		cfg.Auth.BootstrapAdminUser, cfg.Auth.BootstrapAdminPassword, logger); err != nil {
		logger.Fatal("Failed to bootstrap admin account", zap.Error(err))
	}

	// Auth plumbing
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revokedRepo, logger)
	tokens.StartSweeper(cfg.Auth.SweepInterval)
	defer tokens.StopSweeper()

	resetTokens := auth.NewResetTokenStore(cfg.Auth.ResetTokenTTL, cfg.Auth.ResetStoreMaxSize)
	resetTokens.StartSweeper(cfg.Auth.SweepInterval)
	defer resetTokens.Stop()

	loginAudit := auth.NewLoginAudit(cfg.Auth.LoginAuditSize)

	visitors := ops.NewVisitorCounter(30*time.Minute, 4096)
	visitors.StartSweeper(cfg.Auth.SweepInterval)
	defer visitors.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	receipts, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}

	mailer := email.NewSender(cfg.Email, logger)
	importSvc := importer.NewService(taskRepo, expenseRepo, dropdownRepo, logger)

	srv := server.NewServer(cfg, server.Deps{
		Tasks:       taskRepo,
		Expenses:    expenseRepo,
		Dropdowns:   dropdownRepo,
		Users:       userRepo,
		Tokens:      tokens,
		ResetTokens: resetTokens,
		LoginAudit:  loginAudit,
		Visitors:    visitors,
		Receipts:    receipts,
		Mailer:      mailer,
		Importer:    importSvc,
		Logger:      logger,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
