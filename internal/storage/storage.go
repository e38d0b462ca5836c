package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"timeledger/internal/config"
)

// ErrNotFound is returned when no object exists under the given key.
var ErrNotFound = errors.New("object not found")

// ReceiptStorage stores uploaded receipt files under opaque keys. The
// backend is selected once at startup from configuration; callers never
// branch on the implementation.
type ReceiptStorage interface {
	Save(ctx context.Context, key string, content []byte, contentType string) error
	Load(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the configured backend.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ReceiptStorage, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStorage(cfg.LocalDir, logger)
	case "s3":
		return NewS3Storage(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
