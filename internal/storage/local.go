package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStorage implements ReceiptStorage on the local filesystem.
type LocalStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalStorage creates a filesystem-backed store rooted at baseDir.
func NewLocalStorage(baseDir string, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Save writes content under key, creating parent directories as needed.
func (s *LocalStorage) Save(_ context.Context, key string, content []byte, contentType string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.String("key", key),
		zap.Int("size", len(content)),
		zap.String("content_type", contentType))
	return nil
}

// Load returns the content and a content type guessed from the extension.
func (s *LocalStorage) Load(_ context.Context, key string) ([]byte, string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return content, contentType, nil
}

// Delete removes the object; deleting a missing key is not an error.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// resolve maps a key to an absolute path and rejects anything escaping the
// base directory.
func (s *LocalStorage) resolve(key string) (string, error) {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(absBase, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", fmt.Errorf("key escapes base directory: %s", key)
	}
	return absPath, nil
}
