package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"timeledger/internal/models"
)

// ErrTokenRevoked is returned when a structurally valid token has been
// revoked (logout or forced invalidation).
var ErrTokenRevoked = errors.New("token revoked")

// RevocationStore persists token revocations for the lifetime of the token.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// Claims carried inside every issued token
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 JWTs and keeps the revocation
// bookkeeping.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	logger  *zap.Logger

	stopSweep chan struct{}
}

// NewTokenManager creates a token manager
func NewTokenManager(secret string, ttl time.Duration, revoked RevocationStore, logger *zap.Logger) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		ttl:       ttl,
		revoked:   revoked,
		logger:    logger,
		stopSweep: make(chan struct{}),
	}
}

// Issue creates a signed token for the user
func (m *TokenManager) Issue(user *models.User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify parses and validates a token, including the revocation check
func (m *TokenManager) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke invalidates a token until its natural expiry
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	expiresAt := time.Now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return m.revoked.Revoke(ctx, claims.ID, expiresAt)
}

// StartSweeper periodically removes revocation rows for tokens that have
// expired on their own. Call StopSweeper on shutdown.
func (m *TokenManager) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := m.revoked.Sweep(context.Background(), time.Now()); err != nil {
					m.logger.Warn("Token revocation sweep failed", zap.Error(err))
				}
			case <-m.stopSweep:
				return
			}
		}
	}()
}

// StopSweeper stops the background sweep loop
func (m *TokenManager) StopSweeper() {
	close(m.stopSweep)
}
