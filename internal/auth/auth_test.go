package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeledger/internal/models"
)

// memRevocations is an in-memory RevocationStore for tests.
type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemRevocations() *memRevocations {
	return &memRevocations{revoked: make(map[string]time.Time)}
}

func (m *memRevocations) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func (m *memRevocations) Sweep(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, expiresAt := range m.revoked {
		if expiresAt.Before(now) {
			delete(m.revoked, id)
			removed++
		}
	}
	return removed, nil
}

func testUser() *models.User {
	return &models.User{ID: 7, Username: "jdoe", Role: models.RoleUser}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour, newMemRevocations(), zap.NewNop())

	signed, issued, err := manager.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.NotEmpty(t, issued.ID)

	claims, err := manager.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenManager_RejectsBadSignature(t *testing.T) {
	manager := NewTokenManager("secret-a", time.Hour, newMemRevocations(), zap.NewNop())
	other := NewTokenManager("secret-b", time.Hour, newMemRevocations(), zap.NewNop())

	signed, _, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = manager.Verify(context.Background(), signed)
	assert.Error(t, err)
}

func TestTokenManager_RevokedTokenRejected(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour, newMemRevocations(), zap.NewNop())

	signed, claims, err := manager.Issue(testUser())
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(context.Background(), claims))

	_, err = manager.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2!", hash)

	assert.True(t, CheckPassword(hash, "hunter2!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestResetTokenStore(t *testing.T) {
	t.Run("issue and consume once", func(t *testing.T) {
		store := NewResetTokenStore(time.Minute, 10)

		token := store.Issue("jdoe")
		username, ok := store.Consume(token)
		require.True(t, ok)
		assert.Equal(t, "jdoe", username)

		_, ok = store.Consume(token)
		assert.False(t, ok)
	})

	t.Run("expired token not redeemable", func(t *testing.T) {
		store := NewResetTokenStore(-time.Second, 10)

		token := store.Issue("jdoe")
		_, ok := store.Consume(token)
		assert.False(t, ok)
	})

	t.Run("size bound holds", func(t *testing.T) {
		store := NewResetTokenStore(time.Minute, 3)

		for i := 0; i < 10; i++ {
			store.Issue(fmt.Sprintf("user%d", i))
		}
		assert.LessOrEqual(t, store.Len(), 3)
	})
}

func TestLoginAudit_RingOverwrites(t *testing.T) {
	audit := NewLoginAudit(3)

	for i := 0; i < 5; i++ {
		audit.Record(LoginAttempt{
			Username: fmt.Sprintf("user%d", i),
			At:       time.Now(),
		})
	}

	recent := audit.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "user4", recent[0].Username)
	assert.Equal(t, "user2", recent[2].Username)
}

func TestLoginAudit_PartialFill(t *testing.T) {
	audit := NewLoginAudit(8)

	audit.Record(LoginAttempt{Username: "a"})
	audit.Record(LoginAttempt{Username: "b"})

	recent := audit.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Username)
	assert.Equal(t, "a", recent[1].Username)
}
