package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDenylist struct {
	mu     sync.Mutex
	denied map[string]bool
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{denied: make(map[string]bool)}
}

func (f *fakeDenylist) Deny(_ context.Context, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denied[token] = true
	return nil
}

func (f *fakeDenylist) IsDenied(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.denied[token], nil
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewService("test-secret", newFakeDenylist())

	token, err := svc.IssueToken("user-123")
	require.NoError(t, err)

	userID, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewService("secret-a", nil)
	verifier := NewService("secret-b", nil)

	token, err := issuer.IssueToken("user-123")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(context.Background(), token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewService("test-secret", nil)

	issued := time.Now().Add(-8 * 24 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.IssueToken("user-123")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(context.Background(), token)
	require.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := NewService("test-secret", newFakeDenylist())

	token, err := svc.IssueToken("user-123")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(context.Background(), token))

	_, err = svc.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")
}

func TestRevokeToken_Garbage(t *testing.T) {
	svc := NewService("test-secret", newFakeDenylist())
	// nothing to revoke, must not error
	require.NoError(t, svc.RevokeToken(context.Background(), "not-a-token"))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
