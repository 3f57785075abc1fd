package signup

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	manager := NewSessionManager(map[string]string{"SESSION_SECRET": "test-secret"})
	userID := uuid.New()

	token, err := manager.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestSessionRejectsTamperedToken(t *testing.T) {
	manager := NewSessionManager(map[string]string{"SESSION_SECRET": "test-secret"})

	token, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.Verify(token + "x")
	assert.Error(t, err)

	_, err = manager.Verify("not-a-token")
	assert.Error(t, err)
}

func TestSessionRejectsWrongSecret(t *testing.T) {
	issuer := NewSessionManager(map[string]string{"SESSION_SECRET": "secret-a"})
	verifier := NewSessionManager(map[string]string{"SESSION_SECRET": "secret-b"})

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestSessionExpired(t *testing.T) {
	manager := NewSessionManager(map[string]string{
		"SESSION_SECRET":    "test-secret",
		"SESSION_TTL_HOURS": "-1",
	})

	token, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.Error(t, err)
}

func TestIssueRequiresSecret(t *testing.T) {
	manager := NewSessionManager(map[string]string{})

	_, err := manager.Issue(uuid.New())
	assert.Error(t, err)
}
