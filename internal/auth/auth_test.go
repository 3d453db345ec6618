package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueKeyRejectsWrongPrefix(t *testing.T) {
	store := NewStore()
	err := IssueKey(store, "sk_not_prefixed", Identity{AgentID: "a0"})
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestValidateResolvesIssuedKey(t *testing.T) {
	store := NewStore()
	require.NoError(t, IssueKey(store, "pa_sk_abc123", Identity{AgentID: "a0", WalletAddress: "0xabc"}))

	id, err := store.Validate("pa_sk_abc123")
	require.NoError(t, err)
	require.Equal(t, "a0", id.AgentID)
	require.Equal(t, "0xabc", id.WalletAddress)
}

func TestValidateRejectsUnknownKey(t *testing.T) {
	store := NewStore()
	_, err := store.Validate("pa_sk_never_issued")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestRevokeInvalidatesKey(t *testing.T) {
	store := NewStore()
	require.NoError(t, IssueKey(store, "pa_sk_abc123", Identity{AgentID: "a0"}))
	store.Revoke("pa_sk_abc123")

	_, err := store.Validate("pa_sk_abc123")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestBearerTokenExtractsSuffix(t *testing.T) {
	tok, ok := BearerToken("Bearer pa_sk_abc123")
	require.True(t, ok)
	require.Equal(t, "pa_sk_abc123", tok)

	_, ok = BearerToken("Basic abc123")
	require.False(t, ok)
}
