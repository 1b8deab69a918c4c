package shared

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenVaultSealOpen(t *testing.T) {
	vault, err := NewTokenVault("a-long-enough-session-secret")
	require.NoError(t, err)

	sealed, err := vault.Seal("eyJhbGciOi.access", "session-1")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "eyJhbGciOi")

	plain, err := vault.Open(sealed, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.access", plain)
}

func TestTokenVaultRejectsOtherSessionAndTampering(t *testing.T) {
	vault, err := NewTokenVault("a-long-enough-session-secret")
	require.NoError(t, err)
	sealed, err := vault.Seal("refresh-token", "session-1")
	require.NoError(t, err)

	_, err = vault.Open(sealed, "session-2")
	assert.ErrorIs(t, err, ErrVaultSealed)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)/2] ^= 0x01
	_, err = vault.Open(base64.RawURLEncoding.EncodeToString(raw), "session-1")
	assert.ErrorIs(t, err, ErrVaultSealed)

	other, err := NewTokenVault("another-long-session-secret")
	require.NoError(t, err)
	_, err = other.Open(sealed, "session-1")
	assert.ErrorIs(t, err, ErrVaultSealed)
}

func TestTokenVaultEmptyValues(t *testing.T) {
	vault, err := NewTokenVault("a-long-enough-session-secret")
	require.NoError(t, err)
	sealed, err := vault.Seal("", "s")
	require.NoError(t, err)
	assert.Empty(t, sealed)
	plain, err := vault.Open("", "s")
	require.NoError(t, err)
	assert.Empty(t, plain)

	_, err = NewTokenVault("short")
	assert.Error(t, err)
}
