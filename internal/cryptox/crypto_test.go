package cryptox

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	key1 := DeriveKey([]byte("passphrase"), []byte("fixed-salt"))
	key2 := DeriveKey([]byte("passphrase"), []byte("fixed-salt"))

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	key1 := DeriveKey([]byte("passphrase"), []byte("salt-1"))
	key2 := DeriveKey([]byte("passphrase"), []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different keys for different salts")
	}
}

func TestNewSalt_Length(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)
}

func TestSealer_SealOpen(t *testing.T) {
	s, err := NewSealer([]byte("pass"), []byte("salt"))
	require.NoError(t, err)

	sealed, err := s.Seal("token-123")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "token-123")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "token-123", plain)
}

func TestSealer_SealUsesFreshNonce(t *testing.T) {
	s, err := NewSealer([]byte("pass"), []byte("salt"))
	require.NoError(t, err)

	a, err := s.Seal("same")
	require.NoError(t, err)
	b, err := s.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_OpenPlaintextPassthrough(t *testing.T) {
	s, err := NewSealer([]byte("pass"), []byte("salt"))
	require.NoError(t, err)

	plain, err := s.Open("legacy-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", plain)
}

func TestSealer_OpenWrongPassphrase(t *testing.T) {
	s1, err := NewSealer([]byte("right"), []byte("salt"))
	require.NoError(t, err)
	s2, err := NewSealer([]byte("wrong"), []byte("salt"))
	require.NoError(t, err)

	sealed, err := s1.Seal("token")
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	require.ErrorIs(t, err, ErrOpen)
}

func TestSealer_OpenMalformed(t *testing.T) {
	s, err := NewSealer([]byte("pass"), []byte("salt"))
	require.NoError(t, err)

	_, err = s.Open(SealedPrefix + "%%%not-base64")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = s.Open(SealedPrefix + strings.Repeat("A", 4))
	require.ErrorIs(t, err, ErrMalformed)
}
