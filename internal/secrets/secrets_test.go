package secrets

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.False(t, s.HasToken())

	_, err := s.LoadToken()
	require.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.SaveToken("  tok-abcdef-123456  "))
	assert.True(t, s.HasToken())

	raw, err := os.ReadFile(s.TokenPath())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "tok-abcdef"), "token stored in plaintext")

	got, err := s.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-abcdef-123456", got)

	// Overwriting reuses the identity.
	require.NoError(t, s.SaveToken("second"))
	got, err = s.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, s.DeleteToken())
	require.NoError(t, s.DeleteToken())
	assert.False(t, s.HasToken())
}

func TestSaveToken_RejectsEmpty(t *testing.T) {
	require.Error(t, NewStore(t.TempDir()).SaveToken("   "))
}

func TestResolve_PrefersEnv(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.SaveToken("stored"))

	got, err := Resolve("from-env", s)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	got, err = Resolve("", s)
	require.NoError(t, err)
	assert.Equal(t, "stored", got)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "abcdef...wxyz", Mask("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "abcd...", Mask("abcdefg"))
	assert.Equal(t, "****", Mask("abc"))
}
