package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", "client-a", "hive", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken()
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-a", claims.AuthorizedParty)
	assert.NotEmpty(t, claims.ID)

	expired, err := issuer.Expired(token)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestIssuer_Rejects(t *testing.T) {
	issuer, err := NewIssuer("secret", "client-a", "hive", time.Hour)
	require.NoError(t, err)
	token, err := issuer.GenerateToken()
	require.NoError(t, err)

	t.Run("Wrong Secret", func(t *testing.T) {
		other, _ := NewIssuer("other", "client-a", "hive", time.Hour)
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Wrong Client", func(t *testing.T) {
		other, _ := NewIssuer("secret", "client-b", "hive", time.Hour)
		_, err := other.ValidateToken(token)
		assert.Error(t, err)

		expired, err := other.Expired(token)
		assert.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("Expired", func(t *testing.T) {
		later, _ := NewIssuer("secret", "client-a", "hive", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.Error(t, err)

		expired, err := later.Expired(token)
		assert.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := issuer.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("", "c", "", 0)
	assert.Error(t, err)
}

func TestVerifyAdminPassword(t *testing.T) {
	tests := []struct {
		name       string
		supplied   string
		configured string
		want       bool
	}{
		{name: "Match", supplied: "s3cret", configured: "s3cret", want: true},
		{name: "Mismatch", supplied: "nope", configured: "s3cret"},
		{name: "Both Empty", supplied: "", configured: ""},
		{name: "Whitespace Only", supplied: "  ", configured: "  "},
		{name: "Hash Looking Value Compared Verbatim", supplied: "$2a$MySecret", configured: "$2a$MySecret", want: true},
		{name: "Case Sensitive", supplied: "S3CRET", configured: "s3cret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyAdminPassword(tt.supplied, tt.configured))
		})
	}
}

func TestGeneratorHash(t *testing.T) {
	meta := map[string]any{"clientId": "a", "secret": "b", "hashAlgorithm": "sha3-256"}

	h1, err := GeneratorHash(meta, "sha3-256")
	require.NoError(t, err)
	h2, err := GeneratorHash(map[string]any{"secret": "b", "hashAlgorithm": "sha3-256", "clientId": "a"}, "sha3-256")
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "key order must not matter")
	assert.Len(t, h1, 64)

	sha, err := GeneratorHash(meta, "")
	require.NoError(t, err)
	assert.NotEqual(t, h1, sha)

	ok, err := VerifyGenerator(h1, meta, "sha3-256")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyGenerator("wrong", meta, "sha3-256")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = GeneratorHash(meta, "md4")
	assert.Error(t, err)
}
