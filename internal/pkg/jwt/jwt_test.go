package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	t.Parallel()
	svc := NewJWTService("secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken("api")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	typ, ok := decoded.Get("type")
	require.True(t, ok)
	assert.Equal(t, "access", typ)
}

func TestStreamTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc := NewJWTService("secret", "1h")

	token, expiresIn, err := svc.GenerateStreamToken("api", "run-123")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	runID, err := svc.ValidateStreamToken(token)
	require.NoError(t, err)
	assert.Equal(t, "run-123", runID)
}

func TestValidateStreamTokenRejectsAccessToken(t *testing.T) {
	t.Parallel()
	svc := NewJWTService("secret", "1h")

	token, _, err := svc.GenerateAccessToken("api")
	require.NoError(t, err)

	_, err = svc.ValidateStreamToken(token)
	assert.Error(t, err)
}

func TestBadDurationRejected(t *testing.T) {
	t.Parallel()
	svc := NewJWTService("secret", "not-a-duration")

	_, _, err := svc.GenerateAccessToken("api")
	assert.Error(t, err)
}
