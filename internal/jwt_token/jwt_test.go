package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chronoledger/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"chronoledger",
	"chronoledger-api",
)
var expiresIn = time.Hour

func Test_GenerateToken(t *testing.T) {
	token, err := jwtService.GenerateToken("CONTRACT_OWNER", expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "CONTRACT_OWNER", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateToken_RequiresPrincipal(t *testing.T) {
	_, err := jwtService.GenerateToken("", expiresIn)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateToken("alice", -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", err.(*dErrors.Error).Message)
}

func Test_ValidateToken_WrongKeyOrAudience(t *testing.T) {
	other := NewJWTService("other-key", "chronoledger", "chronoledger-api")
	token, err := other.GenerateToken("alice", expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	wrongAudience := NewJWTService("test-signing-key", "chronoledger", "elsewhere")
	token, err = wrongAudience.GenerateToken("alice", expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_VerifierMapsSubjectToPrincipal(t *testing.T) {
	token, err := jwtService.GenerateToken("alice", expiresIn)
	require.NoError(t, err)

	claims, err := jwtService.Verifier().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Principal)
	assert.NotEmpty(t, claims.JTI)
}

func Test_VerifierRejectsTokenWithoutSubject(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chronoledger",
			Audience:  jwt.ClaimStrings{"chronoledger-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	token, err := unsigned.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtService.Verifier().ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_UsesServiceClockWithSkew(t *testing.T) {
	svc := NewJWTService("test-signing-key", "chronoledger", "chronoledger-api")
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken("alice", time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(time.Minute + 10*time.Second) }
	_, err = svc.ValidateToken(token)
	require.NoError(t, err, "within clock skew")

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
