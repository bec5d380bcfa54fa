package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func fixedSigner(secret string, ttl time.Duration, at time.Time) *SignedURLSigner {
	signer := NewSignedURLSigner(secret, ttl)
	signer.now = func() time.Time { return at }
	return signer
}

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("job-1", "reports/file.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "reports/file.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	issued := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	token, _, err := fixedSigner("secret", time.Minute, issued).Generate("job-1", "reports/file.csv")
	require.NoError(t, err)

	later := fixedSigner("secret", time.Minute, issued.Add(2*time.Minute))
	_, _, _, err = later.Parse(token, false)
	require.EqualError(t, err, "token expired")

	jobID, path, _, err := later.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "reports/file.csv", path)
}

func TestSignedURLSignerRejectsTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("job-1", "reports/file.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := NewSignedURLSigner("secret", time.Hour).Generate("job-2", "reports/other.csv")
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)
	_, _, _, err = signer.Parse(strings.Join(parts, "."), true)
	require.Error(t, err)
	_, _, _, err = signer.Parse("not-a-token", false)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsWrongSecret(t *testing.T) {
	token, _, err := NewSignedURLSigner("other-secret", time.Hour).Generate("job-1", "reports/file.csv")
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("secret", time.Hour).Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsWrongIssuer(t *testing.T) {
	claims := downloadClaims{
		Path: "reports/file.csv",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "job-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	signer := NewSignedURLSigner("secret", time.Hour)
	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)
	_, _, _, err = signer.Parse(token, true)
	require.Error(t, err)
}

func TestSignedURLSignerRequiresSecret(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Hour).Generate("job-1", "reports/file.csv")
	require.Error(t, err)
}
