package service

import (
	"testing"
	"time"

	"codemarket/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_RoundTrip(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "codemarket")
	accountID := uuid.New()

	token, expiry, err := svc.Generate(accountID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestJWTTokenService_RejectsWrongSecret(t *testing.T) {
	signer := NewJWTTokenService("secret-a", time.Hour, "codemarket")
	verifier := NewJWTTokenService("secret-b", time.Hour, "codemarket")

	token, _, err := signer.Generate(uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "codemarket")

	token, _, err := svc.Generate(uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsGarbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "codemarket")

	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}
