package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sai-prashanth/scheduler-api/internal/models"
	appErrors "github.com/sai-prashanth/scheduler-api/pkg/errors"
)

func newTestAuthService(t *testing.T) *AuthService {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(nil, nil, AuthConfig{
		OperatorEmail:        "ops@example.com",
		OperatorPasswordHash: string(hash),
		AccessTokenSecret:    "test-secret",
		AccessTokenExpiry:    time.Hour,
		Issuer:               "scheduler-api",
	})
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	svc := newTestAuthService(t)

	resp, err := svc.Login(models.LoginRequest{Email: "ops@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Email)
}

func TestAuthServiceLoginEmailCaseInsensitive(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(models.LoginRequest{Email: "OPS@example.com", Password: "secret123"})
	assert.NoError(t, err)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(models.LoginRequest{Email: "ops@example.com", Password: "wrong"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)

	_, err = svc.Login(models.LoginRequest{Email: "other@example.com", Password: "secret123"})
	appErr = appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginValidatesPayload(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login(models.LoginRequest{Email: "not-an-email", Password: "secret123"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAuthServiceValidateRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestAuthServiceValidateRejectsWrongSecret(t *testing.T) {
	svc := newTestAuthService(t)
	resp, err := svc.Login(models.LoginRequest{Email: "ops@example.com", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(nil, nil, AuthConfig{
		OperatorEmail:        "ops@example.com",
		OperatorPasswordHash: "x",
		AccessTokenSecret:    "different-secret",
		AccessTokenExpiry:    time.Hour,
		Issuer:               "scheduler-api",
	})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
