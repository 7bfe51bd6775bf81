package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villa/config"
	"villa/infras/jwt"
	"villa/infras/otel/mocks"
	"villa/internal/domains/auth/model/dto"
	"villa/internal/domains/auth/service"
	"villa/shared/failure"
	"villa/shared/password"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := password.Hash("correct-horse")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Name = "villa"
	cfg.Admin.Email = "owner@example.com"
	cfg.Admin.PasswordHash = hash
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return cfg
}

func TestAuthService_Login(t *testing.T) {
	cfg := testConfig(t)
	svc := service.New(cfg, mocks.NewOtel(), jwt.New(cfg))

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		res, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "owner@example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, int64(15*60), res.ExpiresIn)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "owner@example.com",
			Password: "wrong",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("unknown email is rejected with the same message", func(t *testing.T) {
		_, err := svc.Login(context.Background(), dto.LoginRequest{
			Email:    "someone@example.com",
			Password: "correct-horse",
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	cfg := testConfig(t)
	svc := service.New(cfg, mocks.NewOtel(), jwt.New(cfg))

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	t.Run("valid refresh token rotates the pair", func(t *testing.T) {
		res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
		require.NoError(t, err)

		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		_, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}
