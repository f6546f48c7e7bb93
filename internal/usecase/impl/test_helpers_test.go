package impl

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"brokerage/config"
	"brokerage/internal/domain/service"
	"brokerage/internal/infra/auth"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:      bcrypt.MinCost,
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Pagination: &config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
	}
	cfg.SecretKey.Access = "access-secret-for-tests"
	cfg.SecretKey.Refresh = "refresh-secret-for-tests"

	return cfg
}

func newRealAuthDeps(t *testing.T) (service.PasswordHasher, service.TokenService) {
	t.Helper()
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewJWTService(newTestConfig())
	require.NoError(t, err)

	return hasher, tokens
}

func ptr[T any](v T) *T { return &v }
