package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"auth": map[string]any{
			"accessTokenTTL": "30m",
		},
		"pubsub": map[string]any{
			"natsSubject": "",
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "AUTH_ACCESSTOKENTTL", want: "auth.accessTokenTTL"},
		{envKey: "PUBSUB_NATSSUBJECT", want: "pubsub.natsSubject"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.envKey, existing))
		})
	}
}

func TestLoadWithEnv_DotEnvAndDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlBody := "secretKey:\n  access: a\n  refresh: b\nauth:\n  accessTokenTTL: 15m\nstorage:\n  driver: memory\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brokerage.yaml"), []byte(yamlBody), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRETKEY_REFRESH=from-dotenv\n"), 0o600))

	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("SECRETKEY_REFRESH") })

	cfg, err := LoadWithEnv[Config]("brokerage")
	require.NoError(t, err)
	cfg.applyDefaults()

	assert.Equal(t, "a", cfg.SecretKey.Access)
	assert.Equal(t, "from-dotenv", cfg.SecretKey.Refresh)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, defaultRefreshTokenTTL, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, HasherBcrypt, cfg.Auth.Hasher)
	assert.Equal(t, defaultPageSize, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, defaultMetricsNamespace, cfg.Metrics.Namespace)
	require.NoError(t, cfg.Validate())
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml not found")
}

func TestConfig_Validate(t *testing.T) {
	newValid := func() *Config {
		cfg := &Config{}
		cfg.SecretKey.Access = "access"
		cfg.SecretKey.Refresh = "refresh"
		cfg.applyDefaults()

		return cfg
	}

	require.NoError(t, newValid().Validate())

	sameSecrets := newValid()
	sameSecrets.SecretKey.Refresh = "access"
	assert.Error(t, sameSecrets.Validate())

	noSecret := newValid()
	noSecret.SecretKey.Access = ""
	assert.Error(t, noSecret.Validate())

	badDriver := newValid()
	badDriver.Storage.Driver = "sqlite"
	assert.Error(t, badDriver.Validate())

	badHasher := newValid()
	badHasher.Auth.Hasher = "md5"
	assert.Error(t, badHasher.Validate())
}
