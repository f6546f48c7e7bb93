package auth

import (
	"testing"

	"brokerage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashers(t *testing.T) {
	bcryptHasher, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hashers := map[string]interface {
		Hash(string) (string, error)
		Verify(string, string) bool
	}{
		"bcrypt":   bcryptHasher,
		"argon2id": NewArgon2idHasher(),
	}

	for name, hasher := range hashers {
		t.Run(name, func(t *testing.T) {
			password := "Password1"

			first, err := hasher.Hash(password)
			require.NoError(t, err)
			second, err := hasher.Hash(password)
			require.NoError(t, err)

			assert.NotEqual(t, password, first)
			assert.NotEqual(t, first, second, "hashes must be salted")
			assert.True(t, hasher.Verify(password, first))
			assert.True(t, hasher.Verify(password, second))
			assert.False(t, hasher.Verify("Password2", first))
			assert.False(t, hasher.Verify(password, "not-a-hash"))
		})
	}
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	hash, err := h.Hash("Password1")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestNewPasswordHasher(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{Hasher: config.HasherArgon2id}}
	h, err := NewPasswordHasher(cfg)
	require.NoError(t, err)
	assert.IsType(t, &argon2idHasher{}, h)

	cfg.Auth = &config.AuthConfig{Hasher: config.HasherBcrypt, BcryptCost: bcrypt.MinCost}
	h, err = NewPasswordHasher(cfg)
	require.NoError(t, err)
	assert.IsType(t, &bcryptHasher{}, h)

	cfg.Auth.Hasher = "scrypt"
	_, err = NewPasswordHasher(cfg)
	assert.Error(t, err)
}
