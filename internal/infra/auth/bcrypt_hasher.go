// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"brokerage/config"
	"brokerage/internal/domain/service"
	"brokerage/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// NewPasswordHasher picks the algorithm named by auth.hasher.
func NewPasswordHasher(cfg *config.Config) (service.PasswordHasher, error) {
	switch cfg.Auth.Hasher {
	case config.HasherBcrypt, "":
		return NewBcryptHasher(cfg.Auth.BcryptCost)
	case config.HasherArgon2id:
		return NewArgon2idHasher(), nil
	default:
		return nil, errors.Errorf("unsupported password hasher %q", cfg.Auth.Hasher)
	}
}

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher validates cost against bcrypt's accepted range. Zero means bcrypt.DefaultCost.
func NewBcryptHasher(cost int) (service.PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &bcryptHasher{cost: cost}, nil
}

// Hash generates a salted hash from a plaintext password using bcrypt.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate bcrypt hash")
	}

	return string(bytes), nil
}

// Verify compares a plaintext password with a bcrypt hash in constant time.
func (h *bcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
