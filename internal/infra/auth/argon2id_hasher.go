package auth

import (
	"brokerage/internal/domain/service"
	"brokerage/internal/errors"

	"github.com/alexedwards/argon2id"
)

type argon2idHasher struct {
	params *argon2id.Params
}

// NewArgon2idHasher hashes with argon2id.DefaultParams and PHC-encoded output.
func NewArgon2idHasher() service.PasswordHasher {
	return &argon2idHasher{params: argon2id.DefaultParams}
}

func (h *argon2idHasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate argon2id hash")
	}

	return hash, nil
}

// Verify reports false for malformed hashes as well as mismatches.
func (h *argon2idHasher) Verify(password, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, hash)

	return err == nil && match
}
