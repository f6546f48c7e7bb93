// Package service holds the ports the use cases depend on. Implementations
// live under internal/infra.
package service

// PasswordHasher turns staff passwords into salted, slow hashes. bcrypt and
// argon2id implementations are selected by auth.hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. Malformed hashes never match.
	Verify(password, hash string) bool
}
