package service

import (
	"time"

	"brokerage/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims for the JWT tokens. The subject is the user id.
type Claims struct {
	Type  string      `json:"type"`
	Email string      `json:"email,omitempty"`
	Role  entity.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService defines the interface for generating and validating JWTs.
// A zero ttl means the configured default.
type TokenService interface {
	IssueAccess(userID uuid.UUID, email string, role entity.Role, ttl time.Duration) (string, error)
	IssueRefresh(userID uuid.UUID, ttl time.Duration) (string, error)

	// Decode validates signature and expiry of a token of either type.
	Decode(token string) (*Claims, error)
	// DecodeAccess is Decode restricted to access tokens.
	DecodeAccess(token string) (*Claims, error)
	// DecodeRefresh is Decode restricted to refresh tokens.
	DecodeRefresh(token string) (*Claims, error)

	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}
