// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"brokerage/internal/domain/entity"

	"github.com/google/uuid"
)

// TokenTypeBearer is the token_type reported with every token pair.
const TokenTypeBearer = "bearer"

// Actor is the authenticated caller of an operation, taken from a verified access token.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   entity.Role
}

// --- Input DTOs ---

// RegisterInput defines the data required to register a staff account.
type RegisterInput struct {
	Email      string
	Password   string
	Role       string
	EmployeeID *uuid.UUID
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user without its password hash.
type RegisterOutput struct {
	User *entity.User
}

// TokenPair is a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // access token lifetime in seconds
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	User   *entity.User
	Tokens TokenPair
}

// AuthUsecase defines the authentication and account operations.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	// Login fails with the same InvalidCredentials for an unknown email, a
	// wrong password and an inactive account.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetCurrentUser(ctx context.Context, accessToken string) (*entity.User, error)
	DeactivateUser(ctx context.Context, actor Actor, targetID uuid.UUID) (*entity.User, error)
}
