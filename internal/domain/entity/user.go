// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"brokerage/internal/domain/valueobject"

	"github.com/google/uuid"
)

// User is a staff account able to sign in to the brokerage backend.
type User struct {
	ID           uuid.UUID  // Global identifier of the account.
	EmployeeID   *uuid.UUID // Linked employee record, if any.
	Email        string     // Login identifier, lower-cased.
	Username     string     // Local part of the email.
	Role         Role
	PasswordHash string `json:"-"` // Only populated by credential lookups.
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// NewUser builds an active account for the given email and role.
func NewUser(email valueobject.Email, role Role, passwordHash string, employeeID *uuid.UUID) *User {
	return &User{
		ID:           uuid.New(),
		EmployeeID:   employeeID,
		Email:        email.String(),
		Username:     email.LocalPart(),
		Role:         role,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
}

func (u *User) Activate()   { u.IsActive = true }
func (u *User) Deactivate() { u.IsActive = false }

// Can reports whether the user's role grants p.
func (u *User) Can(p Permission) bool {
	return u.Role.Can(p)
}

// WithoutSecret returns a copy that never carries the password hash.
func (u *User) WithoutSecret() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""

	return &clone
}
