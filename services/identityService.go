package services

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when no account exists for the given email.
var ErrAccountNotFound = errors.New("account not found")

// Account is the identity-provider view of a user: just enough to address
// the credential that a password reset mutates.
type Account struct {
	ID    string
	Email string
}

// IdentityService owns the actual password credential. The production
// implementation is Firebase Auth; a database-backed implementation covers
// deployments without Firebase credentials configured.
type IdentityService interface {
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
	SetAccountPassword(ctx context.Context, accountID string, newPassword string) error
}
