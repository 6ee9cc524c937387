package models

import "time"

// ResetTokenLifetime is the fixed validity window of a password reset token.
const ResetTokenLifetime = 5 * time.Minute

// PasswordResetToken is the stored state of one password reset attempt,
// keyed by the opaque token string. Expires_At is an absolute instant in
// epoch milliseconds. A token is usable iff the record exists, Used is
// false and the current time is not past Expires_At. The Used flag moves
// false -> true exactly once and is never reversed.
type PasswordResetToken struct {
	Token      string    `json:"token" db:"token"`
	Email      string    `json:"email" db:"email"`
	Expires_At int64     `json:"expiresAt" db:"expires_at"`
	Used       bool      `json:"used" db:"used"`
	Created_At time.Time `json:"createdAt" db:"created_at" goqu:"skipinsert"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ValidateResetTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type ConfirmPasswordResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}
