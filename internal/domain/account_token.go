package domain

import "time"

// AccountTokenKind distinguishes the mailed one-shot tokens
type AccountTokenKind string

const (
	TokenKindEmailVerification AccountTokenKind = "email_verification"
	TokenKindPasswordReset     AccountTokenKind = "password_reset"
)

// AccountToken is a mailed one-shot token for e-mail verification or
// password reset. One token per (user, kind); creating a new one
// replaces the previous.
type AccountToken struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      AccountTokenKind `json:"kind"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsExpired reports whether the token is past its expiry
func (t *AccountToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
