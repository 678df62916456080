package domain

import (
	"strings"
	"time"
)

// Role is a role name a user can carry. Users hold a set of roles
// stored as a jsonb array.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Gender represents the self-reported gender of a user
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderDiverse Gender = "diverse"
	GenderUnknown Gender = "unknown"
)

// ParseGender maps a request value onto a known gender, defaulting to unknown
func ParseGender(s string) Gender {
	switch Gender(strings.ToLower(s)) {
	case GenderMale, GenderFemale, GenderDiverse:
		return Gender(strings.ToLower(s))
	default:
		return GenderUnknown
	}
}

// User represents a registered user
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // Never serialize password
	Firstname       string     `json:"firstname"`
	Lastname        string     `json:"lastname"`
	Gender          Gender     `json:"gender"`
	Roles           []string   `json:"roles"`
	BlockedAt       *time.Time `json:"blocked_at,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedUserID   *string    `json:"created_user_id,omitempty"`
	UpdatedUserID   *string    `json:"updated_user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.Firstname + " " + u.Lastname
}

// IsBlocked reports whether the user has been blocked
func (u *User) IsBlocked() bool {
	return u.BlockedAt != nil
}

// HasRole reports whether the user carries the given role, case-insensitively
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Principal is the authenticated identity attached to a request. It is
// resolved once by the authentication middleware and passed explicitly
// into services that need the caller's identity.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

// HasAnyRole reports whether the principal carries at least one of the
// given role names, case-insensitively.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range p.Roles {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}
