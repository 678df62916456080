package dto

import (
	"time"

	"blogapi/internal/domain"
)

// RegisterRequest is the self-service signup payload
type RegisterRequest struct {
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required,eqfield=Password"`
	Firstname            string `json:"firstname" binding:"required"`
	Lastname             string `json:"lastname" binding:"required"`
	Gender               string `json:"gender"`
}

// CreateUserRequest is the admin user creation payload
type CreateUserRequest struct {
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=8"`
	Firstname      string   `json:"firstname" binding:"required"`
	Lastname       string   `json:"lastname" binding:"required"`
	Gender         string   `json:"gender"`
	Roles          []string `json:"roles" binding:"required,min=1"`
	IsBlocked      bool     `json:"isBlocked"`
	MarkAsVerified bool     `json:"markAsVerified"`
}

// UpdateUserRequest is the admin user update payload. Nil fields are
// left unchanged.
type UpdateUserRequest struct {
	Email     *string  `json:"email" binding:"omitempty,email"`
	Password  *string  `json:"password" binding:"omitempty,min=8"`
	Firstname *string  `json:"firstname"`
	Lastname  *string  `json:"lastname"`
	Gender    *string  `json:"gender"`
	Roles     []string `json:"roles"`
	IsBlocked *bool    `json:"isBlocked"`
}

// UpdateProfileRequest is the self-service profile update payload
type UpdateProfileRequest struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Gender    *string `json:"gender"`
}

// ChangePasswordRequest is the self-service password change payload
type ChangePasswordRequest struct {
	CurrentPassword      string `json:"currentPassword" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required,eqfield=Password"`
}

// ListUsersRequest binds the user listing query parameters
type ListUsersRequest struct {
	Page           int      `form:"page,default=1"`
	Size           int      `form:"size,default=20"`
	SortBy         string   `form:"sortBy"`
	Sort           string   `form:"sort"`
	Roles          []string `form:"roles"`
	Genders        []string `form:"genders"`
	CreatedUserIDs []string `form:"createdUserIds"`
	UpdatedUserIDs []string `form:"updatedUserIds"`
	CreatedAtStart *string  `form:"createdAtStart"`
	CreatedAtEnd   *string  `form:"createdAtEnd"`
	UpdatedAtStart *string  `form:"updatedAtStart"`
	UpdatedAtEnd   *string  `form:"updatedAtEnd"`
	IsBlocked      *bool    `form:"isBlocked"`
	Q              string   `form:"q"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Firstname       string     `json:"firstname"`
	Lastname        string     `json:"lastname"`
	FullName        string     `json:"fullName"`
	Gender          string     `json:"gender"`
	Roles           []string   `json:"roles"`
	IsBlocked       bool       `json:"isBlocked"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewUserResponse maps a domain user to its public view
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Firstname:       user.Firstname,
		Lastname:        user.Lastname,
		FullName:        user.FullName(),
		Gender:          string(user.Gender),
		Roles:           user.Roles,
		IsBlocked:       user.IsBlocked(),
		EmailVerifiedAt: user.EmailVerifiedAt,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// NewUserResponses maps a slice of domain users
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}
