package dto

// LoginRequest is the credential payload for login
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// RefreshRequest carries a refresh token in the body when the client
// does not send it as a bearer header.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ExpiresIn reports token lifetimes in seconds
type ExpiresIn struct {
	Token        int64 `json:"token"`
	RefreshToken int64 `json:"refreshToken"`
}

// TokenResponse is the issued token pair
type TokenResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    ExpiresIn `json:"expiresIn"`
}

// PasswordResetRequest asks for a password reset email
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest sets a new password using a reset token
type PasswordResetConfirmRequest struct {
	Token                string `json:"token" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required,eqfield=Password"`
}
