package service

import "errors"

var (
	// ErrBadCredentials covers wrong password, unknown email, and
	// blocked accounts alike so login failures stay indistinguishable.
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrAccessDenied    = errors.New("access denied")
	ErrNotFound        = errors.New("not found")
	ErrEmailTaken      = errors.New("email already in use")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrCategoryInUse   = errors.New("category has posts")
	ErrBadRequest      = errors.New("bad request")
)
