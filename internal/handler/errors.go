package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"blogapi/internal/service"
	"blogapi/pkg/response"
)

// writeServiceError maps service errors onto HTTP responses. Unmapped
// errors become an opaque 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBadCredentials):
		response.Unauthorized(c, "invalid email or password")
	case errors.Is(err, service.ErrTokenExpired):
		response.Unauthorized(c, "token has expired")
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, "invalid token")
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(c, "access denied")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "resource not found")
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrCategoryInUse):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrBadRequest):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c)
	}
}
