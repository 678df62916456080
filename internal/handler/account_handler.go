package handler

import (
	"github.com/gin-gonic/gin"

	"blogapi/internal/dto"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
	"blogapi/pkg/response"
)

// AccountHandler handles self-service account HTTP requests
type AccountHandler struct {
	userService service.UserService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(userService service.UserService) *AccountHandler {
	return &AccountHandler{userService: userService}
}

// Register handles signup
// POST /api/v1/auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.NewUserResponse(user))
}

// VerifyEmail confirms an email verification token
// GET /api/v1/auth/email-verification/:token
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	if err := h.userService.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}

// ResendVerification issues a fresh verification token
// POST /api/v1/auth/email-verification
func (h *AccountHandler) ResendVerification(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.userService.ResendVerification(c.Request.Context(), principal.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}

// RequestPasswordReset mails a reset token
// POST /api/v1/auth/password
func (h *AccountHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}

// ResetPassword sets a new password with a reset token
// POST /api/v1/auth/password/reset
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}

// Me returns the caller's account
// GET /api/v1/account/me
func (h *AccountHandler) Me(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), principal.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewUserResponse(user))
}

// UpdateProfile updates the caller's profile
// PATCH /api/v1/account/me
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), *principal, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.NewUserResponse(user))
}

// ChangePassword updates the caller's password
// POST /api/v1/account/password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), *principal, &req); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}
