package handler

import (
	"github.com/gin-gonic/gin"

	"blogapi/internal/dto"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
	"blogapi/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, middleware.ClientFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// Refresh handles token rotation. The refresh token comes from the
// Authorization header or, failing that, the request body.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := middleware.BearerToken(c)
	if raw == "" {
		var req dto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		raw = req.RefreshToken
	}

	result, err := h.authService.Refresh(c.Request.Context(), raw, middleware.ClientFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// Logout revokes the presented token's session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), *principal, middleware.BearerToken(c)); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}

// LogoutAll revokes all sessions of the caller
// POST /api/v1/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), *principal); err != nil {
		writeServiceError(c, err)
		return
	}

	response.NoContent(c)
}
