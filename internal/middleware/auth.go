package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"blogapi/internal/domain"
	"blogapi/internal/repository"
	"blogapi/internal/token"
	"blogapi/pkg/response"
)

// principalKey is the gin context key holding the authenticated principal
const principalKey = "principal"

// reasonMessages maps validation reasons onto client-facing messages
var reasonMessages = map[token.Reason]string{
	token.ReasonExpired:     "token has expired",
	token.ReasonUnsupported: "unsupported token",
	token.ReasonInvalid:     "invalid token",
	token.ReasonIllegal:     "illegal token",
	token.ReasonNotFound:    "token not found",
}

// ClientFrom extracts the caller's network identity for session binding
func ClientFrom(c *gin.Context) token.Client {
	return token.Client{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// PrincipalFrom returns the authenticated principal, or nil on an
// anonymous request.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, ok := value.(*domain.Principal)
	if !ok {
		return nil
	}
	return principal
}

// BearerToken returns the raw bearer token of the request, or ""
func BearerToken(c *gin.Context) string {
	return token.ExtractFromHeader(c.GetHeader("Authorization"))
}

// Authenticate validates the bearer token and attaches the principal.
// Requests without a token pass through anonymous; a present but
// invalid token is rejected with the reason message.
func Authenticate(tokens *token.Manager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			c.Next()
			return
		}

		valid, reason := tokens.Validate(c.Request.Context(), raw, ClientFrom(c))
		if !valid {
			message, ok := reasonMessages[reason]
			if !ok {
				message = "invalid token"
			}
			response.Unauthorized(c, message)
			c.Abort()
			return
		}

		userID, err := tokens.Subject(raw)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.Unauthorized(c, "token not found")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}
		if user.IsBlocked() {
			response.Unauthorized(c, "token not found")
			c.Abort()
			return
		}

		c.Set(principalKey, &domain.Principal{
			UserID: user.ID,
			Email:  user.Email,
			Roles:  user.Roles,
		})
		c.Next()
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c) == nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles rejects authenticated requests lacking every listed
// role. Role names compare case-insensitively.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if !principal.HasAnyRole(roles...) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
