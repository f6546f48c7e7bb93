package middleware

import (
	"strings"

	"brokerage/internal/delivery/api/response"
	deliverycontext "brokerage/internal/delivery/context"
	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/service"
	"brokerage/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
}

// AuthMiddleware authenticates bearer access tokens and enforces capabilities.
type AuthMiddleware struct {
	tokenService service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{tokenService: params.TokenService}
}

// Authenticate validates the access token and stores the caller as an Actor.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := BearerToken(c)
		if !ok {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header must carry a Bearer token")
		}

		claims, err := m.tokenService.DecodeAccess(token)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
		}

		deliverycontext.SetActor(c, usecase.Actor{UserID: userID, Email: claims.Email, Role: claims.Role})

		return next(c)
	}
}

// RequirePermission rejects callers whose role lacks p. It must run after Authenticate.
func (m *AuthMiddleware) RequirePermission(p entity.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := GetActor(c)
			if !ok {
				return response.Unauthorized(c, "CONTEXT_ERROR", "Caller not found in context")
			}
			if err := actor.Role.Authorize(p); err != nil {
				return response.HandleAppError(c, err)
			}

			return next(c)
		}
	}
}

// GetActor returns the caller stored by Authenticate.
func GetActor(c echo.Context) (usecase.Actor, bool) {
	return deliverycontext.GetActor(c)
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	return token, token != ""
}
