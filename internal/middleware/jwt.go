package middleware

import (
	"context"
	"net/http"

	"rentalbill/internal/common"
	"rentalbill/internal/models"
	"rentalbill/internal/services"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig builds the echo-jwt configuration for the protected routes. The
// validated claims are moved into the request context so the service layer
// never touches echo.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*services.Claims)
			if !ok {
				return
			}
			role, ok := models.ParseRole(string(claims.Role))
			if !ok {
				// An unknown role carries no capabilities; RBAC rejects it.
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, common.RoleKey, role)
			ctx = context.WithValue(ctx, common.UsernameKey, claims.Username)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}
