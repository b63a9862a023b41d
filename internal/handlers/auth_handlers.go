package handlers

import (
	"errors"
	"net/http"

	"rentalbill/internal/common"
	"rentalbill/internal/services"

	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the credentials and returns a signed token. An unknown
// username is a validation failure, a wrong password is an authentication
// failure; the dashboard relies on that distinction.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request format")
	}
	if req.Username == "" || req.Password == "" {
		return common.SendValidationError(c, "Username and password are required")
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return common.SendValidationError(c, "User not found")
	case errors.Is(err, services.ErrTooManyAttempts):
		return common.SendError(c, http.StatusTooManyRequests, "Too many failed attempts, try again later")
	case errors.Is(err, services.ErrInvalidPassword):
		return common.SendError(c, http.StatusUnauthorized, "Invalid password")
	case err != nil:
		return common.SendServerError(c, "Login failed")
	}

	return c.JSON(http.StatusOK, result)
}
