package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rentalbill/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
	RoleKey     contextKey = "role"
)

// ErrorResponse is the JSON error body every handler returns on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func SendError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{Error: message})
}

func SendValidationError(c echo.Context, message string) error {
	return SendError(c, http.StatusBadRequest, message)
}

func SendNotFoundError(c echo.Context, resource string) error {
	return SendError(c, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

func SendForbiddenError(c echo.Context) error {
	return SendError(c, http.StatusForbidden, "Unauthorized")
}

func SendServerError(c echo.Context, message string) error {
	return SendError(c, http.StatusInternalServerError, message)
}

// GetUserIDFromContext extracts the authenticated caller's id.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetRoleFromContext extracts the authenticated caller's role.
func GetRoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(RoleKey).(models.Role)
	return role, ok
}

// GetUsernameFromContext extracts the authenticated caller's username.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// ValidateUUID parses a uuid path or query parameter.
func ValidateUUID(idStr, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid id", fieldName)
	}
	return id, nil
}

// ValidateDateFormat accepts empty or YYYY-MM-DD.
func ValidateDateFormat(dateStr, fieldName string) error {
	if strings.TrimSpace(dateStr) == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}
	return nil
}

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateNonNegativeFloat rejects negative rates and amounts.
func ValidateNonNegativeFloat(value float64, fieldName string) error {
	if value < 0 {
		return fmt.Errorf("%s must not be negative", fieldName)
	}
	return nil
}

// SafeString safely dereferences an optional string.
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SafeFloat64 safely dereferences an optional float.
func SafeFloat64(f *float64) float64 {
	if f == nil {
		return 0.0
	}
	return *f
}
