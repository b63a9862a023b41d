package handlers

import (
	"net/http"
	"time"

	"rentalbill/internal/common"
	"rentalbill/internal/models"
	"rentalbill/internal/repositories"
	"rentalbill/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserHandlers struct {
	userRepo    repositories.UserRepository
	authService services.AuthService
}

func NewUserHandlers(userRepo repositories.UserRepository, authService services.AuthService) *UserHandlers {
	return &UserHandlers{userRepo: userRepo, authService: authService}
}

type CreateUserRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	Email     *string `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
}

// ListUsers returns every account. Password hashes never serialize.
func (h *UserHandlers) ListUsers(c echo.Context) error {
	users, err := h.userRepo.List(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list users")
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Username, "username"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return common.SendValidationError(c, "role must be one of superadmin, admin, user, employee")
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		return common.SendServerError(c, "Failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    time.Now(),
	}
	if err := h.userRepo.Create(c.Request().Context(), user); err != nil {
		return common.SendServerError(c, "Failed to create user")
	}
	return c.JSON(http.StatusCreated, user)
}
