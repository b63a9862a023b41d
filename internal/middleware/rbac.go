package middleware

import (
	"net/http"

	"rentalbill/internal/common"
	"rentalbill/internal/models"

	"github.com/labstack/echo/v4"
)

// Capability names one guarded operation. The table below is closed: a role
// can do exactly what it lists, nothing falls through to a default.
type Capability string

const (
	CapListUsers     Capability = "users:list"
	CapCreateUser    Capability = "users:create"
	CapListProjects  Capability = "projects:list"
	CapCreateProject Capability = "projects:create"
	CapUploadProject Capability = "projects:upload"
	CapListOwners    Capability = "owners:list"
	CapListHistory   Capability = "history:list"
	CapCreateHistory Capability = "history:create"
	CapUploadHistory Capability = "history:upload"
	CapExportHistory Capability = "history:export"
	CapListBills     Capability = "bills:list"
	CapCreateBills   Capability = "bills:create"
	CapViewSummary   Capability = "summary:view"
)

var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleSuperadmin: {
		CapListUsers: true, CapCreateUser: true,
		CapListProjects: true, CapCreateProject: true, CapUploadProject: true,
		CapListOwners: true,
		CapListHistory: true, CapCreateHistory: true, CapUploadHistory: true, CapExportHistory: true,
		CapListBills: true, CapCreateBills: true,
		CapViewSummary: true,
	},
	models.RoleAdmin: {
		CapListUsers: true,
		CapListProjects: true, CapCreateProject: true, CapUploadProject: true,
		CapListOwners: true,
		CapListHistory: true, CapCreateHistory: true, CapUploadHistory: true, CapExportHistory: true,
		CapViewSummary: true,
	},
	models.RoleUser: {
		CapListProjects: true, CapListOwners: true,
		CapListHistory: true, CapCreateHistory: true, CapUploadHistory: true, CapExportHistory: true,
		CapViewSummary: true,
	},
	models.RoleEmployee: {
		CapListProjects: true, CapListOwners: true,
		CapListHistory: true, CapCreateHistory: true, CapUploadHistory: true, CapExportHistory: true,
	},
}

// RoleHasCapability reports whether the table grants cap to role.
func RoleHasCapability(role models.Role, cap Capability) bool {
	return roleCapabilities[role][cap]
}

// RequireCapability rejects requests whose authenticated role is not granted
// the capability. Runs after JWTMiddleware.
func RequireCapability(cap Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !RoleHasCapability(role, cap) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
