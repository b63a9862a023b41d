package handlers

import (
	"errors"
	"net/http"
	"time"

	"rentalbill/internal/common"
	"rentalbill/internal/services"

	"github.com/labstack/echo/v4"
)

type ProjectHandlers struct {
	projectService services.ProjectService
	storageService services.StorageService
}

func NewProjectHandlers(projectService services.ProjectService, storageService services.StorageService) *ProjectHandlers {
	return &ProjectHandlers{projectService: projectService, storageService: storageService}
}

type CreateProjectRequest struct {
	Name                string  `json:"name"`
	Description         *string `json:"description"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	WaterUnitRate       float64 `json:"water_unit_rate"`
	ElectricityUnitRate float64 `json:"electricity_unit_rate"`
	OwnerID             *string `json:"owner_id"`
}

// ListProjects returns the projects the caller may see. A user-role caller
// only sees projects they own.
func (h *ProjectHandlers) ListProjects(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}
	role, _ := common.GetRoleFromContext(ctx)

	projects, err := h.projectService.List(ctx, role, callerID)
	if err != nil {
		return common.SendServerError(c, "Failed to list projects")
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandlers) CreateProject(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if err := common.ValidateNonNegativeFloat(req.WaterUnitRate, "water_unit_rate"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if err := common.ValidateNonNegativeFloat(req.ElectricityUnitRate, "electricity_unit_rate"); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	input := &services.CreateProjectInput{
		Name:                req.Name,
		Description:         req.Description,
		WaterUnitRate:       req.WaterUnitRate,
		ElectricityUnitRate: req.ElectricityUnitRate,
	}

	startDate, err := parseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}
	input.StartDate = startDate

	endDate, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}
	input.EndDate = endDate

	if req.OwnerID != nil && *req.OwnerID != "" {
		ownerID, err := common.ValidateUUID(*req.OwnerID, "owner_id")
		if err != nil {
			return common.SendValidationError(c, err.Error())
		}
		input.OwnerID = &ownerID
	}

	project, err := h.projectService.Create(ctx, callerID, input)
	if err != nil {
		return common.SendServerError(c, "Failed to create project")
	}
	return c.JSON(http.StatusCreated, project)
}

// UploadProjectImage stores a replacement project image and records its path.
func (h *ProjectHandlers) UploadProjectImage(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}
	role, _ := common.GetRoleFromContext(ctx)

	projectID, err := common.ValidateUUID(c.Param("id"), "project id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image file is required")
	}

	imagePath, err := h.storageService.UploadImage(ctx, file)
	switch {
	case errors.Is(err, services.ErrUnsupportedImage), errors.Is(err, services.ErrImageTooLarge):
		return common.SendValidationError(c, err.Error())
	case err != nil:
		return common.SendServerError(c, "Failed to store image")
	}

	err = h.projectService.AttachImage(ctx, projectID, role, callerID, imagePath)
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		return common.SendNotFoundError(c, "Project")
	case errors.Is(err, services.ErrNotProjectOwner):
		return common.SendForbiddenError(c)
	case err != nil:
		return common.SendServerError(c, "Failed to update project image")
	}

	return c.JSON(http.StatusOK, map[string]string{"image_path": imagePath})
}

// ListOwners returns the users that own at least one project, for the
// dashboard's owner filter dropdown.
func (h *ProjectHandlers) ListOwners(c echo.Context) error {
	owners, err := h.projectService.ListOwners(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list project owners")
	}
	return c.JSON(http.StatusOK, owners)
}

func parseOptionalDate(value, fieldName string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if err := common.ValidateDateFormat(value, fieldName); err != nil {
		return nil, err
	}
	t, _ := time.Parse("2006-01-02", value)
	return &t, nil
}
