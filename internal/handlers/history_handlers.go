package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rentalbill/internal/common"
	"rentalbill/internal/models"
	"rentalbill/internal/services"

	"github.com/labstack/echo/v4"
)

type HistoryHandlers struct {
	historyService services.HistoryService
	storageService services.StorageService
	exportService  services.ExportService
}

func NewHistoryHandlers(historyService services.HistoryService, storageService services.StorageService, exportService services.ExportService) *HistoryHandlers {
	return &HistoryHandlers{
		historyService: historyService,
		storageService: storageService,
		exportService:  exportService,
	}
}

type CreateHistoryRequest struct {
	ProjectID                string               `json:"project_id"`
	RentalDate               string               `json:"rental_date"`
	Amount                   models.NullableFloat `json:"amount"`
	PreviousWaterMeter       models.NullableFloat `json:"previous_water_meter"`
	CurrentWaterMeter        models.NullableFloat `json:"current_water_meter"`
	PreviousElectricityMeter models.NullableFloat `json:"previous_electricity_meter"`
	CurrentElectricityMeter  models.NullableFloat `json:"current_electricity_meter"`
	Status                   string               `json:"status"`
}

// parseHistoryFilter reads the recognized query parameters into a filter.
// Unknown parameters are ignored; a limit that does not parse as an integer
// is dropped rather than rejected.
func parseHistoryFilter(c echo.Context) (*models.HistoryFilter, error) {
	f := &models.HistoryFilter{
		StartDate:        c.QueryParam("startDate"),
		EndDate:          c.QueryParam("endDate"),
		Status:           c.QueryParam("status"),
		Month:            c.QueryParam("month"),
		Year:             c.QueryParam("year"),
		RecorderUsername: c.QueryParam("recorderUsername"),
		Username:         c.QueryParam("username"),
		CreatedStartDate: c.QueryParam("createdStartDate"),
		CreatedEndDate:   c.QueryParam("createdEndDate"),
	}

	for _, pair := range []struct {
		value, name string
	}{
		{f.StartDate, "startDate"},
		{f.EndDate, "endDate"},
		{f.CreatedStartDate, "createdStartDate"},
		{f.CreatedEndDate, "createdEndDate"},
	} {
		if err := common.ValidateDateFormat(pair.value, pair.name); err != nil {
			return nil, err
		}
	}

	if f.Status != "" && !models.ValidHistoryStatus(f.Status) {
		return nil, fmt.Errorf("status must be one of pending, completed, cancelled")
	}

	if raw := c.QueryParam("projectId"); raw != "" {
		projectID, err := common.ValidateUUID(raw, "projectId")
		if err != nil {
			return nil, err
		}
		f.ProjectID = &projectID
	}
	if raw := c.QueryParam("ownerId"); raw != "" {
		ownerID, err := common.ValidateUUID(raw, "ownerId")
		if err != nil {
			return nil, err
		}
		f.OwnerID = &ownerID
	}
	if raw := c.QueryParam("limit"); raw != "" {
		// Any integer is honored, including 0 (an intentionally empty page).
		if limit, err := strconv.Atoi(raw); err == nil {
			f.Limit = &limit
		}
	}
	return f, nil
}

func (h *HistoryHandlers) ListHistory(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}
	role, _ := common.GetRoleFromContext(ctx)

	filter, err := parseHistoryFilter(c)
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	records, err := h.historyService.List(ctx, role, callerID, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list rental history")
	}
	return c.JSON(http.StatusOK, records)
}

// CreateHistory records a rental period. Derived units and bills are computed
// server-side; the client never supplies them.
func (h *HistoryHandlers) CreateHistory(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}
	role, _ := common.GetRoleFromContext(ctx)

	var req CreateHistoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request format")
	}

	projectID, err := common.ValidateUUID(req.ProjectID, "project_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if err := common.ValidateRequiredString(req.RentalDate, "rental_date"); err != nil {
		return common.SendValidationError(c, err.Error())
	}
	rentalDate, err := time.Parse("2006-01-02", req.RentalDate)
	if err != nil {
		return common.SendValidationError(c, "rental_date must be in YYYY-MM-DD format")
	}

	input := &services.CreateHistoryInput{
		ProjectID:                projectID,
		RentalDate:               rentalDate,
		Amount:                   req.Amount.Value,
		PreviousWaterMeter:       req.PreviousWaterMeter.Value,
		CurrentWaterMeter:        req.CurrentWaterMeter.Value,
		PreviousElectricityMeter: req.PreviousElectricityMeter.Value,
		CurrentElectricityMeter:  req.CurrentElectricityMeter.Value,
		Status:                   req.Status,
	}

	history, err := h.historyService.Create(ctx, role, callerID, input)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		return common.SendValidationError(c, "status must be one of pending, completed, cancelled")
	case errors.Is(err, services.ErrProjectNotFound):
		return common.SendNotFoundError(c, "Project")
	case errors.Is(err, services.ErrNotProjectOwner):
		return common.SendForbiddenError(c)
	case err != nil:
		return common.SendServerError(c, "Failed to create rental history")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"id":               history.ID,
		"water_bill":       history.WaterBill,
		"electricity_bill": history.ElectricityBill,
	})
}

// UploadHistoryImages accepts water_image and electricity_image parts; either
// may be absent, and only the supplied ones overwrite stored paths.
func (h *HistoryHandlers) UploadHistoryImages(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}
	role, _ := common.GetRoleFromContext(ctx)

	historyID, err := common.ValidateUUID(c.Param("id"), "history id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var waterPath, electricityPath *string
	if file, err := c.FormFile("water_image"); err == nil {
		path, err := h.storageService.UploadImage(ctx, file)
		if errors.Is(err, services.ErrUnsupportedImage) || errors.Is(err, services.ErrImageTooLarge) {
			return common.SendValidationError(c, err.Error())
		}
		if err != nil {
			return common.SendServerError(c, "Failed to store water image")
		}
		waterPath = &path
	}
	if file, err := c.FormFile("electricity_image"); err == nil {
		path, err := h.storageService.UploadImage(ctx, file)
		if errors.Is(err, services.ErrUnsupportedImage) || errors.Is(err, services.ErrImageTooLarge) {
			return common.SendValidationError(c, err.Error())
		}
		if err != nil {
			return common.SendServerError(c, "Failed to store electricity image")
		}
		electricityPath = &path
	}

	if waterPath == nil && electricityPath == nil {
		return common.SendValidationError(c, "at least one of water_image or electricity_image is required")
	}

	err = h.historyService.AttachImages(ctx, historyID, role, callerID, waterPath, electricityPath)
	switch {
	case errors.Is(err, services.ErrHistoryNotFound):
		return common.SendNotFoundError(c, "Rental history")
	case errors.Is(err, services.ErrNotProjectOwner):
		return common.SendForbiddenError(c)
	case err != nil:
		return common.SendServerError(c, "Failed to attach images")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"water_image_path":       waterPath,
		"electricity_image_path": electricityPath,
	})
}

// ExportHistory streams the caller-visible history as an xlsx workbook. The
// same filters and visibility scoping as the listing apply.
func (h *HistoryHandlers) ExportHistory(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}
	role, _ := common.GetRoleFromContext(ctx)

	filter, err := parseHistoryFilter(c)
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	records, err := h.historyService.List(ctx, role, callerID, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list rental history")
	}

	buf, err := h.exportService.HistoryWorkbook(records)
	if err != nil {
		return common.SendServerError(c, "Failed to build export")
	}

	filename := fmt.Sprintf("rental-history-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
