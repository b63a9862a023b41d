package handlers

import (
	"net/http"

	"rentalbill/internal/analytics"
	"rentalbill/internal/common"

	"github.com/labstack/echo/v4"
)

type SummaryHandlers struct {
	analyticsSvc analytics.Service
}

func NewSummaryHandlers(analyticsSvc analytics.Service) *SummaryHandlers {
	return &SummaryHandlers{analyticsSvc: analyticsSvc}
}

// MonthlySummary returns per-month, per-project billing totals scoped to the
// caller's visibility.
func (h *SummaryHandlers) MonthlySummary(c echo.Context) error {
	ctx := c.Request().Context()
	callerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, http.StatusUnauthorized, "User not authenticated")
	}
	role, _ := common.GetRoleFromContext(ctx)

	rows, err := h.analyticsSvc.MonthlySummary(ctx, role, callerID)
	if err != nil {
		return common.SendServerError(c, "Failed to compute monthly summary")
	}
	return c.JSON(http.StatusOK, rows)
}
