package handlers

import (
	"errors"
	"net/http"
	"time"

	"rentalbill/internal/common"
	"rentalbill/internal/services"

	"github.com/labstack/echo/v4"
)

type BillHandlers struct {
	billService services.BillService
}

func NewBillHandlers(billService services.BillService) *BillHandlers {
	return &BillHandlers{billService: billService}
}

type CreateBillRequest struct {
	RentalHistoryID string `json:"rental_history_id"`
	BillNumber      string `json:"bill_number"`
	IssueDate       string `json:"issue_date"`
	Status          string `json:"status"`
}

func (h *BillHandlers) ListBills(c echo.Context) error {
	bills, err := h.billService.List(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list bills")
	}
	return c.JSON(http.StatusOK, bills)
}

// CreateBill issues an invoice for a history record. The amount is derived
// from the record's stored bills, never taken from the payload.
func (h *BillHandlers) CreateBill(c echo.Context) error {
	var req CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request format")
	}

	historyID, err := common.ValidateUUID(req.RentalHistoryID, "rental_history_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}
	if err := common.ValidateRequiredString(req.BillNumber, "bill_number"); err != nil {
		return common.SendValidationError(c, err.Error())
	}

	issueDate := time.Now()
	if req.IssueDate != "" {
		if err := common.ValidateDateFormat(req.IssueDate, "issue_date"); err != nil {
			return common.SendValidationError(c, err.Error())
		}
		issueDate, _ = time.Parse("2006-01-02", req.IssueDate)
	}

	status := req.Status
	if status == "" {
		status = "issued"
	}

	input := &services.CreateBillInput{
		RentalHistoryID: historyID,
		BillNumber:      req.BillNumber,
		IssueDate:       issueDate,
		Status:          status,
	}
	bill, err := h.billService.Create(c.Request().Context(), input)
	switch {
	case errors.Is(err, services.ErrHistoryNotFound):
		return common.SendNotFoundError(c, "Rental history")
	case err != nil:
		return common.SendServerError(c, "Failed to create bill")
	}
	return c.JSON(http.StatusCreated, bill)
}
