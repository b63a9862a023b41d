package services

import (
	"context"
	"fmt"
	"time"

	"rentalbill/internal/models"
	"rentalbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateBillInput carries the invoice creation payload. The amount is not
// part of it: it is always derived from the referenced history record.
type CreateBillInput struct {
	RentalHistoryID uuid.UUID
	BillNumber      string
	IssueDate       time.Time
	Status          string
}

type BillService interface {
	List(ctx context.Context) ([]*models.BillRecord, error)
	Create(ctx context.Context, input *CreateBillInput) (*models.Bill, error)
}

type billService struct {
	billRepo    repositories.BillRepository
	historyRepo repositories.HistoryRepository
}

func NewBillService(billRepo repositories.BillRepository, historyRepo repositories.HistoryRepository) BillService {
	return &billService{billRepo: billRepo, historyRepo: historyRepo}
}

func (s *billService) List(ctx context.Context) ([]*models.BillRecord, error) {
	bills, err := s.billRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if bills == nil {
		bills = []*models.BillRecord{}
	}
	return bills, nil
}

func (s *billService) Create(ctx context.Context, input *CreateBillInput) (*models.Bill, error) {
	history, err := s.historyRepo.GetByID(ctx, input.RentalHistoryID)
	if err == pgx.ErrNoRows {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	// Total is frozen at creation time; later history edits do not reprice
	// an issued bill. The read and the insert are two round-trips.
	total := history.WaterBill + history.ElectricityBill
	if history.Amount != nil {
		total += *history.Amount
	}

	bill := &models.Bill{
		ID:              uuid.New(),
		RentalHistoryID: input.RentalHistoryID,
		BillNumber:      input.BillNumber,
		IssueDate:       input.IssueDate,
		Amount:          total,
		Status:          input.Status,
		CreatedAt:       time.Now(),
	}
	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}
	return bill, nil
}
