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

// HistoryService orchestrates the role visibility policy, the filter
// compiler and the history repository.
type HistoryService interface {
	List(ctx context.Context, role models.Role, callerID uuid.UUID, filter *models.HistoryFilter) ([]*models.HistoryRecord, error)
	Create(ctx context.Context, role models.Role, callerID uuid.UUID, input *CreateHistoryInput) (*models.RentalHistory, error)
	AttachImages(ctx context.Context, historyID uuid.UUID, role models.Role, callerID uuid.UUID, waterImagePath, electricityImagePath *string) error
}

// CreateHistoryInput is the typed creation payload. Meter readings are
// pointers so that an omitted or empty-string reading stays NULL.
type CreateHistoryInput struct {
	ProjectID                uuid.UUID
	RentalDate               time.Time
	Amount                   *float64
	PreviousWaterMeter       *float64
	CurrentWaterMeter        *float64
	PreviousElectricityMeter *float64
	CurrentElectricityMeter  *float64
	Status                   string
}

type historyService struct {
	historyRepo repositories.HistoryRepository
	projectRepo repositories.ProjectRepository
	ownerRepo   repositories.ProjectOwnerRepository
}

func NewHistoryService(historyRepo repositories.HistoryRepository, projectRepo repositories.ProjectRepository, ownerRepo repositories.ProjectOwnerRepository) HistoryService {
	return &historyService{
		historyRepo: historyRepo,
		projectRepo: projectRepo,
		ownerRepo:   ownerRepo,
	}
}

// buildConditions compiles the optional filters into predicates, one
// fragment and one bound value per present filter, in a fixed order.
func buildConditions(qb *repositories.ConditionBuilder, f *models.HistoryFilter) error {
	if f.StartDate != "" {
		if err := qb.Where("rh.rental_date >= ?", f.StartDate); err != nil {
			return err
		}
	}
	if f.EndDate != "" {
		if err := qb.Where("rh.rental_date <= ?", f.EndDate); err != nil {
			return err
		}
	}
	if f.Status != "" {
		if err := qb.Where("rh.status = ?", f.Status); err != nil {
			return err
		}
	}
	if f.Month != "" {
		if err := qb.Where("EXTRACT(MONTH FROM rh.rental_date) = ?", f.Month); err != nil {
			return err
		}
	}
	if f.Year != "" {
		if err := qb.Where("EXTRACT(YEAR FROM rh.rental_date) = ?", f.Year); err != nil {
			return err
		}
	}
	if f.ProjectID != nil {
		if err := qb.Where("rh.project_id = ?", *f.ProjectID); err != nil {
			return err
		}
	}
	if f.OwnerID != nil {
		if err := qb.Where("po.user_id = ?", *f.OwnerID); err != nil {
			return err
		}
	}
	if f.RecorderUsername != "" {
		if err := qb.Where("ru.username = ?", f.RecorderUsername); err != nil {
			return err
		}
	}
	if f.Username != "" {
		if err := qb.Where("u.username = ?", f.Username); err != nil {
			return err
		}
	}
	if f.CreatedStartDate != "" {
		if err := qb.Where("rh.created_at >= ?", f.CreatedStartDate); err != nil {
			return err
		}
	}
	if f.CreatedEndDate != "" {
		if err := qb.Where("rh.created_at <= ?", f.CreatedEndDate); err != nil {
			return err
		}
	}
	return nil
}

func (s *historyService) List(ctx context.Context, role models.Role, callerID uuid.UUID, filter *models.HistoryFilter) ([]*models.HistoryRecord, error) {
	if filter == nil {
		filter = &models.HistoryFilter{}
	}

	// An ownerId that appears nowhere in project_owners can never match:
	// return the empty set without running the main query.
	if filter.OwnerID != nil {
		ownsAny, err := s.ownerRepo.UserOwnsAny(ctx, *filter.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("owner pre-check failed: %w", err)
		}
		if !ownsAny {
			return []*models.HistoryRecord{}, nil
		}
	}

	qb := &repositories.ConditionBuilder{}
	if err := applyVisibility(qb, role, callerID); err != nil {
		return nil, err
	}
	if err := buildConditions(qb, filter); err != nil {
		return nil, err
	}

	records, err := s.historyRepo.List(ctx, qb, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if records == nil {
		records = []*models.HistoryRecord{}
	}
	return records, nil
}

func (s *historyService) Create(ctx context.Context, role models.Role, callerID uuid.UUID, input *CreateHistoryInput) (*models.RentalHistory, error) {
	if input.Status == "" {
		input.Status = models.HistoryStatusPending
	}
	if !models.ValidHistoryStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err == pgx.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	if role == models.RoleUser {
		isOwner, err := s.ownerRepo.Exists(ctx, input.ProjectID, callerID)
		if err != nil {
			return nil, fmt.Errorf("owner check failed: %w", err)
		}
		if !isOwner {
			return nil, ErrNotProjectOwner
		}
	}

	waterUnits, waterBill := MeterBilling(input.PreviousWaterMeter, input.CurrentWaterMeter, project.WaterUnitRate)
	electricityUnits, electricityBill := MeterBilling(input.PreviousElectricityMeter, input.CurrentElectricityMeter, project.ElectricityUnitRate)

	now := time.Now()
	history := &models.RentalHistory{
		ID:                       uuid.New(),
		UserID:                   callerID,
		RecorderID:               callerID,
		ProjectID:                input.ProjectID,
		RentalDate:               input.RentalDate,
		Amount:                   input.Amount,
		PreviousWaterMeter:       input.PreviousWaterMeter,
		CurrentWaterMeter:        input.CurrentWaterMeter,
		WaterUnits:               waterUnits,
		WaterBill:                waterBill,
		PreviousElectricityMeter: input.PreviousElectricityMeter,
		CurrentElectricityMeter:  input.CurrentElectricityMeter,
		ElectricityUnits:         electricityUnits,
		ElectricityBill:          electricityBill,
		Status:                   input.Status,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	// The rate read and the insert are separate round-trips; a rate change
	// committed in between is not detected.
	if err := s.historyRepo.Create(ctx, history); err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}
	return history, nil
}

func (s *historyService) AttachImages(ctx context.Context, historyID uuid.UUID, role models.Role, callerID uuid.UUID, waterImagePath, electricityImagePath *string) error {
	history, err := s.historyRepo.GetByID(ctx, historyID)
	if err == pgx.ErrNoRows {
		return ErrHistoryNotFound
	}
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	switch role {
	case models.RoleUser:
		isOwner, err := s.ownerRepo.Exists(ctx, history.ProjectID, callerID)
		if err != nil {
			return fmt.Errorf("owner check failed: %w", err)
		}
		if !isOwner && history.UserID != callerID {
			return ErrNotProjectOwner
		}
	case models.RoleAdmin:
		if history.UserID != callerID {
			return ErrNotProjectOwner
		}
	}

	if err := s.historyRepo.UpdateImagePaths(ctx, historyID, waterImagePath, electricityImagePath); err != nil {
		return fmt.Errorf("update image paths: %w", err)
	}
	return nil
}
