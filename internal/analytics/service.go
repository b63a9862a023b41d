package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentalbill/internal/caching"
	"rentalbill/internal/models"
	"rentalbill/internal/repositories"

	"github.com/google/uuid"
)

const summaryTTL = 15 * time.Minute

// globalSummaryKey caches the unrestricted summary shared by every
// unrestricted role; user-role callers get per-caller keys.
const globalSummaryKey = "all"

// ownerScopePredicate mirrors the history listing's user-role visibility.
const ownerScopePredicate = `EXISTS (
		SELECT 1 FROM project_owners po2
		WHERE po2.project_id = rh.project_id AND po2.user_id = ?
	)`

// Service computes per-month, per-project billing aggregates with the same
// role scoping as the history listing, cached in Redis between refreshes.
type Service interface {
	MonthlySummary(ctx context.Context, role models.Role, callerID uuid.UUID) ([]*models.MonthlySummaryRow, error)
	RefreshGlobalSummary(ctx context.Context) error
}

type service struct {
	historyRepo repositories.HistoryRepository
	cacheSvc    caching.CacheService
}

func NewService(historyRepo repositories.HistoryRepository, cacheSvc caching.CacheService) Service {
	return &service{historyRepo: historyRepo, cacheSvc: cacheSvc}
}

func (s *service) MonthlySummary(ctx context.Context, role models.Role, callerID uuid.UUID) ([]*models.MonthlySummaryRow, error) {
	key := globalSummaryKey
	if role == models.RoleUser {
		key = callerID.String()
	}

	if cached, err := s.cacheSvc.GetMonthlySummary(ctx, key); err == nil {
		return cached, nil
	}

	rows, err := s.computeSummary(ctx, role, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetMonthlySummary(ctx, key, rows, summaryTTL); err != nil {
		log.Printf("Failed to cache monthly summary %s: %v", key, err)
	}
	return rows, nil
}

// RefreshGlobalSummary recomputes the unrestricted summary and replaces the
// cached copy. Run periodically by the background scheduler.
func (s *service) RefreshGlobalSummary(ctx context.Context) error {
	rows, err := s.computeSummary(ctx, models.RoleSuperadmin, uuid.Nil)
	if err != nil {
		return fmt.Errorf("refresh monthly summary: %w", err)
	}
	return s.cacheSvc.SetMonthlySummary(ctx, globalSummaryKey, rows, summaryTTL)
}

func (s *service) computeSummary(ctx context.Context, role models.Role, callerID uuid.UUID) ([]*models.MonthlySummaryRow, error) {
	qb := &repositories.ConditionBuilder{}
	if role == models.RoleUser {
		if err := qb.Where(ownerScopePredicate, callerID); err != nil {
			return nil, err
		}
	}
	rows, err := s.historyRepo.MonthlySummary(ctx, qb)
	if err != nil {
		return nil, fmt.Errorf("compute monthly summary: %w", err)
	}
	if rows == nil {
		rows = []*models.MonthlySummaryRow{}
	}
	return rows, nil
}
