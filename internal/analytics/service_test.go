package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentalbill/internal/models"
	"rentalbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Create(ctx context.Context, history *models.RentalHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *mockHistoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentalHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalHistory), args.Error(1)
}

func (m *mockHistoryRepo) List(ctx context.Context, qb *repositories.ConditionBuilder, limit *int) ([]*models.HistoryRecord, error) {
	args := m.Called(ctx, qb, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryRecord), args.Error(1)
}

func (m *mockHistoryRepo) UpdateImagePaths(ctx context.Context, id uuid.UUID, waterImagePath, electricityImagePath *string) error {
	args := m.Called(ctx, id, waterImagePath, electricityImagePath)
	return args.Error(0)
}

func (m *mockHistoryRepo) MonthlySummary(ctx context.Context, qb *repositories.ConditionBuilder) ([]*models.MonthlySummaryRow, error) {
	args := m.Called(ctx, qb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MonthlySummaryRow), args.Error(1)
}

func (m *mockHistoryRepo) CountByStatusBefore(ctx context.Context, status string, before time.Time) (int, error) {
	args := m.Called(ctx, status, before)
	return args.Int(0), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetMonthlySummary(ctx context.Context, key string) ([]*models.MonthlySummaryRow, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MonthlySummaryRow), args.Error(1)
}

func (m *mockCache) SetMonthlySummary(ctx context.Context, key string, rows []*models.MonthlySummaryRow, ttl time.Duration) error {
	args := m.Called(ctx, key, rows, ttl)
	return args.Error(0)
}

func (m *mockCache) InvalidateMonthlySummaries(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockCache) LoginFailures(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCache) IncrementLoginFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	args := m.Called(ctx, username, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCache) ResetLoginFailures(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *mockCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestMonthlySummary_CacheHitSkipsQuery(t *testing.T) {
	ctx := context.Background()
	repo := &mockHistoryRepo{}
	cache := &mockCache{}
	svc := NewService(repo, cache)

	cached := []*models.MonthlySummaryRow{{Month: "2025-08", ProjectName: "Baan Suan"}}
	cache.On("GetMonthlySummary", ctx, "all").Return(cached, nil)

	rows, err := svc.MonthlySummary(ctx, models.RoleSuperadmin, uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, cached, rows)
	repo.AssertNotCalled(t, "MonthlySummary", mock.Anything, mock.Anything)
}

func TestMonthlySummary_UserRoleScopesQueryAndKey(t *testing.T) {
	ctx := context.Background()
	repo := &mockHistoryRepo{}
	cache := &mockCache{}
	svc := NewService(repo, cache)
	callerID := uuid.New()

	cache.On("GetMonthlySummary", ctx, callerID.String()).Return(nil, errors.New("cache miss"))
	repo.On("MonthlySummary", ctx, mock.MatchedBy(func(qb *repositories.ConditionBuilder) bool {
		return qb.Len() == 1 && assert.ObjectsAreEqual(callerID, qb.Args()[0])
	})).Return([]*models.MonthlySummaryRow{}, nil)
	cache.On("SetMonthlySummary", ctx, callerID.String(), mock.Anything, summaryTTL).Return(nil)

	rows, err := svc.MonthlySummary(ctx, models.RoleUser, callerID)
	assert.NoError(t, err)
	assert.NotNil(t, rows)
	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestRefreshGlobalSummary_ComputesUnscoped(t *testing.T) {
	ctx := context.Background()
	repo := &mockHistoryRepo{}
	cache := &mockCache{}
	svc := NewService(repo, cache)

	repo.On("MonthlySummary", ctx, mock.MatchedBy(func(qb *repositories.ConditionBuilder) bool {
		return qb.Len() == 0
	})).Return([]*models.MonthlySummaryRow{}, nil)
	cache.On("SetMonthlySummary", ctx, "all", mock.Anything, summaryTTL).Return(nil)

	assert.NoError(t, svc.RefreshGlobalSummary(ctx))
}
