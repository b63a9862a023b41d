package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"rentalbill/internal/models"
	"rentalbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, history *models.RentalHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RentalHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalHistory), args.Error(1)
}

func (m *MockHistoryRepository) List(ctx context.Context, qb *repositories.ConditionBuilder, limit *int) ([]*models.HistoryRecord, error) {
	args := m.Called(ctx, qb, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryRecord), args.Error(1)
}

func (m *MockHistoryRepository) UpdateImagePaths(ctx context.Context, id uuid.UUID, waterImagePath, electricityImagePath *string) error {
	args := m.Called(ctx, id, waterImagePath, electricityImagePath)
	return args.Error(0)
}

func (m *MockHistoryRepository) MonthlySummary(ctx context.Context, qb *repositories.ConditionBuilder) ([]*models.MonthlySummaryRow, error) {
	args := m.Called(ctx, qb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MonthlySummaryRow), args.Error(1)
}

func (m *MockHistoryRepository) CountByStatusBefore(ctx context.Context, status string, before time.Time) (int, error) {
	args := m.Called(ctx, status, before)
	return args.Int(0), args.Error(1)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, ownerID *uuid.UUID) ([]*models.ProjectRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProjectRecord), args.Error(1)
}

func (m *MockProjectRepository) UpdateImagePath(ctx context.Context, id uuid.UUID, imagePath string) error {
	args := m.Called(ctx, id, imagePath)
	return args.Error(0)
}

type MockProjectOwnerRepository struct {
	mock.Mock
}

func (m *MockProjectOwnerRepository) Create(ctx context.Context, owner *models.ProjectOwner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockProjectOwnerRepository) Exists(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectOwnerRepository) UserOwnsAny(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectOwnerRepository) ListOwners(ctx context.Context) ([]*models.OwnerSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OwnerSummary), args.Error(1)
}

type HistoryServiceTestSuite struct {
	suite.Suite
	historyRepo *MockHistoryRepository
	projectRepo *MockProjectRepository
	ownerRepo   *MockProjectOwnerRepository
	service     HistoryService
	ctx         context.Context
	callerID    uuid.UUID
}

func (suite *HistoryServiceTestSuite) SetupTest() {
	suite.historyRepo = &MockHistoryRepository{}
	suite.projectRepo = &MockProjectRepository{}
	suite.ownerRepo = &MockProjectOwnerRepository{}
	suite.service = NewHistoryService(suite.historyRepo, suite.projectRepo, suite.ownerRepo)
	suite.ctx = context.Background()
	suite.callerID = uuid.New()

	suite.historyRepo.Test(suite.T())
	suite.projectRepo.Test(suite.T())
	suite.ownerRepo.Test(suite.T())
}

func (suite *HistoryServiceTestSuite) TearDownTest() {
	suite.historyRepo.AssertExpectations(suite.T())
	suite.projectRepo.AssertExpectations(suite.T())
	suite.ownerRepo.AssertExpectations(suite.T())
}

func TestHistoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(HistoryServiceTestSuite))
}

func (suite *HistoryServiceTestSuite) TestList_NoFiltersForUnrestrictedRole() {
	suite.historyRepo.On("List", suite.ctx, mock.MatchedBy(func(qb *repositories.ConditionBuilder) bool {
		return qb.Len() == 0
	}), (*int)(nil)).Return([]*models.HistoryRecord{}, nil)

	records, err := suite.service.List(suite.ctx, models.RoleSuperadmin, suite.callerID, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), records)
}

func (suite *HistoryServiceTestSuite) TestList_UserRoleGetsOwnershipPredicateFirst() {
	suite.historyRepo.On("List", suite.ctx, mock.MatchedBy(func(qb *repositories.ConditionBuilder) bool {
		if qb.Len() != 2 {
			return false
		}
		conds := qb.Conditions()
		args := qb.Args()
		// The ownership predicate binds the caller id as $1 before any
		// client-supplied filter.
		return assert.ObjectsAreEqual(suite.callerID, args[0]) &&
			strings.Contains(conds[0], "project_owners") && strings.Contains(conds[0], "$1") &&
			strings.Contains(conds[1], "rh.status = $2")
	}), (*int)(nil)).Return([]*models.HistoryRecord{}, nil)

	filter := &models.HistoryFilter{Status: models.HistoryStatusPending}
	_, err := suite.service.List(suite.ctx, models.RoleUser, suite.callerID, filter)
	assert.NoError(suite.T(), err)
}

func (suite *HistoryServiceTestSuite) TestList_AllFiltersCompileInOrder() {
	projectID := uuid.New()
	ownerID := uuid.New()
	limit := 25

	suite.ownerRepo.On("UserOwnsAny", suite.ctx, ownerID).Return(true, nil)
	suite.historyRepo.On("List", suite.ctx, mock.MatchedBy(func(qb *repositories.ConditionBuilder) bool {
		return qb.Len() == 11 && len(qb.Args()) == 11
	}), &limit).Return([]*models.HistoryRecord{}, nil)

	filter := &models.HistoryFilter{
		StartDate:        "2025-01-01",
		EndDate:          "2025-12-31",
		Status:           models.HistoryStatusCompleted,
		Month:            "6",
		Year:             "2025",
		ProjectID:        &projectID,
		OwnerID:          &ownerID,
		RecorderUsername: "recorder",
		Username:         "tenant",
		CreatedStartDate: "2025-01-01",
		CreatedEndDate:   "2025-12-31",
		Limit:            &limit,
	}
	_, err := suite.service.List(suite.ctx, models.RoleAdmin, suite.callerID, filter)
	assert.NoError(suite.T(), err)
}

func (suite *HistoryServiceTestSuite) TestList_UnknownOwnerShortCircuits() {
	ownerID := uuid.New()
	suite.ownerRepo.On("UserOwnsAny", suite.ctx, ownerID).Return(false, nil)

	records, err := suite.service.List(suite.ctx, models.RoleAdmin, suite.callerID, &models.HistoryFilter{OwnerID: &ownerID})
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), records)
	suite.historyRepo.AssertNotCalled(suite.T(), "List", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HistoryServiceTestSuite) TestCreate_DerivesUnitsAndBills() {
	projectID := uuid.New()
	project := &models.Project{
		ID:                  projectID,
		WaterUnitRate:       10,
		ElectricityUnitRate: 8,
	}
	suite.projectRepo.On("GetByID", suite.ctx, projectID).Return(project, nil)
	suite.historyRepo.On("Create", suite.ctx, mock.MatchedBy(func(h *models.RentalHistory) bool {
		return h.WaterUnits == 20 && h.WaterBill == 200 &&
			h.ElectricityUnits == 0 && h.ElectricityBill == 0 &&
			h.Status == models.HistoryStatusPending &&
			h.UserID == suite.callerID && h.RecorderID == suite.callerID
	})).Return(nil)

	input := &CreateHistoryInput{
		ProjectID:          projectID,
		RentalDate:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PreviousWaterMeter: floatPtr(100),
		CurrentWaterMeter:  floatPtr(120),
		// Electricity previous reading of zero counts as absent.
		PreviousElectricityMeter: floatPtr(0),
		CurrentElectricityMeter:  floatPtr(500),
	}
	history, err := suite.service.Create(suite.ctx, models.RoleAdmin, suite.callerID, input)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 200.0, history.WaterBill)
	assert.Equal(suite.T(), 0.0, history.ElectricityBill)
}

func (suite *HistoryServiceTestSuite) TestCreate_UnknownProject() {
	projectID := uuid.New()
	suite.projectRepo.On("GetByID", suite.ctx, projectID).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.Create(suite.ctx, models.RoleAdmin, suite.callerID, &CreateHistoryInput{
		ProjectID:  projectID,
		RentalDate: time.Now(),
	})
	assert.ErrorIs(suite.T(), err, ErrProjectNotFound)
}

func (suite *HistoryServiceTestSuite) TestCreate_UserMustOwnProject() {
	projectID := uuid.New()
	project := &models.Project{ID: projectID, WaterUnitRate: 10, ElectricityUnitRate: 8}
	suite.projectRepo.On("GetByID", suite.ctx, projectID).Return(project, nil)
	suite.ownerRepo.On("Exists", suite.ctx, projectID, suite.callerID).Return(false, nil)

	_, err := suite.service.Create(suite.ctx, models.RoleUser, suite.callerID, &CreateHistoryInput{
		ProjectID:  projectID,
		RentalDate: time.Now(),
	})
	assert.ErrorIs(suite.T(), err, ErrNotProjectOwner)
}

func (suite *HistoryServiceTestSuite) TestCreate_RejectsUnknownStatus() {
	_, err := suite.service.Create(suite.ctx, models.RoleAdmin, suite.callerID, &CreateHistoryInput{
		ProjectID:  uuid.New(),
		RentalDate: time.Now(),
		Status:     "archived",
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidStatus)
}

func (suite *HistoryServiceTestSuite) TestAttachImages_AdminMayOnlyTouchOwnRecords() {
	historyID := uuid.New()
	history := &models.RentalHistory{
		ID:        historyID,
		UserID:    uuid.New(), // someone else's record
		ProjectID: uuid.New(),
	}
	suite.historyRepo.On("GetByID", suite.ctx, historyID).Return(history, nil)

	path := "/uploads/water.png"
	err := suite.service.AttachImages(suite.ctx, historyID, models.RoleAdmin, suite.callerID, &path, nil)
	assert.ErrorIs(suite.T(), err, ErrNotProjectOwner)
}

func (suite *HistoryServiceTestSuite) TestAttachImages_PartialUpdate() {
	historyID := uuid.New()
	history := &models.RentalHistory{
		ID:        historyID,
		UserID:    suite.callerID,
		ProjectID: uuid.New(),
	}
	suite.historyRepo.On("GetByID", suite.ctx, historyID).Return(history, nil)

	path := "/uploads/water.png"
	suite.historyRepo.On("UpdateImagePaths", suite.ctx, historyID, &path, (*string)(nil)).Return(nil)

	err := suite.service.AttachImages(suite.ctx, historyID, models.RoleSuperadmin, suite.callerID, &path, nil)
	assert.NoError(suite.T(), err)
}
