package repositories

import (
	"context"
	"testing"
	"time"

	"rentalbill/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var historyColumns = []string{
	"id", "user_id", "recorder_id", "project_id", "rental_date", "amount",
	"previous_water_meter", "current_water_meter", "water_units", "water_bill",
	"previous_electricity_meter", "current_electricity_meter", "electricity_units", "electricity_bill",
	"water_image_path", "electricity_image_path", "water_description", "electricity_description",
	"status", "created_at", "updated_at",
	"project_name", "username", "recorder_username",
	"owner_id", "owner_first_name", "owner_last_name",
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

type HistoryRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo HistoryRepository
	ctx  context.Context
}

func (suite *HistoryRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewHistoryRepo(mock)
	suite.ctx = context.Background()
}

func (suite *HistoryRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestHistoryRepoTestSuite(t *testing.T) {
	suite.Run(t, new(HistoryRepoTestSuite))
}

func (suite *HistoryRepoTestSuite) sampleRow(id uuid.UUID) []any {
	now := time.Now()
	ownerID := uuid.New()
	return []any{
		id, uuid.New(), uuid.New(), uuid.New(), now, floatPtr(5000),
		floatPtr(100), floatPtr(120), 20.0, 200.0,
		floatPtr(50), floatPtr(80), 30.0, 240.0,
		nil, nil, strPtr("leaking valve"), nil,
		models.HistoryStatusPending, now, now,
		"Baan Suan", "tenant1", "recorder1",
		&ownerID, strPtr("Malee"), strPtr("S"),
	}
}

func (suite *HistoryRepoTestSuite) TestList_NoConditions() {
	id := uuid.New()
	suite.mock.ExpectQuery(`(?s)SELECT rh\.id, rh\.user_id, rh\.recorder_id.*FROM rental_history rh.*ORDER BY rh\.rental_date DESC`).
		WillReturnRows(pgxmock.NewRows(historyColumns).AddRow(suite.sampleRow(id)...))

	qb := &ConditionBuilder{}
	records, err := suite.repo.List(suite.ctx, qb, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), records, 1)
	assert.Equal(suite.T(), id, records[0].ID)
	assert.Equal(suite.T(), "Baan Suan", records[0].ProjectName)
	assert.Equal(suite.T(), 200.0, records[0].WaterBill)
}

func (suite *HistoryRepoTestSuite) TestList_ConditionsAndLimitBindInOrder() {
	qb := &ConditionBuilder{}
	assert.NoError(suite.T(), qb.Where("rh.status = ?", models.HistoryStatusCompleted))
	assert.NoError(suite.T(), qb.Where("u.username = ?", "tenant1"))
	limit := 10

	suite.mock.ExpectQuery(`WHERE rh\.status = \$1 AND u\.username = \$2.*ORDER BY rh\.rental_date DESC LIMIT \$3`).
		WithArgs(models.HistoryStatusCompleted, "tenant1", 10).
		WillReturnRows(pgxmock.NewRows(historyColumns))

	records, err := suite.repo.List(suite.ctx, qb, &limit)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), records)
}

func (suite *HistoryRepoTestSuite) TestCreate() {
	now := time.Now()
	h := &models.RentalHistory{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		RecorderID:         uuid.New(),
		ProjectID:          uuid.New(),
		RentalDate:         now,
		Amount:             floatPtr(5000),
		PreviousWaterMeter: floatPtr(100),
		CurrentWaterMeter:  floatPtr(120),
		WaterUnits:         20,
		WaterBill:          200,
		Status:             models.HistoryStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	suite.mock.ExpectExec(`INSERT INTO rental_history`).
		WithArgs(h.ID, h.UserID, h.RecorderID, h.ProjectID, h.RentalDate, h.Amount,
			h.PreviousWaterMeter, h.CurrentWaterMeter, h.WaterUnits, h.WaterBill,
			h.PreviousElectricityMeter, h.CurrentElectricityMeter, h.ElectricityUnits, h.ElectricityBill,
			h.Status, h.CreatedAt, h.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.repo.Create(suite.ctx, h))
}

func (suite *HistoryRepoTestSuite) TestUpdateImagePaths_WaterOnly() {
	id := uuid.New()
	water := "/uploads/water.png"

	suite.mock.ExpectExec(`UPDATE rental_history SET water_image_path = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(water, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.UpdateImagePaths(suite.ctx, id, &water, nil))
}

func (suite *HistoryRepoTestSuite) TestUpdateImagePaths_BothImages() {
	id := uuid.New()
	water := "/uploads/water.png"
	electricity := "/uploads/electricity.png"

	suite.mock.ExpectExec(`UPDATE rental_history SET water_image_path = \$1, electricity_image_path = \$2, updated_at = NOW\(\) WHERE id = \$3`).
		WithArgs(water, electricity, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.UpdateImagePaths(suite.ctx, id, &water, &electricity))
}

func (suite *HistoryRepoTestSuite) TestUpdateImagePaths_NothingSupplied() {
	// No image means no statement at all.
	assert.NoError(suite.T(), suite.repo.UpdateImagePaths(suite.ctx, uuid.New(), nil, nil))
}

func (suite *HistoryRepoTestSuite) TestMonthlySummary_ScopedByPredicate() {
	callerID := uuid.New()
	qb := &ConditionBuilder{}
	assert.NoError(suite.T(), qb.Where("po2.user_id = ?", callerID))

	projectID := uuid.New()
	suite.mock.ExpectQuery(`(?s)SELECT to_char\(rh\.rental_date, 'YYYY-MM'\).*GROUP BY month, p\.id, p\.name`).
		WithArgs(callerID).
		WillReturnRows(pgxmock.NewRows([]string{"month", "id", "name", "count", "rent", "water", "electricity", "grand"}).
			AddRow("2025-08", projectID, "Baan Suan", 3, 15000.0, 600.0, 720.0, 16320.0))

	rows, err := suite.repo.MonthlySummary(suite.ctx, qb)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), "2025-08", rows[0].Month)
	assert.Equal(suite.T(), 16320.0, rows[0].GrandTotal)
}

func (suite *HistoryRepoTestSuite) TestCountByStatusBefore() {
	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rental_history WHERE status = \$1 AND created_at < \$2`).
		WithArgs(models.HistoryStatusPending, cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	count, err := suite.repo.CountByStatusBefore(suite.ctx, models.HistoryStatusPending, cutoff)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, count)
}
