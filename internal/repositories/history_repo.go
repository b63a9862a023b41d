package repositories

import (
	"context"
	"time"

	"rentalbill/internal/models"

	"github.com/google/uuid"
)

// historyBaseSelect joins a rental history row with its project, the subject
// user, the recording user and (via the owner join) the display owner.
const historyBaseSelect = `
	SELECT rh.id, rh.user_id, rh.recorder_id, rh.project_id, rh.rental_date, rh.amount,
	       rh.previous_water_meter, rh.current_water_meter, rh.water_units, rh.water_bill,
	       rh.previous_electricity_meter, rh.current_electricity_meter, rh.electricity_units, rh.electricity_bill,
	       rh.water_image_path, rh.electricity_image_path, rh.water_description, rh.electricity_description,
	       rh.status, rh.created_at, rh.updated_at,
	       p.name AS project_name, u.username, ru.username AS recorder_username,
	       po.user_id AS owner_id, ou.first_name AS owner_first_name, ou.last_name AS owner_last_name
	FROM rental_history rh
	JOIN projects p ON rh.project_id = p.id
	JOIN users u ON rh.user_id = u.id
	JOIN users ru ON rh.recorder_id = ru.id
	LEFT JOIN project_owners po ON p.id = po.project_id
	LEFT JOIN users ou ON po.user_id = ou.id
`

type HistoryRepository interface {
	Create(ctx context.Context, history *models.RentalHistory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RentalHistory, error)
	List(ctx context.Context, qb *ConditionBuilder, limit *int) ([]*models.HistoryRecord, error)
	UpdateImagePaths(ctx context.Context, id uuid.UUID, waterImagePath, electricityImagePath *string) error
	MonthlySummary(ctx context.Context, qb *ConditionBuilder) ([]*models.MonthlySummaryRow, error)
	CountByStatusBefore(ctx context.Context, status string, before time.Time) (int, error)
}

type historyRepo struct {
	db DB
}

func NewHistoryRepo(db DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, h *models.RentalHistory) error {
	query := `
		INSERT INTO rental_history (id, user_id, recorder_id, project_id, rental_date, amount,
			previous_water_meter, current_water_meter, water_units, water_bill,
			previous_electricity_meter, current_electricity_meter, electricity_units, electricity_bill,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.Exec(ctx, query, h.ID, h.UserID, h.RecorderID, h.ProjectID, h.RentalDate, h.Amount,
		h.PreviousWaterMeter, h.CurrentWaterMeter, h.WaterUnits, h.WaterBill,
		h.PreviousElectricityMeter, h.CurrentElectricityMeter, h.ElectricityUnits, h.ElectricityBill,
		h.Status, h.CreatedAt, h.UpdatedAt)
	return err
}

func (r *historyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentalHistory, error) {
	h := &models.RentalHistory{}
	query := `
		SELECT id, user_id, recorder_id, project_id, rental_date, amount, water_bill, electricity_bill, status
		FROM rental_history
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&h.ID, &h.UserID, &h.RecorderID, &h.ProjectID, &h.RentalDate, &h.Amount, &h.WaterBill, &h.ElectricityBill, &h.Status)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// List executes the joined history query with the caller-assembled predicate
// set. Placeholder ordering is owned by the builder; the optional limit binds
// after every predicate value.
func (r *historyRepo) List(ctx context.Context, qb *ConditionBuilder, limit *int) ([]*models.HistoryRecord, error) {
	query := historyBaseSelect + qb.Clause() + " ORDER BY rh.rental_date DESC"
	if limit != nil {
		query += " LIMIT " + qb.Bind(*limit)
	}

	rows, err := r.db.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		rec := &models.HistoryRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.RecorderID, &rec.ProjectID, &rec.RentalDate, &rec.Amount,
			&rec.PreviousWaterMeter, &rec.CurrentWaterMeter, &rec.WaterUnits, &rec.WaterBill,
			&rec.PreviousElectricityMeter, &rec.CurrentElectricityMeter, &rec.ElectricityUnits, &rec.ElectricityBill,
			&rec.WaterImagePath, &rec.ElectricityImagePath, &rec.WaterDescription, &rec.ElectricityDescription,
			&rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.ProjectName, &rec.Username, &rec.RecorderUsername,
			&rec.OwnerID, &rec.OwnerFirstName, &rec.OwnerLastName,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateImagePaths sets only the image path columns that were supplied,
// building the partial SET clause with the same ordinal discipline as the
// listing filters.
func (r *historyRepo) UpdateImagePaths(ctx context.Context, id uuid.UUID, waterImagePath, electricityImagePath *string) error {
	qb := &ConditionBuilder{}
	var fields []string
	if waterImagePath != nil {
		fields = append(fields, "water_image_path = "+qb.Bind(*waterImagePath))
	}
	if electricityImagePath != nil {
		fields = append(fields, "electricity_image_path = "+qb.Bind(*electricityImagePath))
	}
	if len(fields) == 0 {
		return nil
	}
	fields = append(fields, "updated_at = NOW()")

	query := "UPDATE rental_history SET "
	for i, f := range fields {
		if i > 0 {
			query += ", "
		}
		query += f
	}
	query += " WHERE id = " + qb.Bind(id)

	_, err := r.db.Exec(ctx, query, qb.Args()...)
	return err
}

// MonthlySummary aggregates rent and utility totals per month and project,
// subject to the same visibility predicates as the listing.
func (r *historyRepo) MonthlySummary(ctx context.Context, qb *ConditionBuilder) ([]*models.MonthlySummaryRow, error) {
	query := `
		SELECT to_char(rh.rental_date, 'YYYY-MM') AS month, p.id, p.name, COUNT(*),
		       COALESCE(SUM(rh.amount), 0), SUM(rh.water_bill), SUM(rh.electricity_bill),
		       COALESCE(SUM(rh.amount), 0) + SUM(rh.water_bill) + SUM(rh.electricity_bill)
		FROM rental_history rh
		JOIN projects p ON rh.project_id = p.id
	` + qb.Clause() + `
		GROUP BY month, p.id, p.name
		ORDER BY month DESC, p.name
	`
	rows, err := r.db.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []*models.MonthlySummaryRow
	for rows.Next() {
		row := &models.MonthlySummaryRow{}
		if err := rows.Scan(&row.Month, &row.ProjectID, &row.ProjectName, &row.Entries, &row.RentTotal, &row.WaterTotal, &row.ElectricityTotal, &row.GrandTotal); err != nil {
			return nil, err
		}
		summary = append(summary, row)
	}
	return summary, rows.Err()
}

func (r *historyRepo) CountByStatusBefore(ctx context.Context, status string, before time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM rental_history WHERE status = $1 AND created_at < $2`
	var count int
	err := r.db.QueryRow(ctx, query, status, before).Scan(&count)
	return count, err
}
