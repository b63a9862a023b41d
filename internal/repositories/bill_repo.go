package repositories

import (
	"context"

	"rentalbill/internal/models"
)

type BillRepository interface {
	Create(ctx context.Context, bill *models.Bill) error
	List(ctx context.Context) ([]*models.BillRecord, error)
}

type billRepo struct {
	db DB
}

func NewBillRepo(db DB) BillRepository {
	return &billRepo{db: db}
}

func (r *billRepo) Create(ctx context.Context, bill *models.Bill) error {
	query := `
		INSERT INTO bills (id, rental_history_id, bill_number, issue_date, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, bill.ID, bill.RentalHistoryID, bill.BillNumber, bill.IssueDate, bill.Amount, bill.Status)
	return err
}

func (r *billRepo) List(ctx context.Context) ([]*models.BillRecord, error) {
	query := `
		SELECT b.id, b.rental_history_id, b.bill_number, b.issue_date, b.amount, b.status, b.created_at,
		       rh.rental_date, rh.previous_water_meter, rh.current_water_meter, rh.water_units, rh.water_bill,
		       rh.previous_electricity_meter, rh.current_electricity_meter, rh.electricity_units, rh.electricity_bill,
		       rh.water_image_path, rh.electricity_image_path,
		       u.username, p.name AS project_name, ru.username AS recorder_username,
		       ou.first_name AS owner_first_name, ou.last_name AS owner_last_name
		FROM bills b
		JOIN rental_history rh ON b.rental_history_id = rh.id
		JOIN users u ON rh.user_id = u.id
		JOIN users ru ON rh.recorder_id = ru.id
		JOIN projects p ON rh.project_id = p.id
		LEFT JOIN project_owners po ON p.id = po.project_id
		LEFT JOIN users ou ON po.user_id = ou.id
		ORDER BY b.issue_date DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.BillRecord
	for rows.Next() {
		rec := &models.BillRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.RentalHistoryID, &rec.BillNumber, &rec.IssueDate, &rec.Amount, &rec.Status, &rec.CreatedAt,
			&rec.RentalDate, &rec.PreviousWaterMeter, &rec.CurrentWaterMeter, &rec.WaterUnits, &rec.WaterBill,
			&rec.PreviousElectricityMeter, &rec.CurrentElectricityMeter, &rec.ElectricityUnits, &rec.ElectricityBill,
			&rec.WaterImagePath, &rec.ElectricityImagePath,
			&rec.Username, &rec.ProjectName, &rec.RecorderUsername,
			&rec.OwnerFirstName, &rec.OwnerLastName,
		); err != nil {
			return nil, err
		}
		bills = append(bills, rec)
	}
	return bills, rows.Err()
}
