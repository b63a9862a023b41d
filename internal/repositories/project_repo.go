package repositories

import (
	"context"

	"rentalbill/internal/models"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, ownerID *uuid.UUID) ([]*models.ProjectRecord, error)
	UpdateImagePath(ctx context.Context, id uuid.UUID, imagePath string) error
}

type projectRepo struct {
	db DB
}

func NewProjectRepo(db DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, user_id, name, description, start_date, end_date, water_unit_rate, electricity_unit_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, project.ID, project.UserID, project.Name, project.Description, project.StartDate, project.EndDate, project.WaterUnitRate, project.ElectricityUnitRate)
	return err
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT id, user_id, name, description, start_date, end_date, water_unit_rate, electricity_unit_rate, image_path, created_at
		FROM projects
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&project.ID, &project.UserID, &project.Name, &project.Description, &project.StartDate, &project.EndDate, &project.WaterUnitRate, &project.ElectricityUnitRate, &project.ImagePath, &project.CreatedAt)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// List returns every project, or only the projects owned by ownerID when it
// is set (the user-role scoping).
func (r *projectRepo) List(ctx context.Context, ownerID *uuid.UUID) ([]*models.ProjectRecord, error) {
	qb := &ConditionBuilder{}
	query := `
		SELECT DISTINCT ON (p.id) p.id, p.user_id, p.name, p.description, p.start_date, p.end_date,
		       p.water_unit_rate, p.electricity_unit_rate, p.image_path, p.created_at,
		       u.first_name AS owner_first_name, u.last_name AS owner_last_name
		FROM projects p
		LEFT JOIN project_owners po ON p.id = po.project_id
		LEFT JOIN users u ON po.user_id = u.id
	`
	if ownerID != nil {
		if err := qb.Where("po.user_id = ?", *ownerID); err != nil {
			return nil, err
		}
	}
	query += qb.Clause() + " ORDER BY p.id"

	rows, err := r.db.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.ProjectRecord
	for rows.Next() {
		rec := &models.ProjectRecord{}
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Name, &rec.Description, &rec.StartDate, &rec.EndDate, &rec.WaterUnitRate, &rec.ElectricityUnitRate, &rec.ImagePath, &rec.CreatedAt, &rec.OwnerFirstName, &rec.OwnerLastName); err != nil {
			return nil, err
		}
		projects = append(projects, rec)
	}
	return projects, rows.Err()
}

func (r *projectRepo) UpdateImagePath(ctx context.Context, id uuid.UUID, imagePath string) error {
	query := `UPDATE projects SET image_path = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, imagePath, id)
	return err
}
