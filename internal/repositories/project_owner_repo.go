package repositories

import (
	"context"

	"rentalbill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProjectOwnerRepository interface {
	Create(ctx context.Context, owner *models.ProjectOwner) error
	Exists(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	UserOwnsAny(ctx context.Context, userID uuid.UUID) (bool, error)
	ListOwners(ctx context.Context) ([]*models.OwnerSummary, error)
}

type projectOwnerRepo struct {
	db DB
}

func NewProjectOwnerRepo(db DB) ProjectOwnerRepository {
	return &projectOwnerRepo{db: db}
}

func (r *projectOwnerRepo) Create(ctx context.Context, owner *models.ProjectOwner) error {
	query := `
		INSERT INTO project_owners (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, owner.ProjectID, owner.UserID)
	return err
}

// Exists reports whether userID is registered as an owner of projectID.
func (r *projectOwnerRepo) Exists(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM project_owners WHERE project_id = $1 AND user_id = $2`
	var one int
	err := r.db.QueryRow(ctx, query, projectID, userID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UserOwnsAny reports whether userID appears in project_owners at all. The
// history listing uses it to short-circuit an ownerId filter that can never
// match.
func (r *projectOwnerRepo) UserOwnsAny(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM project_owners WHERE user_id = $1 LIMIT 1`
	var one int
	err := r.db.QueryRow(ctx, query, userID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *projectOwnerRepo) ListOwners(ctx context.Context) ([]*models.OwnerSummary, error) {
	query := `
		SELECT DISTINCT u.id, u.first_name, u.last_name
		FROM users u
		JOIN project_owners po ON u.id = po.user_id
		ORDER BY u.first_name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []*models.OwnerSummary
	for rows.Next() {
		owner := &models.OwnerSummary{}
		if err := rows.Scan(&owner.ID, &owner.FirstName, &owner.LastName); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}
