package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	UserID              uuid.UUID  `json:"user_id" db:"user_id"`
	Name                string     `json:"name" db:"name"`
	Description         *string    `json:"description" db:"description"`
	StartDate           *time.Time `json:"start_date" db:"start_date"`
	EndDate             *time.Time `json:"end_date" db:"end_date"`
	WaterUnitRate       float64    `json:"water_unit_rate" db:"water_unit_rate"`
	ElectricityUnitRate float64    `json:"electricity_unit_rate" db:"electricity_unit_rate"`
	ImagePath           *string    `json:"image_path" db:"image_path"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}

// ProjectRecord is a project row joined with one of its owners for display.
type ProjectRecord struct {
	Project
	OwnerFirstName *string `json:"owner_first_name"`
	OwnerLastName  *string `json:"owner_last_name"`
}

type ProjectOwner struct {
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
}

// OwnerSummary identifies a user who owns at least one project.
type OwnerSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}
