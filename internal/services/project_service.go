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

// CreateProjectInput carries the project creation payload. OwnerID defaults
// to the creator when absent.
type CreateProjectInput struct {
	Name                string
	Description         *string
	StartDate           *time.Time
	EndDate             *time.Time
	WaterUnitRate       float64
	ElectricityUnitRate float64
	OwnerID             *uuid.UUID
}

type ProjectService interface {
	List(ctx context.Context, role models.Role, callerID uuid.UUID) ([]*models.ProjectRecord, error)
	Create(ctx context.Context, callerID uuid.UUID, input *CreateProjectInput) (*models.Project, error)
	AttachImage(ctx context.Context, projectID uuid.UUID, role models.Role, callerID uuid.UUID, imagePath string) error
	ListOwners(ctx context.Context) ([]*models.OwnerSummary, error)
}

type projectService struct {
	projectRepo repositories.ProjectRepository
	ownerRepo   repositories.ProjectOwnerRepository
}

func NewProjectService(projectRepo repositories.ProjectRepository, ownerRepo repositories.ProjectOwnerRepository) ProjectService {
	return &projectService{projectRepo: projectRepo, ownerRepo: ownerRepo}
}

func (s *projectService) List(ctx context.Context, role models.Role, callerID uuid.UUID) ([]*models.ProjectRecord, error) {
	var ownerScope *uuid.UUID
	if role == models.RoleUser {
		ownerScope = &callerID
	}
	projects, err := s.projectRepo.List(ctx, ownerScope)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []*models.ProjectRecord{}
	}
	return projects, nil
}

func (s *projectService) Create(ctx context.Context, callerID uuid.UUID, input *CreateProjectInput) (*models.Project, error) {
	project := &models.Project{
		ID:                  uuid.New(),
		UserID:              callerID,
		Name:                input.Name,
		Description:         input.Description,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		WaterUnitRate:       input.WaterUnitRate,
		ElectricityUnitRate: input.ElectricityUnitRate,
		CreatedAt:           time.Now(),
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	ownerID := callerID
	if input.OwnerID != nil {
		ownerID = *input.OwnerID
	}
	owner := &models.ProjectOwner{ProjectID: project.ID, UserID: ownerID}
	if err := s.ownerRepo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("insert project owner: %w", err)
	}
	return project, nil
}

func (s *projectService) AttachImage(ctx context.Context, projectID uuid.UUID, role models.Role, callerID uuid.UUID, imagePath string) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err == pgx.ErrNoRows {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	// Only the superadmin or the creating admin may replace the image.
	if role != models.RoleSuperadmin && project.UserID != callerID {
		return ErrNotProjectOwner
	}

	if err := s.projectRepo.UpdateImagePath(ctx, projectID, imagePath); err != nil {
		return fmt.Errorf("update image path: %w", err)
	}
	return nil
}

func (s *projectService) ListOwners(ctx context.Context) ([]*models.OwnerSummary, error) {
	owners, err := s.ownerRepo.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project owners: %w", err)
	}
	if owners == nil {
		owners = []*models.OwnerSummary{}
	}
	return owners, nil
}
