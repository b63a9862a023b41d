package services_test

import (
	"context"
	"testing"

	"rentalbill/internal/models"
	"rentalbill/internal/repositories"
	"rentalbill/internal/services"
	"rentalbill/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the visibility policy against a real database: a user-role caller
// sees exactly the rows of projects they own, and an owner-less user gets an
// empty list rather than an error.
func TestHistoryVisibility_Integration(t *testing.T) {
	db := testhelpers.SetupTestDB(t, "")
	defer db.Cleanup()

	ctx := context.Background()
	historyRepo := repositories.NewHistoryRepo(db.Pool)
	projectRepo := repositories.NewProjectRepo(db.Pool)
	ownerRepo := repositories.NewProjectOwnerRepo(db.Pool)
	svc := services.NewHistoryService(historyRepo, projectRepo, ownerRepo)

	admin := testhelpers.SetupTestUser(t, db, models.RoleAdmin)
	owner := testhelpers.SetupTestUser(t, db, models.RoleUser)
	outsider := testhelpers.SetupTestUser(t, db, models.RoleUser)

	ownedProject := testhelpers.SetupTestProject(t, db, admin, owner)
	otherProject := testhelpers.SetupTestProject(t, db, admin, admin)

	ownedHistory := testhelpers.SetupTestHistory(t, db, ownedProject, owner, models.HistoryStatusPending)
	testhelpers.SetupTestHistory(t, db, otherProject, admin, models.HistoryStatusPending)

	ownerRows, err := svc.List(ctx, models.RoleUser, owner, nil)
	require.NoError(t, err)
	for _, row := range ownerRows {
		assert.Equal(t, ownedProject, row.ProjectID)
	}
	found := false
	for _, row := range ownerRows {
		if row.ID == ownedHistory {
			found = true
		}
	}
	assert.True(t, found, "owner should see the history of their project")

	outsiderRows, err := svc.List(ctx, models.RoleUser, outsider, nil)
	require.NoError(t, err)
	assert.Empty(t, outsiderRows)
}
