package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"rentalbill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// TestDB holds the database connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to the integration database, skipping the test when
// TEST_DATABASE_URL is not configured.
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			t.Skip("TEST_DATABASE_URL not set; skipping integration test")
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestUser inserts a user with the given role and returns its id.
func SetupTestUser(t *testing.T, db *TestDB, role models.Role) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	query := `
		INSERT INTO users (id, username, password_hash, role, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = db.Pool.Exec(context.Background(), query, userID, "user-"+userID.String()[:8], string(hash), role, "Test", "User", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// SetupTestProject inserts a project owned by creatorID and registers ownerID
// in project_owners.
func SetupTestProject(t *testing.T, db *TestDB, creatorID, ownerID uuid.UUID) uuid.UUID {
	t.Helper()

	projectID := uuid.New()
	query := `
		INSERT INTO projects (id, user_id, name, water_unit_rate, electricity_unit_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db.Pool.Exec(context.Background(), query, projectID, creatorID, "Test Project "+projectID.String()[:8], 10.0, 8.0, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}

	ownerQuery := `
		INSERT INTO project_owners (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`
	if _, err := db.Pool.Exec(context.Background(), ownerQuery, projectID, ownerID); err != nil {
		t.Fatalf("Failed to register test project owner: %v", err)
	}

	return projectID
}

// SetupTestHistory inserts a rental history row for the project and subject.
func SetupTestHistory(t *testing.T, db *TestDB, projectID, userID uuid.UUID, status string) uuid.UUID {
	t.Helper()

	historyID := uuid.New()
	query := `
		INSERT INTO rental_history (id, user_id, recorder_id, project_id, rental_date, amount,
			previous_water_meter, current_water_meter, water_units, water_bill,
			previous_electricity_meter, current_electricity_meter, electricity_units, electricity_bill,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, historyID, userID, userID, projectID,
		time.Now(), 5000.0, 100.0, 120.0, 20.0, 200.0, 50.0, 80.0, 30.0, 240.0, status)
	if err != nil {
		t.Fatalf("Failed to create test history: %v", err)
	}

	return historyID
}
