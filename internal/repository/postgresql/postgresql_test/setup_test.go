package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/database"
)

const migrationFile = "0001_init.sql"

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties every table.
// Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)

	ctx := context.Background()

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", migrationFile))
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	truncateAllTables(t, db)
	return db
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_records",
		"payroll_settings",
		"advance_transactions",
		"attendances",
		"employees",
	}
	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}

	require.NoError(t, tx.Commit(ctx))
}

// createTestEmployee inserts an active hourly employee and returns its id.
func createTestEmployee(t *testing.T, db *database.DB, companyID, code string) string {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), `
		INSERT INTO employees (id, company_id, employee_code, full_name, rate_type, employment_type,
			employment_status, standard_workweek_hours, base_salary, allowance, work_schedule, dob)
		VALUES ($1, $2, $3, $4, 'hourly', 'regular', 'active', 56, 30000, 1000, '8:00 AM - 5:00 PM', '1990-05-01')
	`, id.String(), companyID, code, "Employee "+code)
	require.NoError(t, err)

	return id.String()
}

func newCompanyID() string {
	return uuid.NewString()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
