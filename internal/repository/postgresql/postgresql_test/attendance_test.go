package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/advance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
	"github.com/cmlabs-hris/timeclock-payroll/internal/repository/postgresql"
)

func fullDayPunches() timeclock.Punches {
	return timeclock.Punches{
		TimeInAM:  timeclock.Ptr(timeclock.At(8, 0)),
		TimeOutAM: timeclock.Ptr(timeclock.At(12, 0)),
		TimeInPM:  timeclock.Ptr(timeclock.At(13, 0)),
		TimeOutPM: timeclock.Ptr(timeclock.At(17, 0)),
	}
}

// ===== EMPLOYEE TESTS =====

func TestEmployeeRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewEmployeeRepository(db)
	ctx := context.Background()

	companyID := newCompanyID()
	id := createTestEmployee(t, db, companyID, "E-001")

	// Act
	emp, err := repo.GetByID(ctx, id, companyID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Employee E-001", emp.FullName)
	assert.Equal(t, employee.EmploymentStatusActive, emp.EmploymentStatus)
	assert.True(t, decimal.NewFromInt(30000).Equal(emp.BaseSalary))
	require.NotNil(t, emp.WorkScheduleDescriptor)
	assert.Equal(t, "8:00 AM - 5:00 PM", *emp.WorkScheduleDescriptor)
	require.NotNil(t, emp.DOB)
	assert.Equal(t, 1990, emp.DOB.Year())

	_, err = repo.GetByID(ctx, id, newCompanyID())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeRepository_ActiveEmployeesAndCompanies(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewEmployeeRepository(db)
	ctx := context.Background()

	companyA, companyB := newCompanyID(), newCompanyID()
	createTestEmployee(t, db, companyA, "A-1")
	resigned := createTestEmployee(t, db, companyA, "A-2")
	createTestEmployee(t, db, companyB, "B-1")
	_, err := db.Exec(ctx, `UPDATE employees SET employment_status = 'resigned' WHERE id = $1`, resigned)
	require.NoError(t, err)

	// Act
	active, err := repo.GetActiveByCompanyID(ctx, companyA)
	require.NoError(t, err)
	companies, err := repo.GetActiveCompanyIDs(ctx)
	require.NoError(t, err)

	// Assert
	require.Len(t, active, 1)
	assert.Equal(t, "A-1", active[0].EmployeeCode)
	assert.ElementsMatch(t, []string{companyA, companyB}, companies)
}

// ===== ATTENDANCE TESTS =====

func TestAttendanceRepository_CreateAndRead(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	companyID := newCompanyID()
	employeeID := createTestEmployee(t, db, companyID, "E-001")

	// Act
	created, err := repo.Create(ctx, attendance.Attendance{
		EmployeeID:       employeeID,
		CompanyID:        companyID,
		Date:             date(2026, 3, 2),
		Punches:          fullDayPunches(),
		LeaveType:        timeclock.LeaveNone,
		TotalHoursWorked: 8,
		OvertimePay:      decimal.Zero,
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	require.NotNil(t, created.Punches.TimeOutPM)
	assert.Equal(t, "17:00", created.Punches.TimeOutPM.String())

	byDate, err := repo.GetByEmployeeAndDate(ctx, employeeID, date(2026, 3, 2), companyID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byDate.ID)
	assert.Equal(t, 8.0, byDate.TotalHoursWorked)

	byID, err := repo.GetByID(ctx, created.ID, companyID)
	require.NoError(t, err)
	require.NotNil(t, byID.EmployeeName)
	assert.Equal(t, "Employee E-001", *byID.EmployeeName)

	exists, err := repo.ExistsByEmployeeAndDate(ctx, employeeID, date(2026, 3, 2), companyID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAttendanceRepository_Create_DuplicateDate(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	companyID := newCompanyID()
	employeeID := createTestEmployee(t, db, companyID, "E-001")
	record := attendance.Attendance{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Date:       date(2026, 3, 2),
		LeaveType:  timeclock.LeaveNone,
	}

	_, err := repo.Create(ctx, record)
	require.NoError(t, err)

	// Act
	_, err = repo.Create(ctx, record)

	// Assert
	assert.ErrorIs(t, err, attendance.ErrDuplicateRecord)
}

func TestAttendanceRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	companyID := newCompanyID()
	employeeID := createTestEmployee(t, db, companyID, "E-001")
	created, err := repo.Create(ctx, attendance.Attendance{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Date:       date(2026, 3, 2),
		Punches:    fullDayPunches(),
		LeaveType:  timeclock.LeaveNone,
	})
	require.NoError(t, err)

	created.Punches.TimeOutPM = nil
	created.LeaveType = timeclock.LeaveSick

	// Act
	err = repo.Update(ctx, created)

	// Assert
	require.NoError(t, err)
	got, err := repo.GetByID(ctx, created.ID, companyID)
	require.NoError(t, err)
	assert.Nil(t, got.Punches.TimeOutPM)
	assert.Equal(t, timeclock.LeaveSick, got.LeaveType)

	created.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Update(ctx, created), attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_ListByEmployeeAndRange(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	companyID := newCompanyID()
	employeeID := createTestEmployee(t, db, companyID, "E-001")
	for _, d := range []int{16, 2, 9} {
		_, err := repo.Create(ctx, attendance.Attendance{
			EmployeeID: employeeID,
			CompanyID:  companyID,
			Date:       date(2026, 3, d),
			LeaveType:  timeclock.LeaveNone,
		})
		require.NoError(t, err)
	}

	// Act
	records, err := repo.ListByEmployeeAndRange(ctx, employeeID, date(2026, 3, 1), date(2026, 3, 15), companyID)

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Date.Day())
	assert.Equal(t, 9, records[1].Date.Day())

	list, total, err := repo.List(ctx, attendance.AttendanceFilter{EmployeeID: &employeeID, Limit: 2, Page: 1}, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)
}

// ===== TRANSACTION TESTS =====

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	tx := postgresql.NewTransactor(db)
	ctx := context.Background()

	companyID := newCompanyID()
	employeeID := createTestEmployee(t, db, companyID, "E-001")
	boom := errors.New("boom")

	// Act
	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, attendance.Attendance{
			EmployeeID: employeeID,
			CompanyID:  companyID,
			Date:       date(2026, 3, 2),
			LeaveType:  timeclock.LeaveNone,
		}); err != nil {
			return err
		}
		return boom
	})

	// Assert
	assert.ErrorIs(t, err, boom)
	exists, err := repo.ExistsByEmployeeAndDate(ctx, employeeID, date(2026, 3, 2), companyID)
	require.NoError(t, err)
	assert.False(t, exists)
}

// ===== ADVANCE LEDGER TESTS =====

func TestAdvanceLedgerRepository_ListByEmployeeAndRange(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewAdvanceLedgerRepository(db)
	ctx := context.Background()

	companyID := newCompanyID()
	employeeID := createTestEmployee(t, db, companyID, "E-001")
	insert := func(day int, kind advance.TransactionKind, amount int64) {
		_, err := db.Exec(ctx, `
			INSERT INTO advance_transactions (id, employee_id, company_id, date, kind, amount)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), employeeID, companyID, date(2026, 3, day), kind, decimal.NewFromInt(amount))
		require.NoError(t, err)
	}
	insert(3, advance.KindDisbursement, 2000)
	insert(10, advance.KindRepayment, 500)
	insert(20, advance.KindDisbursement, 999)

	// Act
	txs, err := repo.ListByEmployeeAndRange(ctx, employeeID, date(2026, 3, 1), date(2026, 3, 15), companyID)

	// Assert
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, decimal.NewFromInt(1500).Equal(advance.Outstanding(txs)))
	assert.Equal(t, time.March, txs[0].Date.Month())
}
