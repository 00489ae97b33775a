package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

const uniqueViolation = "23505"

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	a.id, a.employee_id, a.company_id, a.date,
	a.time_in_am, a.time_out_am, a.time_in_pm, a.time_out_pm,
	a.leave_type, a.is_double_pay, a.total_hours_worked, a.overtime_hours, a.overtime_pay,
	a.created_at, a.updated_at
`

// punchRow holds the TIME columns until they are converted to clocks.
type punchRow struct {
	inAM, outAM, inPM, outPM pgtype.Time
}

func (p punchRow) punches() timeclock.Punches {
	return timeclock.Punches{
		TimeInAM:  pgTimeToClock(p.inAM),
		TimeOutAM: pgTimeToClock(p.outAM),
		TimeInPM:  pgTimeToClock(p.inPM),
		TimeOutPM: pgTimeToClock(p.outPM),
	}
}

func pgTimeToClock(t pgtype.Time) *timeclock.Clock {
	if !t.Valid {
		return nil
	}
	c := timeclock.Clock(t.Microseconds / int64(time.Minute/time.Microsecond))
	return &c
}

func clockToPGTime(c *timeclock.Clock) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(c.Minutes()) * int64(time.Minute/time.Microsecond), Valid: true}
}

func scanAttendance(row pgx.Row, att *attendance.Attendance, extra ...any) error {
	var p punchRow
	dest := []any{
		&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date,
		&p.inAM, &p.outAM, &p.inPM, &p.outPM,
		&att.LeaveType, &att.IsDoublePay, &att.TotalHoursWorked, &att.OvertimeHours, &att.OvertimePay,
		&att.CreatedAt, &att.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	att.Punches = p.punches()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendances AS a (
			id, employee_id, company_id, date,
			time_in_am, time_out_am, time_in_pm, time_out_pm,
			leave_type, is_double_pay, total_hours_worked, overtime_hours, overtime_pay
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + attendanceColumns

	var created attendance.Attendance
	err = scanAttendance(q.QueryRow(ctx, query,
		id.String(), newAttendance.EmployeeID, newAttendance.CompanyID, newAttendance.Date,
		clockToPGTime(newAttendance.Punches.TimeInAM), clockToPGTime(newAttendance.Punches.TimeOutAM),
		clockToPGTime(newAttendance.Punches.TimeInPM), clockToPGTime(newAttendance.Punches.TimeOutPM),
		newAttendance.LeaveType, newAttendance.IsDoublePay,
		newAttendance.TotalHoursWorked, newAttendance.OvertimeHours, newAttendance.OvertimePay,
	), &created)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateRecord
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return created, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET time_in_am = $1, time_out_am = $2, time_in_pm = $3, time_out_pm = $4,
			leave_type = $5, is_double_pay = $6,
			total_hours_worked = $7, overtime_hours = $8, overtime_pay = $9,
			updated_at = NOW()
		WHERE id::text = $10 AND company_id = $11
	`

	tag, err := q.Exec(ctx, query,
		clockToPGTime(att.Punches.TimeInAM), clockToPGTime(att.Punches.TimeOutAM),
		clockToPGTime(att.Punches.TimeInPM), clockToPGTime(att.Punches.TimeOutPM),
		att.LeaveType, att.IsDoublePay,
		att.TotalHoursWorked, att.OvertimeHours, att.OvertimePay,
		att.ID, att.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `, e.full_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.id::text = $1 AND a.company_id = $2
	`

	var att attendance.Attendance
	if err := scanAttendance(q.QueryRow(ctx, query, id, companyID), &att, &att.EmployeeName); err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id::text = $1 AND a.date = $2 AND a.company_id = $3
	`

	var att attendance.Attendance
	if err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, companyID), &att); err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return att, nil
}

// ExistsByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ExistsByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE employee_id::text = $1 AND date = $2 AND company_id = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, date, companyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check attendance existence: %w", err)
	}

	return exists, nil
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time, companyID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id::text = $1 AND a.company_id = $2 AND a.date BETWEEN $3 AND $4
		ORDER BY a.date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		if err := scanAttendance(rows, &att); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attendances, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "a.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id::text = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendances a WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	// Build query with pagination
	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name AS employee_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY a.date %s, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		if err := scanAttendance(rows, &att, &att.EmployeeName); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
