package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, late_deduction_enabled, absent_deduction_enabled, overtime_enabled,
			   created_at, updated_at
		FROM payroll_settings
		WHERE company_id = $1
	`

	var s payroll.PayrollSettings
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.LateDeductionEnabled, &s.AbsentDeductionEnabled, &s.OvertimeEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to generate settings id: %w", err)
	}

	query := `
		INSERT INTO payroll_settings (id, company_id, late_deduction_enabled, absent_deduction_enabled, overtime_enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id) DO UPDATE SET
			late_deduction_enabled = EXCLUDED.late_deduction_enabled,
			absent_deduction_enabled = EXCLUDED.absent_deduction_enabled,
			overtime_enabled = EXCLUDED.overtime_enabled,
			updated_at = NOW()
		RETURNING id, company_id, late_deduction_enabled, absent_deduction_enabled, overtime_enabled,
			created_at, updated_at
	`

	var s payroll.PayrollSettings
	err = q.QueryRow(ctx, query,
		id.String(), settings.CompanyID, settings.LateDeductionEnabled,
		settings.AbsentDeductionEnabled, settings.OvertimeEnabled,
	).Scan(
		&s.ID, &s.CompanyID, &s.LateDeductionEnabled, &s.AbsentDeductionEnabled, &s.OvertimeEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollSettings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return s, nil
}

// ========== PAYROLL RECORDS ==========

const payrollRecordColumns = `
	pr.id, pr.company_id, pr.employee_id, pr.run_id, pr.period_start, pr.period_end, pr.cutoff,
	pr.total_earnings, pr.total_deductions, pr.net_pay, pr.contributions, pr.contribution_source,
	pr.deductions_excluded, pr.advance_skipped, pr.outstanding_advance, pr.breakdown,
	pr.created_at, pr.updated_at
`

func scanPayrollRecord(row pgx.Row, rec *payroll.PayrollRecord, extra ...any) error {
	var contributionsBytes, breakdownBytes []byte
	dest := []any{
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.RunID, &rec.PeriodStart, &rec.PeriodEnd, &rec.Cutoff,
		&rec.TotalEarnings, &rec.TotalDeductions, &rec.NetPay, &contributionsBytes, &rec.ContributionSource,
		&rec.DeductionsExcluded, &rec.AdvanceSkipped, &rec.OutstandingAdvance, &breakdownBytes,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if err := json.Unmarshal(contributionsBytes, &rec.Contributions); err != nil {
		return fmt.Errorf("failed to decode contributions: %w", err)
	}
	if err := json.Unmarshal(breakdownBytes, &rec.Breakdown); err != nil {
		return fmt.Errorf("failed to decode breakdown: %w", err)
	}
	return nil
}

// UpsertPayrollRecord replaces the line item of the same employee and period, keeping its id.
func (r *payrollRepository) UpsertPayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to generate payroll record id: %w", err)
	}

	contributionsJSON, err := json.Marshal(record.Contributions)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to encode contributions: %w", err)
	}
	breakdownJSON, err := json.Marshal(record.Breakdown)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to encode breakdown: %w", err)
	}

	query := `
		INSERT INTO payroll_records AS pr (
			id, company_id, employee_id, run_id, period_start, period_end, cutoff,
			total_earnings, total_deductions, net_pay, contributions, contribution_source,
			deductions_excluded, advance_skipped, outstanding_advance, breakdown
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (employee_id, period_start, period_end) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			cutoff = EXCLUDED.cutoff,
			total_earnings = EXCLUDED.total_earnings,
			total_deductions = EXCLUDED.total_deductions,
			net_pay = EXCLUDED.net_pay,
			contributions = EXCLUDED.contributions,
			contribution_source = EXCLUDED.contribution_source,
			deductions_excluded = EXCLUDED.deductions_excluded,
			advance_skipped = EXCLUDED.advance_skipped,
			outstanding_advance = EXCLUDED.outstanding_advance,
			breakdown = EXCLUDED.breakdown,
			updated_at = NOW()
		RETURNING ` + payrollRecordColumns

	var saved payroll.PayrollRecord
	err = scanPayrollRecord(q.QueryRow(ctx, query,
		id.String(), record.CompanyID, record.EmployeeID, record.RunID, record.PeriodStart, record.PeriodEnd, record.Cutoff,
		record.TotalEarnings, record.TotalDeductions, record.NetPay, contributionsJSON, record.ContributionSource,
		record.DeductionsExcluded, record.AdvanceSkipped, record.OutstandingAdvance, breakdownJSON,
	), &saved)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to upsert payroll record: %w", err)
	}

	return saved, nil
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id string, companyID string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRecordColumns + `, e.full_name, e.employee_code
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id::text = $1 AND pr.company_id = $2
	`

	var rec payroll.PayrollRecord
	if err := scanPayrollRecord(q.QueryRow(ctx, query, id, companyID), &rec, &rec.EmployeeName, &rec.EmployeeCode); err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) ListPayrollRecords(ctx context.Context, companyID string, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND pr.employee_id::text = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil {
		baseQuery += fmt.Sprintf(" AND pr.period_end >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		baseQuery += fmt.Sprintf(" AND pr.period_start <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Cutoff != nil {
		baseQuery += fmt.Sprintf(" AND pr.cutoff = $%d", argIdx)
		args = append(args, *filter.Cutoff)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name AS employee_name, e.employee_code
		%s
		ORDER BY pr.period_start %s, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, payrollRecordColumns, baseQuery, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		var rec payroll.PayrollRecord
		if err := scanPayrollRecord(rows, &rec, &rec.EmployeeName, &rec.EmployeeCode); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, totalCount, nil
}

// GetLatestContribution reads the most recent month-end record whose contributions came from
// the calculator. First-cutoff records carry deferred (zeroed) schemes and are not usable.
func (r *payrollRepository) GetLatestContribution(ctx context.Context, employeeID string, companyID string) (contribution.Result, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT contributions
		FROM payroll_records
		WHERE employee_id::text = $1 AND company_id = $2
		  AND contribution_source = $3
		  AND EXTRACT(DAY FROM period_end) >= 16
		ORDER BY period_end DESC, updated_at DESC
		LIMIT 1
	`

	var raw []byte
	err := q.QueryRow(ctx, query, employeeID, companyID, payroll.ContributionSourceCalculator).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return contribution.Result{}, payroll.ErrPayrollRecordNotFound
		}
		return contribution.Result{}, fmt.Errorf("failed to get latest contribution: %w", err)
	}

	var result contribution.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return contribution.Result{}, fmt.Errorf("failed to decode contributions: %w", err)
	}

	return result, nil
}
