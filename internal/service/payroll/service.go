package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/advance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
)

// seniorAge is the age from which employee SSS and Pag-IBIG shares are waived.
const seniorAge = 60

const defaultWorkerLimit = 4

type Options struct {
	OvertimeMultiplier decimal.Decimal
	// WorkerLimit bounds the employees computed in parallel by GeneratePayroll.
	WorkerLimit int
	Now         func() time.Time
}

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	ledgerRepo     advance.LedgerRepository
	calculator     contribution.Calculator
	opts           Options
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	ledgerRepo advance.LedgerRepository,
	calculator contribution.Calculator,
	opts Options,
) payroll.PayrollService {
	if opts.WorkerLimit <= 0 {
		opts.WorkerLimit = defaultWorkerLimit
	}
	if !opts.OvertimeMultiplier.IsPositive() {
		opts.OvertimeMultiplier = DefaultOvertimeMultiplier
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		ledgerRepo:     ledgerRepo,
		calculator:     calculator,
		opts:           opts,
	}
}

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) settingsFor(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx, companyID)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
			return payroll.DefaultSettings(companyID), nil
		}
		return payroll.PayrollSettings{}, err
	}
	return settings, nil
}

func (s *PayrollServiceImpl) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettingsResponse, error) {
	settings, err := s.settingsFor(ctx, companyID)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}
	return mapToSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, companyID string, req payroll.UpdatePayrollSettingsRequest) (payroll.PayrollSettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	current, err := s.settingsFor(ctx, companyID)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	// Apply updates
	if req.LateDeductionEnabled != nil {
		current.LateDeductionEnabled = *req.LateDeductionEnabled
	}
	if req.AbsentDeductionEnabled != nil {
		current.AbsentDeductionEnabled = *req.AbsentDeductionEnabled
	}
	if req.OvertimeEnabled != nil {
		current.OvertimeEnabled = *req.OvertimeEnabled
	}

	updated, err := s.payrollRepo.UpsertSettings(ctx, current)
	if err != nil {
		return payroll.PayrollSettingsResponse{}, err
	}

	return mapToSettingsResponse(updated), nil
}

// ========== COMPUTATION ==========

func (s *PayrollServiceImpl) ComputePayroll(ctx context.Context, companyID string, req payroll.ComputePayrollRequest) (payroll.PayrollPeriod, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollPeriod{}, err
	}

	period, err := req.Period()
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	emp, err := s.lookupEmployee(ctx, req.EmployeeID, companyID)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	settings, err := s.settingsFor(ctx, companyID)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	return s.compute(ctx, emp, period, req.Toggles, settings)
}

// compute runs the whole pipeline for one employee: reads fan out, then the pure
// derive, aggregate and reconcile steps.
func (s *PayrollServiceImpl) compute(
	ctx context.Context,
	emp employee.Employee,
	period cutoff.Period,
	toggles payroll.Toggles,
	settings payroll.PayrollSettings,
) (payroll.PayrollPeriod, error) {
	sibling := period.Sibling()
	fetchSibling := period.EndsInSecondHalf() && !period.Covers(sibling)

	var (
		records        []attendance.Attendance
		siblingRecords []attendance.Attendance
		ledger         []advance.Transaction
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByEmployeeAndRange(gCtx, emp.ID, period.Start, period.End, emp.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})

	if fetchSibling {
		g.Go(func() error {
			var err error
			siblingRecords, err = s.attendanceRepo.ListByEmployeeAndRange(gCtx, emp.ID, sibling.Start, sibling.End, emp.CompanyID)
			if err != nil {
				return fmt.Errorf("failed to list sibling cutoff attendance: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		ledger, err = s.ledgerRepo.ListByEmployeeAndRange(gCtx, emp.ID, period.Start, period.End, emp.CompanyID)
		if err != nil {
			return fmt.Errorf("%w: %w", payroll.ErrAdvanceLedgerUnavailable, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return payroll.PayrollPeriod{}, err
	}

	now := s.opts.Now()
	today := cutoff.Day(now)
	rates := RatesFor(emp, s.opts.OvertimeMultiplier)

	days := deriveDays(emp, records, rates, today)
	var siblingDays []payroll.DayBreakdown
	if period.EndsInSecondHalf() {
		if fetchSibling {
			siblingDays = deriveDays(emp, siblingRecords, rates, today)
		} else {
			siblingDays = filterDays(days, sibling)
		}
	}

	expected, err := period.ExpectedWorkingDays()
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}
	siblingExpected, err := sibling.ExpectedWorkingDays()
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	totals := Aggregate(AggregateInput{
		Employee:                   emp,
		Period:                     period,
		Rates:                      rates,
		Days:                       days,
		SiblingDays:                siblingDays,
		ExpectedWorkingDays:        expected,
		SiblingExpectedWorkingDays: siblingExpected,
		OvertimeEnabled:            settings.OvertimeEnabled,
	})

	seniorExempt := emp.AgeOn(period.End) >= seniorAge

	contributions, source, err := s.contributions(ctx, emp, period, totals, toggles, seniorExempt)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	applyLate := settings.LateDeductionEnabled
	if toggles.ApplyLateDeduction != nil {
		applyLate = *toggles.ApplyLateDeduction
	}
	applyAbsent := settings.AbsentDeductionEnabled
	if toggles.ApplyAbsentDeduction != nil {
		applyAbsent = *toggles.ApplyAbsentDeduction
	}
	other := decimal.Zero
	if toggles.OtherDeductions != nil {
		other = *toggles.OtherDeductions
	}

	reconciliation := Reconcile(ReconcileInput{
		Period:               period,
		Totals:               totals,
		Contributions:        contributions,
		SeniorExempt:         seniorExempt,
		ExcludeAllDeductions: toggles.ExcludeAllDeductions,
		OutstandingAdvance:   advance.Outstanding(ledger),
		SkipAdvanceDeduction: toggles.SkipAdvanceDeduction,
		ApplyLateDeduction:   applyLate,
		ApplyAbsentDeduction: applyAbsent,
		OtherDeductions:      other,
	})

	return payroll.PayrollPeriod{
		EmployeeID:         emp.ID,
		EmployeeName:       emp.FullName,
		CompensationModel:  emp.CompensationModel(),
		StartDate:          payroll.FormatDate(period.Start),
		EndDate:            payroll.FormatDate(period.End),
		Cutoff:             period.Cutoff(),
		Rates:              rates,
		Totals:             totals,
		ContributionSource: source,
		Reconciliation:     reconciliation,
		Days:               days,
		ComputedAt:         now,
	}, nil
}

// contributions asks the calculator and falls back to the last persisted figures when it fails.
func (s *PayrollServiceImpl) contributions(
	ctx context.Context,
	emp employee.Employee,
	period cutoff.Period,
	totals payroll.PeriodTotals,
	toggles payroll.Toggles,
	seniorExempt bool,
) (contribution.Result, payroll.ContributionSource, error) {
	if toggles.ExcludeAllDeductions {
		return contribution.Result{}, payroll.ContributionSourceExcluded, nil
	}

	frequency := contribution.FrequencySemiMonthly
	if period.IsFullMonth() {
		frequency = contribution.FrequencyMonthly
	}
	// A period reaching the second half carries the month's deferred contributions.
	cut := period.Cutoff()
	if period.EndsInSecondHalf() {
		cut = cutoff.Second
	}

	params := contribution.Params{
		ContractSalary:     emp.BaseSalary,
		EarnedSalary:       totals.RegularPay,
		OvertimePay:        totals.OvertimePay,
		OtherEarnings:      totals.DoublePayBonus,
		DeMinimisAllowance: totals.Allowance,
		Bonuses:            totals.PerfectAttendanceBonus.Add(totals.LeaveConversionBonus),
		Frequency:          frequency,
		Cutoff:             cut,
		DateOfBirth:        emp.DOB,
		SeniorExempt:       seniorExempt,
	}

	result, err := s.calculator.Calculate(ctx, params)
	if err == nil {
		return result, payroll.ContributionSourceCalculator, nil
	}

	slog.Warn("Contribution calculator failed, using last persisted contribution",
		"employee_id", emp.ID, "period", period.String(), "error", err)

	stale, lookupErr := s.payrollRepo.GetLatestContribution(ctx, emp.ID, emp.CompanyID)
	if lookupErr != nil {
		if errors.Is(lookupErr, payroll.ErrPayrollRecordNotFound) {
			return contribution.Result{}, "", fmt.Errorf("%w: %w", payroll.ErrContributionUnavailable, err)
		}
		return contribution.Result{}, "", fmt.Errorf("failed to load last contribution: %w", lookupErr)
	}

	return stale, payroll.ContributionSourceStaleFallback, nil
}

// ========== PAYROLL GENERATION ==========

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, companyID string, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	period, err := req.Period()
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	settings, err := s.settingsFor(ctx, companyID)
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return payroll.GeneratePayrollResponse{}, fmt.Errorf("failed to generate run id: %w", err)
	}

	// Get employees
	known := make(map[string]employee.Employee)
	var targets []string
	if len(req.EmployeeIDs) > 0 {
		seen := make(map[string]bool)
		for _, id := range req.EmployeeIDs {
			if !seen[id] {
				seen[id] = true
				targets = append(targets, id)
			}
		}
	} else {
		employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
		if err != nil {
			return payroll.GeneratePayrollResponse{}, fmt.Errorf("failed to get employees: %w", err)
		}
		for _, emp := range employees {
			known[emp.ID] = emp
			targets = append(targets, emp.ID)
		}
	}

	items := make([]payroll.GenerateItemResult, len(targets))

	var g errgroup.Group
	g.SetLimit(s.opts.WorkerLimit)
	for i, id := range targets {
		i, id := i, id
		emp, ok := known[id]
		g.Go(func() error {
			var empPtr *employee.Employee
			if ok {
				empPtr = &emp
			}
			items[i] = s.generateOne(ctx, companyID, id, empPtr, period, req.Toggles, settings, runID.String())
			return nil
		})
	}
	_ = g.Wait()

	resp := payroll.GeneratePayrollResponse{
		RunID:     runID.String(),
		StartDate: payroll.FormatDate(period.Start),
		EndDate:   payroll.FormatDate(period.End),
		Cutoff:    period.Cutoff(),
		Items:     items,
	}
	for _, item := range items {
		switch item.Outcome {
		case payroll.GenerateOutcomeGenerated:
			resp.Generated++
		case payroll.GenerateOutcomeSkipped:
			resp.Skipped++
		default:
			resp.Failed++
		}
	}

	slog.Info("Generated payroll",
		"company_id", companyID, "run_id", resp.RunID, "period", period.String(),
		"generated", resp.Generated, "skipped", resp.Skipped, "failed", resp.Failed)

	return resp, nil
}

func (s *PayrollServiceImpl) generateOne(
	ctx context.Context,
	companyID string,
	employeeID string,
	emp *employee.Employee,
	period cutoff.Period,
	toggles payroll.Toggles,
	settings payroll.PayrollSettings,
	runID string,
) payroll.GenerateItemResult {
	item := payroll.GenerateItemResult{EmployeeID: employeeID}

	if err := ctx.Err(); err != nil {
		item.Outcome = payroll.GenerateOutcomeSkipped
		item.Reason = "cancelled"
		return item
	}

	if emp == nil {
		found, err := s.lookupEmployee(ctx, employeeID, companyID)
		if err != nil {
			item.Outcome = payroll.GenerateOutcomeFailed
			item.Reason = err.Error()
			return item
		}
		emp = &found
	}

	if !emp.IsActive() {
		item.Outcome = payroll.GenerateOutcomeSkipped
		item.Reason = "employee is not active"
		return item
	}
	if !emp.BaseSalary.IsPositive() {
		item.Outcome = payroll.GenerateOutcomeSkipped
		item.Reason = "employee has no base salary configured"
		return item
	}

	result, err := s.compute(ctx, *emp, period, toggles, settings)
	if err != nil {
		slog.Warn("Failed to compute payroll", "employee_id", employeeID, "run_id", runID, "error", err)
		item.Outcome = payroll.GenerateOutcomeFailed
		item.Reason = err.Error()
		return item
	}

	record, err := s.payrollRepo.UpsertPayrollRecord(ctx, payroll.PayrollRecord{
		CompanyID:          companyID,
		EmployeeID:         emp.ID,
		RunID:              runID,
		PeriodStart:        period.Start,
		PeriodEnd:          period.End,
		Cutoff:             result.Cutoff,
		TotalEarnings:      result.Reconciliation.TotalEarnings,
		TotalDeductions:    result.Reconciliation.TotalDeductions,
		NetPay:             result.Reconciliation.NetPay,
		Contributions:      result.Reconciliation.Contributions,
		ContributionSource: result.ContributionSource,
		DeductionsExcluded: result.Reconciliation.DeductionsExcluded,
		AdvanceSkipped:     result.Reconciliation.AdvanceDeductionSkipped,
		OutstandingAdvance: result.Reconciliation.OutstandingAdvance,
		Breakdown:          result,
	})
	if err != nil {
		item.Outcome = payroll.GenerateOutcomeFailed
		item.Reason = err.Error()
		return item
	}

	item.Outcome = payroll.GenerateOutcomeGenerated
	item.RecordID = &record.ID
	item.NetPay = &record.NetPay
	return item
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, companyID string, id string) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetPayrollRecordByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	resp := mapToRecordResponse(record)
	resp.Breakdown = &record.Breakdown
	return resp, nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, companyID string, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, totalCount, err := s.payrollRepo.ListPayrollRecords(ctx, companyID, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	return payroll.ListPayrollRecordResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) lookupEmployee(ctx context.Context, employeeID, companyID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, fmt.Errorf("%w: %s", payroll.ErrUnknownEmployee, employeeID)
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func deriveDays(emp employee.Employee, records []attendance.Attendance, rates payroll.Rates, today time.Time) []payroll.DayBreakdown {
	days := make([]payroll.DayBreakdown, 0, len(records))
	for _, rec := range records {
		days = append(days, DeriveDay(emp, rec, rates, cutoff.Day(rec.Date).Equal(today)))
	}
	return days
}

func filterDays(days []payroll.DayBreakdown, p cutoff.Period) []payroll.DayBreakdown {
	var out []payroll.DayBreakdown
	for _, d := range days {
		if date, ok := parseDay(d.Date); ok && p.Contains(date) {
			out = append(out, d)
		}
	}
	return out
}

func parseDay(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, s)
	return t, err == nil
}

func mapToSettingsResponse(s payroll.PayrollSettings) payroll.PayrollSettingsResponse {
	return payroll.PayrollSettingsResponse{
		ID:                     s.ID,
		CompanyID:              s.CompanyID,
		LateDeductionEnabled:   s.LateDeductionEnabled,
		AbsentDeductionEnabled: s.AbsentDeductionEnabled,
		OvertimeEnabled:        s.OvertimeEnabled,
	}
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	employeeName := ""
	employeeCode := ""
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		employeeCode = *r.EmployeeCode
	}

	return payroll.PayrollRecordResponse{
		ID:                      r.ID,
		RunID:                   r.RunID,
		EmployeeID:              r.EmployeeID,
		EmployeeName:            employeeName,
		EmployeeCode:            employeeCode,
		PeriodStart:             payroll.FormatDate(r.PeriodStart),
		PeriodEnd:               payroll.FormatDate(r.PeriodEnd),
		Cutoff:                  r.Cutoff,
		TotalEarnings:           r.TotalEarnings,
		TotalDeductions:         r.TotalDeductions,
		NetPay:                  r.NetPay,
		Contributions:           r.Contributions,
		ContributionSource:      r.ContributionSource,
		DeductionsExcluded:      r.DeductionsExcluded,
		AdvanceDeductionSkipped: r.AdvanceSkipped,
		OutstandingAdvance:      r.OutstandingAdvance,
		CreatedAt:               r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:               r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}
