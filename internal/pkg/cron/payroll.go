package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
)

type PayrollJobs struct {
	employeeRepo   employee.EmployeeRepository
	payrollService payroll.PayrollService
	firstSpec      string
	secondSpec     string
	now            func() time.Time
}

func NewPayrollJobs(
	employeeRepo employee.EmployeeRepository,
	payrollService payroll.PayrollService,
	firstSpec string,
	secondSpec string,
	now func() time.Time,
) *PayrollJobs {
	if now == nil {
		now = time.Now
	}
	return &PayrollJobs{
		employeeRepo:   employeeRepo,
		payrollService: payrollService,
		firstSpec:      firstSpec,
		secondSpec:     secondSpec,
		now:            now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) error {
	if err := scheduler.AddJob("close_first_cutoff", j.firstSpec, j.CloseCutoff); err != nil {
		return err
	}
	return scheduler.AddJob("close_second_cutoff", j.secondSpec, j.CloseCutoff)
}

// CloseCutoff generates payroll for every company's active employees over the cutoff that
// closed most recently. One company's failure does not stop the others.
func (j *PayrollJobs) CloseCutoff(ctx context.Context) error {
	period := cutoff.Previous(j.now())
	slog.Info("Cron: Starting cutoff payroll run", "period", period.String())

	companyIDs, err := j.employeeRepo.GetActiveCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	req := payroll.GeneratePayrollRequest{
		PeriodRequest: payroll.PeriodRequest{
			StartDate: period.Start.Format(time.DateOnly),
			EndDate:   period.End.Format(time.DateOnly),
		},
	}

	var errs []error
	for _, companyID := range companyIDs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		result, err := j.payrollService.GeneratePayroll(ctx, companyID, req)
		if err != nil {
			slog.Error("Cron: Cutoff payroll run failed", "company_id", companyID, "error", err)
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}

		slog.Info("Cron: Cutoff payroll generated",
			"company_id", companyID,
			"run_id", result.RunID,
			"generated", result.Generated,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
	}

	return errors.Join(errs...)
}
