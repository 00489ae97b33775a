package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/validator"
	payrollservice "github.com/cmlabs-hris/timeclock-payroll/internal/service/payroll"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	overtimeMultiplier decimal.Decimal
	now                func() time.Time
}

// CreateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CreateAttendance(ctx context.Context, companyID string, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.lookupEmployee(ctx, req.EmployeeID, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	punches, err := req.ParsePunches()
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	leave, _ := timeclock.ParseLeaveType(req.LeaveType)

	record := attendance.Attendance{
		EmployeeID:  emp.ID,
		CompanyID:   companyID,
		Date:        req.ParsedDate(),
		Punches:     punches,
		LeaveType:   leave,
		IsDoublePay: req.IsDoublePay && !emp.IsFixed(),
	}
	a.deriveStored(emp, &record)

	var created attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		exists, err := a.AttendanceRepository.ExistsByEmployeeAndDate(txCtx, emp.ID, record.Date, companyID)
		if err != nil {
			return fmt.Errorf("failed to check existing attendance: %w", err)
		}
		if exists {
			return attendance.ErrDuplicateRecord
		}

		// The unique constraint still reports a concurrent insert as ErrDuplicateRecord
		created, err = a.AttendanceRepository.Create(txCtx, record)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return a.mapAttendanceToResponse(emp, created), nil
}

// BatchCreateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) BatchCreateAttendance(ctx context.Context, companyID string, req attendance.BatchCreateAttendanceRequest) (attendance.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.BatchResult{}, err
	}

	batchID, err := uuid.NewV7()
	if err != nil {
		return attendance.BatchResult{}, fmt.Errorf("failed to generate batch id: %w", err)
	}

	result := attendance.BatchResult{
		BatchID: batchID.String(),
		Items:   make([]attendance.BatchItemResult, 0, len(req.Records)),
	}

	for i, item := range req.Records {
		entry := attendance.BatchItemResult{
			Index:      i,
			EmployeeID: item.EmployeeID,
			Date:       item.Date,
		}

		if ctx.Err() != nil {
			entry.Outcome = attendance.BatchOutcomeSkipped
			entry.Reason = "cancelled"
			result.Items = append(result.Items, entry)
			result.Skipped++
			continue
		}

		created, err := a.CreateAttendance(ctx, companyID, item)
		switch {
		case err == nil:
			entry.Outcome = attendance.BatchOutcomeCreated
			entry.ID = &created.ID
			result.Succeeded++
		case errors.Is(err, attendance.ErrDuplicateRecord) && req.SkipExisting:
			entry.Outcome = attendance.BatchOutcomeSkipped
			entry.Reason = err.Error()
			result.Skipped++
		default:
			entry.Outcome = attendance.BatchOutcomeFailed
			entry.Reason = err.Error()
			result.Failed++
		}
		result.Items = append(result.Items, entry)
	}

	slog.Info("Batch attendance import finished",
		"company_id", companyID, "batch_id", result.BatchID,
		"succeeded", result.Succeeded, "skipped", result.Skipped, "failed", result.Failed)

	return result, nil
}

// UpdateAttendance implements attendance.AttendanceService.
// This allows managers/owners to fix punches or leave; derived fields are recomputed.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, companyID string, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var (
		emp     employee.Employee
		updated attendance.Attendance
	)
	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := a.AttendanceRepository.GetByID(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}

		emp, err = a.lookupEmployee(txCtx, existing.EmployeeID, companyID)
		if err != nil {
			return err
		}

		existing.Punches, err = req.ApplyPunches(existing.Punches)
		if err != nil {
			return err
		}
		if req.LeaveType != nil {
			existing.LeaveType, _ = timeclock.ParseLeaveType(*req.LeaveType)
		}
		if req.IsDoublePay != nil {
			existing.IsDoublePay = *req.IsDoublePay
		}
		if emp.IsFixed() {
			existing.IsDoublePay = false
		}
		a.deriveStored(emp, &existing)

		if err := a.AttendanceRepository.Update(txCtx, existing); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return a.mapAttendanceToResponse(emp, updated), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, companyID string, id string) (attendance.AttendanceResponse, error) {
	if !validator.IsValidUUID(id) {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	record, err := a.AttendanceRepository.GetByID(ctx, id, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.lookupEmployee(ctx, record.EmployeeID, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return a.mapAttendanceToResponse(emp, record), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, companyID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter, companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	// Statuses are derived per owning employee
	employees := make(map[string]employee.Employee)
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		emp, ok := employees[att.EmployeeID]
		if !ok {
			emp, err = a.lookupEmployee(ctx, att.EmployeeID, companyID)
			if err != nil {
				return attendance.ListAttendanceResponse{}, err
			}
			employees[att.EmployeeID] = emp
		}
		responses = append(responses, a.mapAttendanceToResponse(emp, att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetEmployeeAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetEmployeeAttendance(ctx context.Context, companyID string, req attendance.EmployeeAttendanceRequest) (attendance.EmployeeAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EmployeeAttendanceResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)
	if end.Before(start) {
		return attendance.EmployeeAttendanceResponse{}, attendance.ErrInvalidDateRange
	}

	emp, err := a.lookupEmployee(ctx, req.EmployeeID, companyID)
	if err != nil {
		return attendance.EmployeeAttendanceResponse{}, err
	}

	records, err := a.AttendanceRepository.ListByEmployeeAndRange(ctx, emp.ID, start, end, companyID)
	if err != nil {
		return attendance.EmployeeAttendanceResponse{}, fmt.Errorf("failed to list employee attendance: %w", err)
	}

	resp := attendance.EmployeeAttendanceResponse{
		EmployeeID:   emp.ID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		StatusCounts: attendance.StatusCounts{},
		Attendances:  make([]attendance.AttendanceResponse, 0, len(records)),
	}
	for _, rec := range records {
		r := a.mapAttendanceToResponse(emp, rec)
		resp.StatusCounts[r.Status]++
		if r.Status.Worked() {
			resp.TotalHoursWorked += r.TotalHoursWorked
		}
		resp.Attendances = append(resp.Attendances, r)
	}

	return resp, nil
}

// GetTodayStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, companyID string, employeeID string) (attendance.TodayStatusResponse, error) {
	emp, err := a.lookupEmployee(ctx, employeeID, companyID)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}

	today := cutoff.Day(a.now())
	resp := attendance.TodayStatusResponse{
		EmployeeID: emp.ID,
		Date:       today.Format(time.DateOnly),
	}

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, today, companyID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			resp.Status = timeclock.StatusAbsent
			return resp, nil
		}
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	rates := payrollservice.RatesFor(emp, a.overtimeMultiplier)
	day := payrollservice.DeriveDay(emp, record, rates, true)

	view := a.mapAttendanceToResponse(emp, record)
	resp.Status = timeclock.ClassifyLive(timeclock.ClassifyInput{
		Punches:            record.Punches,
		LeaveType:          record.LeaveType,
		TotalHoursWorked:   day.HoursWorked,
		DailyStandardHours: rates.DailyStandardHours,
		IsToday:            true,
	})
	resp.Attendance = &view
	return resp, nil
}

func (a *AttendanceServiceImpl) lookupEmployee(ctx context.Context, employeeID, companyID string) (employee.Employee, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, fmt.Errorf("%w: %s", attendance.ErrUnknownEmployee, employeeID)
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// deriveStored fills the columns persisted alongside the punches. They are always computed as
// a closed day so they never hold a transient status.
func (a *AttendanceServiceImpl) deriveStored(emp employee.Employee, record *attendance.Attendance) {
	rates := payrollservice.RatesFor(emp, a.overtimeMultiplier)
	day := payrollservice.DeriveDay(emp, *record, rates, false)
	record.TotalHoursWorked = day.HoursWorked
	record.OvertimeHours = day.OvertimeHours
	record.OvertimePay = day.OvertimePay
}

func (a *AttendanceServiceImpl) isToday(date time.Time) bool {
	return cutoff.Day(date).Equal(cutoff.Day(a.now()))
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse with its status
// derived for the current day.
func (a *AttendanceServiceImpl) mapAttendanceToResponse(emp employee.Employee, att attendance.Attendance) attendance.AttendanceResponse {
	rates := payrollservice.RatesFor(emp, a.overtimeMultiplier)
	day := payrollservice.DeriveDay(emp, att, rates, a.isToday(att.Date))

	employeeName := att.EmployeeName
	if employeeName == nil && emp.FullName != "" {
		employeeName = &emp.FullName
	}

	return attendance.AttendanceResponse{
		ID:               att.ID,
		EmployeeID:       att.EmployeeID,
		EmployeeName:     employeeName,
		Date:             payroll.FormatDate(att.Date),
		TimeInAM:         timeclock.StringPtr(att.Punches.TimeInAM),
		TimeOutAM:        timeclock.StringPtr(att.Punches.TimeOutAM),
		TimeInPM:         timeclock.StringPtr(att.Punches.TimeInPM),
		TimeOutPM:        timeclock.StringPtr(att.Punches.TimeOutPM),
		LeaveType:        string(day.LeaveType),
		IsDoublePay:      day.IsDoublePay,
		Status:           day.Status,
		TotalHoursWorked: day.HoursWorked,
		OvertimeHours:    day.OvertimeHours,
		OvertimePay:      day.OvertimePay,
		LateMinutes:      day.LateMinutes,
		CreatedAt:        att.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:        att.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	overtimeMultiplier decimal.Decimal,
	now func() time.Time,
) attendance.AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		overtimeMultiplier:   overtimeMultiplier,
		now:                  now,
	}
}
