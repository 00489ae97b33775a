package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CreateAttendance rejects a second record for the same employee and date with ErrDuplicateRecord
	CreateAttendance(ctx context.Context, companyID string, req CreateAttendanceRequest) (AttendanceResponse, error)

	// BatchCreateAttendance applies items one by one; failures never roll back applied items
	BatchCreateAttendance(ctx context.Context, companyID string, req BatchCreateAttendanceRequest) (BatchResult, error)

	// UpdateAttendance fixes punches or leave and recomputes the derived fields
	UpdateAttendance(ctx context.Context, companyID string, req UpdateAttendanceRequest) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, companyID string, id string) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, companyID string, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetEmployeeAttendance lists one employee's records in a date range with derived statuses
	GetEmployeeAttendance(ctx context.Context, companyID string, req EmployeeAttendanceRequest) (EmployeeAttendanceResponse, error)

	// GetTodayStatus returns the live dashboard status of an employee
	GetTodayStatus(ctx context.Context, companyID string, employeeID string) (TodayStatusResponse, error)
}
