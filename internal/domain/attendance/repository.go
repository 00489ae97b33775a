package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type AttendanceRepository interface {
	// Create returns ErrDuplicateRecord when (employee, date) already exists.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// Update rewrites punches, leave and the derived columns of an existing record.
	Update(ctx context.Context, attendance Attendance) error

	GetByID(ctx context.Context, id string, companyID string) (Attendance, error)

	// GetByEmployeeAndDate returns ErrAttendanceNotFound when the employee has no record that day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (Attendance, error)

	ExistsByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error)

	// ListByEmployeeAndRange returns records in [start, end] ordered by date.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time, companyID string) ([]Attendance, error)

	List(ctx context.Context, filter AttendanceFilter, companyID string) ([]Attendance, int64, error)
}
