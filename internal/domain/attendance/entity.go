package attendance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

// Attendance is one employee-day. Status is never stored; it is derived from the punches,
// the leave type and the owning employee on every read.
type Attendance struct {
	ID          string
	EmployeeID  string
	CompanyID   string
	Date        time.Time
	Punches     timeclock.Punches
	LeaveType   timeclock.LeaveType
	IsDoublePay bool

	// Derived on write
	TotalHoursWorked float64
	OvertimeHours    float64
	OvertimePay      decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}
