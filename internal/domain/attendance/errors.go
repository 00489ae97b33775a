package attendance

import (
	"errors"

	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnknownEmployee    = errors.New("unknown employee")
	ErrDuplicateRecord    = errors.New("attendance record already exists for this employee and date")
	ErrInvalidDateRange   = errors.New("invalid date range")

	// ErrUnparsableTime is the time-punch parse failure shared with the timeclock package.
	ErrUnparsableTime = timeclock.ErrUnparsableTime
)
