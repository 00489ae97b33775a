package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/auth"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrCompanyIDRequired):
		Forbidden(w, "Company access required")
	case errors.Is(err, auth.ErrManagerRequired):
		Forbidden(w, "Manager access required")

	// Employee errors
	case errors.Is(err, attendance.ErrUnknownEmployee),
		errors.Is(err, payroll.ErrUnknownEmployee),
		errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, err.Error())

	// Attendance errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrDuplicateRecord):
		Conflict(w, "Attendance record already exists for this employee and date")
	case errors.Is(err, attendance.ErrUnparsableTime):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, "End date must not be before start date", nil)

	// Payroll errors
	case errors.Is(err, payroll.ErrInvalidDateRange):
		BadRequest(w, "End date must not be before start date", nil)
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrAdvanceLedgerUnavailable):
		ServiceUnavailable(w, "Advance ledger unavailable, net pay cannot be finalized")
	case errors.Is(err, payroll.ErrContributionUnavailable):
		ServiceUnavailable(w, "Contribution calculator unavailable")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
