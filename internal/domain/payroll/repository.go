package payroll

import (
	"context"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
)

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (PayrollSettings, error)
	UpsertSettings(ctx context.Context, settings PayrollSettings) (PayrollSettings, error)

	// Payroll Records
	// UpsertPayrollRecord replaces the record of the same employee and period.
	UpsertPayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetPayrollRecordByID(ctx context.Context, id string, companyID string) (PayrollRecord, error)
	ListPayrollRecords(ctx context.Context, companyID string, filter PayrollFilter) ([]PayrollRecord, int64, error)

	// GetLatestContribution returns the contributions of the employee's most recent record that
	// came from the calculator, or ErrPayrollRecordNotFound.
	GetLatestContribution(ctx context.Context, employeeID string, companyID string) (contribution.Result, error)
}
