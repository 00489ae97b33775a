package payroll

import "context"

type PayrollService interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (PayrollSettingsResponse, error)
	UpdateSettings(ctx context.Context, companyID string, req UpdatePayrollSettingsRequest) (PayrollSettingsResponse, error)

	// ComputePayroll previews one employee's payroll for a date range without persisting it.
	ComputePayroll(ctx context.Context, companyID string, req ComputePayrollRequest) (PayrollPeriod, error)

	// GeneratePayroll computes and stores line items for several employees; one employee's
	// failure does not stop the others.
	GeneratePayroll(ctx context.Context, companyID string, req GeneratePayrollRequest) (GeneratePayrollResponse, error)

	GetPayrollRecord(ctx context.Context, companyID string, id string) (PayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, companyID string, filter PayrollFilter) (ListPayrollRecordResponse, error)
}
