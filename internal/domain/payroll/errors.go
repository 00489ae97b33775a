package payroll

import "errors"

var (
	ErrInvalidDateRange         = errors.New("invalid payroll date range")
	ErrUnknownEmployee          = errors.New("unknown employee")
	ErrAdvanceLedgerUnavailable = errors.New("advance ledger unavailable, net pay cannot be finalized")
	ErrContributionUnavailable  = errors.New("contribution calculator unavailable and no previous contribution on record")
	ErrPayrollRecordNotFound    = errors.New("payroll record not found")
	ErrPayrollSettingsNotFound  = errors.New("payroll settings not found")
)
