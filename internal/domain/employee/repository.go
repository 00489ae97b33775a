package employee

import "context"

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the employee does not belong to the company.
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	// GetActiveCompanyIDs lists companies with at least one active employee, used by scheduled runs.
	GetActiveCompanyIDs(ctx context.Context) ([]string, error)
}
