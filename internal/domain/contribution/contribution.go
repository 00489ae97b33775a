// Package contribution describes the external statutory contribution calculator
// (SSS, PhilHealth, Pag-IBIG and withholding tax).
package contribution

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
)

var ErrCalculatorUnavailable = errors.New("contribution calculator unavailable")

type Frequency string

const (
	FrequencySemiMonthly Frequency = "semi-monthly"
	FrequencyMonthly     Frequency = "monthly"
)

// Params is the input bag of the calculator.
type Params struct {
	ContractSalary     decimal.Decimal `json:"contract_salary"`
	EarnedSalary       decimal.Decimal `json:"earned_salary"`
	OvertimePay        decimal.Decimal `json:"overtime_pay"`
	OtherEarnings      decimal.Decimal `json:"other_earnings"`
	DeMinimisAllowance decimal.Decimal `json:"de_minimis_allowance"`
	Bonuses            decimal.Decimal `json:"bonuses"`
	Frequency          Frequency       `json:"frequency"`
	Cutoff             cutoff.Cutoff   `json:"cutoff"`
	DateOfBirth        *time.Time      `json:"date_of_birth,omitempty"`
	// SeniorExempt marks employees aged 60 or more, exempt from employee SSS and Pag-IBIG.
	SeniorExempt bool `json:"senior_exempt"`
}

// Result holds per-scheme employee and employer shares plus the withholding tax.
type Result struct {
	SSSEmployee        decimal.Decimal `json:"sss_employee"`
	SSSEmployer        decimal.Decimal `json:"sss_employer"`
	PhilHealthEmployee decimal.Decimal `json:"philhealth_employee"`
	PhilHealthEmployer decimal.Decimal `json:"philhealth_employer"`
	PagIBIGEmployee    decimal.Decimal `json:"pagibig_employee"`
	PagIBIGEmployer    decimal.Decimal `json:"pagibig_employer"`
	WithholdingTax     decimal.Decimal `json:"withholding_tax"`
}

// EmployeeTotal is what leaves the employee's pay: the three employee shares and the tax.
func (r Result) EmployeeTotal() decimal.Decimal {
	return r.SSSEmployee.
		Add(r.PhilHealthEmployee).
		Add(r.PagIBIGEmployee).
		Add(r.WithholdingTax)
}

func (r Result) EmployerTotal() decimal.Decimal {
	return r.SSSEmployer.Add(r.PhilHealthEmployer).Add(r.PagIBIGEmployer)
}

// Calculator computes contributions. Implementations wrap transport failures with
// ErrCalculatorUnavailable.
type Calculator interface {
	Calculate(ctx context.Context, params Params) (Result, error)
}
