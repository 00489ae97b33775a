package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
)

// ReconcileInput combines period totals with the externally supplied figures.
type ReconcileInput struct {
	Period        cutoff.Period
	Totals        payroll.PeriodTotals
	Contributions contribution.Result

	SeniorExempt         bool
	ExcludeAllDeductions bool

	OutstandingAdvance   decimal.Decimal
	SkipAdvanceDeduction bool

	ApplyLateDeduction   bool
	ApplyAbsentDeduction bool
	OtherDeductions      decimal.Decimal
}

// Reconcile applies the cutoff contribution policy and advance recovery, then derives
// earnings, deductions and net pay from scratch.
func Reconcile(in ReconcileInput) payroll.Reconciliation {
	c := in.Contributions
	r := payroll.Reconciliation{
		SeniorExempt:       in.SeniorExempt,
		OutstandingAdvance: in.OutstandingAdvance,
		OtherDeductions:    in.OtherDeductions,
	}

	// Mandatory schemes are collected with the second cutoff; the first only withholds tax.
	if !in.Period.EndsInSecondHalf() {
		c.SSSEmployee, c.SSSEmployer = decimal.Zero, decimal.Zero
		c.PhilHealthEmployee, c.PhilHealthEmployer = decimal.Zero, decimal.Zero
		c.PagIBIGEmployee, c.PagIBIGEmployer = decimal.Zero, decimal.Zero
		r.ContributionsDeferred = true
	}

	if in.SeniorExempt {
		c.SSSEmployee = decimal.Zero
		c.PagIBIGEmployee = decimal.Zero
	}

	if in.ExcludeAllDeductions {
		c = contribution.Result{
			SSSEmployee:        decimal.Zero,
			SSSEmployer:        decimal.Zero,
			PhilHealthEmployee: decimal.Zero,
			PhilHealthEmployer: decimal.Zero,
			PagIBIGEmployee:    decimal.Zero,
			PagIBIGEmployer:    decimal.Zero,
			WithholdingTax:     decimal.Zero,
		}
		r.DeductionsExcluded = true
	}

	r.Contributions = c
	r.StatutoryTotal = c.EmployeeTotal()

	r.AdvanceDeduction = decimal.Zero
	if in.SkipAdvanceDeduction {
		r.AdvanceDeductionSkipped = true
	} else {
		r.AdvanceDeduction = in.OutstandingAdvance
	}

	r.LateDeductionApplied = decimal.Zero
	if in.ApplyLateDeduction {
		r.LateDeductionApplied = in.Totals.LateDeduction
	}
	r.AbsentDeductionApplied = decimal.Zero
	if in.ApplyAbsentDeduction {
		r.AbsentDeductionApplied = in.Totals.AbsentDeduction
	}

	t := in.Totals
	r.TotalEarnings = t.RegularPay.
		Add(t.OvertimePay).
		Add(t.Allowance).
		Add(t.DoublePayBonus).
		Add(t.PerfectAttendanceBonus).
		Add(t.LeaveConversionBonus)

	r.TotalDeductions = r.StatutoryTotal.
		Add(r.AdvanceDeduction).
		Add(r.OtherDeductions).
		Add(r.LateDeductionApplied).
		Add(r.AbsentDeductionApplied)

	r.NetPay = r.TotalEarnings.Sub(r.TotalDeductions)
	return r
}
