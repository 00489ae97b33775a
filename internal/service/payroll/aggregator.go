package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

// personalLeaveAllotment is the monthly personal leave convertible to cash.
const personalLeaveAllotment = 1

// AggregateInput is everything the aggregator needs; it performs no I/O.
type AggregateInput struct {
	Employee employee.Employee
	Period   cutoff.Period
	Rates    payroll.Rates
	Days     []payroll.DayBreakdown

	// SiblingDays are the derived days of the first cutoff of the month the period ends in.
	// Only consulted when the period ends in the second half.
	SiblingDays []payroll.DayBreakdown

	ExpectedWorkingDays        int
	SiblingExpectedWorkingDays int

	OvertimeEnabled bool
}

type dayCounts struct {
	worked  int
	absent  int
	invalid int
}

func countDays(days []payroll.DayBreakdown) dayCounts {
	var c dayCounts
	for _, d := range days {
		switch {
		case d.Status.Worked():
			c.worked++
		case d.Status == timeclock.StatusAbsent:
			c.absent++
		case d.Status == timeclock.StatusInvalid:
			c.invalid++
		}
	}
	return c
}

// flawless means no Absent or Invalid day and at least the expected number of worked days.
func (c dayCounts) flawless(expected int) bool {
	return c.absent == 0 && c.invalid == 0 && c.worked >= expected
}

// Aggregate sums a range of derived days into period totals and bonuses.
func Aggregate(in AggregateInput) payroll.PeriodTotals {
	rates := in.Rates
	totals := payroll.PeriodTotals{
		ExpectedWorkingDays:    in.ExpectedWorkingDays,
		RegularPay:             decimal.Zero,
		OvertimePay:            decimal.Zero,
		DoublePayBonus:         decimal.Zero,
		PerfectAttendanceBonus: decimal.Zero,
		LeaveConversionBonus:   decimal.Zero,
	}

	for _, d := range in.Days {
		switch {
		case d.Status.Worked():
			totals.TotalDays++
			totals.TotalRegularHours += d.RegularHours
			totals.TotalOvertimeHours += d.OvertimeHours
			totals.TotalLateMinutes += d.LateMinutes
			totals.RegularPay = totals.RegularPay.Add(d.RegularPay)
			totals.DoublePayBonus = totals.DoublePayBonus.Add(d.DoublePayBonus)
			if in.OvertimeEnabled {
				totals.OvertimePay = totals.OvertimePay.Add(d.OvertimePay)
			}
		case d.Status == timeclock.StatusAbsent:
			totals.TotalAbsent++
		case d.Status == timeclock.StatusInvalid:
			totals.TotalInvalid++
		case d.Status == timeclock.StatusOnLeave:
			totals.TotalOnLeave++
		}
	}

	totals.AllowanceMultiplier = 1
	if in.Period.IsFullMonth() {
		totals.AllowanceMultiplier = 2
	}
	totals.Allowance = in.Employee.Allowance.Mul(decimal.NewFromInt(int64(totals.AllowanceMultiplier)))

	if in.Period.IsFullMonth() && in.Employee.IsFixed() && totals.RegularPay.GreaterThan(in.Employee.BaseSalary) {
		totals.RegularPay = in.Employee.BaseSalary
		totals.RegularPayCapped = true
	}

	totals.PersonalLeaveUsed = personalLeaveInMonth(in.Period, in.Days, in.SiblingDays)

	if in.Period.EndsInSecondHalf() {
		current := countDays(in.Days)
		sibling := countDays(in.SiblingDays)
		if current.flawless(in.ExpectedWorkingDays) && sibling.flawless(in.SiblingExpectedWorkingDays) {
			totals.PerfectAttendanceBonus = rates.DailyRate
		}

		unused := personalLeaveAllotment - totals.PersonalLeaveUsed
		if unused > 0 {
			totals.LeaveConversionBonus = rates.DailyRate.Mul(decimal.NewFromInt(int64(unused)))
		}
	}

	totals.LateDeduction = decimal.NewFromInt(int64(totals.TotalLateMinutes)).Div(sixty).Mul(rates.HourlyRate)
	totals.AbsentDeduction = decimal.NewFromInt(int64(totals.TotalAbsent)).Mul(rates.DailyRate)

	return totals
}

// personalLeaveInMonth counts personal leave days across both cutoffs of the month the period
// ends in. A date present in both inputs is counted once.
func personalLeaveInMonth(period cutoff.Period, days, sibling []payroll.DayBreakdown) int {
	month := cutoff.Period{Start: cutoff.MonthStart(period.End), End: cutoff.MonthEnd(period.End)}
	seen := make(map[string]struct{})
	for _, set := range [][]payroll.DayBreakdown{days, sibling} {
		for _, d := range set {
			if d.LeaveType != timeclock.LeavePersonal {
				continue
			}
			date, ok := parseDay(d.Date)
			if !ok || !month.Contains(date) {
				continue
			}
			seen[d.Date] = struct{}{}
		}
	}
	return len(seen)
}
