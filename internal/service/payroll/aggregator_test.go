package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func mustPeriod(t *testing.T, start, end time.Time) cutoff.Period {
	t.Helper()
	p, err := cutoff.NewPeriod(start, end)
	require.NoError(t, err)
	return p
}

// presentDays builds n consecutive Present days paid at the daily rate.
func presentDays(from time.Time, n int, rates payroll.Rates) []payroll.DayBreakdown {
	days := make([]payroll.DayBreakdown, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, payroll.DayBreakdown{
			Date:           from.AddDate(0, 0, i).Format(time.DateOnly),
			Status:         timeclock.StatusPresent,
			LeaveType:      timeclock.LeaveNone,
			HoursWorked:    rates.DailyStandardHours,
			RegularHours:   rates.DailyStandardHours,
			RegularPay:     rates.DailyRate,
			OvertimePay:    dec("0"),
			DoublePayBonus: dec("0"),
		})
	}
	return days
}

func statusDay(d time.Time, status timeclock.Status, leave timeclock.LeaveType) payroll.DayBreakdown {
	return payroll.DayBreakdown{
		Date:           d.Format(time.DateOnly),
		Status:         status,
		LeaveType:      leave,
		RegularPay:     dec("0"),
		OvertimePay:    dec("0"),
		DoublePayBonus: dec("0"),
	}
}

func timeBasedEmployee() employee.Employee {
	return employee.Employee{
		ID:                    "emp-1",
		CompanyID:             "company-1",
		FullName:              "Juan Dela Cruz",
		RateType:              "hourly",
		EmploymentStatus:      employee.EmploymentStatusActive,
		StandardWorkweekHours: 56,
		BaseSalary:            dec("30000"),
		Allowance:             dec("1000"),
	}
}

// ===== ALLOWANCE TESTS =====

func TestAggregate_AllowanceDoubledForFullMonth(t *testing.T) {
	emp := timeBasedEmployee()
	rates := RatesFor(emp, dec("0"))

	full := Aggregate(AggregateInput{
		Employee: emp,
		Period:   mustPeriod(t, date(2026, 3, 1), date(2026, 3, 31)),
		Rates:    rates,
	})
	half := Aggregate(AggregateInput{
		Employee: emp,
		Period:   mustPeriod(t, date(2026, 3, 1), date(2026, 3, 15)),
		Rates:    rates,
	})

	assert.Equal(t, 2, full.AllowanceMultiplier)
	assert.True(t, full.Allowance.Equal(dec("2000")))
	assert.Equal(t, 1, half.AllowanceMultiplier)
	assert.True(t, half.Allowance.Equal(dec("1000")))
}

// ===== TOTALS TESTS =====

func TestAggregate_SumsWorkedDaysOnly(t *testing.T) {
	emp := timeBasedEmployee()
	rates := RatesFor(emp, dec("0"))

	days := presentDays(date(2026, 3, 2), 3, rates)
	days[0].OvertimeHours = 2
	days[0].OvertimePay = dec("312.5")
	days[1].LateMinutes = 90
	days = append(days,
		statusDay(date(2026, 3, 5), timeclock.StatusAbsent, timeclock.LeaveNone),
		statusDay(date(2026, 3, 6), timeclock.StatusAbsent, timeclock.LeaveNone),
		statusDay(date(2026, 3, 7), timeclock.StatusInvalid, timeclock.LeaveNone),
		statusDay(date(2026, 3, 9), timeclock.StatusOnLeave, timeclock.LeaveSick),
	)

	totals := Aggregate(AggregateInput{
		Employee:            emp,
		Period:              mustPeriod(t, date(2026, 3, 1), date(2026, 3, 15)),
		Rates:               rates,
		Days:                days,
		ExpectedWorkingDays: 12,
		OvertimeEnabled:     true,
	})

	assert.Equal(t, 3, totals.TotalDays)
	assert.Equal(t, 2, totals.TotalAbsent)
	assert.Equal(t, 1, totals.TotalInvalid)
	assert.Equal(t, 1, totals.TotalOnLeave)
	assert.Equal(t, 90, totals.TotalLateMinutes)
	assert.InDelta(t, 2.0, totals.TotalOvertimeHours, 1e-9)
	assert.True(t, totals.RegularPay.Equal(dec("3000")), "regular pay %s", totals.RegularPay)
	assert.True(t, totals.OvertimePay.Equal(dec("312.5")))
	// 90/60 × 125
	assert.True(t, totals.LateDeduction.Equal(dec("187.5")), "late deduction %s", totals.LateDeduction)
	assert.True(t, totals.AbsentDeduction.Equal(dec("2000")))
	// First cutoff carries no month-end bonuses
	assert.True(t, totals.PerfectAttendanceBonus.IsZero())
	assert.True(t, totals.LeaveConversionBonus.IsZero())
}

func TestAggregate_OvertimeDisabled(t *testing.T) {
	emp := timeBasedEmployee()
	rates := RatesFor(emp, dec("0"))
	days := presentDays(date(2026, 3, 2), 1, rates)
	days[0].OvertimePay = dec("312.5")

	totals := Aggregate(AggregateInput{
		Employee:        emp,
		Period:          mustPeriod(t, date(2026, 3, 1), date(2026, 3, 15)),
		Rates:           rates,
		Days:            days,
		OvertimeEnabled: false,
	})

	assert.True(t, totals.OvertimePay.IsZero())
}

func TestAggregate_FixedFullMonthCappedAtBaseSalary(t *testing.T) {
	emp := timeBasedEmployee()
	emp.RateType = "fixed monthly"
	rates := RatesFor(emp, dec("0"))

	totals := Aggregate(AggregateInput{
		Employee: emp,
		Period:   mustPeriod(t, date(2026, 3, 1), date(2026, 3, 31)),
		Rates:    rates,
		Days:     presentDays(date(2026, 3, 1), 31, rates),
	})

	assert.True(t, totals.RegularPayCapped)
	assert.True(t, totals.RegularPay.Equal(dec("30000")))
}

func TestAggregate_FixedHalfMonthNotCapped(t *testing.T) {
	emp := timeBasedEmployee()
	emp.RateType = "fixed monthly"
	rates := RatesFor(emp, dec("0"))

	totals := Aggregate(AggregateInput{
		Employee: emp,
		Period:   mustPeriod(t, date(2026, 3, 1), date(2026, 3, 15)),
		Rates:    rates,
		Days:     presentDays(date(2026, 3, 1), 15, rates),
	})

	assert.False(t, totals.RegularPayCapped)
	assert.True(t, totals.RegularPay.Equal(dec("15000")))
}

// ===== MONTH-END BONUS TESTS =====

func TestAggregate_PerfectAttendance(t *testing.T) {
	emp := timeBasedEmployee()
	rates := RatesFor(emp, dec("0"))
	period := mustPeriod(t, date(2026, 3, 16), date(2026, 3, 31))

	tests := []struct {
		name      string
		mutate    func(current, sibling []payroll.DayBreakdown) ([]payroll.DayBreakdown, []payroll.DayBreakdown)
		wantBonus bool
	}{
		{
			name: "both cutoffs flawless",
			mutate: func(c, s []payroll.DayBreakdown) ([]payroll.DayBreakdown, []payroll.DayBreakdown) {
				return c, s
			},
			wantBonus: true,
		},
		{
			name: "absence in first cutoff",
			mutate: func(c, s []payroll.DayBreakdown) ([]payroll.DayBreakdown, []payroll.DayBreakdown) {
				return c, append(s, statusDay(date(2026, 3, 14), timeclock.StatusAbsent, timeclock.LeaveNone))
			},
			wantBonus: false,
		},
		{
			name: "invalid day in second cutoff",
			mutate: func(c, s []payroll.DayBreakdown) ([]payroll.DayBreakdown, []payroll.DayBreakdown) {
				return append(c, statusDay(date(2026, 3, 31), timeclock.StatusInvalid, timeclock.LeaveNone)), s
			},
			wantBonus: false,
		},
		{
			name: "fewer worked days than expected",
			mutate: func(c, s []payroll.DayBreakdown) ([]payroll.DayBreakdown, []payroll.DayBreakdown) {
				return c[1:], s
			},
			wantBonus: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, sibling := tt.mutate(
				presentDays(date(2026, 3, 16), 14, rates),
				presentDays(date(2026, 3, 2), 12, rates),
			)

			totals := Aggregate(AggregateInput{
				Employee:                   emp,
				Period:                     period,
				Rates:                      rates,
				Days:                       current,
				SiblingDays:                sibling,
				ExpectedWorkingDays:        14,
				SiblingExpectedWorkingDays: 12,
			})

			if tt.wantBonus {
				assert.True(t, totals.PerfectAttendanceBonus.Equal(rates.DailyRate))
			} else {
				assert.True(t, totals.PerfectAttendanceBonus.IsZero())
			}
		})
	}
}

func TestAggregate_LeaveConversion(t *testing.T) {
	emp := timeBasedEmployee()
	rates := RatesFor(emp, dec("0"))
	period := mustPeriod(t, date(2026, 3, 16), date(2026, 3, 31))

	t.Run("unused personal leave converts", func(t *testing.T) {
		totals := Aggregate(AggregateInput{
			Employee: emp,
			Period:   period,
			Rates:    rates,
		})

		assert.Equal(t, 0, totals.PersonalLeaveUsed)
		assert.True(t, totals.LeaveConversionBonus.Equal(dec("1000")))
	})

	t.Run("personal leave in first cutoff", func(t *testing.T) {
		totals := Aggregate(AggregateInput{
			Employee:    emp,
			Period:      period,
			Rates:       rates,
			SiblingDays: []payroll.DayBreakdown{statusDay(date(2026, 3, 10), timeclock.StatusOnLeave, timeclock.LeavePersonal)},
		})

		assert.Equal(t, 1, totals.PersonalLeaveUsed)
		assert.True(t, totals.LeaveConversionBonus.IsZero())
	})

	t.Run("other leave types do not count", func(t *testing.T) {
		totals := Aggregate(AggregateInput{
			Employee: emp,
			Period:   period,
			Rates:    rates,
			Days:     []payroll.DayBreakdown{statusDay(date(2026, 3, 20), timeclock.StatusOnLeave, timeclock.LeaveSick)},
		})

		assert.Equal(t, 0, totals.PersonalLeaveUsed)
		assert.True(t, totals.LeaveConversionBonus.Equal(dec("1000")))
	})

	t.Run("same day in both inputs counted once", func(t *testing.T) {
		day := statusDay(date(2026, 3, 20), timeclock.StatusOnLeave, timeclock.LeavePersonal)
		totals := Aggregate(AggregateInput{
			Employee:    emp,
			Period:      mustPeriod(t, date(2026, 3, 1), date(2026, 3, 31)),
			Rates:       rates,
			Days:        []payroll.DayBreakdown{day},
			SiblingDays: []payroll.DayBreakdown{day},
		})

		assert.Equal(t, 1, totals.PersonalLeaveUsed)
	})
}
