package payroll

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

var (
	DefaultOvertimeMultiplier = decimal.RequireFromString("1.25")

	daysPerMonth = decimal.NewFromInt(30)
	daysPerWeek  = decimal.NewFromInt(7)
	two          = decimal.NewFromInt(2)
	sixty        = decimal.NewFromInt(60)
)

// NewRates derives DailyRate = base/30 and HourlyRate = DailyRate / (weekly/7).
func NewRates(baseSalary decimal.Decimal, weeklyHours float64) payroll.Rates {
	if weeklyHours <= 0 {
		weeklyHours = timeclock.DefaultWorkweekHours
	}
	daily := baseSalary.Div(daysPerMonth)
	return payroll.Rates{
		DailyRate:          daily,
		HourlyRate:         daily.Mul(daysPerWeek).Div(decimal.NewFromFloat(weeklyHours)),
		DailyStandardHours: timeclock.DailyStandardHours(weeklyHours),
		OvertimeMultiplier: DefaultOvertimeMultiplier,
	}
}

// RatesFor builds the rates of an employee with the given overtime multiplier.
func RatesFor(emp employee.Employee, overtimeMultiplier decimal.Decimal) payroll.Rates {
	rates := NewRates(emp.BaseSalary, emp.WorkweekHours())
	if overtimeMultiplier.IsPositive() {
		rates.OvertimeMultiplier = overtimeMultiplier
	}
	return rates
}

// DayPay is the pay of one classified day.
type DayPay struct {
	RegularHours   float64
	OvertimeHours  float64
	RegularPay     decimal.Decimal
	OvertimePay    decimal.Decimal
	DoublePayBonus decimal.Decimal
}

// ComputeDailyPay prices one day. Only worked statuses earn pay. Fixed employees get a flat
// daily rate (half on a half day) and never overtime or double pay.
func ComputeDailyPay(model employee.CompensationModel, status timeclock.Status, hours float64, rates payroll.Rates, doublePay bool) DayPay {
	pay := DayPay{
		RegularPay:     decimal.Zero,
		OvertimePay:    decimal.Zero,
		DoublePayBonus: decimal.Zero,
	}
	if !status.Worked() {
		return pay
	}

	std := rates.DailyStandardHours
	pay.RegularHours = math.Min(hours, std)

	if model == employee.CompensationFixed {
		if status == timeclock.StatusHalfDay {
			pay.RegularPay = rates.DailyRate.Div(two)
		} else {
			pay.RegularPay = rates.DailyRate
		}
		return pay
	}

	pay.OvertimeHours = math.Max(0, hours-std)
	pay.OvertimePay = OvertimePay(pay.OvertimeHours, rates)
	pay.RegularPay = decimal.NewFromFloat(pay.RegularHours).Mul(rates.HourlyRate)
	if doublePay {
		pay.DoublePayBonus = pay.RegularPay
	}
	return pay
}

// OvertimePay is overtimeHours × HourlyRate × multiplier.
func OvertimePay(overtimeHours float64, rates payroll.Rates) decimal.Decimal {
	if overtimeHours <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(overtimeHours).Mul(rates.HourlyRate).Mul(rates.OvertimeMultiplier)
}

// DeriveDay runs span resolution, hours, classification and pay for one record.
func DeriveDay(emp employee.Employee, rec attendance.Attendance, rates payroll.Rates, isToday bool) payroll.DayBreakdown {
	schedule, known := emp.Schedule()
	span := 0.0
	if known {
		span = schedule.Span()
	}

	hours := timeclock.WorkedHours(rec.Punches, rates.DailyStandardHours, span, known)
	status := timeclock.Classify(timeclock.ClassifyInput{
		Punches:            rec.Punches,
		LeaveType:          rec.LeaveType,
		TotalHoursWorked:   hours,
		DailyStandardHours: rates.DailyStandardHours,
		IsToday:            isToday,
	})

	model := emp.CompensationModel()
	doublePay := rec.IsDoublePay && model == employee.CompensationTimeBased
	pay := ComputeDailyPay(model, status, hours, rates, doublePay)

	late := 0
	if known && status.Worked() {
		late = rec.Punches.LateMinutes(schedule)
	}

	leave := rec.LeaveType
	if leave == "" {
		leave = timeclock.LeaveNone
	}

	return payroll.DayBreakdown{
		Date:           cutoff.Day(rec.Date).Format("2006-01-02"),
		Status:         status,
		LeaveType:      leave,
		Punches:        rec.Punches,
		IsDoublePay:    doublePay,
		HoursWorked:    hours,
		RegularHours:   pay.RegularHours,
		OvertimeHours:  pay.OvertimeHours,
		LateMinutes:    late,
		RegularPay:     pay.RegularPay,
		OvertimePay:    pay.OvertimePay,
		DoublePayBonus: pay.DoublePayBonus,
	}
}
