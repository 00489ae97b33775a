package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

// PayrollSettings - Company payroll policy toggles
type PayrollSettings struct {
	ID                     string
	CompanyID              string
	LateDeductionEnabled   bool
	AbsentDeductionEnabled bool
	OvertimeEnabled        bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// DefaultSettings applies when a company never saved its own.
// Late and absent figures are reported but not deducted.
func DefaultSettings(companyID string) PayrollSettings {
	return PayrollSettings{
		CompanyID:              companyID,
		LateDeductionEnabled:   false,
		AbsentDeductionEnabled: false,
		OvertimeEnabled:        true,
	}
}

// Rates are the per-day and per-hour prices derived from the base salary.
type Rates struct {
	DailyRate          decimal.Decimal `json:"daily_rate"`
	HourlyRate         decimal.Decimal `json:"hourly_rate"`
	DailyStandardHours float64         `json:"daily_standard_hours"`
	OvertimeMultiplier decimal.Decimal `json:"overtime_multiplier"`
}

// DayBreakdown is the audited result of one attendance record.
type DayBreakdown struct {
	Date           string              `json:"date"`
	Status         timeclock.Status    `json:"status"`
	LeaveType      timeclock.LeaveType `json:"leave_type"`
	Punches        timeclock.Punches   `json:"punches"`
	IsDoublePay    bool                `json:"is_double_pay"`
	HoursWorked    float64             `json:"hours_worked"`
	RegularHours   float64             `json:"regular_hours"`
	OvertimeHours  float64             `json:"overtime_hours"`
	LateMinutes    int                 `json:"late_minutes"`
	RegularPay     decimal.Decimal     `json:"regular_pay"`
	OvertimePay    decimal.Decimal     `json:"overtime_pay"`
	DoublePayBonus decimal.Decimal     `json:"double_pay_bonus"`
}

// PeriodTotals is the aggregate of a date range before deductions.
type PeriodTotals struct {
	TotalDays           int     `json:"total_days"`
	TotalAbsent         int     `json:"total_absent"`
	TotalInvalid        int     `json:"total_invalid"`
	TotalOnLeave        int     `json:"total_on_leave"`
	PersonalLeaveUsed   int     `json:"personal_leave_used"`
	ExpectedWorkingDays int     `json:"expected_working_days"`
	TotalRegularHours   float64 `json:"total_regular_hours"`
	TotalOvertimeHours  float64 `json:"total_overtime_hours"`
	TotalLateMinutes    int     `json:"total_late_minutes"`

	RegularPay             decimal.Decimal `json:"regular_pay"`
	RegularPayCapped       bool            `json:"regular_pay_capped"`
	OvertimePay            decimal.Decimal `json:"overtime_pay"`
	DoublePayBonus         decimal.Decimal `json:"double_pay_bonus"`
	AllowanceMultiplier    int             `json:"allowance_multiplier"`
	Allowance              decimal.Decimal `json:"allowance"`
	PerfectAttendanceBonus decimal.Decimal `json:"perfect_attendance_bonus"`
	LeaveConversionBonus   decimal.Decimal `json:"leave_conversion_bonus"`

	// Available figures; whether they are deducted is a policy decision.
	LateDeduction   decimal.Decimal `json:"late_deduction"`
	AbsentDeduction decimal.Decimal `json:"absent_deduction"`
}

type ContributionSource string

const (
	ContributionSourceCalculator    ContributionSource = "calculator"
	ContributionSourceStaleFallback ContributionSource = "stale_fallback"
	ContributionSourceExcluded      ContributionSource = "excluded"
)

// Reconciliation is the deduction side and the net pay, always recomputed in full.
type Reconciliation struct {
	Contributions         contribution.Result `json:"contributions"`
	ContributionsDeferred bool                `json:"contributions_deferred"`
	SeniorExempt          bool                `json:"senior_exempt"`
	DeductionsExcluded    bool                `json:"deductions_excluded"`
	StatutoryTotal        decimal.Decimal     `json:"statutory_total"`

	OutstandingAdvance      decimal.Decimal `json:"outstanding_advance"`
	AdvanceDeduction        decimal.Decimal `json:"advance_deduction"`
	AdvanceDeductionSkipped bool            `json:"advance_deduction_skipped"`

	LateDeductionApplied   decimal.Decimal `json:"late_deduction_applied"`
	AbsentDeductionApplied decimal.Decimal `json:"absent_deduction_applied"`
	OtherDeductions        decimal.Decimal `json:"other_deductions"`

	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay"`
}

// PayrollPeriod is the computed payroll of one employee over a date range.
// It is never mutated; any change of inputs produces a new one.
type PayrollPeriod struct {
	EmployeeID         string                     `json:"employee_id"`
	EmployeeName       string                     `json:"employee_name"`
	CompensationModel  employee.CompensationModel `json:"compensation_model"`
	StartDate          string                     `json:"start_date"`
	EndDate            string                     `json:"end_date"`
	Cutoff             cutoff.Cutoff              `json:"cutoff"`
	Rates              Rates                      `json:"rates"`
	Totals             PeriodTotals               `json:"totals"`
	ContributionSource ContributionSource         `json:"contribution_source"`
	Reconciliation     Reconciliation             `json:"reconciliation"`
	Days               []DayBreakdown             `json:"days"`
	ComputedAt         time.Time                  `json:"computed_at"`
}

// PayrollRecord - Persisted payroll line item
type PayrollRecord struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	RunID              string
	PeriodStart        time.Time
	PeriodEnd          time.Time
	Cutoff             cutoff.Cutoff
	TotalEarnings      decimal.Decimal
	TotalDeductions    decimal.Decimal
	NetPay             decimal.Decimal
	Contributions      contribution.Result
	ContributionSource ContributionSource
	DeductionsExcluded bool
	AdvanceSkipped     bool
	OutstandingAdvance decimal.Decimal
	Breakdown          PayrollPeriod
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}
