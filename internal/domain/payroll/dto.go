package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/contribution"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/cutoff"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/validator"
)

// ========== SETTINGS ==========

type PayrollSettingsResponse struct {
	ID                     string `json:"id,omitempty"`
	CompanyID              string `json:"company_id"`
	LateDeductionEnabled   bool   `json:"late_deduction_enabled"`
	AbsentDeductionEnabled bool   `json:"absent_deduction_enabled"`
	OvertimeEnabled        bool   `json:"overtime_enabled"`
}

type UpdatePayrollSettingsRequest struct {
	LateDeductionEnabled   *bool `json:"late_deduction_enabled,omitempty"`
	AbsentDeductionEnabled *bool `json:"absent_deduction_enabled,omitempty"`
	OvertimeEnabled        *bool `json:"overtime_enabled,omitempty"`
}

func (r *UpdatePayrollSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LateDeductionEnabled == nil && r.AbsentDeductionEnabled == nil && r.OvertimeEnabled == nil {
		errs = append(errs, validator.ValidationError{Field: "settings", Message: "at least one setting is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== COMPUTATION ==========

// PeriodRequest is the date range shared by compute and generate requests.
type PeriodRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// Period parses the range, failing with ErrInvalidDateRange.
func (r PeriodRequest) Period() (cutoff.Period, error) {
	start, okStart := validator.IsValidDate(r.StartDate)
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okStart || !okEnd {
		return cutoff.Period{}, ErrInvalidDateRange
	}
	p, err := cutoff.NewPeriod(start, end)
	if err != nil {
		return cutoff.Period{}, ErrInvalidDateRange
	}
	return p, nil
}

// Toggles are the caller-controlled policy switches of a payroll run. Changing any of them
// recomputes the whole period.
type Toggles struct {
	ExcludeAllDeductions bool `json:"exclude_all_deductions"`
	SkipAdvanceDeduction bool `json:"skip_advance_deduction"`
	// Nil falls back to the company settings.
	ApplyLateDeduction   *bool            `json:"apply_late_deduction,omitempty"`
	ApplyAbsentDeduction *bool            `json:"apply_absent_deduction,omitempty"`
	OtherDeductions      *decimal.Decimal `json:"other_deductions,omitempty"`
}

type ComputePayrollRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	PeriodRequest
	Toggles
}

func (r *ComputePayrollRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, r.Toggles.validate()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (t Toggles) validate() validator.ValidationErrors {
	var errs validator.ValidationErrors
	if t.OtherDeductions != nil && t.OtherDeductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "other_deductions", Message: "must be non-negative"})
	}
	return errs
}

type GeneratePayrollRequest struct {
	PeriodRequest
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = all active employees
	Toggles
}

func (r *GeneratePayrollRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, r.Toggles.validate()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GenerateOutcome string

const (
	GenerateOutcomeGenerated GenerateOutcome = "generated"
	GenerateOutcomeSkipped   GenerateOutcome = "skipped"
	GenerateOutcomeFailed    GenerateOutcome = "failed"
)

type GenerateItemResult struct {
	EmployeeID string           `json:"employee_id"`
	Outcome    GenerateOutcome  `json:"outcome"`
	RecordID   *string          `json:"record_id,omitempty"`
	NetPay     *decimal.Decimal `json:"net_pay,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

type GeneratePayrollResponse struct {
	RunID     string               `json:"run_id"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Cutoff    cutoff.Cutoff        `json:"cutoff"`
	Generated int                  `json:"generated"`
	Skipped   int                  `json:"skipped"`
	Failed    int                  `json:"failed"`
	Items     []GenerateItemResult `json:"items"`
}

// ========== RECORDS ==========

type PayrollRecordResponse struct {
	ID                      string              `json:"id"`
	RunID                   string              `json:"run_id"`
	EmployeeID              string              `json:"employee_id"`
	EmployeeName            string              `json:"employee_name"`
	EmployeeCode            string              `json:"employee_code"`
	PeriodStart             string              `json:"period_start"`
	PeriodEnd               string              `json:"period_end"`
	Cutoff                  cutoff.Cutoff       `json:"cutoff"`
	TotalEarnings           decimal.Decimal     `json:"total_earnings"`
	TotalDeductions         decimal.Decimal     `json:"total_deductions"`
	NetPay                  decimal.Decimal     `json:"net_pay"`
	Contributions           contribution.Result `json:"contributions"`
	ContributionSource      ContributionSource  `json:"contribution_source"`
	DeductionsExcluded      bool                `json:"deductions_excluded"`
	AdvanceDeductionSkipped bool                `json:"advance_deduction_skipped"`
	OutstandingAdvance      decimal.Decimal     `json:"outstanding_advance"`
	Breakdown               *PayrollPeriod      `json:"breakdown,omitempty"`
	CreatedAt               string              `json:"created_at"`
	UpdatedAt               string              `json:"updated_at"`
}

type PayrollFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // records ending on or after
	EndDate    *string `json:"end_date,omitempty"`   // records starting on or before
	Cutoff     *string `json:"cutoff,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	SortOrder  string  `json:"sort_order"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}

	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}
	if f.Cutoff != nil && !validator.IsInSlice(*f.Cutoff, []string{string(cutoff.First), string(cutoff.Second)}) {
		errs = append(errs, validator.ValidationError{Field: "cutoff", Message: "cutoff must be one of: 1st, 2nd"})
	}

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "sort_order must be one of: asc, desc"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
