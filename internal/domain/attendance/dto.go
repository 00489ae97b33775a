package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// CreateAttendanceRequest carries raw punches as strings, "08:00" or "8:00 AM".
type CreateAttendanceRequest struct {
	EmployeeID  string  `json:"employee_id" validate:"required"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	TimeInAM    *string `json:"time_in_am,omitempty"`
	TimeOutAM   *string `json:"time_out_am,omitempty"`
	TimeInPM    *string `json:"time_in_pm,omitempty"`
	TimeOutPM   *string `json:"time_out_pm,omitempty"`
	LeaveType   string  `json:"leave_type,omitempty"`
	IsDoublePay bool    `json:"is_double_pay"`
}

func (r *CreateAttendanceRequest) Validate() error {
	errs := validator.Struct(r)

	if _, err := timeclock.ParseLeaveType(r.LeaveType); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: None, Vacation, Sick, Personal",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ParsedDate assumes Validate has passed.
func (r *CreateAttendanceRequest) ParsedDate() time.Time {
	date, _ := validator.IsValidDate(r.Date)
	return date
}

// ParsePunches converts the raw punches, failing with ErrUnparsableTime.
func (r *CreateAttendanceRequest) ParsePunches() (timeclock.Punches, error) {
	return parsePunches(map[string]*string{
		"time_in_am":  r.TimeInAM,
		"time_out_am": r.TimeOutAM,
		"time_in_pm":  r.TimeInPM,
		"time_out_pm": r.TimeOutPM,
	})
}

func parsePunches(raw map[string]*string) (timeclock.Punches, error) {
	var p timeclock.Punches
	targets := map[string]**timeclock.Clock{
		"time_in_am":  &p.TimeInAM,
		"time_out_am": &p.TimeOutAM,
		"time_in_pm":  &p.TimeInPM,
		"time_out_pm": &p.TimeOutPM,
	}
	for field, value := range raw {
		c, err := timeclock.ParseOptionalClock(value)
		if err != nil {
			return timeclock.Punches{}, fmt.Errorf("%s: %w", field, err)
		}
		*targets[field] = c
	}
	return p, nil
}

type BatchCreateAttendanceRequest struct {
	Records []CreateAttendanceRequest `json:"records" validate:"required,min=1,max=500"`
	// SkipExisting reports duplicates as skipped instead of failed.
	SkipExisting bool `json:"skip_existing"`
}

func (r *BatchCreateAttendanceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type BatchOutcome string

const (
	BatchOutcomeCreated BatchOutcome = "created"
	BatchOutcomeSkipped BatchOutcome = "skipped"
	BatchOutcomeFailed  BatchOutcome = "failed"
)

type BatchItemResult struct {
	Index      int          `json:"index"`
	EmployeeID string       `json:"employee_id"`
	Date       string       `json:"date"`
	Outcome    BatchOutcome `json:"outcome"`
	ID         *string      `json:"id,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

type BatchResult struct {
	BatchID   string            `json:"batch_id"`
	Succeeded int               `json:"succeeded"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

// UpdateAttendanceRequest for admin/manager to update attendance records.
// A nil punch keeps the stored value, an empty string clears it.
type UpdateAttendanceRequest struct {
	ID          string  `json:"-"`
	TimeInAM    *string `json:"time_in_am,omitempty"`
	TimeOutAM   *string `json:"time_out_am,omitempty"`
	TimeInPM    *string `json:"time_in_pm,omitempty"`
	TimeOutPM   *string `json:"time_out_pm,omitempty"`
	LeaveType   *string `json:"leave_type,omitempty"`
	IsDoublePay *bool   `json:"is_double_pay,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.LeaveType != nil {
		if _, err := timeclock.ParseLeaveType(*r.LeaveType); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "leave_type",
				Message: "leave_type must be one of: None, Vacation, Sick, Personal",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ApplyPunches overlays the requested punch changes on p.
func (r *UpdateAttendanceRequest) ApplyPunches(p timeclock.Punches) (timeclock.Punches, error) {
	changes := map[string]*string{}
	if r.TimeInAM != nil {
		changes["time_in_am"] = r.TimeInAM
	}
	if r.TimeOutAM != nil {
		changes["time_out_am"] = r.TimeOutAM
	}
	if r.TimeInPM != nil {
		changes["time_in_pm"] = r.TimeInPM
	}
	if r.TimeOutPM != nil {
		changes["time_out_pm"] = r.TimeOutPM
	}

	parsed, err := parsePunches(changes)
	if err != nil {
		return p, err
	}

	if r.TimeInAM != nil {
		p.TimeInAM = parsed.TimeInAM
	}
	if r.TimeOutAM != nil {
		p.TimeOutAM = parsed.TimeOutAM
	}
	if r.TimeInPM != nil {
		p.TimeInPM = parsed.TimeInPM
	}
	if r.TimeOutPM != nil {
		p.TimeOutPM = parsed.TimeOutPM
	}
	return p, nil
}

type AttendanceResponse struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	EmployeeName     *string          `json:"employee_name,omitempty"`
	Date             string           `json:"date"`
	TimeInAM         *string          `json:"time_in_am"`
	TimeOutAM        *string          `json:"time_out_am"`
	TimeInPM         *string          `json:"time_in_pm"`
	TimeOutPM        *string          `json:"time_out_pm"`
	LeaveType        string           `json:"leave_type"`
	IsDoublePay      bool             `json:"is_double_pay"`
	Status           timeclock.Status `json:"status"`
	TotalHoursWorked float64          `json:"total_hours_worked"`
	OvertimeHours    float64          `json:"overtime_hours"`
	OvertimePay      decimal.Decimal  `json:"overtime_pay"`
	LateMinutes      int              `json:"late_minutes"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	var start, end time.Time
	var hasStart, hasEnd bool
	if f.StartDate != nil && *f.StartDate != "" {
		if start, hasStart = validator.IsValidDate(*f.StartDate); !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if end, hasEnd = validator.IsValidDate(*f.EndDate); !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if hasStart && hasEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type EmployeeAttendanceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (r *EmployeeAttendanceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// StatusCounts tallies derived statuses over a listed range.
type StatusCounts map[timeclock.Status]int

type EmployeeAttendanceResponse struct {
	EmployeeID       string               `json:"employee_id"`
	StartDate        string               `json:"start_date"`
	EndDate          string               `json:"end_date"`
	TotalHoursWorked float64              `json:"total_hours_worked"`
	StatusCounts     StatusCounts         `json:"status_counts"`
	Attendances      []AttendanceResponse `json:"attendances"`
}

type TodayStatusResponse struct {
	EmployeeID string              `json:"employee_id"`
	Date       string              `json:"date"`
	Status     timeclock.Status    `json:"status"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}
