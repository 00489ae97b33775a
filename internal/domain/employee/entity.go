package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/timeclock"
)

type Employee struct {
	ID                     string
	CompanyID              string
	EmployeeCode           string
	FullName               string
	RateType               string
	EmploymentType         string
	EmploymentStatus       EmploymentStatus
	StandardWorkweekHours  float64
	BaseSalary             decimal.Decimal
	Allowance              decimal.Decimal
	WorkScheduleDescriptor *string
	DOB                    *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

type CompensationModel string

const (
	CompensationFixed     CompensationModel = "Fixed"
	CompensationTimeBased CompensationModel = "TimeBased"
)

var fixedRateMarkers = []string{"fixed", "monthly", "salary"}

// CompensationModel is Fixed when the rate type or employment type mentions a fixed, monthly
// or salaried arrangement, TimeBased otherwise.
func (e Employee) CompensationModel() CompensationModel {
	text := strings.ToLower(e.RateType + " " + e.EmploymentType)
	for _, marker := range fixedRateMarkers {
		if strings.Contains(text, marker) {
			return CompensationFixed
		}
	}
	return CompensationTimeBased
}

func (e Employee) IsFixed() bool {
	return e.CompensationModel() == CompensationFixed
}

// WorkweekHours falls back to the default 40 hour week when unset.
func (e Employee) WorkweekHours() float64 {
	if e.StandardWorkweekHours <= 0 {
		return timeclock.DefaultWorkweekHours
	}
	return e.StandardWorkweekHours
}

func (e Employee) DailyStandardHours() float64 {
	return timeclock.DailyStandardHours(e.WorkweekHours())
}

// Schedule resolves the employee's working-hours descriptor.
func (e Employee) Schedule() (timeclock.Schedule, bool) {
	if e.WorkScheduleDescriptor == nil {
		return timeclock.Schedule{}, false
	}
	return timeclock.ResolveSchedule(*e.WorkScheduleDescriptor)
}

// AgeOn returns the completed years of age on the given date, or -1 without a birth date.
func (e Employee) AgeOn(on time.Time) int {
	if e.DOB == nil {
		return -1
	}
	dob := *e.DOB
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
