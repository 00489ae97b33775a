package timeclock

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPresent    Status = "Present"
	StatusAbsent     Status = "Absent"
	StatusOnLeave    Status = "OnLeave"
	StatusHalfDay    Status = "HalfDay"
	StatusShortHours Status = "ShortHours"
	StatusOvertime   Status = "Overtime"
	StatusInvalid    Status = "Invalid"
	StatusInProgress Status = "InProgress"

	// Live-dashboard refinements of InProgress, never persisted.
	StatusWorking Status = "Working"
	StatusAtLunch Status = "AtLunch"
)

// Worked reports the statuses whose hours and pay enter period totals.
func (s Status) Worked() bool {
	switch s {
	case StatusPresent, StatusOvertime, StatusShortHours, StatusHalfDay:
		return true
	}
	return false
}

// Transient reports statuses that only make sense while the day is still running.
func (s Status) Transient() bool {
	return s == StatusInProgress || s == StatusWorking || s == StatusAtLunch
}

type LeaveType string

const (
	LeaveNone     LeaveType = "None"
	LeaveVacation LeaveType = "Vacation"
	LeaveSick     LeaveType = "Sick"
	LeavePersonal LeaveType = "Personal"
)

var leaveTypes = []LeaveType{LeaveNone, LeaveVacation, LeaveSick, LeavePersonal}

// ParseLeaveType is case-insensitive; blank means no leave.
func ParseLeaveType(s string) (LeaveType, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return LeaveNone, nil
	}
	for _, lt := range leaveTypes {
		if strings.EqualFold(value, string(lt)) {
			return lt, nil
		}
	}
	return LeaveNone, fmt.Errorf("unknown leave type %q", s)
}

func (l LeaveType) IsLeave() bool {
	return l != "" && l != LeaveNone
}

const (
	MinValidHours = 0.5
	HalfDayFactor = 0.75
	Tolerance     = 0.01
)

type ClassifyInput struct {
	Punches            Punches
	LeaveType          LeaveType
	TotalHoursWorked   float64
	DailyStandardHours float64
	IsToday            bool
}

// Classify derives the persisted attendance status of a day.
func Classify(in ClassifyInput) Status {
	if in.LeaveType.IsLeave() {
		return StatusOnLeave
	}

	am := in.Punches.AMComplete()
	pm := in.Punches.PMComplete()

	switch {
	case !am && !pm:
		if in.IsToday && (in.Punches.TimeInAM != nil || in.Punches.TimeInPM != nil) {
			return StatusInProgress
		}
		return StatusAbsent

	case am != pm:
		minHalfDay := in.DailyStandardHours / 2 * HalfDayFactor
		switch {
		case in.IsToday:
			return StatusInProgress
		case in.TotalHoursWorked < MinValidHours:
			return StatusInvalid
		case in.TotalHoursWorked < minHalfDay:
			return StatusShortHours
		default:
			return StatusHalfDay
		}

	default:
		switch {
		case in.TotalHoursWorked < in.DailyStandardHours-Tolerance:
			return StatusShortHours
		case in.TotalHoursWorked > in.DailyStandardHours+Tolerance:
			return StatusOvertime
		default:
			return StatusPresent
		}
	}
}

// ClassifyLive refines today's in-progress states for the live dashboard.
func ClassifyLive(in ClassifyInput) Status {
	if !in.IsToday || in.LeaveType.IsLeave() {
		return Classify(in)
	}

	p := in.Punches
	if p.HasOpenSession() {
		return StatusWorking
	}
	if p.AMComplete() && p.TimeInPM == nil && p.TimeOutPM == nil {
		return StatusAtLunch
	}
	return Classify(in)
}
