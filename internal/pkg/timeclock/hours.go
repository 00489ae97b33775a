package timeclock

const (
	// DefaultWorkweekHours applies when an employee has no workweek configured.
	DefaultWorkweekHours = 40.0

	unloggedLunchMinutes = 60
)

// Punches holds the four optional time punches of one day.
type Punches struct {
	TimeInAM  *Clock `json:"time_in_am,omitempty"`
	TimeOutAM *Clock `json:"time_out_am,omitempty"`
	TimeInPM  *Clock `json:"time_in_pm,omitempty"`
	TimeOutPM *Clock `json:"time_out_pm,omitempty"`
}

func (p Punches) AMComplete() bool {
	return p.TimeInAM != nil && p.TimeOutAM != nil
}

func (p Punches) PMComplete() bool {
	return p.TimeInPM != nil && p.TimeOutPM != nil
}

// HasOpenSession reports a time-in whose time-out has not been punched yet.
func (p Punches) HasOpenSession() bool {
	return (p.TimeInAM != nil && p.TimeOutAM == nil) || (p.TimeInPM != nil && p.TimeOutPM == nil)
}

// LateMinutes measures the morning time-in against the schedule start.
func (p Punches) LateMinutes(schedule Schedule) int {
	if p.TimeInAM == nil {
		return 0
	}
	late := int(*p.TimeInAM - schedule.Start)
	if late < 0 {
		return 0
	}
	return late
}

// DailyStandardHours is the expected daily load of a workweek spread over seven days.
func DailyStandardHours(workweekHours float64) float64 {
	if workweekHours <= 0 {
		workweekHours = DefaultWorkweekHours
	}
	return workweekHours / 7
}

// WorkedHours sums both sessions. When both sessions are complete, the schedule span covers a
// full standard day and the punched total still falls short of it, one hour of lunch that was
// never punched is added back.
func WorkedHours(p Punches, dailyStandardHours float64, span float64, spanKnown bool) float64 {
	raw := sessionMinutes(p.TimeInAM, p.TimeOutAM) + sessionMinutes(p.TimeInPM, p.TimeOutPM)

	if p.AMComplete() && p.PMComplete() && spanKnown &&
		span >= dailyStandardHours && float64(raw)/60 < dailyStandardHours {
		raw += unloggedLunchMinutes
	}

	return float64(raw) / 60
}

func sessionMinutes(in, out *Clock) int {
	if in == nil || out == nil {
		return 0
	}
	d := int(*out - *in)
	if d < 0 {
		return 0
	}
	return d
}
