package timeclock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		input string
		want  Clock
	}{
		{"08:00", At(8, 0)},
		{"8:00", At(8, 0)},
		{"17:45:00", At(17, 45)},
		{"8:00 AM", At(8, 0)},
		{"1:30 pm", At(13, 30)},
		{"12:15 AM", At(0, 15)},
		{"12:00 PM", At(12, 0)},
		{" 5:05PM ", At(17, 5)},
	}
	for _, c := range cases {
		got, err := ParseClock(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got, c.input)
	}
}

func TestParseClock_Unparsable(t *testing.T) {
	invalid := []string{"", "   ", "abc", "25:00", "8:61", "13:00 PM", "8.00"}
	for _, s := range invalid {
		_, err := ParseClock(s)
		assert.ErrorIs(t, err, ErrUnparsableTime, s)
	}
}

func TestParseOptionalClock(t *testing.T) {
	got, err := ParseOptionalClock(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	blank := "  "
	got, err = ParseOptionalClock(&blank)
	assert.NoError(t, err)
	assert.Nil(t, got)

	value := "13:00"
	got, err = ParseOptionalClock(&value)
	require.NoError(t, err)
	assert.Equal(t, At(13, 0), *got)
}

func TestClock_JSON(t *testing.T) {
	b, err := json.Marshal(At(7, 5))
	require.NoError(t, err)
	assert.Equal(t, `"07:05"`, string(b))

	var c Clock
	require.NoError(t, json.Unmarshal([]byte(`"4:30 PM"`), &c))
	assert.Equal(t, At(16, 30), c)

	assert.ErrorIs(t, json.Unmarshal([]byte(`"nope"`), &c), ErrUnparsableTime)
}

func TestScheduleSpan(t *testing.T) {
	cases := []struct {
		descriptor string
		want       float64
	}{
		{"8:00 AM - 5:00 PM", 9},
		{"8:30 am – 5:00 pm", 8.5},
		{"9:00AM-6:00PM", 9},
		{"10:00 PM - 6:00 AM", 8},
		{"12:00 AM - 12:00 PM", 12},
	}
	for _, c := range cases {
		got, ok := ScheduleSpan(c.descriptor)
		assert.True(t, ok, c.descriptor)
		assert.InDelta(t, c.want, got, 1e-9, c.descriptor)
	}
}

func TestScheduleSpan_Unparsable(t *testing.T) {
	invalid := []string{
		"",
		"N/A",
		"n/a",
		"8:00 AM",
		"8:00 AM - 5:00 PM - 6:00 PM",
		"8 AM - 5 PM",
		"13:00 AM - 5:00 PM",
		"08:00 - 17:00",
		"8:75 AM - 5:00 PM",
	}
	for _, d := range invalid {
		_, ok := ScheduleSpan(d)
		assert.False(t, ok, d)
	}
}

func TestWorkedHours(t *testing.T) {
	std := DailyStandardHours(40)

	full := Punches{
		TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0)),
		TimeInPM: Ptr(At(13, 0)), TimeOutPM: Ptr(At(17, 0)),
	}
	assert.InDelta(t, 8.0, WorkedHours(full, std, 9, true), 1e-9)

	short := Punches{
		TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(10, 0)),
		TimeInPM: Ptr(At(13, 0)), TimeOutPM: Ptr(At(15, 0)),
	}
	// unlogged lunch added back
	assert.InDelta(t, 5.0, WorkedHours(short, std, 9, true), 1e-9)
	// no schedule, no adjustment
	assert.InDelta(t, 4.0, WorkedHours(short, std, 0, false), 1e-9)
	// schedule shorter than a standard day, no adjustment
	assert.InDelta(t, 4.0, WorkedHours(short, std, 5, true), 1e-9)

	amOnly := Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(10, 0))}
	assert.InDelta(t, 2.0, WorkedHours(amOnly, std, 9, true), 1e-9)

	reversed := Punches{TimeInAM: Ptr(At(12, 0)), TimeOutAM: Ptr(At(8, 0))}
	assert.Equal(t, 0.0, WorkedHours(reversed, std, 9, true))

	open := Punches{TimeInAM: Ptr(At(8, 0))}
	assert.Equal(t, 0.0, WorkedHours(open, std, 9, true))
}

func TestDailyStandardHours(t *testing.T) {
	assert.InDelta(t, 40.0/7, DailyStandardHours(40), 1e-12)
	assert.InDelta(t, 8.0, DailyStandardHours(56), 1e-12)
	assert.InDelta(t, 40.0/7, DailyStandardHours(0), 1e-12)
}

func TestLateMinutes(t *testing.T) {
	schedule, ok := ResolveSchedule("8:00 AM - 5:00 PM")
	require.True(t, ok)

	assert.Equal(t, 15, Punches{TimeInAM: Ptr(At(8, 15))}.LateMinutes(schedule))
	assert.Equal(t, 0, Punches{TimeInAM: Ptr(At(7, 50))}.LateMinutes(schedule))
	assert.Equal(t, 0, Punches{TimeInPM: Ptr(At(13, 0))}.LateMinutes(schedule))
}

func classify(p Punches, std float64, isToday bool) Status {
	hours := WorkedHours(p, std, 0, false)
	return Classify(ClassifyInput{
		Punches:            p,
		TotalHoursWorked:   hours,
		DailyStandardHours: std,
		IsToday:            isToday,
	})
}

func TestClassify(t *testing.T) {
	std := DailyStandardHours(40)

	cases := []struct {
		name    string
		punches Punches
		isToday bool
		want    Status
	}{
		{"no punches", Punches{}, false, StatusAbsent},
		{"no punches today", Punches{}, true, StatusAbsent},
		{"lone time-in past day", Punches{TimeInAM: Ptr(At(8, 0))}, false, StatusAbsent},
		{"lone time-in today", Punches{TimeInAM: Ptr(At(8, 0))}, true, StatusInProgress},
		{"lone pm time-in today", Punches{TimeInPM: Ptr(At(13, 0))}, true, StatusInProgress},
		{"half day", Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0))}, false, StatusHalfDay},
		{"half day today", Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0))}, true, StatusInProgress},
		{"pm half day", Punches{TimeInPM: Ptr(At(13, 0)), TimeOutPM: Ptr(At(17, 0))}, false, StatusHalfDay},
		{"invalid", Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(8, 20))}, false, StatusInvalid},
		{"short half", Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(10, 0))}, false, StatusShortHours},
		{"overtime", Punches{
			TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0)),
			TimeInPM: Ptr(At(13, 0)), TimeOutPM: Ptr(At(17, 0)),
		}, false, StatusOvertime},
		{"short full day", Punches{
			TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(10, 0)),
			TimeInPM: Ptr(At(13, 0)), TimeOutPM: Ptr(At(15, 0)),
		}, false, StatusShortHours},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, classify(c.punches, std, c.isToday))
		})
	}
}

func TestClassify_PresentWithinTolerance(t *testing.T) {
	p := Punches{
		TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0)),
		TimeInPM: Ptr(At(13, 0)), TimeOutPM: Ptr(At(17, 0)),
	}
	assert.Equal(t, StatusPresent, classify(p, DailyStandardHours(56), false))
}

func TestClassify_LeaveWins(t *testing.T) {
	p := Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0))}
	for _, lt := range []LeaveType{LeaveVacation, LeaveSick, LeavePersonal} {
		got := Classify(ClassifyInput{Punches: p, LeaveType: lt, TotalHoursWorked: 4, DailyStandardHours: 8})
		assert.Equal(t, StatusOnLeave, got)
	}
	got := Classify(ClassifyInput{Punches: p, LeaveType: LeaveNone, TotalHoursWorked: 4, DailyStandardHours: 8})
	assert.Equal(t, StatusHalfDay, got)
}

func TestClassify_Idempotent(t *testing.T) {
	in := ClassifyInput{
		Punches:            Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0))},
		TotalHoursWorked:   4,
		DailyStandardHours: DailyStandardHours(40),
	}
	assert.Equal(t, Classify(in), Classify(in))
}

func TestClassifyLive(t *testing.T) {
	std := DailyStandardHours(40)

	working := ClassifyInput{Punches: Punches{TimeInAM: Ptr(At(8, 0))}, DailyStandardHours: std, IsToday: true}
	assert.Equal(t, StatusWorking, ClassifyLive(working))

	lunch := ClassifyInput{
		Punches:            Punches{TimeInAM: Ptr(At(8, 0)), TimeOutAM: Ptr(At(12, 0))},
		TotalHoursWorked:   4,
		DailyStandardHours: std,
		IsToday:            true,
	}
	assert.Equal(t, StatusAtLunch, ClassifyLive(lunch))

	afternoon := lunch
	afternoon.Punches.TimeInPM = Ptr(At(13, 0))
	assert.Equal(t, StatusWorking, ClassifyLive(afternoon))

	nothing := ClassifyInput{DailyStandardHours: std, IsToday: true}
	assert.Equal(t, StatusAbsent, ClassifyLive(nothing))

	// past days never get live refinements
	lunch.IsToday = false
	assert.Equal(t, StatusHalfDay, ClassifyLive(lunch))
}

func TestParseLeaveType(t *testing.T) {
	lt, err := ParseLeaveType("personal")
	require.NoError(t, err)
	assert.Equal(t, LeavePersonal, lt)

	lt, err = ParseLeaveType("")
	require.NoError(t, err)
	assert.Equal(t, LeaveNone, lt)
	assert.False(t, lt.IsLeave())

	_, err = ParseLeaveType("sabbatical")
	assert.Error(t, err)
}

func TestStatus_Flags(t *testing.T) {
	assert.True(t, StatusHalfDay.Worked())
	assert.True(t, StatusOvertime.Worked())
	assert.False(t, StatusAbsent.Worked())
	assert.False(t, StatusOnLeave.Worked())
	assert.True(t, StatusAtLunch.Transient())
	assert.False(t, StatusPresent.Transient())
}
