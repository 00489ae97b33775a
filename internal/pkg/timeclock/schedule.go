package timeclock

import (
	"regexp"
	"strconv"
	"strings"
)

var scheduleHalfRegex = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(AM|PM)$`)

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// Schedule is the working-hours window of a "start - end" descriptor.
type Schedule struct {
	Start Clock
	End   Clock
}

// Span returns the schedule length in hours. A window ending before it starts crosses midnight.
func (s Schedule) Span() float64 {
	minutes := int(s.End - s.Start)
	if minutes < 0 {
		minutes += 24 * 60
	}
	return float64(minutes) / 60
}

// ResolveSchedule parses descriptors like "8:00 AM - 5:00 PM".
// Missing, "N/A" and malformed descriptors report ok == false.
func ResolveSchedule(descriptor string) (Schedule, bool) {
	d := strings.TrimSpace(descriptor)
	if d == "" || strings.EqualFold(d, "N/A") {
		return Schedule{}, false
	}

	parts := strings.Split(dashReplacer.Replace(d), "-")
	if len(parts) != 2 {
		return Schedule{}, false
	}

	start, ok := parseScheduleHalf(parts[0])
	if !ok {
		return Schedule{}, false
	}
	end, ok := parseScheduleHalf(parts[1])
	if !ok {
		return Schedule{}, false
	}

	return Schedule{Start: start, End: end}, true
}

// ScheduleSpan resolves a descriptor straight to its span in hours.
func ScheduleSpan(descriptor string) (float64, bool) {
	schedule, ok := ResolveSchedule(descriptor)
	if !ok {
		return 0, false
	}
	return schedule.Span(), true
}

func parseScheduleHalf(s string) (Clock, bool) {
	m := scheduleHalfRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return 0, false
	}

	hour = hour % 12
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return At(hour, minute), true
}
