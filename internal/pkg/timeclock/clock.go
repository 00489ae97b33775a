package timeclock

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnparsableTime = errors.New("unparsable time")

// Clock is a time of day expressed in minutes since midnight.
type Clock int

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
}

// ParseClock accepts 24-hour ("08:00", "17:30:00") and 12-hour ("8:00 AM") punches.
func ParseClock(s string) (Clock, error) {
	value := strings.ToUpper(strings.TrimSpace(s))
	if value == "" {
		return 0, fmt.Errorf("%w: empty value", ErrUnparsableTime)
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Clock(t.Hour()*60 + t.Minute()), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnparsableTime, s)
}

// ParseOptionalClock treats nil and blank strings as an absent punch.
func ParseOptionalClock(s *string) (*Clock, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	c, err := ParseClock(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// At builds a Clock from an hour and minute.
func At(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// Ptr is a convenience for optional punches.
func Ptr(c Clock) *Clock {
	return &c
}

func (c Clock) Minutes() int {
	return int(c)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// StringPtr formats an optional punch, nil stays nil.
func StringPtr(c *Clock) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrUnparsableTime, string(data))
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
