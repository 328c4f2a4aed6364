// Package timerule turns free-form reminder times into canonical
// times of day and computes when reminders should fire.
package timerule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/julianstephens/carelog/internal/models"
)

// ErrUnparseableTime is returned by ParseTimeOfDayStrict for text that does
// not describe a time of day.
var ErrUnparseableTime = errors.New("unrecognized time of day")

// DefaultTime is used by ParseTimeOfDay when the text cannot be parsed.
var DefaultTime = models.TimeOfDay{Hour: 9, Minute: 0}

var (
	clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)?$`)
	hourPattern  = regexp.MustCompile(`^(\d{1,2})\s*(am|pm)$`)
)

// ParseTimeOfDay parses text such as "11:18pm", "9:00 AM", "7pm" or "14:00".
// It never fails: unparseable text yields DefaultTime.
func ParseTimeOfDay(text string) models.TimeOfDay {
	t, err := ParseTimeOfDayStrict(text)
	if err != nil {
		return DefaultTime
	}
	return t
}

// ParseTimeOfDayStrict is ParseTimeOfDay without the fallback.
func ParseTimeOfDayStrict(text string) (models.TimeOfDay, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	var hourStr, minuteStr, meridiem string
	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hourStr, minuteStr, meridiem = m[1], m[2], m[3]
	} else if m := hourPattern.FindStringSubmatch(s); m != nil {
		hourStr, minuteStr, meridiem = m[1], "0", m[2]
	} else {
		return models.TimeOfDay{}, fmt.Errorf("%w: %q", ErrUnparseableTime, text)
	}

	// Both groups are 1-2 ASCII digits, so Atoi cannot fail.
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minuteStr)

	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	t := models.TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return models.TimeOfDay{}, fmt.Errorf("%w: %q is out of range", ErrUnparseableTime, text)
	}
	return t, nil
}
