package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultStartTime is returned by NextStartTime for a day without activities.
const DefaultStartTime = "00:00"

// DateLayout is the natural key format for days.
const DateLayout = "2006-01-02"

// ParseTimeOfDay validates an "HH:MM" wall-clock value and returns it in canonical form.
func ParseTimeOfDay(raw string) (string, error) {
	minutes, err := minutesOfDay(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

func minutesOfDay(raw string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return 0, ErrInvalidTime
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidTime
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidTime
	}
	return h*60 + m, nil
}

// NormalizeDate validates a "YYYY-MM-DD" date key.
func NormalizeDate(raw string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}

// DateOf formats t as a date key in t's own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}
