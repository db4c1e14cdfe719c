package domain

import (
	"fmt"
	"strings"
)

// Interval represents the billing cadence of a contribution.
type Interval string

const (
	// IntervalOneTime charges the contributor once.
	IntervalOneTime Interval = "one_time"
	// IntervalMonthly charges the contributor every month.
	IntervalMonthly Interval = "month"
	// IntervalYearly charges the contributor every year.
	IntervalYearly Interval = "year"
)

// Intervals lists every supported cadence in display order.
func Intervals() []Interval {
	return []Interval{IntervalOneTime, IntervalMonthly, IntervalYearly}
}

// ParseInterval maps a raw value onto a known Interval.
func ParseInterval(value string) (Interval, error) {
	candidate := Interval(strings.ToLower(strings.TrimSpace(value)))
	switch candidate {
	case IntervalOneTime, IntervalMonthly, IntervalYearly:
		return candidate, nil
	default:
		return "", fmt.Errorf("domain: unknown interval %q", value)
	}
}

// Recurring reports whether the cadence repeats.
func (i Interval) Recurring() bool {
	return i == IntervalMonthly || i == IntervalYearly
}

// DisplayName renders the human label shown to contributors and carried in
// the payment success redirect.
func (i Interval) DisplayName() string {
	switch i {
	case IntervalOneTime:
		return "One-time"
	case IntervalMonthly:
		return "Monthly"
	case IntervalYearly:
		return "Yearly"
	default:
		return string(i)
	}
}

// Upload is a new binary attachment that has not been persisted yet. Values
// that were already uploaded travel as string references instead.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the upload carries no bytes.
func (u *Upload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

// Clone returns a deep copy of the upload.
func (u *Upload) Clone() *Upload {
	if u == nil {
		return nil
	}
	cloned := *u
	cloned.Data = append([]byte(nil), u.Data...)
	return &cloned
}
