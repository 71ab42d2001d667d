package epg

import "time"

// AutoUpdate selects how often a guide source is refreshed.
type AutoUpdate int

const (
	UpdateOff AutoUpdate = iota
	UpdateEvery6Hours
	UpdateEvery12Hours
	UpdateDaily
	UpdateEvery2Days
	UpdateEvery3Days
	UpdateEvery4Days
	UpdateEvery5Days
)

// Interval returns the refresh interval, or false when auto-update is off.
func (a AutoUpdate) Interval() (time.Duration, bool) {
	switch a {
	case UpdateEvery6Hours:
		return 6 * time.Hour, true
	case UpdateEvery12Hours:
		return 12 * time.Hour, true
	case UpdateDaily:
		return 24 * time.Hour, true
	case UpdateEvery2Days:
		return 2 * 24 * time.Hour, true
	case UpdateEvery3Days:
		return 3 * 24 * time.Hour, true
	case UpdateEvery4Days:
		return 4 * 24 * time.Hour, true
	case UpdateEvery5Days:
		return 5 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

func (a AutoUpdate) String() string {
	switch a {
	case UpdateOff:
		return "Off"
	case UpdateEvery6Hours:
		return "6 Hours"
	case UpdateEvery12Hours:
		return "12 Hours"
	case UpdateDaily:
		return "1 Day"
	case UpdateEvery2Days:
		return "2 Days"
	case UpdateEvery3Days:
		return "3 Days"
	case UpdateEvery4Days:
		return "4 Days"
	case UpdateEvery5Days:
		return "5 Days"
	}
	return "1 Day"
}

// AutoUpdateFromIndex restores the setting from its stored index, defaulting
// to daily for out-of-range values.
func AutoUpdateFromIndex(i int) AutoUpdate {
	if i < int(UpdateOff) || i > int(UpdateEvery5Days) {
		return UpdateDaily
	}
	return AutoUpdate(i)
}
