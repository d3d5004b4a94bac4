// Package expiration classifies pantry items by urgency relative to an
// injected reference date. Classification is advisory: expired items stay in
// the pantry until explicitly removed.
package expiration

import (
	"time"

	"github.com/dukerupert/shelfsense/internal/model"
)

type State string

const (
	StateFresh        State = "fresh"
	StateExpiringSoon State = "expiring_soon"
	StateExpired      State = "expired"
)

// SoonWindowDays is the inclusive number of days ahead of expiry that counts
// as expiring soon.
const SoonWindowDays = 3

// Classification is derived per read and never persisted. DaysOffset is
// negative once an item is past its expiration date.
type Classification struct {
	State      State `json:"state"`
	DaysOffset int   `json:"days_offset"`
}

// Classify determines the state and signed day offset for an item. Both
// dates are truncated to calendar days so time-of-day skew cannot shift the
// boundary. now is always injected, never read from a wall clock here.
func Classify(item model.PantryItem, now time.Time) (Classification, error) {
	expires, err := item.ExpiresOn()
	if err != nil {
		return Classification{}, err
	}

	today := startOfDay(now)
	expires = startOfDay(expires)

	offset := int(expires.Sub(today).Hours() / 24)

	var state State
	switch {
	case expires.Before(today):
		state = StateExpired
	case offset <= SoonWindowDays:
		state = StateExpiringSoon
	default:
		state = StateFresh
	}

	return Classification{State: state, DaysOffset: offset}, nil
}

// Partition splits a pantry into its expiring-soon and expired subsets,
// preserving input order. Items with unreadable dates are skipped; the store
// only persists normalized dates, so that path indicates corrupted storage.
func Partition(items []model.PantryItem, now time.Time) (soon, expired []model.PantryItem) {
	for _, item := range items {
		c, err := Classify(item, now)
		if err != nil {
			continue
		}
		switch c.State {
		case StateExpiringSoon:
			soon = append(soon, item)
		case StateExpired:
			expired = append(expired, item)
		}
	}
	return soon, expired
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
