// Package normalize converts heterogeneous item input into canonical
// pantry records. It is the only path allowed to fill defaults.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/shelfsense/internal/model"
)

var (
	ErrEmptyName       = errors.New("food item name is empty")
	ErrInvalidQuantity = errors.New("quantity is not a non-negative number")
	ErrInvalidDate     = errors.New("expiration date is not a valid calendar date")
)

// dateLayouts are the accepted input forms, tried in order. The form UI and
// the voice interpreter both produce m/d/yyyy-style dates; the canonical
// storage form is accepted back unchanged.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	model.DateLayout,
}

// Item validates and canonicalizes a raw item. It is a pure transform: no
// defaults beyond the unit sentinel, no clock access.
func Item(raw model.RawItem) (model.PantryItem, error) {
	name := strings.TrimSpace(raw.FoodItem)
	if name == "" {
		return model.PantryItem{}, ErrEmptyName
	}

	qty, err := Quantity(raw.Quantity)
	if err != nil {
		return model.PantryItem{}, err
	}

	unit := strings.TrimSpace(raw.Unit)
	if unit == "" {
		unit = model.DefaultUnit
	}

	date, err := Date(raw.ExpirationDate)
	if err != nil {
		return model.PantryItem{}, err
	}

	return model.PantryItem{
		FoodItem:       name,
		Quantity:       qty,
		Unit:           unit,
		ExpirationDate: date,
	}, nil
}

// Quantity parses a quantity string as a non-negative number.
func Quantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidQuantity
	}
	qty, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	// ParseFloat accepts "NaN" and "Inf" spellings, and NaN fails every
	// comparison, so non-finite values need their own rejection.
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return qty, nil
}

// Date parses a loosely-formatted date string into the canonical yyyy-mm-dd
// form. Impossible dates (Feb 30, month 13) are rejected: time.Parse
// normalizes overflow, so the round-trip check catches them.
func Date(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Format(layout) != s {
			// Overflowed into a different date, e.g. 02/30 -> 03/01.
			continue
		}
		return t.Format(model.DateLayout), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
