// Package voice turns free-text utterances into pantry items. The
// interpreter asks a language model for structured candidates; the extractor
// is the validation boundary for whatever comes back and makes no assumption
// about how the payload was produced.
package voice

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukerupert/shelfsense/internal/model"
	"github.com/dukerupert/shelfsense/internal/normalize"
)

var ErrMalformedExtraction = errors.New("extraction payload is not a list of items")

// Warning records one candidate dropped during validation. A bad entry never
// aborts the batch: partial success is the designed failure policy so one
// garbled item doesn't block the rest of a multi-item transcript.
type Warning struct {
	FoodItem string `json:"foodItem"`
	Reason   string `json:"reason"`
}

type candidate struct {
	FoodItem       *string     `json:"foodItem"`
	Quantity       *flexNumber `json:"quantity"`
	Unit           *string     `json:"unit"`
	ExpirationDate *string     `json:"expirationDate"`
}

// flexNumber tolerates a quantity sent as either a JSON number or a string,
// both of which interpretation output has been observed to produce.
type flexNumber string

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexNumber(n.String())
	return nil
}

// ValidateExtractedItems validates a raw candidate payload. The payload must
// be a JSON array whose elements all carry the four required fields;
// otherwise the whole batch is malformed. Individual candidates that fail
// normalization are dropped with a warning.
func ValidateExtractedItems(payload []byte) ([]model.PantryItem, []Warning, error) {
	var candidates []candidate
	if err := json.Unmarshal(payload, &candidates); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	var items []model.PantryItem
	var warnings []Warning
	for i, c := range candidates {
		if c.FoodItem == nil || c.Quantity == nil || c.Unit == nil || c.ExpirationDate == nil {
			return nil, nil, fmt.Errorf("%w: element %d missing a required field", ErrMalformedExtraction, i)
		}

		item, err := normalize.Item(model.RawItem{
			FoodItem:       *c.FoodItem,
			Quantity:       string(*c.Quantity),
			Unit:           *c.Unit,
			ExpirationDate: *c.ExpirationDate,
		})
		if err != nil {
			warnings = append(warnings, Warning{FoodItem: *c.FoodItem, Reason: err.Error()})
			continue
		}
		items = append(items, item)
	}
	return items, warnings, nil
}
