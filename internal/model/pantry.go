package model

import "time"

// DefaultUnit is the sentinel unit stored when input carries no explicit unit.
const DefaultUnit = "count"

// DateLayout is the canonical storage layout for expiration dates. It sorts
// lexicographically in calendar order and parses back to a concrete date.
const DateLayout = "2006-01-02"

// RawItem is an unvalidated candidate item, as submitted by the add form or
// produced by the voice interpreter. Only the normalizer turns it into a
// PantryItem.
type RawItem struct {
	FoodItem       string `json:"foodItem"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit"`
	ExpirationDate string `json:"expirationDate"`
}

// PantryItem is the canonical unit of storage. ExpirationDate holds the
// canonical yyyy-mm-dd form.
type PantryItem struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	FoodItem       string    `json:"foodItem"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	ExpirationDate string    `json:"expirationDate"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExpiresOn parses the canonical expiration date. Items are only persisted
// through the normalizer, so a parse failure here indicates corrupted storage.
func (p PantryItem) ExpiresOn() (time.Time, error) {
	return time.Parse(DateLayout, p.ExpirationDate)
}
