package normalize

import (
	"errors"
	"testing"

	"github.com/dukerupert/shelfsense/internal/model"
)

func TestItemValid(t *testing.T) {
	item, err := Item(model.RawItem{
		FoodItem:       "  Milk ",
		Quantity:       "1",
		Unit:           "gallon",
		ExpirationDate: "01/15/2024",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if item.FoodItem != "Milk" {
		t.Errorf("name = %q, want %q", item.FoodItem, "Milk")
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %v, want 1", item.Quantity)
	}
	if item.Unit != "gallon" {
		t.Errorf("unit = %q, want %q", item.Unit, "gallon")
	}
	if item.ExpirationDate != "2024-01-15" {
		t.Errorf("expiration = %q, want %q", item.ExpirationDate, "2024-01-15")
	}
}

func TestItemDefaultUnit(t *testing.T) {
	item, err := Item(model.RawItem{
		FoodItem:       "milk",
		Quantity:       "1",
		Unit:           "  ",
		ExpirationDate: "01/15/2024",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if item.Unit != model.DefaultUnit {
		t.Errorf("unit = %q, want %q", item.Unit, model.DefaultUnit)
	}
}

func TestItemDecimalQuantity(t *testing.T) {
	item, err := Item(model.RawItem{
		FoodItem:       "flour",
		Quantity:       "2.5",
		Unit:           "lbs",
		ExpirationDate: "2024-06-30",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if item.Quantity != 2.5 {
		t.Errorf("quantity = %v, want 2.5", item.Quantity)
	}
}

func TestItemEmptyName(t *testing.T) {
	_, err := Item(model.RawItem{
		FoodItem:       "   ",
		Quantity:       "1",
		ExpirationDate: "01/15/2024",
	})
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
}

func TestItemInvalidQuantity(t *testing.T) {
	cases := []string{"", "abc", "-3", "1.2.3", "NaN", "nan", "Inf", "+Inf", "-Inf", "1e999"}
	for _, q := range cases {
		_, err := Item(model.RawItem{
			FoodItem:       "milk",
			Quantity:       q,
			ExpirationDate: "01/15/2024",
		})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %q: err = %v, want ErrInvalidQuantity", q, err)
		}
	}
}

func TestItemInvalidDate(t *testing.T) {
	cases := []string{"", "13/40/2024", "02/30/2024", "not-a-date", "2024-13-01"}
	for _, d := range cases {
		_, err := Item(model.RawItem{
			FoodItem:       "milk",
			Quantity:       "1",
			ExpirationDate: d,
		})
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("date %q: err = %v, want ErrInvalidDate", d, err)
		}
	}
}

func TestDateAcceptsUnpadded(t *testing.T) {
	got, err := Date("1/5/2024")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if got != "2024-01-05" {
		t.Errorf("date = %q, want %q", got, "2024-01-05")
	}
}

func TestDateCanonicalPassthrough(t *testing.T) {
	got, err := Date("2024-01-15")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if got != "2024-01-15" {
		t.Errorf("date = %q, want %q", got, "2024-01-15")
	}
}

func TestItemDeterministic(t *testing.T) {
	raw := model.RawItem{FoodItem: "eggs", Quantity: "12", Unit: "", ExpirationDate: "02/01/2024"}
	a, err := Item(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, err := Item(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if a != b {
		t.Errorf("normalize not deterministic: %+v vs %+v", a, b)
	}
}
