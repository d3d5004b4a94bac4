package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/shelfsense/internal/database"
	"github.com/dukerupert/shelfsense/internal/model"
	"github.com/dukerupert/shelfsense/internal/store"
	"github.com/dukerupert/shelfsense/internal/websocket"
)

func setupPantryHandler(t *testing.T) (*PantryHandler, *http.ServeMux) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hub := websocket.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewPantryHandler(store.NewPantryStore(db), hub)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/{user_id}/pantry", h.AddItems)
	mux.HandleFunc("GET /api/users/{user_id}/pantry", h.List)
	mux.HandleFunc("DELETE /api/users/{user_id}/pantry/{name}", h.Remove)
	mux.HandleFunc("PUT /api/users/{user_id}/pantry/{name}", h.Edit)
	return h, mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAddItemsAndList(t *testing.T) {
	_, mux := setupPantryHandler(t)

	body := `{"items": [
		{"foodItem": "milk", "quantity": "1", "unit": "gallon", "expirationDate": "01/15/2024"},
		{"foodItem": "eggs", "quantity": "12", "unit": "", "expirationDate": "1/10/2024"}
	]}`
	rec := doRequest(t, mux, http.MethodPost, "/api/users/alice/pantry", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/users/alice/pantry", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var items []model.PantryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Sorted ascending by expiration date: eggs (01-10) before milk (01-15).
	if items[0].FoodItem != "eggs" || items[1].FoodItem != "milk" {
		t.Errorf("order = %s, %s", items[0].FoodItem, items[1].FoodItem)
	}
	if items[0].Unit != "count" {
		t.Errorf("blank unit should default to count, got %q", items[0].Unit)
	}
	if items[1].ExpirationDate != "2024-01-15" {
		t.Errorf("date not canonical: %q", items[1].ExpirationDate)
	}
}

func TestAddItemsPartialFailure(t *testing.T) {
	_, mux := setupPantryHandler(t)

	body := `{"items": [
		{"foodItem": "milk", "quantity": "1", "unit": "gallon", "expirationDate": "01/15/2024"},
		{"foodItem": "", "quantity": "1", "unit": "", "expirationDate": "01/15/2024"},
		{"foodItem": "bread", "quantity": "nope", "unit": "", "expirationDate": "01/15/2024"},
		{"foodItem": "butter", "quantity": "NaN", "unit": "", "expirationDate": "01/15/2024"}
	]}`
	rec := doRequest(t, mux, http.MethodPost, "/api/users/alice/pantry", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}

	var resp struct {
		Results []struct {
			FoodItem string            `json:"foodItem"`
			Item     *model.PantryItem `json:"item"`
			Error    string            `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Item == nil || resp.Results[0].Error != "" {
		t.Errorf("first item should succeed: %+v", resp.Results[0])
	}
	for _, i := range []int{1, 2, 3} {
		if resp.Results[i].Error == "" {
			t.Errorf("result[%d] should carry a validation error", i)
		}
	}

	// Only the valid item reached the store.
	rec = doRequest(t, mux, http.MethodGet, "/api/users/alice/pantry", "")
	var items []model.PantryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("pantry size = %d, want 1", len(items))
	}
}

func TestListUnknownUser(t *testing.T) {
	_, mux := setupPantryHandler(t)

	rec := doRequest(t, mux, http.MethodGet, "/api/users/nobody/pantry", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRemoveItem(t *testing.T) {
	_, mux := setupPantryHandler(t)

	body := `{"items": [
		{"foodItem": "Milk", "quantity": "1", "unit": "gallon", "expirationDate": "01/15/2024"},
		{"foodItem": "milk", "quantity": "2", "unit": "quart", "expirationDate": "01/20/2024"}
	]}`
	doRequest(t, mux, http.MethodPost, "/api/users/alice/pantry", body)

	rec := doRequest(t, mux, http.MethodDelete, "/api/users/alice/pantry/MILK", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	var resp map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["removed"] != 2 {
		t.Errorf("removed = %d, want 2 (case-insensitive, all matches)", resp["removed"])
	}

	// Removing an absent item is a no-op, not an error.
	rec = doRequest(t, mux, http.MethodDelete, "/api/users/alice/pantry/caviar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove absent status = %d", rec.Code)
	}
}

func TestEditItem(t *testing.T) {
	_, mux := setupPantryHandler(t)

	body := `{"items": [{"foodItem": "milk", "quantity": "1", "unit": "gallon", "expirationDate": "01/15/2024"}]}`
	doRequest(t, mux, http.MethodPost, "/api/users/alice/pantry", body)

	rec := doRequest(t, mux, http.MethodPut, "/api/users/alice/pantry/milk",
		`{"quantity": "0.5", "unit": "gallon", "expirationDate": "01/18/2024"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var item model.PantryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.Quantity != 0.5 || item.ExpirationDate != "2024-01-18" {
		t.Errorf("edit not applied: %+v", item)
	}
	if item.FoodItem != "milk" {
		t.Errorf("name should be preserved, got %q", item.FoodItem)
	}
}

func TestEditItemNotFound(t *testing.T) {
	_, mux := setupPantryHandler(t)

	body := `{"items": [{"foodItem": "milk", "quantity": "1", "unit": "gallon", "expirationDate": "01/15/2024"}]}`
	doRequest(t, mux, http.MethodPost, "/api/users/alice/pantry", body)

	rec := doRequest(t, mux, http.MethodPut, "/api/users/alice/pantry/caviar",
		`{"quantity": "1", "unit": "tin", "expirationDate": "01/18/2024"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestEditItemInvalidDate(t *testing.T) {
	_, mux := setupPantryHandler(t)

	body := `{"items": [{"foodItem": "milk", "quantity": "1", "unit": "gallon", "expirationDate": "01/15/2024"}]}`
	doRequest(t, mux, http.MethodPost, "/api/users/alice/pantry", body)

	rec := doRequest(t, mux, http.MethodPut, "/api/users/alice/pantry/milk",
		`{"quantity": "1", "unit": "gallon", "expirationDate": "13/40/2024"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
