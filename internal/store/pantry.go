package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/shelfsense/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrItemNotFound = errors.New("item not found")
)

// PantryStore owns the per-user pantry collection. All mutation of pantry
// rows goes through here.
type PantryStore struct {
	db *sql.DB
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

// AddOutcome reports the result of persisting one item of a batch.
type AddOutcome struct {
	FoodItem string            `json:"foodItem"`
	Item     *model.PantryItem `json:"item,omitempty"`
	Err      error             `json:"-"`
}

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var item model.PantryItem
	err := scanner.Scan(
		&item.ID, &item.UserID, &item.FoodItem, &item.Quantity,
		&item.Unit, &item.ExpirationDate, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const itemCols = `id, user_id, food_item, quantity, unit, expiration_date, created_at`

// AddItems appends each item to the user's pantry, creating the user row on
// first write. Items are persisted independently: one failure does not roll
// back siblings, and every item's outcome is reported to the caller.
func (s *PantryStore) AddItems(ctx context.Context, userID string, items []model.PantryItem) ([]AddOutcome, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	outcomes := make([]AddOutcome, 0, len(items))
	for _, item := range items {
		stored, err := s.insertItem(ctx, userID, item)
		outcomes = append(outcomes, AddOutcome{FoodItem: item.FoodItem, Item: stored, Err: err})
	}
	return outcomes, nil
}

func (s *PantryStore) insertItem(ctx context.Context, userID string, item model.PantryItem) (*model.PantryItem, error) {
	result, err := s.execRetry(ctx,
		`INSERT INTO pantry_items (user_id, food_item, quantity, unit, expiration_date) VALUES (?, ?, ?, ?, ?)`,
		userID, item.FoodItem, item.Quantity, item.Unit, item.ExpirationDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	stored, err := s.getItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A concurrent remove can delete the row between insert and reselect.
	if stored == nil {
		return nil, fmt.Errorf("reread item %d: %w", id, ErrItemNotFound)
	}
	return stored, nil
}

func (s *PantryStore) getItemByID(ctx context.Context, id int64) (*model.PantryItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM pantry_items WHERE id = ?`, id)
	item, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// RemoveItem deletes every item whose name matches case-insensitively and
// returns how many were removed. Zero matches is a successful no-op.
func (s *PantryStore) RemoveItem(ctx context.Context, userID, foodItemName string) (int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}

	result, err := s.execRetry(ctx,
		`DELETE FROM pantry_items WHERE user_id = ? AND food_item = ? COLLATE NOCASE`,
		userID, foodItemName,
	)
	if err != nil {
		return 0, fmt.Errorf("remove item: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// ListPantry returns the user's full pantry ordered ascending by expiration
// date, ties broken by insertion order. An empty pantry is not an error; an
// unknown user is.
func (s *PantryStore) ListPantry(ctx context.Context, userID string) ([]model.PantryItem, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemCols+` FROM pantry_items WHERE user_id = ? ORDER BY expiration_date ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantry: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// EditItem replaces the mutable fields of the earliest-inserted item whose
// name matches case-insensitively. Identity is preserved: the name is not
// changed by an edit.
func (s *PantryStore) EditItem(ctx context.Context, userID, foodItemName string, quantity float64, unit, expirationDate string) (*model.PantryItem, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id FROM pantry_items WHERE user_id = ? AND food_item = ? COLLATE NOCASE ORDER BY id ASC LIMIT 1`,
		userID, foodItemName,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}

	_, err := s.execRetry(ctx,
		`UPDATE pantry_items SET quantity = ?, unit = ?, expiration_date = ? WHERE id = ?`,
		quantity, unit, expirationDate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.getItemByID(ctx, id)
}

func (s *PantryStore) ensureUser(ctx context.Context, userID string) error {
	_, err := s.execRetry(ctx, `INSERT OR IGNORE INTO users (id) VALUES (?)`, userID)
	return err
}

func (s *PantryStore) requireUser(ctx context.Context, userID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if exists == 0 {
		return ErrUserNotFound
	}
	return nil
}

// execRetry runs a write with bounded backoff on transient lock contention.
// Non-transient failures surface immediately.
func (s *PantryStore) execRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		result, err = s.db.ExecContext(ctx, query, args...)
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return result, err
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
