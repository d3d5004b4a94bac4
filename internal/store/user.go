package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/shelfsense/internal/model"
)

// UserStore tracks user rows and their notification contact addresses.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := scanner.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, email, created_at`

func (s *UserStore) Get(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SetEmail records the notification address for a user, creating the user
// row if it does not exist yet.
func (s *UserStore) SetEmail(ctx context.Context, id, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET email = excluded.email`,
		id, email,
	)
	if err != nil {
		return fmt.Errorf("set email: %w", err)
	}
	return nil
}

// ListNotifiable returns users with a registered contact address, the
// population the expiration sweep iterates.
func (s *UserStore) ListNotifiable(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users WHERE email != '' ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list notifiable users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
