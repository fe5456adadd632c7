package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"reelist/models"
)

// UserStore persists user credentials and each user's watchlist
// sub-collection. Watchlist uniqueness is enforced by a partial unique
// index over active rows, so concurrent duplicate adds collapse to a
// single constraint violation instead of racing an application check.
type UserStore struct {
	conn *sql.DB
}

// NewUserStore creates a store over an open connection.
func NewUserStore(conn *sql.DB) *UserStore {
	return &UserStore{conn: conn}
}

// CreateUser inserts a new user record. The email must already be
// normalized (lower-cased, trimmed) by the caller.
func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, join_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.JoinDate, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			if strings.Contains(err.Error(), "users.email") {
				return ErrEmailTaken
			}
			if strings.Contains(err.Error(), "users.username") {
				return ErrUsernameTaken
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByEmail looks a user up by normalized email.
func (s *UserStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userBy(ctx, "email = ?", email)
}

// UserByID looks a user up by identifier.
func (s *UserStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userBy(ctx, "id = ?", id)
}

func (s *UserStore) userBy(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, join_date, created_at
		 FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.JoinDate, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// UserExists reports whether a user id resolves to a record.
func (s *UserStore) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// Watchlist returns the user's active entries in insertion order.
func (s *UserStore) Watchlist(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT media_id, media_type, title, poster_path, added_at
		 FROM watchlist_entries
		 WHERE user_id = ? AND status = 'active'
		 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select watchlist: %w", err)
	}
	defer rows.Close()

	entries := make([]models.WatchlistEntry, 0)
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(&e.MediaID, &e.MediaType, &e.Title, &e.PosterPath, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return entries, nil
}

// HasActiveEntry reports whether the user has an active entry for the media id.
func (s *UserStore) HasActiveEntry(ctx context.Context, userID string, mediaID int64) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM watchlist_entries
		 WHERE user_id = ? AND media_id = ? AND status = 'active')`,
		userID, mediaID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check watchlist entry: %w", err)
	}
	return exists, nil
}

// AddEntry appends an active watchlist entry. The partial unique index
// makes this an atomic add-if-absent: the losing side of a concurrent
// duplicate add gets ErrDuplicateEntry.
func (s *UserStore) AddEntry(ctx context.Context, userID string, entry models.WatchlistEntry) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO watchlist_entries (user_id, media_id, media_type, title, poster_path, status, added_at)
		 VALUES (?, ?, ?, ?, ?, 'active', ?)`,
		userID, entry.MediaID, entry.MediaType, entry.Title, entry.PosterPath, entry.AddedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) {
			switch sqliteErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique:
				return ErrDuplicateEntry
			case sqlite3.ErrConstraintForeignKey:
				return ErrUserNotFound
			}
		}
		return fmt.Errorf("insert watchlist entry: %w", err)
	}
	return nil
}

// RemoveEntry soft-deletes the user's active entry for the media id.
// The single-row UPDATE is the store-level atomic "mark removed".
func (s *UserStore) RemoveEntry(ctx context.Context, userID string, mediaID int64) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE watchlist_entries SET status = 'removed'
		 WHERE user_id = ? AND media_id = ? AND status = 'active'`,
		userID, mediaID)
	if err != nil {
		return fmt.Errorf("remove watchlist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove watchlist entry: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}
