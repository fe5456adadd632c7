package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelist/internal/database"
	"reelist/models"
)

var (
	// ErrUserNotFound means the user id does not resolve to an account.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicate means an active entry for the (mediaId, mediaType)
	// pair already exists; duplicates are rejected, never merged.
	ErrDuplicate = errors.New("item already in watchlist")
	// ErrNotFound means no active entry matched a removal request.
	ErrNotFound = errors.New("item not in watchlist")
)

// ValidationError reports a malformed watchlist entry field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Service manages per-user watchlists. Removal is a soft delete: entries
// are flagged removed and kept for history, and only active entries are
// ever returned.
type Service struct {
	store *database.UserStore
}

// NewService creates a watchlist service over the user store.
func NewService(store *database.UserStore) *Service {
	return &Service{store: store}
}

// List returns the user's active entries in insertion order. A user with
// no entries gets an empty slice, not an error.
func (s *Service) List(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Watchlist(ctx, userID)
}

// Contains reports whether an active entry with the media id exists.
// It is read-only and idempotent.
func (s *Service) Contains(ctx context.Context, userID string, mediaID int64) (bool, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return false, err
	}
	return s.store.HasActiveEntry(ctx, userID, mediaID)
}

// Add appends an entry with a server-assigned timestamp and returns the
// updated list. The store's partial unique index decides duplicate races.
func (s *Service) Add(ctx context.Context, userID string, entry models.WatchlistEntry) ([]models.WatchlistEntry, error) {
	if entry.MediaID <= 0 {
		return nil, &ValidationError{Field: "mediaId", Message: "must be a positive identifier"}
	}
	if !models.ValidMediaType(entry.MediaType) {
		return nil, &ValidationError{Field: "mediaType", Message: "must be movie or tv"}
	}
	if strings.TrimSpace(entry.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	entry.AddedAt = time.Now().UTC()
	if err := s.store.AddEntry(ctx, userID, entry); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateEntry):
			return nil, ErrDuplicate
		case errors.Is(err, database.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("add entry: %w", err)
	}

	return s.store.Watchlist(ctx, userID)
}

// Remove flags the user's active entry for the media id as removed and
// returns the updated list.
func (s *Service) Remove(ctx context.Context, userID string, mediaID int64) ([]models.WatchlistEntry, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.store.RemoveEntry(ctx, userID, mediaID); err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("remove entry: %w", err)
	}

	return s.store.Watchlist(ctx, userID)
}

func (s *Service) ensureUser(ctx context.Context, userID string) error {
	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}
