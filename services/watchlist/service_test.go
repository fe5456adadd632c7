package watchlist_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"reelist/internal/database"
	"reelist/models"
	"reelist/services/watchlist"
)

func newTestService(t *testing.T) (*watchlist.Service, string) {
	t.Helper()

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     "watcher",
		Email:        "watcher@example.com",
		PasswordHash: "$2a$10$notarealhashbutirrelevant",
		JoinDate:     time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.Users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return watchlist.NewService(db.Users), user.ID
}

func fightClub() models.WatchlistEntry {
	return models.WatchlistEntry{
		MediaID:    550,
		MediaType:  models.MediaTypeMovie,
		Title:      "Fight Club",
		PosterPath: "/fight-club.jpg",
	}
}

func TestListEmpty(t *testing.T) {
	svc, userID := newTestService(t)

	entries, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty slice, got %v", entries)
	}
}

func TestAddListRemove(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	entries, err := svc.Add(ctx, userID, fightClub())
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after add, got %d", len(entries))
	}
	if entries[0].AddedAt.IsZero() {
		t.Fatalf("expected server-assigned addedAt")
	}

	entries, err = svc.Add(ctx, userID, models.WatchlistEntry{
		MediaID: 1399, MediaType: models.MediaTypeTV, Title: "Game of Thrones",
	})
	if err != nil {
		t.Fatalf("second add returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Insertion order must hold.
	if entries[0].MediaID != 550 || entries[1].MediaID != 1399 {
		t.Fatalf("unexpected order: %v", entries)
	}

	entries, err = svc.Remove(ctx, userID, 550)
	if err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].MediaID != 1399 {
		t.Fatalf("expected only the tv entry left, got %v", entries)
	}
}

func TestAddDuplicateRejected(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, userID, fightClub()); err != nil {
		t.Fatalf("first add returned error: %v", err)
	}

	_, err := svc.Add(ctx, userID, fightClub())
	if !errors.Is(err, watchlist.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	entries, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("duplicate add changed list length: %d", len(entries))
	}
}

func TestSameMediaIDDifferentTypeAllowed(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, userID, fightClub()); err != nil {
		t.Fatalf("movie add returned error: %v", err)
	}

	show := fightClub()
	show.MediaType = models.MediaTypeTV
	entries, err := svc.Add(ctx, userID, show)
	if err != nil {
		t.Fatalf("tv add returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestReAddAfterRemove(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, userID, fightClub()); err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if _, err := svc.Remove(ctx, userID, 550); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}

	entries, err := svc.Add(ctx, userID, fightClub())
	if err != nil {
		t.Fatalf("re-add after remove returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 active entry, got %d", len(entries))
	}
}

func TestRemoveMissingEntry(t *testing.T) {
	svc, userID := newTestService(t)

	_, err := svc.Remove(context.Background(), userID, 99999)
	if !errors.Is(err, watchlist.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.List(ctx, "no-such-user"); !errors.Is(err, watchlist.ErrUserNotFound) {
		t.Fatalf("list: expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Add(ctx, "no-such-user", fightClub()); !errors.Is(err, watchlist.ErrUserNotFound) {
		t.Fatalf("add: expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Contains(ctx, "no-such-user", 550); !errors.Is(err, watchlist.ErrUserNotFound) {
		t.Fatalf("contains: expected ErrUserNotFound, got %v", err)
	}
}

func TestContains(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	contains, err := svc.Contains(ctx, userID, 550)
	if err != nil {
		t.Fatalf("contains returned error: %v", err)
	}
	if contains {
		t.Fatalf("expected contains to be false before add")
	}

	if _, err := svc.Add(ctx, userID, fightClub()); err != nil {
		t.Fatalf("add returned error: %v", err)
	}

	contains, err = svc.Contains(ctx, userID, 550)
	if err != nil {
		t.Fatalf("contains returned error: %v", err)
	}
	if !contains {
		t.Fatalf("expected contains to be true after add")
	}

	if _, err := svc.Remove(ctx, userID, 550); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}

	contains, err = svc.Contains(ctx, userID, 550)
	if err != nil {
		t.Fatalf("contains returned error: %v", err)
	}
	if contains {
		t.Fatalf("expected contains to be false after remove")
	}
}

func TestAddValidation(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		entry models.WatchlistEntry
	}{
		{"zero media id", models.WatchlistEntry{MediaType: models.MediaTypeMovie, Title: "x"}},
		{"bad media type", models.WatchlistEntry{MediaID: 1, MediaType: "series", Title: "x"}},
		{"empty title", models.WatchlistEntry{MediaID: 1, MediaType: models.MediaTypeMovie, Title: "  "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, userID, tc.entry)
			var validationErr *watchlist.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestConcurrentDuplicateAdd(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	// Both adds race for the same (mediaId, mediaType) pair; the partial
	// unique index must let at most one in.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Add(ctx, userID, fightClub())
		}()
	}
	wg.Wait()

	entries, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 stored entry after concurrent adds, got %d", len(entries))
	}

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, watchlist.ErrDuplicate) {
			t.Fatalf("unexpected error from concurrent add: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one add to succeed, got %d", succeeded)
	}
}
