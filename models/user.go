package models

import (
	"strconv"
	"time"
)

const (
	// MediaTypeMovie and MediaTypeTV are the two media kinds the provider serves.
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ValidMediaType reports whether t is a media kind this system accepts.
func ValidMediaType(t string) bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// User models a registered account capable of holding watchlist data.
// The password hash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	JoinDate     time.Time `json:"joinDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WatchlistEntry represents a media item saved by the user for quick access.
// Title and poster are captured at add time and not re-synced with the provider.
type WatchlistEntry struct {
	MediaID    int64     `json:"mediaId"`
	MediaType  string    `json:"mediaType"` // movie | tv
	Title      string    `json:"title"`
	PosterPath string    `json:"posterPath,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}

// Key returns a stable identifier for the entry combining media type and ID.
func (e WatchlistEntry) Key() string {
	return e.MediaType + ":" + strconv.FormatInt(e.MediaID, 10)
}
