package database

import "errors"

// Sentinel errors surfaced by the user store. Services translate these
// into their own error vocabulary before they reach the HTTP edge.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrUsernameTaken  = errors.New("username already registered")
	ErrDuplicateEntry = errors.New("entry already in watchlist")
	ErrEntryNotFound  = errors.New("entry not in watchlist")
)
