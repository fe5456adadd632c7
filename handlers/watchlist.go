package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"reelist/models"
	"reelist/services/watchlist"
)

// WatchlistHandler handles the authenticated watchlist endpoints.
type WatchlistHandler struct {
	watchlist *watchlist.Service
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(service *watchlist.Service) *WatchlistHandler {
	return &WatchlistHandler{watchlist: service}
}

type addEntryRequest struct {
	MediaID    int64  `json:"mediaId"`
	MediaType  string `json:"mediaType"`
	Title      string `json:"title"`
	PosterPath string `json:"posterPath"`
}

type checkResponse struct {
	IsInWatchlist bool `json:"isInWatchlist"`
}

// List returns the user's active watchlist entries.
// GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.watchlist.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.serviceError(w, err, "Error fetching watchlist")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Check reports whether a media id is on the user's watchlist.
// GET /api/watchlist/check/{mediaId}
func (h *WatchlistHandler) Check(w http.ResponseWriter, r *http.Request) {
	mediaID, err := mediaIDVar(r)
	if err != nil {
		jsonError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	contains, err := h.watchlist.Contains(r.Context(), userIDFromContext(r.Context()), mediaID)
	if err != nil {
		h.serviceError(w, err, "Error checking watchlist status")
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{IsInWatchlist: contains})
}

// Add appends a media item to the user's watchlist.
// POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.MediaID <= 0 || req.MediaType == "" || req.Title == "" {
		jsonError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	entries, err := h.watchlist.Add(r.Context(), userIDFromContext(r.Context()), models.WatchlistEntry{
		MediaID:    req.MediaID,
		MediaType:  req.MediaType,
		Title:      req.Title,
		PosterPath: req.PosterPath,
	})
	if err != nil {
		var validationErr *watchlist.ValidationError
		switch {
		case errors.As(err, &validationErr):
			jsonError(w, "Validation failed: "+validationErr.Error(), http.StatusBadRequest)
		case errors.Is(err, watchlist.ErrDuplicate):
			jsonError(w, "Item already in watchlist", http.StatusBadRequest)
		default:
			h.serviceError(w, err, "Error adding to watchlist")
		}
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Remove soft-deletes a media item from the user's watchlist.
// DELETE /api/watchlist/{mediaId}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	mediaID, err := mediaIDVar(r)
	if err != nil {
		jsonError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	entries, err := h.watchlist.Remove(r.Context(), userIDFromContext(r.Context()), mediaID)
	if err != nil {
		if errors.Is(err, watchlist.ErrNotFound) {
			jsonError(w, "Item not found in watchlist", http.StatusNotFound)
			return
		}
		h.serviceError(w, err, "Error removing from watchlist")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *WatchlistHandler) serviceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, watchlist.ErrUserNotFound) {
		jsonError(w, "User not found", http.StatusNotFound)
		return
	}
	slog.Error("watchlist.request_failed", "error", err)
	jsonError(w, fallback, http.StatusInternalServerError)
}

func mediaIDVar(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["mediaId"], 10, 64)
}
