package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"reelist/services/tmdb"
)

// MoviesHandler proxies discovery requests to the metadata provider.
// No authentication is required on these routes.
type MoviesHandler struct {
	tmdb *tmdb.Client
}

// NewMoviesHandler creates a new movies handler.
func NewMoviesHandler(client *tmdb.Client) *MoviesHandler {
	return &MoviesHandler{tmdb: client}
}

// Search merges movie and show search results.
// GET /api/movies/search?query=&type=&page=
func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	mediaType := r.URL.Query().Get("type")
	page := pageParam(r)

	results, err := h.tmdb.Search(r.Context(), query, mediaType, page)
	if err != nil {
		h.upstreamError(w, err, "Error performing search")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Trending returns a deduplicated two-page trending window.
// GET /api/movies/trending/{type}?page=
func (h *MoviesHandler) Trending(w http.ResponseWriter, r *http.Request) {
	results, err := h.tmdb.Trending(r.Context(), mux.Vars(r)["type"], pageParam(r))
	if err != nil {
		h.upstreamError(w, err, "Error fetching trending content")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Details passes one title's full record through.
// GET /api/movies/details/{type}/{id}
func (h *MoviesHandler) Details(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	details, err := h.tmdb.Details(r.Context(), vars["type"], id)
	if err != nil {
		h.upstreamError(w, err, "Error fetching details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// PopularMovies returns one page of popular movies.
// GET /api/movies/popular/movies
func (h *MoviesHandler) PopularMovies(w http.ResponseWriter, r *http.Request) {
	page, err := h.tmdb.PopularMovies(r.Context(), pageParam(r))
	if err != nil {
		h.upstreamError(w, err, "Error fetching popular movies")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// PopularTV returns one page of popular shows.
// GET /api/movies/tv/popular
func (h *MoviesHandler) PopularTV(w http.ResponseWriter, r *http.Request) {
	page, err := h.tmdb.PopularTV(r.Context(), pageParam(r))
	if err != nil {
		h.upstreamError(w, err, "Error fetching popular TV shows")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// TVDetails passes one show's full record through.
// GET /api/movies/tv/{id}
func (h *MoviesHandler) TVDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	details, err := h.tmdb.Details(r.Context(), "tv", id)
	if err != nil {
		h.upstreamError(w, err, "Error fetching TV show details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *MoviesHandler) upstreamError(w http.ResponseWriter, err error, fallback string) {
	var statusErr *tmdb.StatusError
	switch {
	case errors.Is(err, tmdb.ErrEmptyQuery), errors.Is(err, tmdb.ErrInvalidMediaType):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case tmdb.IsTimeout(err):
		jsonError(w, "Upstream provider timed out", http.StatusGatewayTimeout)
	case errors.As(err, &statusErr):
		slog.Error("tmdb.upstream_error", "status", statusErr.StatusCode, "error", err)
		jsonError(w, fallback, http.StatusBadGateway)
	default:
		slog.Error("tmdb.request_failed", "error", err)
		jsonError(w, fallback, http.StatusBadGateway)
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		return 1
	}
	return page
}
