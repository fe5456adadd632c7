package tmdb_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelist/models"
	"reelist/services/tmdb"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *tmdb.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := tmdb.NewClient("test-key")
	client.BaseURL = server.URL
	client.PageDelay = 0
	return client
}

func writePage(w http.ResponseWriter, results ...models.MediaSummary) {
	json.NewEncoder(w).Encode(tmdb.Page{
		Page:         1,
		Results:      results,
		TotalPages:   1,
		TotalResults: len(results),
	})
}

func TestSearchMergesAndSortsByPopularity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			writePage(w,
				models.MediaSummary{ID: 603, Title: "The Matrix", Popularity: 80},
				models.MediaSummary{ID: 604, Title: "The Matrix Reloaded", Popularity: 40},
			)
		case "/search/tv":
			writePage(w,
				models.MediaSummary{ID: 550, Name: "The Matrix Show", Popularity: 60},
			)
		default:
			http.NotFound(w, r)
		}
	})

	results, err := client.Search(context.Background(), "matrix", "", 1)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantOrder := []int64{603, 550, 604}
	for i, want := range wantOrder {
		if results[i].ID != want {
			t.Fatalf("expected id %d at position %d, got %d", want, i, results[i].ID)
		}
	}

	if results[0].MediaType != models.MediaTypeMovie {
		t.Errorf("movie result not tagged: %q", results[0].MediaType)
	}
	if results[1].MediaType != models.MediaTypeTV {
		t.Errorf("tv result not tagged: %q", results[1].MediaType)
	}
}

func TestSearchToleratesOneSideFailing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
		case "/search/tv":
			writePage(w, models.MediaSummary{ID: 1396, Name: "Breaking Bad", Popularity: 90})
		default:
			http.NotFound(w, r)
		}
	})

	results, err := client.Search(context.Background(), "matrix", "", 1)
	if err != nil {
		t.Fatalf("expected partial result, got error: %v", err)
	}
	if len(results) != 1 || results[0].ID != 1396 {
		t.Fatalf("expected only the tv result, got %v", results)
	}
}

func TestSearchFailsWhenAllSidesFail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "matrix", "", 1)
	if err == nil {
		t.Fatalf("expected error when both sub-requests fail")
	}
	var statusErr *tmdb.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no upstream call expected for empty query")
	})

	if _, err := client.Search(context.Background(), "   ", "", 1); !errors.Is(err, tmdb.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestSearchSingleKind(t *testing.T) {
	calls := make(map[string]int)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls[r.URL.Path]++
		writePage(w, models.MediaSummary{ID: 603, Title: "The Matrix", Popularity: 80})
	})

	results, err := client.Search(context.Background(), "matrix", models.MediaTypeMovie, 1)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if calls["/search/tv"] != 0 {
		t.Fatalf("expected no tv sub-request for a movie-only search")
	}
}

func TestTrendingDeduplicatesAcrossPages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trending/movie/week" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			writePage(w,
				models.MediaSummary{ID: 1, Popularity: 10},
				models.MediaSummary{ID: 2, Popularity: 9},
				models.MediaSummary{ID: 3, Popularity: 8},
			)
		case "2":
			writePage(w,
				models.MediaSummary{ID: 3, Popularity: 8},
				models.MediaSummary{ID: 4, Popularity: 7},
				models.MediaSummary{ID: 1, Popularity: 10},
				models.MediaSummary{ID: 5, Popularity: 6},
			)
		default:
			http.NotFound(w, r)
		}
	})

	results, err := client.Trending(context.Background(), models.MediaTypeMovie, 1)
	if err != nil {
		t.Fatalf("trending returned error: %v", err)
	}

	// Each id exactly once, first-seen order.
	wantOrder := []int64{1, 2, 3, 4, 5}
	if len(results) != len(wantOrder) {
		t.Fatalf("expected %d results, got %d", len(wantOrder), len(results))
	}
	for i, want := range wantOrder {
		if results[i].ID != want {
			t.Fatalf("expected id %d at position %d, got %d", want, i, results[i].ID)
		}
	}
}

func TestTrendingToleratesOnePageFailing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		writePage(w, models.MediaSummary{ID: 1, Popularity: 10})
	})

	results, err := client.Trending(context.Background(), models.MediaTypeMovie, 1)
	if err != nil {
		t.Fatalf("expected partial result, got error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result from the surviving page, got %d", len(results))
	}
}

func TestTrendingInvalidType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no upstream call expected for an invalid media type")
	})

	if _, err := client.Trending(context.Background(), "series", 1); !errors.Is(err, tmdb.ErrInvalidMediaType) {
		t.Fatalf("expected ErrInvalidMediaType, got %v", err)
	}
}

func TestDetailsPassThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("append_to_response"); got != "videos,credits" {
			t.Errorf("expected videos,credits appended, got %q", got)
		}
		json.NewEncoder(w).Encode(models.MediaDetails{
			MediaSummary: models.MediaSummary{ID: 550, Title: "Fight Club", VoteAverage: 8.4},
			Runtime:      139,
			Genres:       []models.Genre{{ID: 18, Name: "Drama"}},
		})
	})

	details, err := client.Details(context.Background(), models.MediaTypeMovie, 550)
	if err != nil {
		t.Fatalf("details returned error: %v", err)
	}
	if details.ID != 550 || details.Runtime != 139 {
		t.Fatalf("unexpected details: %+v", details)
	}
	if details.MediaType != models.MediaTypeMovie {
		t.Fatalf("details not tagged with media type: %q", details.MediaType)
	}
}

func TestDetailsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.Details(context.Background(), models.MediaTypeMovie, 42)
	var statusErr *tmdb.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", statusErr.StatusCode)
	}
}

func TestPopularPassThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/popular":
			writePage(w, models.MediaSummary{ID: 603, Title: "The Matrix", Popularity: 80})
		case "/tv/popular":
			writePage(w, models.MediaSummary{ID: 1396, Name: "Breaking Bad", Popularity: 90})
		default:
			http.NotFound(w, r)
		}
	})

	movies, err := client.PopularMovies(context.Background(), 1)
	if err != nil {
		t.Fatalf("popular movies returned error: %v", err)
	}
	if len(movies.Results) != 1 || movies.Results[0].MediaType != models.MediaTypeMovie {
		t.Fatalf("unexpected popular movies page: %+v", movies)
	}

	shows, err := client.PopularTV(context.Background(), 1)
	if err != nil {
		t.Fatalf("popular tv returned error: %v", err)
	}
	if len(shows.Results) != 1 || shows.Results[0].MediaType != models.MediaTypeTV {
		t.Fatalf("unexpected popular tv page: %+v", shows)
	}
}
