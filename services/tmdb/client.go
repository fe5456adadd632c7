package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc"

	"reelist/models"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"

	// trendingPages is how many consecutive provider pages a single
	// trending request merges.
	trendingPages = 2

	requestTimeout = 10 * time.Second
)

var (
	// ErrEmptyQuery rejects a search with no query text.
	ErrEmptyQuery = errors.New("search query is required")
	// ErrInvalidMediaType rejects media kinds other than movie and tv.
	ErrInvalidMediaType = errors.New("media type must be movie or tv")
)

// StatusError carries a non-2xx status returned by the provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}

// IsTimeout reports whether the error is an upstream timeout rather than
// an upstream rejection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

// Page is the provider's paginated result envelope, passed through to
// callers of the popular endpoints unchanged.
type Page struct {
	Page         int                   `json:"page"`
	Results      []models.MediaSummary `json:"results"`
	TotalPages   int                   `json:"total_pages"`
	TotalResults int                   `json:"total_results"`
}

// Client is a stateless adapter over the external metadata provider.
// BaseURL and PageDelay are exported so tests can point the client at a
// fake provider and drop the inter-page courtesy delay.
type Client struct {
	APIKey    string
	BaseURL   string
	PageDelay time.Duration
	client    *http.Client
}

// NewClient creates a provider client with a bounded request timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:    apiKey,
		BaseURL:   defaultBaseURL,
		PageDelay: time.Second,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

// Search fans out to the provider's movie and show search endpoints,
// tags each result with its kind, merges, deduplicates, and sorts by
// descending popularity. One side may fail without failing the call;
// the error is returned only when every side fails.
func (c *Client) Search(ctx context.Context, query, mediaType string, page int) ([]models.MediaSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if page <= 0 {
		page = 1
	}

	kinds := []string{models.MediaTypeMovie, models.MediaTypeTV}
	if mediaType != "" {
		if !models.ValidMediaType(mediaType) {
			return nil, ErrInvalidMediaType
		}
		kinds = []string{mediaType}
	}

	results := make([][]models.MediaSummary, len(kinds))
	errs := make([]error, len(kinds))

	var wg conc.WaitGroup
	for i, kind := range kinds {
		i, kind := i, kind
		wg.Go(func() {
			results[i], errs[i] = c.searchKind(ctx, kind, query, page)
		})
	}
	wg.Wait()

	var merged []models.MediaSummary
	failed := 0
	for i, kind := range kinds {
		if errs[i] != nil {
			// Partial degradation: a failed side contributes nothing.
			log.Printf("[tmdb] search %s %q failed: %v", kind, query, errs[i])
			failed++
			continue
		}
		merged = append(merged, results[i]...)
	}
	if failed == len(kinds) {
		return nil, fmt.Errorf("search %q: %w", query, errs[0])
	}

	merged = dedupe(merged)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Popularity > merged[j].Popularity
	})
	return merged, nil
}

func (c *Client) searchKind(ctx context.Context, kind, query string, page int) ([]models.MediaSummary, error) {
	var resp Page
	err := c.get(ctx, "/search/"+kind, map[string]string{
		"query":         query,
		"page":          strconv.Itoa(page),
		"include_adult": "false",
	}, &resp)
	if err != nil {
		return nil, err
	}
	tagKind(resp.Results, kind)
	return resp.Results, nil
}

// Trending fetches two consecutive provider pages with a fixed delay in
// between (courtesy to the upstream rate limit), merging and removing
// duplicate identifiers in first-seen order. A single failed page
// degrades to a partial result; only both pages failing is an error.
func (c *Client) Trending(ctx context.Context, mediaType string, page int) ([]models.MediaSummary, error) {
	if !models.ValidMediaType(mediaType) {
		return nil, ErrInvalidMediaType
	}
	if page <= 0 {
		page = 1
	}

	merged := make([]models.MediaSummary, 0)
	seen := make(map[int64]bool)
	fetched := 0
	var lastErr error

	for i := 0; i < trendingPages; i++ {
		if i > 0 && c.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.PageDelay):
			}
		}

		var resp Page
		err := c.get(ctx, fmt.Sprintf("/trending/%s/week", mediaType), map[string]string{
			"page":   strconv.Itoa(page + i),
			"region": "US",
		}, &resp)
		if err != nil {
			log.Printf("[tmdb] trending %s page %d failed: %v", mediaType, page+i, err)
			lastErr = err
			continue
		}
		fetched++

		for _, item := range resp.Results {
			if item.ID == 0 || seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			item.MediaType = mediaType
			merged = append(merged, item)
		}
	}

	if fetched == 0 {
		return nil, fmt.Errorf("trending %s: %w", mediaType, lastErr)
	}
	return merged, nil
}

// Details is a single pass-through call for one title, with trailers and
// credits appended.
func (c *Client) Details(ctx context.Context, mediaType string, id int64) (*models.MediaDetails, error) {
	if !models.ValidMediaType(mediaType) {
		return nil, ErrInvalidMediaType
	}

	var details models.MediaDetails
	err := c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, id), map[string]string{
		"append_to_response": "videos,credits",
	}, &details)
	if err != nil {
		return nil, err
	}
	details.MediaType = mediaType
	return &details, nil
}

// PopularMovies returns one provider page of popular movies.
func (c *Client) PopularMovies(ctx context.Context, page int) (*Page, error) {
	return c.popular(ctx, models.MediaTypeMovie, "/movie/popular", page, map[string]string{"region": "US"})
}

// PopularTV returns one provider page of popular shows.
func (c *Client) PopularTV(ctx context.Context, page int) (*Page, error) {
	return c.popular(ctx, models.MediaTypeTV, "/tv/popular", page, nil)
}

func (c *Client) popular(ctx context.Context, kind, endpoint string, page int, extra map[string]string) (*Page, error) {
	if page <= 0 {
		page = 1
	}
	params := map[string]string{"page": strconv.Itoa(page)}
	for k, v := range extra {
		params[k] = v
	}

	var resp Page
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	tagKind(resp.Results, kind)
	return &resp, nil
}

// get performs one provider GET, retrying once on transient transport
// failures. HTTP error statuses are not retried: the provider has
// answered, and the answer is a StatusError.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	u, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	q := u.Query()
	q.Set("api_key", c.APIKey)
	q.Set("language", "en-US")
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var body []byte
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("provider request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return retry.Unrecoverable(&StatusError{
					StatusCode: resp.StatusCode,
					Message:    strings.TrimSpace(string(msg)),
				})
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			return nil
		},
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func tagKind(items []models.MediaSummary, kind string) {
	for i := range items {
		items[i].MediaType = kind
	}
}

// dedupe removes repeated (id, kind) pairs preserving first-seen order.
func dedupe(items []models.MediaSummary) []models.MediaSummary {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		key := item.MediaType + ":" + strconv.FormatInt(item.ID, 10)
		if item.ID == 0 || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
