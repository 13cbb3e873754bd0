// Package metadata fetches movie details from the external metadata source.
// The source's rate limiting makes transient failures routine, so the client
// retries with exponential backoff and degrades to a placeholder record when
// the source stays unreachable.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	maxAttempts   = 3
	cacheKeyFmt   = "metadata:movie:%d"
	cacheDuration = 24 * time.Hour
)

type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	cache         *redis.Client
	logger        *slog.Logger
	retryInterval time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithCache(rdb *redis.Client) Option {
	return func(c *Client) { c.cache = rdb }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.retryInterval = d }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        slog.New(slog.DiscardHandler),
		retryInterval: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// moviePayload mirrors the metadata source's movie detail response.
type moviePayload struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Poster   string `json:"poster_path"`
	Backdrop string `json:"backdrop_path"`
	Genres   []struct {
		Name string `json:"name"`
	} `json:"genres"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	Tagline     string  `json:"tagline"`
	Language    string  `json:"original_language"`
}

func (c *Client) FetchMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	if movie, ok := c.fromCache(ctx, id); ok {
		return movie, nil
	}

	// WithMaxRetries counts retries after the first call, so maxAttempts-1
	// keeps the total number of requests at maxAttempts.
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(c.retryInterval),
		), maxAttempts-1),
		ctx,
	)

	movie, err := backoff.RetryWithData(func() (*domain.Movie, error) {
		return c.fetchOnce(ctx, id)
	}, policy)

	switch {
	case err == nil:
		c.toCache(ctx, movie)
		return movie, nil
	case errors.Is(err, domain.ErrRecordNotFound):
		return nil, err
	default:
		// The source stayed unreachable; serve a placeholder so show
		// creation is not blocked on a third party.
		c.logger.Warn("metadata source unreachable, using placeholder",
			"movieId", id, "error", err)
		return placeholderMovie(id), nil
	}
}

func (c *Client) fetchOnce(ctx context.Context, id int64) (*domain.Movie, error) {
	url := fmt.Sprintf("%s/movie/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(domain.ErrRecordNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, backoff.Permanent(fmt.Errorf("metadata source returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("metadata source returned status %d", resp.StatusCode)
	}

	var payload moviePayload

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}

	return payload.toMovie(), nil
}

func (p *moviePayload) toMovie() *domain.Movie {
	genres := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		genres = append(genres, g.Name)
	}

	releaseDate, err := time.Parse("2006-01-02", p.ReleaseDate)
	if err != nil {
		releaseDate = time.Time{}
	}

	return &domain.Movie{
		ID:               p.ID,
		Title:            p.Title,
		Overview:         p.Overview,
		PosterPath:       p.Poster,
		BackdropPath:     p.Backdrop,
		Genres:           genres,
		ReleaseDate:      releaseDate,
		Runtime:          p.Runtime,
		Rating:           p.VoteAverage,
		Tagline:          p.Tagline,
		OriginalLanguage: p.Language,
	}
}

func placeholderMovie(id int64) *domain.Movie {
	return &domain.Movie{
		ID:       id,
		Title:    fmt.Sprintf("Movie #%d", id),
		Overview: "Details for this movie are temporarily unavailable.",
		Genres:   []string{},
	}
}

func (c *Client) fromCache(ctx context.Context, id int64) (*domain.Movie, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, fmt.Sprintf(cacheKeyFmt, id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("metadata cache read failed", "movieId", id, "error", err)
		}
		return nil, false
	}

	var movie domain.Movie

	if err := json.Unmarshal(data, &movie); err != nil {
		return nil, false
	}

	return &movie, true
}

func (c *Client) toCache(ctx context.Context, movie *domain.Movie) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(movie)
	if err != nil {
		return
	}

	key := fmt.Sprintf(cacheKeyFmt, movie.ID)

	if err := c.cache.Set(ctx, key, data, cacheDuration).Err(); err != nil {
		c.logger.Warn("metadata cache write failed", "movieId", movie.ID, "error", err)
	}
}
