package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moviePayloadJSON = `{
	"id": 550,
	"title": "Fight Club",
	"overview": "An insomniac office worker...",
	"poster_path": "/poster.jpg",
	"backdrop_path": "/backdrop.jpg",
	"genres": [{"name": "Drama"}, {"name": "Thriller"}],
	"release_date": "1999-10-15",
	"runtime": 139,
	"vote_average": 8.4,
	"tagline": "Mischief. Mayhem. Soap.",
	"original_language": "en"
}`

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "test-api-key", WithRetryInterval(time.Millisecond))
}

func TestFetchMovie(t *testing.T) {
	t.Run("parses a successful response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/movie/550", r.URL.Path)
			assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(moviePayloadJSON))
		}))
		defer server.Close()

		movie, err := newTestClient(server.URL).FetchMovie(context.Background(), 550)

		require.NoError(t, err)
		assert.Equal(t, int64(550), movie.ID)
		assert.Equal(t, "Fight Club", movie.Title)
		assert.Equal(t, []string{"Drama", "Thriller"}, movie.Genres)
		assert.Equal(t, 139, movie.Runtime)
		assert.Equal(t, 1999, movie.ReleaseDate.Year())
		assert.InDelta(t, 8.4, movie.Rating, 0.001)
	})

	t.Run("does not retry an unknown movie", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).FetchMovie(context.Background(), 550)

		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries transient failures until success", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}

			w.Write([]byte(moviePayloadJSON))
		}))
		defer server.Close()

		movie, err := newTestClient(server.URL).FetchMovie(context.Background(), 550)

		require.NoError(t, err)
		assert.Equal(t, "Fight Club", movie.Title)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("falls back to a placeholder when the source stays down", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		movie, err := newTestClient(server.URL).FetchMovie(context.Background(), 550)

		require.NoError(t, err)
		assert.Equal(t, int64(550), movie.ID)
		assert.Equal(t, "Movie #550", movie.Title)
		assert.Equal(t, int32(maxAttempts), calls.Load(),
			"a persistently failing source must be contacted at most %d times", maxAttempts)
	})

	t.Run("does not retry other client errors", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		movie, err := newTestClient(server.URL).FetchMovie(context.Background(), 550)

		// A misconfigured API key still degrades to the placeholder.
		require.NoError(t, err)
		assert.Equal(t, "Movie #550", movie.Title)
		assert.Equal(t, int32(1), calls.Load())
	})
}
