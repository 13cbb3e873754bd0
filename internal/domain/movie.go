package domain

import (
	"context"
	"time"
)

// Movie is a locally cached copy of a record from the external metadata
// source, keyed by the upstream movie ID.
type Movie struct {
	ID               int64
	Title            string
	Overview         string
	PosterPath       string
	BackdropPath     string
	Genres           []string
	ReleaseDate      time.Time
	Runtime          int
	Rating           float64
	Tagline          string
	OriginalLanguage string
	CreatedAt        time.Time
}

type MovieRepository interface {
	Upsert(ctx context.Context, movie *Movie) error
	GetById(ctx context.Context, id int64) (*Movie, error)
}

// MovieMetadataClient is the external metadata source collaborator. FetchMovie
// retries transient failures with exponential backoff and falls back to
// placeholder data when the source stays unreachable, so it only errors on
// non-retryable responses (e.g. an unknown movie ID).
type MovieMetadataClient interface {
	FetchMovie(ctx context.Context, id int64) (*Movie, error)
}
