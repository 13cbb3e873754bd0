package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Show is a scheduled screening of a movie. OccupiedSeats maps a seat label
// (e.g. "A1") to the ID of the user whose booking claims it. The map must only
// contain seats claimed by a live booking: paid, or unpaid and not yet expired.
type Show struct {
	ID            int64
	MovieID       int64
	StartTime     time.Time
	Price         decimal.Decimal
	OccupiedSeats map[string]string
	CreatedAt     time.Time

	// Movie is populated on reads that join the movie catalog.
	Movie *Movie
}

type ShowRepository interface {
	CreateBatch(ctx context.Context, shows []Show) error
	GetById(ctx context.Context, id int64) (*Show, error)

	// GetUpcoming returns shows starting at or after now, ascending by start
	// time, with Movie populated.
	GetUpcoming(ctx context.Context, now time.Time) ([]Show, error)
	GetUpcomingByMovie(ctx context.Context, movieID int64, now time.Time) ([]Show, error)

	GetSeatMap(ctx context.Context, showID int64) (map[string]string, error)

	// CheckAvailability reports whether none of the given seat labels is
	// present in the show's occupancy map. Read-only.
	CheckAvailability(ctx context.Context, showID int64, seats []string) (bool, error)
}
