package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UnpaidWindow is how long an unpaid booking holds its seats before it is
// eligible for expiry.
const UnpaidWindow = 10 * time.Minute

// Booking is a user's claim on a set of seats for a show. It is created
// unpaid and either becomes paid (terminal) or is deleted by cancellation or
// expiry. There is no transition out of paid.
type Booking struct {
	ID        int64
	UserID    string
	ShowID    int64
	Amount    decimal.Decimal
	Seats     []string
	Paid      bool
	OrderID   *string
	CreatedAt time.Time
}

func (b Booking) ExpiresAt() time.Time {
	return b.CreatedAt.Add(UnpaidWindow)
}

// BookingDetail is a booking joined with its show and movie for list views.
type BookingDetail struct {
	Booking
	ShowStartTime   time.Time
	ShowPrice       decimal.Decimal
	MovieID         int64
	MovieTitle      string
	MoviePosterPath string
	MovieRuntime    int
}

// AdminBooking additionally carries the booking owner for the admin listing.
type AdminBooking struct {
	BookingDetail
	UserName  string
	UserEmail string
}

// BookingStats are the booking-side aggregates of the admin dashboard.
type BookingStats struct {
	TotalBookings  int
	PaidBookings   int
	UnpaidBookings int
	TotalRevenue   decimal.Decimal
}

type BookingRepository interface {
	// Create reserves booking.Seats on booking.ShowID for booking.UserID in a
	// single transaction: the show's occupancy map is extended only if none of
	// the requested labels is already claimed, and the unpaid booking row is
	// inserted with amount = show price * len(seats). On success the ID,
	// Amount and CreatedAt fields are populated. Fails with ErrRecordNotFound
	// if the show does not exist and ErrSeatAlreadyReserved on any overlap.
	Create(ctx context.Context, booking *Booking) error

	GetById(ctx context.Context, id int64) (*Booking, error)
	GetByIdAndUser(ctx context.Context, id int64, userID string) (*Booking, error)

	GetPaidByUser(ctx context.Context, userID string) ([]BookingDetail, error)
	GetUnpaidByUser(ctx context.Context, userID string) ([]BookingDetail, error)

	SetOrderID(ctx context.Context, id int64, orderID string) error

	// MarkPaid promotes a booking to paid. It is idempotent: newlyPaid is
	// false when the booking was already paid. ErrRecordNotFound if absent.
	MarkPaid(ctx context.Context, id int64) (newlyPaid bool, err error)

	// Cancel deletes an unpaid booking owned by userID and releases its seats
	// from the show's occupancy map. ErrRecordNotFound when the booking is
	// missing, owned by someone else, or already paid.
	Cancel(ctx context.Context, id int64, userID string) error

	// Expire deletes the booking if it is still unpaid and its window has
	// passed at now, releasing its seats. A paid or missing booking is a
	// no-op.
	Expire(ctx context.Context, id int64, now time.Time) error

	// DeleteExpired removes every unpaid booking created before now minus the
	// unpaid window, releasing seats, and reports how many were removed.
	// Running it twice yields the same end state.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) (int, error)

	GetAll(ctx context.Context, pagination Pagination) ([]AdminBooking, *Metadata, error)
	Stats(ctx context.Context) (*BookingStats, error)
}
