package repository

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// Create claims the requested seats and inserts the unpaid booking in one
// transaction. The occupancy update is a single conditional statement, so two
// racing reservations for an overlapping seat set can never both succeed: the
// loser sees zero affected rows and gets ErrSeatAlreadyReserved.
func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var priceStr string

		err := tx.QueryRow(ctx, `SELECT price::text FROM shows WHERE id = $1`, booking.ShowID).Scan(&priceStr)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return err
		}

		claims := make(map[string]string, len(booking.Seats))
		for _, seat := range booking.Seats {
			claims[seat] = booking.UserID
		}

		claimsJSON, err := json.Marshal(claims)
		if err != nil {
			return err
		}

		query := `
			UPDATE shows
			SET occupied_seats = occupied_seats || $2::jsonb
			WHERE id = $1 AND NOT (occupied_seats ?| $3::text[])
		`

		tag, err := tx.Exec(ctx, query, booking.ShowID, string(claimsJSON), booking.Seats)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrSeatAlreadyReserved
		}

		booking.Amount = price.Mul(decimal.NewFromInt(int64(len(booking.Seats))))
		booking.Paid = false

		query = `
			INSERT INTO bookings (user_id, show_id, amount, seats)
			VALUES ($1, $2, $3::numeric, $4)
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			booking.UserID,
			booking.ShowID,
			booking.Amount.String(),
			booking.Seats).Scan(&booking.ID, &booking.CreatedAt)

		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return domain.ErrRecordNotFound
			}

			return err
		}

		return nil
	})
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, show_id, amount::text, seats, is_paid, payment_order_id, created_at
		FROM bookings
		WHERE id = $1
	`

	return p.scanBooking(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresBookingRepository) GetByIdAndUser(
	ctx context.Context,
	id int64,
	userID string) (*domain.Booking, error) {

	query := `
		SELECT id, user_id, show_id, amount::text, seats, is_paid, payment_order_id, created_at
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	return p.scanBooking(p.db.QueryRow(ctx, query, id, userID))
}

func (p *PostgresBookingRepository) scanBooking(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking
	var amountStr string

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowID,
		&amountStr,
		&booking.Seats,
		&booking.Paid,
		&booking.OrderID,
		&booking.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	booking.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetPaidByUser(
	ctx context.Context,
	userID string) ([]domain.BookingDetail, error) {

	return p.getByUserAndPaid(ctx, userID, true)
}

func (p *PostgresBookingRepository) GetUnpaidByUser(
	ctx context.Context,
	userID string) ([]domain.BookingDetail, error) {

	return p.getByUserAndPaid(ctx, userID, false)
}

func (p *PostgresBookingRepository) getByUserAndPaid(
	ctx context.Context,
	userID string,
	paid bool) ([]domain.BookingDetail, error) {

	query := `
		SELECT
			b.id, b.user_id, b.show_id, b.amount::text, b.seats, b.is_paid,
			b.payment_order_id, b.created_at,
			s.start_time, s.price::text,
			m.id, m.title, m.poster_path, m.runtime
		FROM bookings b
		JOIN shows s ON b.show_id = s.id
		JOIN movies m ON s.movie_id = m.id
		WHERE b.user_id = $1 AND b.is_paid = $2
		ORDER BY b.created_at DESC
	`

	rows, err := p.db.Query(ctx, query, userID, paid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.BookingDetail, 0)

	for rows.Next() {
		detail, err := scanBookingDetail(rows, false)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, detail.BookingDetail)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func scanBookingDetail(rows pgx.Rows, withUser bool) (*domain.AdminBooking, error) {
	var detail domain.AdminBooking
	var amountStr, showPriceStr string

	dest := []any{
		&detail.ID,
		&detail.UserID,
		&detail.ShowID,
		&amountStr,
		&detail.Seats,
		&detail.Paid,
		&detail.OrderID,
		&detail.CreatedAt,
		&detail.ShowStartTime,
		&showPriceStr,
		&detail.MovieID,
		&detail.MovieTitle,
		&detail.MoviePosterPath,
		&detail.MovieRuntime,
	}

	if withUser {
		dest = append(dest, &detail.UserName, &detail.UserEmail)
	}

	err := rows.Scan(dest...)
	if err != nil {
		return nil, err
	}

	detail.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}

	detail.ShowPrice, err = decimal.NewFromString(showPriceStr)
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

func (p *PostgresBookingRepository) SetOrderID(ctx context.Context, id int64, orderID string) error {
	query := `
		UPDATE bookings
		SET payment_order_id = $2
		WHERE id = $1
	`

	tag, err := p.db.Exec(ctx, query, id, orderID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresBookingRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE bookings
		SET is_paid = TRUE
		WHERE id = $1 AND NOT is_paid
	`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}

	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Either the booking is already paid (idempotent no-op) or it is gone.
	var exists bool

	err = p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}

	if !exists {
		return false, domain.ErrRecordNotFound
	}

	return false, nil
}

func (p *PostgresBookingRepository) Cancel(ctx context.Context, id int64, userID string) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			DELETE FROM bookings
			WHERE id = $1 AND user_id = $2 AND NOT is_paid
			RETURNING show_id, seats
		`

		var showID int64
		var seats []string

		err := tx.QueryRow(ctx, query, id, userID).Scan(&showID, &seats)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		return releaseSeats(ctx, tx, showID, seats)
	})
}

func (p *PostgresBookingRepository) Expire(ctx context.Context, id int64, now time.Time) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			DELETE FROM bookings
			WHERE id = $1 AND NOT is_paid AND created_at <= $2
			RETURNING show_id, seats
		`

		var showID int64
		var seats []string

		err := tx.QueryRow(ctx, query, id, now.Add(-domain.UnpaidWindow)).Scan(&showID, &seats)
		if err != nil {
			// Paid in the meantime, cancelled, or not yet due: nothing to do.
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}

			return err
		}

		return releaseSeats(ctx, tx, showID, seats)
	})
}

// DeleteExpired removes every unpaid booking whose payment window has closed.
// The cutoff is inclusive, matching Expire, so the sweeps and the per-booking
// task agree at exactly created_at + UnpaidWindow.
func (p *PostgresBookingRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `
		DELETE FROM bookings
		WHERE NOT is_paid AND created_at <= $1
		RETURNING show_id, seats
	`

	return p.deleteAndRelease(ctx, query, now.Add(-domain.UnpaidWindow))
}

func (p *PostgresBookingRepository) DeleteExpiredByUser(
	ctx context.Context,
	userID string,
	now time.Time) (int, error) {

	query := `
		DELETE FROM bookings
		WHERE user_id = $2 AND NOT is_paid AND created_at <= $1
		RETURNING show_id, seats
	`

	return p.deleteAndRelease(ctx, query, now.Add(-domain.UnpaidWindow), userID)
}

func (p *PostgresBookingRepository) deleteAndRelease(
	ctx context.Context,
	query string,
	args ...any) (int, error) {

	count := 0

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}

		released := make(map[int64][]string)
		count = 0

		for rows.Next() {
			var showID int64
			var seats []string

			if err := rows.Scan(&showID, &seats); err != nil {
				rows.Close()
				return err
			}

			released[showID] = append(released[showID], seats...)
			count++
		}
		rows.Close()

		if err := rows.Err(); err != nil {
			return err
		}

		// Release in ascending show order so two concurrent sweeps lock the
		// same rows in the same order.
		showIDs := make([]int64, 0, len(released))
		for showID := range released {
			showIDs = append(showIDs, showID)
		}
		slices.Sort(showIDs)

		for _, showID := range showIDs {
			if err := releaseSeats(ctx, tx, showID, released[showID]); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return count, nil
}

// releaseSeats removes the given labels from the show's occupancy map. This is
// the symmetric counterpart of the claim in Create: every deletion path for an
// unpaid booking must run it, or the seats stay blocked forever.
func releaseSeats(ctx context.Context, tx pgx.Tx, showID int64, seats []string) error {
	query := `
		UPDATE shows
		SET occupied_seats = occupied_seats - $2::text[]
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, showID, seats)

	return err
}

func (p *PostgresBookingRepository) GetAll(
	ctx context.Context,
	pagination domain.Pagination) ([]domain.AdminBooking, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id, b.user_id, b.show_id, b.amount::text, b.seats, b.is_paid,
			b.payment_order_id, b.created_at,
			s.start_time, s.price::text,
			m.id, m.title, m.poster_path, m.runtime,
			COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM bookings b
		JOIN shows s ON b.show_id = s.id
		JOIN movies m ON s.movie_id = m.id
		LEFT JOIN users u ON b.user_id = u.id
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := p.db.Query(ctx, query, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.AdminBooking, 0)
	totalRecords := 0

	for rows.Next() {
		var booking domain.AdminBooking
		var amountStr, showPriceStr string

		err := rows.Scan(
			&totalRecords,
			&booking.ID,
			&booking.UserID,
			&booking.ShowID,
			&amountStr,
			&booking.Seats,
			&booking.Paid,
			&booking.OrderID,
			&booking.CreatedAt,
			&booking.ShowStartTime,
			&showPriceStr,
			&booking.MovieID,
			&booking.MovieTitle,
			&booking.MoviePosterPath,
			&booking.MovieRuntime,
			&booking.UserName,
			&booking.UserEmail,
		)
		if err != nil {
			return nil, nil, err
		}

		booking.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, nil, err
		}

		booking.ShowPrice, err = decimal.NewFromString(showPriceStr)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}

func (p *PostgresBookingRepository) Stats(ctx context.Context) (*domain.BookingStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_paid),
			COALESCE(SUM(amount) FILTER (WHERE is_paid), 0)::text
		FROM bookings
	`

	var stats domain.BookingStats
	var revenueStr string

	err := p.db.QueryRow(ctx, query).Scan(&stats.TotalBookings, &stats.PaidBookings, &revenueStr)
	if err != nil {
		return nil, err
	}

	stats.UnpaidBookings = stats.TotalBookings - stats.PaidBookings

	stats.TotalRevenue, err = decimal.NewFromString(revenueStr)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
