package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) CreateBatch(ctx context.Context, shows []domain.Show) error {
	query := `
		INSERT INTO shows (movie_id, start_time, price)
		VALUES ($1, $2, $3::numeric)
	`

	batch := &pgx.Batch{}
	for _, show := range shows {
		batch.Queue(query, show.MovieID, show.StartTime, show.Price.String())
	}

	results := p.db.SendBatch(ctx, batch)
	defer results.Close()

	for range shows {
		_, err := results.Exec()
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return domain.ErrRecordNotFound
			}

			return err
		}
	}

	return nil
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id int64) (*domain.Show, error) {
	query := `
		SELECT id, movie_id, start_time, price::text, occupied_seats, created_at
		FROM shows
		WHERE id = $1
	`

	var show domain.Show
	var priceStr string

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieID,
		&show.StartTime,
		&priceStr,
		&show.OccupiedSeats,
		&show.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	show.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, err
	}

	return &show, nil
}

func (p *PostgresShowRepository) GetUpcoming(ctx context.Context, now time.Time) ([]domain.Show, error) {
	query := `
		SELECT
			s.id, s.movie_id, s.start_time, s.price::text, s.occupied_seats, s.created_at,
			m.id, m.title, m.overview, m.poster_path, m.backdrop_path, m.genres,
			m.release_date, m.runtime, m.rating::float8, m.tagline, m.original_language
		FROM shows s
		JOIN movies m ON s.movie_id = m.id
		WHERE s.start_time >= $1
		ORDER BY s.start_time ASC
	`

	return p.queryShowsWithMovie(ctx, query, now)
}

func (p *PostgresShowRepository) GetUpcomingByMovie(
	ctx context.Context,
	movieID int64,
	now time.Time) ([]domain.Show, error) {

	query := `
		SELECT
			s.id, s.movie_id, s.start_time, s.price::text, s.occupied_seats, s.created_at,
			m.id, m.title, m.overview, m.poster_path, m.backdrop_path, m.genres,
			m.release_date, m.runtime, m.rating::float8, m.tagline, m.original_language
		FROM shows s
		JOIN movies m ON s.movie_id = m.id
		WHERE s.movie_id = $1 AND s.start_time >= $2
		ORDER BY s.start_time ASC
	`

	return p.queryShowsWithMovie(ctx, query, movieID, now)
}

func (p *PostgresShowRepository) queryShowsWithMovie(
	ctx context.Context,
	query string,
	args ...any) ([]domain.Show, error) {

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := make([]domain.Show, 0)

	for rows.Next() {
		var show domain.Show
		var movie domain.Movie
		var priceStr string

		err = rows.Scan(
			&show.ID,
			&show.MovieID,
			&show.StartTime,
			&priceStr,
			&show.OccupiedSeats,
			&show.CreatedAt,
			&movie.ID,
			&movie.Title,
			&movie.Overview,
			&movie.PosterPath,
			&movie.BackdropPath,
			&movie.Genres,
			&movie.ReleaseDate,
			&movie.Runtime,
			&movie.Rating,
			&movie.Tagline,
			&movie.OriginalLanguage,
		)
		if err != nil {
			return nil, err
		}

		show.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, err
		}

		show.Movie = &movie
		shows = append(shows, show)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shows, nil
}

func (p *PostgresShowRepository) GetSeatMap(ctx context.Context, showID int64) (map[string]string, error) {
	query := `
		SELECT occupied_seats
		FROM shows
		WHERE id = $1
	`

	var seatMap map[string]string

	err := p.db.QueryRow(ctx, query, showID).Scan(&seatMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return seatMap, nil
}

func (p *PostgresShowRepository) CheckAvailability(
	ctx context.Context,
	showID int64,
	seats []string) (bool, error) {

	query := `
		SELECT NOT (occupied_seats ?| $2::text[])
		FROM shows
		WHERE id = $1
	`

	var available bool

	err := p.db.QueryRow(ctx, query, showID, seats).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrRecordNotFound
		}

		return false, err
	}

	return available, nil
}
