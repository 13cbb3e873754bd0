package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneshowhq/oneshow/internal/domain"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

func (p *PostgresMovieRepository) Upsert(ctx context.Context, movie *domain.Movie) error {
	query := `
		INSERT INTO movies (
			id, title, overview, poster_path, backdrop_path, genres,
			release_date, runtime, rating, tagline, original_language
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			overview = EXCLUDED.overview,
			poster_path = EXCLUDED.poster_path,
			backdrop_path = EXCLUDED.backdrop_path,
			genres = EXCLUDED.genres,
			release_date = EXCLUDED.release_date,
			runtime = EXCLUDED.runtime,
			rating = EXCLUDED.rating,
			tagline = EXCLUDED.tagline,
			original_language = EXCLUDED.original_language
		RETURNING created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		movie.ID,
		movie.Title,
		movie.Overview,
		movie.PosterPath,
		movie.BackdropPath,
		movie.Genres,
		movie.ReleaseDate,
		movie.Runtime,
		movie.Rating,
		movie.Tagline,
		movie.OriginalLanguage,
	).Scan(&movie.CreatedAt)
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id int64) (*domain.Movie, error) {
	query := `
		SELECT
			id, title, overview, poster_path, backdrop_path, genres,
			release_date, runtime, rating::float8, tagline, original_language, created_at
		FROM movies
		WHERE id = $1
	`

	var movie domain.Movie

	err := p.db.QueryRow(ctx, query, id).Scan(
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
		&movie.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &movie, nil
}
