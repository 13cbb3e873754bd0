package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneshowhq/oneshow/internal/domain"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func (p *PostgresUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url
		RETURNING created_at
	`

	return p.db.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.ImageURL).Scan(&user.CreatedAt)
}

func (p *PostgresUserRepository) GetById(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, image_url, created_at
		FROM users
		WHERE id = $1
	`

	var user domain.User

	err := p.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.ImageURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &user, nil
}

// Delete is a no-op for unknown IDs: the webhook source retries deliveries and
// may replay a deletion we already applied.
func (p *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	return err
}

func (p *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int

	err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
