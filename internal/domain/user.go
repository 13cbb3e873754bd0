package domain

import (
	"context"
	"time"
)

// User mirrors an account held by the external identity provider. Rows are
// kept in sync through the provider's webhook events; the ID is the
// provider's opaque user ID.
type User struct {
	ID        string
	Email     string
	Name      string
	ImageURL  string
	CreatedAt time.Time
}

type UserRepository interface {
	Upsert(ctx context.Context, user *User) error
	GetById(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
