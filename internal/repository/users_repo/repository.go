package users_repo

import (
	"context"

	"fooddelivery/internal/domain"
)

// UserRepository owns the user registry. Load must be called once before
// use; Create persists the whole registry before returning.
type UserRepository interface {
	Load(ctx context.Context) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
