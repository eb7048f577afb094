package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
)

var (
	// ErrNotFound is returned by FindByID when no user has the given id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned by Save when the store's unique email constraint rejects the write.
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserRepository defines the interface for user-related storage operations.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// Save inserts or replaces the user by ID and returns the stored form.
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	// FindAll returns every user ordered by creation time, then id.
	FindAll(ctx context.Context) ([]*entity.User, error)
}
