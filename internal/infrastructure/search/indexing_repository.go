package search

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
	"github.com/oksasatya/go-service-layer/internal/domain/repository"
)

// Indexer is the write side of the search index.
type Indexer interface {
	Index(ctx context.Context, u *entity.User) error
}

// IndexingRepository mirrors every successful Save into the search index.
// Index failures are logged and never reach the caller.
type IndexingRepository struct {
	repository.UserRepository
	Indexer Indexer
	Logger  *logrus.Logger
}

func NewIndexingRepository(inner repository.UserRepository, indexer Indexer, logger *logrus.Logger) *IndexingRepository {
	return &IndexingRepository{UserRepository: inner, Indexer: indexer, Logger: logger}
}

func (r *IndexingRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	saved, err := r.UserRepository.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := r.Indexer.Index(ctx, saved); err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithField("user_id", saved.ID).Warn("failed to index user")
	}
	return saved, nil
}

// Ping forwards to the wrapped store when it supports it.
func (r *IndexingRepository) Ping(ctx context.Context) error {
	if p, ok := r.UserRepository.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
