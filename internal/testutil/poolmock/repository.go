package poolmock

import (
	"context"

	domain "primepool-backend/internal/domain/pool"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies pool.Repository.
// Fill in the function fields a test needs; unfilled getters return not-found.
type Repo struct {
	CreateFn               func(ctx context.Context, p *domain.Pool) error
	GetByPoolIDFn          func(ctx context.Context, poolID string) (*domain.Pool, error)
	GetByPoolIDForUpdateFn func(ctx context.Context, poolID string) (*domain.Pool, error)
	SaveFn                 func(ctx context.Context, p *domain.Pool) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Pool) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByPoolID(ctx context.Context, poolID string) (*domain.Pool, error) {
	if m.GetByPoolIDFn != nil {
		return m.GetByPoolIDFn(ctx, poolID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByPoolIDForUpdate(ctx context.Context, poolID string) (*domain.Pool, error) {
	if m.GetByPoolIDForUpdateFn != nil {
		return m.GetByPoolIDForUpdateFn(ctx, poolID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Save(ctx context.Context, p *domain.Pool) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
