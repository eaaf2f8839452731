package uowmock

import (
	"context"

	"gorm.io/gorm"

	"primepool-backend/internal/domain/pool"
	"primepool-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

// UoW is an in-memory unit of work for usecase tests. By default it runs the
// callback against the configured Repos (and Pool) with no real transaction;
// fill in the Fn fields when a test needs to fail or spy the tx itself.
type UoW struct {
	Repos uow.Repos
	Pool  *pool.Pool

	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinPoolTxFn func(ctx context.Context, poolID string, fn func(r uow.Repos, p *pool.Pool) error) error
}

func New(r uow.Repos) *UoW { return &UoW{Repos: r} }

// WithPool sets the single aggregate served to WithinPoolTx callbacks.
func (m *UoW) WithPool(p *pool.Pool) *UoW {
	m.Pool = p
	return m
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return fn(m.Repos)
}

func (m *UoW) WithinPoolTx(ctx context.Context, poolID string, fn func(r uow.Repos, p *pool.Pool) error) error {
	if m.WithinPoolTxFn != nil {
		return m.WithinPoolTxFn(ctx, poolID, fn)
	}
	if m.Pool == nil || m.Pool.PoolID != poolID {
		return gorm.ErrRecordNotFound
	}
	return fn(m.Repos, m.Pool)
}
