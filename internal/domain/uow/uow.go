package uow

import (
	"context"

	"primepool-backend/internal/domain/asset"
	"primepool-backend/internal/domain/event"
	"primepool-backend/internal/domain/pool"
	"primepool-backend/internal/domain/registry"
)

type Repos struct {
	Pools    pool.Repository
	Registry registry.Repository
	Ledger   asset.Ledger
	Events   event.Store
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the pool row first, then pass the aggregate in
	WithinPoolTx(ctx context.Context, poolID string, fn func(r Repos, p *pool.Pool) error) error
}
