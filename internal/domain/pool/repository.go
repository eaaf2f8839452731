package pool

import "context"

type Repository interface {
	Create(ctx context.Context, p *Pool) error
	// GetByPoolID loads the full aggregate (positions, members, open roll).
	GetByPoolID(ctx context.Context, poolID string) (*Pool, error)
	// GetByPoolIDForUpdate locks the pool row for the current transaction.
	GetByPoolIDForUpdate(ctx context.Context, poolID string) (*Pool, error)
	Save(ctx context.Context, p *Pool) error
}
