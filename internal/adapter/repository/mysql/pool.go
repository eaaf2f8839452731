package mysql

import (
	"context"

	poolDomain "primepool-backend/internal/domain/pool"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PoolRepository struct{ db *gorm.DB }

func NewPoolRepository(db *gorm.DB) *PoolRepository { return &PoolRepository{db: db} }

func (r *PoolRepository) Create(ctx context.Context, p *poolDomain.Pool) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save persists the whole aggregate: the pool row plus any changed or newly
// appended positions, members and roll request.
func (r *PoolRepository) Save(ctx context.Context, p *poolDomain.Pool) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(p).Error
}

func (r *PoolRepository) GetByPoolID(ctx context.Context, poolID string) (*poolDomain.Pool, error) {
	return r.load(ctx, r.db, poolID)
}

// GetByPoolIDForUpdate locks the pool row for the rest of the transaction.
// SQLite has no row locks, so the clause is only added on MySQL.
func (r *PoolRepository) GetByPoolIDForUpdate(ctx context.Context, poolID string) (*poolDomain.Pool, error) {
	q := r.db
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.load(ctx, q, poolID)
}

func (r *PoolRepository) load(ctx context.Context, q *gorm.DB, poolID string) (*poolDomain.Pool, error) {
	var out poolDomain.Pool
	res := q.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Roll", func(db *gorm.DB) *gorm.DB { return db.Order("roll_id DESC") }).
		Where("pool_id = ?", poolID).
		First(&out)
	return &out, res.Error
}
