package mysql

import (
	"context"

	"primepool-backend/internal/domain/event"

	"gorm.io/gorm"
)

type EventStore struct{ db *gorm.DB }

func NewEventStore(db *gorm.DB) *EventStore { return &EventStore{db: db} }

func (s *EventStore) Append(ctx context.Context, recs ...*event.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(recs).Error
}

func (s *EventStore) ListByPool(ctx context.Context, poolID string) ([]event.Record, error) {
	var out []event.Record
	res := s.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
