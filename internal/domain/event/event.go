// Package event persists and fans out the facts the pool engine emits.
package event

import (
	"context"
	"time"
)

type Record struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	EventID   string    `gorm:"size:32;uniqueIndex" json:"event_id"`
	PoolID    string    `gorm:"size:32;index" json:"pool_id"`
	Name      string    `gorm:"size:64" json:"name"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "pool_events" }

// Store appends records inside the operation's transaction.
type Store interface {
	Append(ctx context.Context, recs ...*Record) error
	ListByPool(ctx context.Context, poolID string) ([]Record, error)
}

// Publisher fans a committed record out to subscribers (best effort).
type Publisher interface {
	Publish(ctx context.Context, rec *Record) error
}
