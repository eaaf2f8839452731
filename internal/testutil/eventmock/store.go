package eventmock

import (
	"context"

	"primepool-backend/internal/domain/event"
)

var (
	_ event.Store     = (*Store)(nil)
	_ event.Publisher = (*Publisher)(nil)
)

// Store collects appended records in memory.
type Store struct {
	AppendFn func(ctx context.Context, recs ...*event.Record) error
	Records  []*event.Record
}

func (m *Store) Append(ctx context.Context, recs ...*event.Record) error {
	if m.AppendFn != nil {
		if err := m.AppendFn(ctx, recs...); err != nil {
			return err
		}
	}
	m.Records = append(m.Records, recs...)
	return nil
}

func (m *Store) ListByPool(ctx context.Context, poolID string) ([]event.Record, error) {
	var out []event.Record
	for _, r := range m.Records {
		if r.PoolID == poolID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Publisher collects published records in memory.
type Publisher struct {
	PublishFn func(ctx context.Context, rec *event.Record) error
	Published []*event.Record
}

func (m *Publisher) Publish(ctx context.Context, rec *event.Record) error {
	if m.PublishFn != nil {
		if err := m.PublishFn(ctx, rec); err != nil {
			return err
		}
	}
	m.Published = append(m.Published, rec)
	return nil
}
