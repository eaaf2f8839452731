package ledgermock

import (
	"context"

	"primepool-backend/internal/domain/asset"
	"primepool-backend/pkg/fixedpoint"
)

var _ asset.Ledger = (*Ledger)(nil)

// Move is one recorded Transfer call.
type Move struct {
	AssetID string
	FromID  string
	ToID    string
	Amount  *fixedpoint.Dec
}

// Ledger records transfers and optionally fails them via TransferFn.
type Ledger struct {
	TransferFn func(ctx context.Context, assetID, fromID, toID string, amount *fixedpoint.Dec) error
	Moves      []Move
}

func (m *Ledger) Transfer(ctx context.Context, assetID, fromID, toID string, amount *fixedpoint.Dec) error {
	if m.TransferFn != nil {
		if err := m.TransferFn(ctx, assetID, fromID, toID, amount); err != nil {
			return err
		}
	}
	m.Moves = append(m.Moves, Move{AssetID: assetID, FromID: fromID, ToID: toID, Amount: amount})
	return nil
}

func (m *Ledger) Mint(ctx context.Context, assetID, toID string, amount *fixedpoint.Dec) error {
	return nil
}

func (m *Ledger) BalanceOf(ctx context.Context, assetID, holderID string) (*fixedpoint.Dec, error) {
	return fixedpoint.Zero(), nil
}
