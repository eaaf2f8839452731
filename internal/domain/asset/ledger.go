// Package asset is the balance ledger the pools settle against.
package asset

import (
	"context"
	"errors"
	"time"

	"primepool-backend/pkg/fixedpoint"
)

var ErrInsufficientFunds = errors.New("asset: insufficient funds")

// Account is one holder's balance in one asset.
type Account struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	AssetID   string          `gorm:"size:32;index:idx_asset_holder,unique" json:"asset_id"`
	HolderID  string          `gorm:"size:32;index:idx_asset_holder,unique" json:"holder_id"`
	Balance   *fixedpoint.Dec `json:"balance"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "asset_accounts" }

// Ledger moves balances. Transfer must be called inside the same transaction
// as the pool mutation that requires it: failing the transfer rolls back the
// whole operation.
type Ledger interface {
	Transfer(ctx context.Context, assetID, fromID, toID string, amount *fixedpoint.Dec) error
	Mint(ctx context.Context, assetID, toID string, amount *fixedpoint.Dec) error
	BalanceOf(ctx context.Context, assetID, holderID string) (*fixedpoint.Dec, error)
}
