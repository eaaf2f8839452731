package mysql

import (
	"context"
	"errors"

	"primepool-backend/internal/domain/asset"
	"primepool-backend/pkg/fixedpoint"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore keeps per-asset balances in asset_accounts. It is always used
// through the unit of work, so db is the surrounding transaction.
type LedgerStore struct{ db *gorm.DB }

func NewLedgerStore(db *gorm.DB) *LedgerStore { return &LedgerStore{db: db} }

func (s *LedgerStore) Transfer(ctx context.Context, assetID, fromID, toID string, amount *fixedpoint.Dec) error {
	if amount.IsZero() {
		return nil
	}
	from, err := s.account(ctx, assetID, fromID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return asset.ErrInsufficientFunds
		}
		return err
	}
	if from.Balance.Lt(amount) {
		return asset.ErrInsufficientFunds
	}
	from.Balance = from.Balance.Sub(amount)
	if err := s.db.WithContext(ctx).Save(from).Error; err != nil {
		return err
	}
	return s.credit(ctx, assetID, toID, amount)
}

func (s *LedgerStore) Mint(ctx context.Context, assetID, toID string, amount *fixedpoint.Dec) error {
	if amount.IsZero() {
		return nil
	}
	return s.credit(ctx, assetID, toID, amount)
}

func (s *LedgerStore) BalanceOf(ctx context.Context, assetID, holderID string) (*fixedpoint.Dec, error) {
	acc, err := s.account(ctx, assetID, holderID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fixedpoint.Zero(), nil
		}
		return nil, err
	}
	return acc.Balance, nil
}

func (s *LedgerStore) credit(ctx context.Context, assetID, toID string, amount *fixedpoint.Dec) error {
	acc, err := s.account(ctx, assetID, toID, true)
	switch {
	case err == nil:
		acc.Balance = acc.Balance.Add(amount)
		return s.db.WithContext(ctx).Save(acc).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		acc = &asset.Account{AssetID: assetID, HolderID: toID, Balance: amount.Clone()}
		return s.db.WithContext(ctx).Create(acc).Error
	default:
		return err
	}
}

func (s *LedgerStore) account(ctx context.Context, assetID, holderID string, lock bool) (*asset.Account, error) {
	q := s.db
	if lock && s.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out asset.Account
	res := q.WithContext(ctx).
		Where("asset_id = ? AND holder_id = ?", assetID, holderID).
		First(&out)
	return &out, res.Error
}
