// Package factory validates and instantiates pools, snapshotting the
// registry's rate sheet into each new pool.
package factory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"primepool-backend/internal/domain/event"
	domain "primepool-backend/internal/domain/pool"
	"primepool-backend/internal/domain/uow"
	"primepool-backend/pkg/fixedpoint"
	"primepool-backend/pkg/id"
)

type Usecase struct {
	uow uow.UnitOfWork

	Now func() uint64
}

func NewUsecase(uw uow.UnitOfWork) *Usecase {
	return &Usecase{uow: uw, Now: func() uint64 { return uint64(time.Now().Unix()) }}
}

type CreatePoolInput struct {
	CallerID      string   `json:"caller_id"`
	AssetID       string   `json:"asset_id"`
	MaxSize       string   `json:"max_size"`
	RateMantissa  string   `json:"rate_mantissa"`
	Tenor         uint64   `json:"tenor"`
	DepositWindow uint64   `json:"deposit_window"`
	IsBulletLoan  bool     `json:"is_bullet_loan"`
	IsPublic      bool     `json:"is_public"`
	Members       []string `json:"members"`
}

type CreatedPoolDTO struct {
	PoolID             string          `json:"pool_id"`
	BorrowerID         string          `json:"borrower_id"`
	AssetID            string          `json:"asset_id"`
	IsBulletLoan       bool            `json:"is_bullet_loan"`
	IsPublic           bool            `json:"is_public"`
	MaxSize            *fixedpoint.Dec `json:"max_size"`
	RateMantissa       *fixedpoint.Dec `json:"rate_mantissa"`
	SpreadRate         *fixedpoint.Dec `json:"spread_rate"`
	OriginationRate    *fixedpoint.Dec `json:"origination_rate"`
	IncrementPerRoll   *fixedpoint.Dec `json:"increment_per_roll"`
	PenaltyRatePerYear *fixedpoint.Dec `json:"penalty_rate_per_year"`
	Tenor              uint64          `json:"tenor"`
	DepositWindow      uint64          `json:"deposit_window"`
}

// Create validates the request and persists a pending pool. The pool's rates
// are fixed here: later registry changes never touch existing pools.
func (u *Usecase) Create(ctx context.Context, in CreatePoolInput) (*CreatedPoolDTO, error) {
	maxSize, err := fixedpoint.Parse(in.MaxSize)
	if err != nil || maxSize.IsZero() {
		return nil, domain.ErrZeroValue
	}
	rate, err := fixedpoint.Parse(in.RateMantissa)
	if err != nil || rate.IsZero() {
		return nil, domain.ErrZeroValue
	}
	if rate.Gt(fixedpoint.FromUnits(1)) {
		return nil, domain.ErrUnacceptableRange
	}
	if in.AssetID == "" {
		return nil, domain.ErrZeroAddress
	}
	if in.DepositWindow < domain.MinDepositWindow {
		return nil, domain.ErrUnacceptableRange
	}
	if in.Tenor <= in.DepositWindow {
		return nil, domain.ErrTenorVsWindow
	}
	minTenor := domain.MinMonthlyTenor
	if in.IsBulletLoan {
		minTenor = domain.MinBulletTenor
	}
	if in.Tenor < minTenor {
		return nil, domain.ErrTenorTooShort
	}
	if len(in.Members) > domain.MaxBatch {
		return nil, domain.ErrBatchTooLarge
	}

	var dto *CreatedPoolDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := requirePrime(ctx, r, in.CallerID); err != nil {
			return err
		}
		for _, m := range in.Members {
			if m == in.CallerID {
				return domain.ErrBorrowerSelf
			}
			if err := requirePrime(ctx, r, m); err != nil {
				return err
			}
		}

		a, err := r.Registry.GetAsset(ctx, in.AssetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAssetUnavailable
			}
			return err
		}
		if !a.Available {
			return domain.ErrAssetUnavailable
		}

		s, err := r.Registry.GetSettings(ctx)
		if err != nil {
			return err
		}

		p := &domain.Pool{
			PoolID:             id.NewID32(),
			BorrowerID:         in.CallerID,
			AssetID:            in.AssetID,
			TreasuryID:         s.TreasuryID,
			IsBulletLoan:       in.IsBulletLoan,
			IsPublic:           in.IsPublic && len(in.Members) == 0,
			MaxSize:            maxSize,
			CurrentSize:        fixedpoint.Zero(),
			RateMantissa:       rate,
			SpreadRate:         s.SpreadRate.Clone(),
			OriginationRate:    s.OriginationRate.Clone(),
			IncrementPerRoll:   s.IncrementPerRoll.Clone(),
			PenaltyRatePerYear: s.PenaltyRatePerYear.Clone(),
			Tenor:              in.Tenor,
			DepositWindow:      in.DepositWindow,
		}
		for _, m := range in.Members {
			p.Members = append(p.Members, domain.Member{PoolID: p.PoolID, MemberID: m, Whitelisted: true})
		}
		if err := r.Pools.Create(ctx, p); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]any{
			"borrower_id": p.BorrowerID,
			"asset_id":    p.AssetID,
			"is_bullet":   p.IsBulletLoan,
			"max_size":    p.MaxSize.String(),
		})
		if err := r.Events.Append(ctx, &event.Record{
			EventID: id.NewID32(),
			PoolID:  p.PoolID,
			Name:    "PoolCreated",
			Payload: string(payload),
		}); err != nil {
			return err
		}

		dto = &CreatedPoolDTO{
			PoolID:             p.PoolID,
			BorrowerID:         p.BorrowerID,
			AssetID:            p.AssetID,
			IsBulletLoan:       p.IsBulletLoan,
			IsPublic:           p.IsPublic,
			MaxSize:            p.MaxSize,
			RateMantissa:       p.RateMantissa,
			SpreadRate:         p.SpreadRate,
			OriginationRate:    p.OriginationRate,
			IncrementPerRoll:   p.IncrementPerRoll,
			PenaltyRatePerYear: p.PenaltyRatePerYear,
			Tenor:              p.Tenor,
			DepositWindow:      p.DepositWindow,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func requirePrime(ctx context.Context, r uow.Repos, memberID string) error {
	m, err := r.Registry.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotPrimeMember
		}
		return err
	}
	if !m.Whitelisted() {
		return domain.ErrNotPrimeMember
	}
	return nil
}
