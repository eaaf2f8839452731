package pool

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"primepool-backend/internal/domain/event"
	domain "primepool-backend/internal/domain/pool"
	"primepool-backend/internal/domain/uow"
	"primepool-backend/pkg/fixedpoint"
	"primepool-backend/pkg/id"
)

// Usecase orchestrates pool operations: it resolves the clock, checks prime
// membership, runs the aggregate mutation, executes the resulting transfers
// and appends the facts — all inside one transaction — then publishes the
// facts best-effort after commit.
type Usecase struct {
	pools domain.Repository
	uow   uow.UnitOfWork
	pub   event.Publisher

	// Now is the injected clock (unix seconds). Tests pin it.
	Now func() uint64
}

func NewUsecase(pools domain.Repository, uw uow.UnitOfWork, pub event.Publisher) *Usecase {
	return &Usecase{
		pools: pools,
		uow:   uw,
		pub:   pub,
		Now:   func() uint64 { return uint64(time.Now().Unix()) },
	}
}

type mutation func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error)

func (u *Usecase) mutate(ctx context.Context, poolID string, fn mutation) (*OperationDTO, error) {
	var (
		dto  *OperationDTO
		recs []*event.Record
	)
	err := u.uow.WithinPoolTx(ctx, poolID, func(r uow.Repos, p *domain.Pool) error {
		now := u.Now()
		out, err := fn(r, p, now)
		if err != nil {
			return err
		}
		if err := r.Pools.Save(ctx, p); err != nil {
			return err
		}
		for _, tr := range out.Transfers {
			if err := r.Ledger.Transfer(ctx, p.AssetID, tr.FromID, tr.ToID, tr.Amount); err != nil {
				return err
			}
		}
		recs = recs[:0]
		for _, f := range out.Facts {
			payload, _ := json.Marshal(f.Attrs)
			recs = append(recs, &event.Record{
				EventID: id.NewID32(),
				PoolID:  p.PoolID,
				Name:    f.Name,
				Payload: string(payload),
			})
		}
		if len(recs) > 0 {
			if err := r.Events.Append(ctx, recs...); err != nil {
				return err
			}
		}
		dto = &OperationDTO{PoolID: p.PoolID, Facts: toFactDTOs(out.Facts)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, recs)
	return dto, nil
}

func (u *Usecase) publish(ctx context.Context, recs []*event.Record) {
	if u.pub == nil {
		return
	}
	for _, rec := range recs {
		if err := u.pub.Publish(ctx, rec); err != nil {
			log.Printf("event publish %s %s: %v", rec.PoolID, rec.Name, err)
		}
	}
}

// requirePrime maps an unknown or non-whitelisted caller to NPM.
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

// --- mutations ---

func (u *Usecase) Lend(ctx context.Context, in LendInput) (*OperationDTO, error) {
	amount, err := fixedpoint.Parse(in.Amount)
	if err != nil {
		return nil, domain.ErrZeroValue
	}
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		if err := requirePrime(ctx, r, in.CallerID); err != nil {
			return nil, err
		}
		return p.Lend(in.CallerID, amount, now)
	})
}

func (u *Usecase) Repay(ctx context.Context, in RepayInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.Repay(in.CallerID, in.LenderID, now)
	})
}

func (u *Usecase) RepayAll(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.RepayAll(in.CallerID, now)
	})
}

func (u *Usecase) RepayInterest(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.RepayInterest(in.CallerID, now)
	})
}

func (u *Usecase) RequestCallback(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		if err := requirePrime(ctx, r, in.CallerID); err != nil {
			return nil, err
		}
		return p.RequestCallback(in.CallerID, now)
	})
}

func (u *Usecase) CancelCallback(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		if err := requirePrime(ctx, r, in.CallerID); err != nil {
			return nil, err
		}
		return p.CancelCallback(in.CallerID, now)
	})
}

func (u *Usecase) RequestRoll(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.RequestRoll(in.CallerID, now)
	})
}

func (u *Usecase) AcceptRoll(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.AcceptRoll(in.CallerID, now)
	})
}

func (u *Usecase) MarkDefaulted(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.MarkDefaulted(in.CallerID, now)
	})
}

func (u *Usecase) Close(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.Close(in.CallerID)
	})
}

func (u *Usecase) WhitelistLenders(ctx context.Context, in BatchInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		for _, l := range in.LenderIDs {
			if err := requirePrime(ctx, r, l); err != nil {
				return nil, err
			}
		}
		return p.WhitelistLenders(in.CallerID, in.LenderIDs)
	})
}

func (u *Usecase) BlacklistLenders(ctx context.Context, in BatchInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.BlacklistLenders(in.CallerID, in.LenderIDs)
	})
}

func (u *Usecase) SwitchToPublic(ctx context.Context, in CallerInput) (*OperationDTO, error) {
	return u.mutate(ctx, in.PoolID, func(r uow.Repos, p *domain.Pool, now uint64) (*domain.Outcome, error) {
		return p.SwitchToPublic(in.CallerID)
	})
}

// --- queries ---

func (u *Usecase) Get(ctx context.Context, poolID string) (*PoolDTO, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return toPoolDTO(p), nil
}

func (u *Usecase) DueOf(ctx context.Context, poolID, lenderID string) (*domain.Due, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	d := p.DueOf(lenderID, u.Now())
	return &d, nil
}

func (u *Usecase) DueInterestOf(ctx context.Context, poolID, lenderID string) (*domain.DueInterest, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	d := p.DueInterestOf(lenderID, u.Now())
	return &d, nil
}

func (u *Usecase) BalanceOf(ctx context.Context, poolID, lenderID string) (*fixedpoint.Dec, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return p.BalanceOf(lenderID, u.Now()), nil
}

func (u *Usecase) PenaltyOf(ctx context.Context, poolID, lenderID string) (*fixedpoint.Dec, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return p.PenaltyOf(lenderID, u.Now()), nil
}

func (u *Usecase) TotalDue(ctx context.Context, poolID string) (*fixedpoint.Dec, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return p.TotalDue(u.Now()), nil
}

func (u *Usecase) TotalDueInterest(ctx context.Context, poolID string) (*fixedpoint.Dec, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return p.TotalDueInterest(u.Now()), nil
}

func (u *Usecase) NextPayment(ctx context.Context, poolID string) (uint64, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return 0, err
	}
	return p.NextPaymentTimestamp(), nil
}

func (u *Usecase) Events(ctx context.Context, poolID string) ([]event.Record, error) {
	var out []event.Record
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Events.ListByPool(ctx, poolID)
		return err
	})
	return out, err
}

func (u *Usecase) CanBeDefaulted(ctx context.Context, poolID string) (bool, error) {
	p, err := u.pools.GetByPoolID(ctx, poolID)
	if err != nil {
		return false, err
	}
	return p.CanBeDefaulted(u.Now()), nil
}
