package pool

import (
	"primepool-backend/pkg/fixedpoint"
)

// Accrual is linear and truncating: every query below is a pure function of
// the stored state and the supplied unix timestamp. Once a pool defaults the
// clock is pinned at DefaultedAt for interest, penalty and origination alike.

// Due is the full per-lender settlement breakdown. The lender receives Due;
// the treasury receives SpreadFee + OriginationFee.
type Due struct {
	Due            *fixedpoint.Dec `json:"due"`
	SpreadFee      *fixedpoint.Dec `json:"spread_fee"`
	OriginationFee *fixedpoint.Dec `json:"origination_fee"`
	Penalty        *fixedpoint.Dec `json:"penalty"`
}

// DueInterest is the installment settlement breakdown for monthly pools.
type DueInterest struct {
	Due       *fixedpoint.Dec `json:"due"`
	SpreadFee *fixedpoint.Dec `json:"spread_fee"`
	Penalty   *fixedpoint.Dec `json:"penalty"`
}

func (p *Pool) effectiveNow(now uint64) uint64 {
	if p.DefaultedAt != 0 && p.DefaultedAt < now {
		return p.DefaultedAt
	}
	return now
}

// accrualStart is where unpaid interest begins for a position: the lend
// itself for bullet pools, the later of lend and last installment payment for
// monthly pools.
func (p *Pool) accrualStart(pos *Position) uint64 {
	if p.IsBulletLoan {
		return pos.LendTimestamp
	}
	if p.LastPaidTimestamp > pos.LendTimestamp {
		return p.LastPaidTimestamp
	}
	return pos.LendTimestamp
}

func (p *Pool) interestOf(pos *Position, now uint64) *fixedpoint.Dec {
	if !pos.open() {
		return fixedpoint.Zero()
	}
	start := p.accrualStart(pos)
	eff := p.effectiveNow(now)
	if eff <= start {
		return fixedpoint.Zero()
	}
	return fixedpoint.Interest(pos.Principal, p.RateMantissa, eff-start)
}

func (p *Pool) interestThroughMaturity(pos *Position) *fixedpoint.Dec {
	if !pos.open() || p.MaturityDate <= pos.LendTimestamp {
		return fixedpoint.Zero()
	}
	return fixedpoint.Interest(pos.Principal, p.RateMantissa, p.MaturityDate-pos.LendTimestamp)
}

// dueDate is when the pool becomes overdue: maturity for bullet pools, the
// end of the current installment period for monthly ones.
func (p *Pool) dueDate() uint64 {
	if p.IsBulletLoan {
		return p.MaturityDate
	}
	next := p.LastPaidTimestamp + MonthlyRound
	if next > p.MaturityDate {
		return p.MaturityDate
	}
	return next
}

// penaltyOfPosition accrues the per-year penalty rate over the overdue span.
// Bullet pools penalize principal plus the interest earned through maturity;
// monthly pools penalize principal on the missed installment.
func (p *Pool) penaltyOfPosition(pos *Position, now uint64) *fixedpoint.Dec {
	if !pos.open() || !p.active() {
		return fixedpoint.Zero()
	}
	due := p.dueDate()
	eff := p.effectiveNow(now)
	if eff <= due {
		return fixedpoint.Zero()
	}
	base := pos.Principal
	if p.IsBulletLoan {
		base = base.Add(p.interestThroughMaturity(pos))
	}
	return fixedpoint.Interest(base, p.PenaltyRatePerYear, eff-due)
}

func clampSpan(clock, start, max uint64) uint64 {
	if clock <= start {
		return 0
	}
	span := clock - start
	if span > max {
		return max
	}
	return span
}

// originationFeeOf prorates the origination fee by elapsed time over the
// tenor window, one tranche per accepted roll with the rate compounding by
// IncrementPerRoll. An active callback pins the clock at the callback time.
func (p *Pool) originationFeeOf(pos *Position, now uint64) *fixedpoint.Dec {
	if !pos.open() || p.OriginationRate.IsZero() || p.Tenor == 0 {
		return fixedpoint.Zero()
	}
	clock := p.effectiveNow(now)
	if active, at := p.callbackOf(pos.LenderID); active && at < clock {
		clock = at
	}

	elapsed := clampSpan(clock, pos.LendTimestamp, p.Tenor)
	fee := fixedpoint.Prorate(fixedpoint.Apply(pos.Principal, p.OriginationRate), elapsed, p.Tenor)

	rate := p.OriginationRate.Clone()
	initial := p.InitialMaturity()
	for k := uint64(0); k < p.RollCount; k++ {
		delta := fixedpoint.Apply(rate, p.IncrementPerRoll)
		span := clampSpan(clock, initial+k*p.Tenor, p.Tenor)
		fee = fee.Add(fixedpoint.Prorate(fixedpoint.Apply(pos.Principal, delta), span, p.Tenor))
		rate = rate.Add(delta)
	}
	return fee
}

// BalanceOf is principal plus unpaid interest accrued so far.
func (p *Pool) BalanceOf(lender string, now uint64) *fixedpoint.Dec {
	total := fixedpoint.Zero()
	for i := range p.Positions {
		pos := &p.Positions[i]
		if pos.LenderID != lender || !pos.open() {
			continue
		}
		total = fixedpoint.Sum(total, pos.Principal, p.interestOf(pos, now))
	}
	return total
}

// PenaltyOf is the lender's accrued penalty at now.
func (p *Pool) PenaltyOf(lender string, now uint64) *fixedpoint.Dec {
	total := fixedpoint.Zero()
	for i := range p.Positions {
		pos := &p.Positions[i]
		if pos.LenderID != lender {
			continue
		}
		total = total.Add(p.penaltyOfPosition(pos, now))
	}
	return total
}

// DueOf decomposes a full repayment for one lender at now.
func (p *Pool) DueOf(lender string, now uint64) Due {
	principal := fixedpoint.Zero()
	interest := fixedpoint.Zero()
	penalty := fixedpoint.Zero()
	origination := fixedpoint.Zero()
	for i := range p.Positions {
		pos := &p.Positions[i]
		if pos.LenderID != lender || !pos.open() {
			continue
		}
		principal = principal.Add(pos.Principal)
		interest = interest.Add(p.interestOf(pos, now))
		penalty = penalty.Add(p.penaltyOfPosition(pos, now))
		origination = origination.Add(p.originationFeeOf(pos, now))
	}
	spread := fixedpoint.Apply(interest, p.SpreadRate)
	due := fixedpoint.Sum(principal, interest.Sub(spread), penalty)
	return Due{Due: due, SpreadFee: spread, OriginationFee: origination, Penalty: penalty}
}

// DueInterestOf reports the interest owed for the current installment period
// of a monthly pool (plus overdue continuation and installment penalty). On
// bullet pools it degrades to the lifetime unpaid interest.
func (p *Pool) DueInterestOf(lender string, now uint64) DueInterest {
	eff := p.effectiveNow(now)
	interest := fixedpoint.Zero()
	penalty := fixedpoint.Zero()
	for i := range p.Positions {
		pos := &p.Positions[i]
		if pos.LenderID != lender || !pos.open() {
			continue
		}
		if p.IsBulletLoan {
			interest = interest.Add(p.interestOf(pos, now))
			penalty = penalty.Add(p.penaltyOfPosition(pos, now))
			continue
		}
		start := p.accrualStart(pos)
		end := p.dueDate()
		span := uint64(0)
		if end > start {
			span = end - start
		}
		if eff > end {
			span += eff - end
			penalty = penalty.Add(fixedpoint.Interest(pos.Principal, p.PenaltyRatePerYear, eff-end))
		}
		interest = interest.Add(fixedpoint.Interest(pos.Principal, p.RateMantissa, span))
	}
	spread := fixedpoint.Apply(interest, p.SpreadRate)
	return DueInterest{Due: interest.Sub(spread).Add(penalty), SpreadFee: spread, Penalty: penalty}
}

// TotalDue is the borrower's full settlement cost at now, fees included.
func (p *Pool) TotalDue(now uint64) *fixedpoint.Dec {
	total := fixedpoint.Zero()
	for _, lender := range p.ActiveLenders() {
		d := p.DueOf(lender, now)
		total = fixedpoint.Sum(total, d.Due, d.SpreadFee, d.OriginationFee)
	}
	return total
}

// TotalDueInterest is the borrower's cost of settling the current installment.
func (p *Pool) TotalDueInterest(now uint64) *fixedpoint.Dec {
	total := fixedpoint.Zero()
	for _, lender := range p.ActiveLenders() {
		d := p.DueInterestOf(lender, now)
		total = fixedpoint.Sum(total, d.Due, d.SpreadFee)
	}
	return total
}

// NextPaymentTimestamp is the end of the current installment period, clipped
// to maturity. Zero while the pool is not yet active; maturity for bullets.
func (p *Pool) NextPaymentTimestamp() uint64 {
	if !p.active() {
		return 0
	}
	return p.dueDate()
}

// CanBeDefaulted reports whether the grace period past the due date has fully
// elapsed with principal still outstanding.
func (p *Pool) CanBeDefaulted(now uint64) bool {
	if !p.active() || p.IsClosed || p.DefaultedAt != 0 || p.CurrentSize.IsZero() {
		return false
	}
	return now >= p.dueDate()+DefaultGrace
}
