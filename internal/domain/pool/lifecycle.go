package pool

import (
	"primepool-backend/pkg/fixedpoint"
)

// Fact is an emitted domain event. Facts only describe state that already
// changed; they are recorded and published after the transaction commits.
type Fact struct {
	Name  string
	Attrs map[string]any
}

// Transfer is an asset movement the operation requires. Transfers are
// executed after the aggregate mutation, in order, inside the same
// transaction, so a failed transfer rolls the whole operation back.
type Transfer struct {
	FromID string
	ToID   string
	Amount *fixedpoint.Dec
}

// Outcome bundles what an accepted operation produced.
type Outcome struct {
	Facts     []Fact
	Transfers []Transfer
}

func (o *Outcome) fact(name string, attrs map[string]any) {
	o.Facts = append(o.Facts, Fact{Name: name, Attrs: attrs})
}

func (o *Outcome) transfer(from, to string, amount *fixedpoint.Dec) {
	if amount.IsZero() {
		return
	}
	o.Transfers = append(o.Transfers, Transfer{FromID: from, ToID: to, Amount: amount})
}

// guard rejects operations on terminal pools.
func (p *Pool) guard() error {
	if p.IsClosed {
		return ErrPoolClosed
	}
	if p.DefaultedAt != 0 {
		return ErrPoolDefaulted
	}
	return nil
}

// Lend books a new position. The first lend activates the pool: it fixes the
// deposit and maturity windows and starts the installment grid. The caller
// must already be known to be a prime member (checked upstream).
func (p *Pool) Lend(caller string, amount *fixedpoint.Dec, now uint64) (*Outcome, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrZeroValue
	}
	if p.IsPublic {
		if caller == p.BorrowerID {
			return nil, ErrBorrowerSelf
		}
	} else if !p.whitelisted(caller) {
		return nil, ErrNotMember
	}
	if p.active() && now > p.DepositMaturity {
		return nil, ErrDepositWindow
	}
	if p.CurrentSize.Add(amount).Gt(p.MaxSize) {
		return nil, ErrOverSize
	}

	out := &Outcome{}
	if !p.active() {
		p.DepositMaturity = now + p.DepositWindow
		p.MaturityDate = now + p.Tenor
		p.LastPaidTimestamp = now
		out.fact("Activated", map[string]any{
			"deposit_maturity": p.DepositMaturity,
			"maturity_date":    p.MaturityDate,
		})
	}
	p.Positions = append(p.Positions, Position{
		PoolID:        p.PoolID,
		LenderID:      caller,
		Principal:     amount.Clone(),
		LendTimestamp: now,
	})
	p.memberOrAdd(caller)
	p.CurrentSize = p.CurrentSize.Add(amount)

	out.fact("Lent", map[string]any{"lender_id": caller, "amount": amount.String()})
	out.transfer(caller, p.BorrowerID, amount)
	return out, nil
}

// Repay settles one lender in full: principal, interest net of spread, and
// penalty go to the lender; spread and origination fees go to the treasury.
// Settling the last open principal cancels any open roll and closes the pool.
func (p *Pool) Repay(caller, lender string, now uint64) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if lender == "" {
		return nil, ErrZeroAddress
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	if p.PrincipalOf(lender).IsZero() {
		return nil, ErrZeroLiquidity
	}

	out := &Outcome{}
	p.settleLender(lender, now, out)
	p.finishIfEmpty(out)
	return out, nil
}

// RepayAll settles every lender holding principal, in order of first lend.
func (p *Pool) RepayAll(caller string, now uint64) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	lenders := p.ActiveLenders()
	if len(lenders) == 0 {
		return nil, ErrZeroLiquidity
	}

	out := &Outcome{}
	for _, lender := range lenders {
		p.settleLender(lender, now, out)
	}
	p.finishIfEmpty(out)
	return out, nil
}

func (p *Pool) settleLender(lender string, now uint64, out *Outcome) {
	d := p.DueOf(lender, now)
	principal := fixedpoint.Zero()
	for i := range p.Positions {
		pos := &p.Positions[i]
		if pos.LenderID != lender || !pos.open() {
			continue
		}
		principal = principal.Add(pos.Principal)
		pos.Principal = fixedpoint.Zero()
		pos.RepaidAt = now
	}
	p.CurrentSize = p.CurrentSize.Sub(principal)
	if m := p.member(lender); m != nil {
		m.CallbackActive = false
		m.CallbackAt = 0
	}

	out.transfer(p.BorrowerID, lender, d.Due)
	out.transfer(p.BorrowerID, p.TreasuryID, d.SpreadFee.Add(d.OriginationFee))
	out.fact("Repayed", map[string]any{
		"lender_id":       lender,
		"due":             d.Due.String(),
		"spread_fee":      d.SpreadFee.String(),
		"origination_fee": d.OriginationFee.String(),
		"penalty":         d.Penalty.String(),
	})
}

func (p *Pool) finishIfEmpty(out *Outcome) {
	if !p.CurrentSize.IsZero() {
		return
	}
	if r := p.openRoll(); r != nil {
		r.Status = RollCancelled
	}
	p.IsClosed = true
	out.fact("Closed", nil)
}

// RepayInterest settles the current installment for every lender of a
// monthly pool and spends the period by advancing the grid exactly one round.
func (p *Pool) RepayInterest(caller string, now uint64) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if p.IsBulletLoan {
		return nil, ErrNotMonthly
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	if p.CurrentSize.IsZero() {
		return nil, ErrZeroLiquidity
	}
	if now < p.LastPaidTimestamp {
		return nil, ErrPeriodPaid
	}

	out := &Outcome{}
	for _, lender := range p.ActiveLenders() {
		d := p.DueInterestOf(lender, now)
		out.transfer(p.BorrowerID, lender, d.Due)
		out.transfer(p.BorrowerID, p.TreasuryID, d.SpreadFee)
		out.fact("RepayedInterest", map[string]any{
			"lender_id":  lender,
			"due":        d.Due.String(),
			"spread_fee": d.SpreadFee.String(),
			"penalty":    d.Penalty.String(),
		})
	}
	next := p.LastPaidTimestamp + MonthlyRound
	if next > p.MaturityDate {
		next = p.MaturityDate
	}
	p.LastPaidTimestamp = next
	return out, nil
}

// RequestCallback registers a lender's wish to exit at maturity. It pins the
// lender's origination-fee clock and vetoes any pending roll.
func (p *Pool) RequestCallback(caller string, now uint64) (*Outcome, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}
	if p.PrincipalOf(caller).IsZero() {
		return nil, ErrZeroLiquidity
	}
	if now >= p.MaturityDate {
		return nil, ErrPastMaturity
	}
	m := p.memberOrAdd(caller)
	if m.CallbackActive {
		return nil, ErrAlreadyDone
	}
	m.CallbackActive = true
	m.CallbackAt = now

	out := &Outcome{}
	if r := p.openRoll(); r != nil && r.Status == RollPending {
		r.Status = RollRejected
		out.fact("RollRejected", map[string]any{"roll_id": r.RollID, "lender_id": caller})
	}
	out.fact("CallbackCreated", map[string]any{"lender_id": caller})
	return out, nil
}

// CancelCallback withdraws an active callback; the origination clock resumes.
func (p *Pool) CancelCallback(caller string, now uint64) (*Outcome, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}
	m := p.member(caller)
	if m == nil || !m.CallbackActive {
		return nil, ErrAlreadyDone
	}
	m.CallbackActive = false
	m.CallbackAt = 0

	out := &Outcome{}
	out.fact("CallbackCancelled", map[string]any{"lender_id": caller})
	return out, nil
}

// RequestRoll opens a maturity extension. Only the borrower may ask, only
// inside the 48-hour window ending at maturity, and only when exactly one
// lender holds principal.
func (p *Pool) RequestRoll(caller string, now uint64) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	lenders := p.ActiveLenders()
	if len(lenders) != 1 {
		return nil, ErrRollConsent
	}
	if p.openRoll() != nil {
		return nil, ErrRollRequested
	}
	if now+RollWindow < p.MaturityDate || now > p.MaturityDate {
		return nil, ErrRollTiming
	}

	p.Roll = &RollRequest{
		PoolID:      p.PoolID,
		RollID:      p.RollCount + 1,
		LenderID:    lenders[0],
		RequestedAt: now,
		Status:      RollPending,
	}
	out := &Outcome{}
	out.fact("RollRequested", map[string]any{"roll_id": p.Roll.RollID})
	return out, nil
}

// AcceptRoll is the sole lender's consent: maturity extends by one tenor and
// the origination rate compounds by IncrementPerRoll.
func (p *Pool) AcceptRoll(caller string, now uint64) (*Outcome, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}
	r := p.openRoll()
	if r == nil {
		return nil, ErrRollConsent
	}
	if r.Status == RollRejected {
		return nil, ErrRollBlocked
	}
	if p.PrincipalOf(caller).IsZero() {
		return nil, ErrNotMember
	}
	if active, _ := p.callbackOf(caller); active {
		return nil, ErrRollBlocked
	}
	if now > p.MaturityDate {
		return nil, ErrRollTiming
	}

	r.Status = RollAccepted
	p.RollCount++
	p.ActiveRollID = r.RollID
	p.MaturityDate += p.Tenor

	out := &Outcome{}
	out.fact("RollAccepted", map[string]any{"roll_id": r.RollID, "new_maturity": p.MaturityDate})
	return out, nil
}

// MarkDefaulted freezes every accrual clock at now. Only the borrower or a
// lender holding principal may declare it, and only once the grace period
// past the due date has elapsed.
func (p *Pool) MarkDefaulted(caller string, now uint64) (*Outcome, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}
	if caller != p.BorrowerID && p.PrincipalOf(caller).IsZero() {
		return nil, ErrNotMember
	}
	if !p.CanBeDefaulted(now) {
		return nil, ErrDefaultEarly
	}
	p.DefaultedAt = now

	out := &Outcome{}
	out.fact("Defaulted", map[string]any{"defaulted_at": now})
	return out, nil
}

// Close ends a settled pool. Outstanding principal blocks it.
func (p *Pool) Close(caller string) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	if !p.CurrentSize.IsZero() {
		return nil, ErrOutstandingDebt
	}
	// A closed pool must not carry an open ask. With zero principal there is
	// no maturity left to extend, so the request is cancelled, not rejected.
	if r := p.openRoll(); r != nil {
		r.Status = RollCancelled
	}
	p.IsClosed = true

	out := &Outcome{}
	out.fact("Closed", nil)
	return out, nil
}

// WhitelistLenders grants pool membership; the first call on a public pool
// converts it to private. Targets must already be prime members (checked
// upstream) and may not include the borrower.
func (p *Pool) WhitelistLenders(caller string, lenders []string) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	if err := checkBatch(lenders); err != nil {
		return nil, err
	}
	for _, l := range lenders {
		if l == p.BorrowerID {
			return nil, ErrBorrowerSelf
		}
	}

	out := &Outcome{}
	p.IsPublic = false
	for _, l := range lenders {
		p.memberOrAdd(l).Whitelisted = true
		out.fact("LenderWhitelisted", map[string]any{"lender_id": l})
	}
	return out, nil
}

// BlacklistLenders revokes membership on a private pool.
func (p *Pool) BlacklistLenders(caller string, lenders []string) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	if p.IsPublic {
		return nil, ErrPublicPool
	}
	if err := checkBatch(lenders); err != nil {
		return nil, err
	}
	for _, l := range lenders {
		if !p.whitelisted(l) {
			return nil, ErrNotMember
		}
	}

	out := &Outcome{}
	for _, l := range lenders {
		p.member(l).Whitelisted = false
		out.fact("LenderBlacklisted", map[string]any{"lender_id": l})
	}
	return out, nil
}

// SwitchToPublic opens the pool to any prime member.
func (p *Pool) SwitchToPublic(caller string) (*Outcome, error) {
	if caller != p.BorrowerID {
		return nil, ErrNotCallerRole
	}
	if err := p.guard(); err != nil {
		return nil, err
	}
	if p.IsPublic {
		return nil, ErrAlreadyDone
	}
	p.IsPublic = true

	out := &Outcome{}
	out.fact("ConvertedToPublic", nil)
	return out, nil
}

func checkBatch(lenders []string) error {
	if len(lenders) == 0 {
		return ErrEmptyBatch
	}
	if len(lenders) > MaxBatch {
		return ErrBatchTooLarge
	}
	return nil
}
