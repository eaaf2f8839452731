package pool

import (
	"time"

	"primepool-backend/pkg/fixedpoint"
)

// Timing constants of the protocol. All durations are in seconds and the
// financial year is 360 days.
const (
	MonthlyRound     uint64 = 30 * 86400
	RollWindow       uint64 = 48 * 3600
	DefaultGrace     uint64 = 3 * 86400
	MinDepositWindow uint64 = 3600
	MinBulletTenor   uint64 = 50 * 3600
	MinMonthlyTenor  uint64 = 65 * 86400
	MaxBatch                = 60
)

// Pool is the aggregate root: the loan itself plus its lender positions,
// member flags and the (at most one) open roll request. Rates are 1e18-scale
// mantissas snapshotted from the registry at creation time.
type Pool struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	PoolID     string `gorm:"size:32;uniqueIndex" json:"pool_id"`
	BorrowerID string `gorm:"size:32;index" json:"borrower_id"`
	AssetID    string `gorm:"size:32" json:"asset_id"`
	TreasuryID string `gorm:"size:32" json:"treasury_id"`

	IsBulletLoan bool `json:"is_bullet_loan"`
	IsPublic     bool `json:"is_public"`

	MaxSize     *fixedpoint.Dec `json:"max_size"`
	CurrentSize *fixedpoint.Dec `json:"current_size"`

	RateMantissa       *fixedpoint.Dec `json:"rate_mantissa"`
	SpreadRate         *fixedpoint.Dec `json:"spread_rate"`
	OriginationRate    *fixedpoint.Dec `json:"origination_rate"`
	IncrementPerRoll   *fixedpoint.Dec `json:"increment_per_roll"`
	PenaltyRatePerYear *fixedpoint.Dec `json:"penalty_rate_per_year"`

	Tenor         uint64 `json:"tenor"`
	DepositWindow uint64 `json:"deposit_window"`

	// Zero until the first lend activates the pool.
	DepositMaturity   uint64 `json:"deposit_maturity"`
	MaturityDate      uint64 `json:"maturity_date"`
	LastPaidTimestamp uint64 `json:"last_paid_timestamp"`

	// RollCount is the number of accepted rolls; ActiveRollID is the id of
	// the last accepted roll (0 while none).
	RollCount    uint64 `json:"roll_count"`
	ActiveRollID uint64 `json:"active_roll_id"`

	DefaultedAt uint64 `json:"defaulted_at"`
	IsClosed    bool   `json:"is_closed"`

	Positions []Position   `gorm:"foreignKey:PoolID;references:PoolID" json:"positions,omitempty"`
	Members   []Member     `gorm:"foreignKey:PoolID;references:PoolID" json:"members,omitempty"`
	Roll      *RollRequest `gorm:"foreignKey:PoolID;references:PoolID" json:"roll,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Pool) TableName() string { return "pools" }

// Position is one lend: a lender may hold several, each accruing from its own
// timestamp. Principal is zeroed on repayment but the row is retained.
type Position struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	PoolID        string          `gorm:"size:32;index" json:"pool_id"`
	LenderID      string          `gorm:"size:32;index" json:"lender_id"`
	Principal     *fixedpoint.Dec `json:"principal"`
	LendTimestamp uint64          `json:"lend_timestamp"`
	RepaidAt      uint64          `json:"repaid_at"`
}

func (Position) TableName() string { return "pool_positions" }

func (p *Position) open() bool { return p.RepaidAt == 0 && !p.Principal.IsZero() }

// Member carries per-lender pool flags: the private-pool whitelist and the
// callback marker. A callback pins the member's origination-fee clock.
type Member struct {
	ID             uint64 `gorm:"primaryKey;column:id" json:"-"`
	PoolID         string `gorm:"size:32;index:idx_pool_members,unique" json:"pool_id"`
	MemberID       string `gorm:"size:32;index:idx_pool_members,unique" json:"member_id"`
	Whitelisted    bool   `json:"whitelisted"`
	CallbackActive bool   `json:"callback_active"`
	CallbackAt     uint64 `json:"callback_at"`
}

func (Member) TableName() string { return "pool_members" }

type RollStatus string

const (
	RollPending   RollStatus = "pending"
	RollAccepted  RollStatus = "accepted"
	RollRejected  RollStatus = "rejected"
	RollCancelled RollStatus = "cancelled"
)

// RollRequest is the single open maturity-extension negotiation of a pool.
// A callback arriving while it is pending flips it to rejected; repaying the
// last principal cancels it.
type RollRequest struct {
	ID          uint64     `gorm:"primaryKey;column:id" json:"-"`
	PoolID      string     `gorm:"size:32;index" json:"pool_id"`
	RollID      uint64     `json:"roll_id"`
	LenderID    string     `gorm:"size:32" json:"lender_id"`
	RequestedAt uint64     `json:"requested_at"`
	Status      RollStatus `gorm:"size:16" json:"status"`
}

func (RollRequest) TableName() string { return "pool_roll_requests" }

// --- aggregate lookups ---

func (p *Pool) active() bool { return p.DepositMaturity != 0 }

// PrincipalOf sums the open positions of one lender.
func (p *Pool) PrincipalOf(lender string) *fixedpoint.Dec {
	total := fixedpoint.Zero()
	for i := range p.Positions {
		if p.Positions[i].LenderID == lender && p.Positions[i].open() {
			total = total.Add(p.Positions[i].Principal)
		}
	}
	return total
}

// ActiveLenders returns the distinct lenders holding principal, in order of
// first lend. Iteration order matters for deterministic repayment fan-out.
func (p *Pool) ActiveLenders() []string {
	seen := map[string]bool{}
	var out []string
	for i := range p.Positions {
		pos := &p.Positions[i]
		if !pos.open() || seen[pos.LenderID] {
			continue
		}
		seen[pos.LenderID] = true
		out = append(out, pos.LenderID)
	}
	return out
}

func (p *Pool) member(id string) *Member {
	for i := range p.Members {
		if p.Members[i].MemberID == id {
			return &p.Members[i]
		}
	}
	return nil
}

func (p *Pool) memberOrAdd(id string) *Member {
	if m := p.member(id); m != nil {
		return m
	}
	p.Members = append(p.Members, Member{PoolID: p.PoolID, MemberID: id})
	return &p.Members[len(p.Members)-1]
}

func (p *Pool) whitelisted(id string) bool {
	m := p.member(id)
	return m != nil && m.Whitelisted
}

func (p *Pool) callbackOf(id string) (active bool, at uint64) {
	m := p.member(id)
	if m == nil || !m.CallbackActive {
		return false, 0
	}
	return true, m.CallbackAt
}

func (p *Pool) openRoll() *RollRequest {
	if p.Roll == nil {
		return nil
	}
	if p.Roll.Status == RollPending || p.Roll.Status == RollRejected {
		return p.Roll
	}
	return nil
}

// InitialMaturity is the maturity fixed at activation, before any roll.
func (p *Pool) InitialMaturity() uint64 {
	return p.MaturityDate - p.RollCount*p.Tenor
}
