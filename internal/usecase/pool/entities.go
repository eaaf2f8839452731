package pool

import (
	domain "primepool-backend/internal/domain/pool"

	"primepool-backend/pkg/fixedpoint"
)

type LendInput struct {
	PoolID   string `json:"pool_id"`
	CallerID string `json:"caller_id"`
	Amount   string `json:"amount"`
}

type RepayInput struct {
	PoolID   string `json:"pool_id"`
	CallerID string `json:"caller_id"`
	LenderID string `json:"lender_id"`
}

type CallerInput struct {
	PoolID   string `json:"pool_id"`
	CallerID string `json:"caller_id"`
}

type BatchInput struct {
	PoolID    string   `json:"pool_id"`
	CallerID  string   `json:"caller_id"`
	LenderIDs []string `json:"lender_ids"`
}

type FactDTO struct {
	Name  string         `json:"name"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// OperationDTO reports what an accepted mutation did.
type OperationDTO struct {
	PoolID string    `json:"pool_id"`
	Facts  []FactDTO `json:"facts"`
}

type PoolDTO struct {
	PoolID             string          `json:"pool_id"`
	BorrowerID         string          `json:"borrower_id"`
	AssetID            string          `json:"asset_id"`
	IsBulletLoan       bool            `json:"is_bullet_loan"`
	IsPublic           bool            `json:"is_public"`
	MaxSize            *fixedpoint.Dec `json:"max_size"`
	CurrentSize        *fixedpoint.Dec `json:"current_size"`
	RateMantissa       *fixedpoint.Dec `json:"rate_mantissa"`
	SpreadRate         *fixedpoint.Dec `json:"spread_rate"`
	OriginationRate    *fixedpoint.Dec `json:"origination_rate"`
	IncrementPerRoll   *fixedpoint.Dec `json:"increment_per_roll"`
	PenaltyRatePerYear *fixedpoint.Dec `json:"penalty_rate_per_year"`
	Tenor              uint64          `json:"tenor"`
	DepositWindow      uint64          `json:"deposit_window"`
	DepositMaturity    uint64          `json:"deposit_maturity"`
	MaturityDate       uint64          `json:"maturity_date"`
	LastPaidTimestamp  uint64          `json:"last_paid_timestamp"`
	ActiveRollID       uint64          `json:"active_roll_id"`
	DefaultedAt        uint64          `json:"defaulted_at"`
	IsClosed           bool            `json:"is_closed"`
}

func toPoolDTO(p *domain.Pool) *PoolDTO {
	return &PoolDTO{
		PoolID:             p.PoolID,
		BorrowerID:         p.BorrowerID,
		AssetID:            p.AssetID,
		IsBulletLoan:       p.IsBulletLoan,
		IsPublic:           p.IsPublic,
		MaxSize:            p.MaxSize,
		CurrentSize:        p.CurrentSize,
		RateMantissa:       p.RateMantissa,
		SpreadRate:         p.SpreadRate,
		OriginationRate:    p.OriginationRate,
		IncrementPerRoll:   p.IncrementPerRoll,
		PenaltyRatePerYear: p.PenaltyRatePerYear,
		Tenor:              p.Tenor,
		DepositWindow:      p.DepositWindow,
		DepositMaturity:    p.DepositMaturity,
		MaturityDate:       p.MaturityDate,
		LastPaidTimestamp:  p.LastPaidTimestamp,
		ActiveRollID:       p.ActiveRollID,
		DefaultedAt:        p.DefaultedAt,
		IsClosed:           p.IsClosed,
	}
}

func toFactDTOs(facts []domain.Fact) []FactDTO {
	out := make([]FactDTO, 0, len(facts))
	for _, f := range facts {
		out = append(out, FactDTO{Name: f.Name, Attrs: f.Attrs})
	}
	return out
}
