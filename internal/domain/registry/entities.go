// Package registry is the prime membership directory: who may participate,
// their risk score, the protocol-level rates pools snapshot at creation, and
// the set of available assets.
package registry

import (
	"time"

	"primepool-backend/pkg/fixedpoint"
)

type Status string

const (
	StatusWhitelisted Status = "whitelisted"
	StatusBlacklisted Status = "blacklisted"
)

type Member struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	MemberID  string    `gorm:"size:32;uniqueIndex" json:"member_id"`
	Status    Status    `gorm:"size:16" json:"status"`
	RiskScore uint32    `json:"risk_score"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string { return "prime_members" }

func (m *Member) Whitelisted() bool { return m != nil && m.Status == StatusWhitelisted }

// Settings is the singleton rate sheet. Every rate is a 1e18-scale mantissa
// and must not exceed 1.0.
type Settings struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	SpreadRate         *fixedpoint.Dec `json:"spread_rate"`
	OriginationRate    *fixedpoint.Dec `json:"origination_rate"`
	IncrementPerRoll   *fixedpoint.Dec `json:"increment_per_roll"`
	PenaltyRatePerYear *fixedpoint.Dec `json:"penalty_rate_per_year"`
	TreasuryID         string          `gorm:"size:32" json:"treasury_id"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Settings) TableName() string { return "prime_settings" }

type Asset struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	AssetID   string    `gorm:"size:32;uniqueIndex" json:"asset_id"`
	Symbol    string    `gorm:"size:16" json:"symbol"`
	Available bool      `json:"available"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Asset) TableName() string { return "prime_assets" }
