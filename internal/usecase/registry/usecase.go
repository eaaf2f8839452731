// Package registry administers the prime directory: memberships, risk
// scores, the protocol rate sheet and the available-asset set.
package registry

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "primepool-backend/internal/domain/registry"
	"primepool-backend/pkg/fixedpoint"
)

type Usecase struct {
	repo domain.Repository
}

func NewUsecase(r domain.Repository) *Usecase { return &Usecase{repo: r} }

type MemberDTO struct {
	MemberID  string `json:"member_id"`
	Status    string `json:"status"`
	RiskScore uint32 `json:"risk_score"`
}

func toMemberDTO(m *domain.Member) *MemberDTO {
	return &MemberDTO{MemberID: m.MemberID, Status: string(m.Status), RiskScore: m.RiskScore}
}

// WhitelistMember admits a member (or re-admits a blacklisted one).
func (u *Usecase) WhitelistMember(ctx context.Context, memberID string, riskScore uint32) (*MemberDTO, error) {
	if memberID == "" {
		return nil, domain.ErrZeroAddress
	}
	if riskScore < 1 || riskScore > 100 {
		return nil, domain.ErrRiskScore
	}
	m, err := u.repo.GetMember(ctx, memberID)
	switch {
	case err == nil:
		if m.Status == domain.StatusWhitelisted {
			return nil, domain.ErrMembershipExists
		}
		m.Status = domain.StatusWhitelisted
		m.RiskScore = riskScore
		if err := u.repo.SaveMember(ctx, m); err != nil {
			return nil, err
		}
		return toMemberDTO(m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		m = &domain.Member{MemberID: memberID, Status: domain.StatusWhitelisted, RiskScore: riskScore}
		if err := u.repo.CreateMember(ctx, m); err != nil {
			return nil, err
		}
		return toMemberDTO(m), nil
	default:
		return nil, err
	}
}

func (u *Usecase) BlacklistMember(ctx context.Context, memberID string) (*MemberDTO, error) {
	m, err := u.repo.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotMember
		}
		return nil, err
	}
	if m.Status == domain.StatusBlacklisted {
		return nil, domain.ErrAlreadyDone
	}
	m.Status = domain.StatusBlacklisted
	if err := u.repo.SaveMember(ctx, m); err != nil {
		return nil, err
	}
	return toMemberDTO(m), nil
}

func (u *Usecase) ChangeRiskScore(ctx context.Context, memberID string, riskScore uint32) (*MemberDTO, error) {
	if riskScore < 1 || riskScore > 100 {
		return nil, domain.ErrRiskScore
	}
	m, err := u.repo.GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotMember
		}
		return nil, err
	}
	if m.RiskScore == riskScore {
		return nil, domain.ErrSameValue
	}
	m.RiskScore = riskScore
	if err := u.repo.SaveMember(ctx, m); err != nil {
		return nil, err
	}
	return toMemberDTO(m), nil
}

func (u *Usecase) GetMember(ctx context.Context, memberID string) (*MemberDTO, error) {
	m, err := u.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return toMemberDTO(m), nil
}

// RateKind selects which mantissa of the rate sheet a setter touches.
type RateKind string

const (
	RateSpread           RateKind = "spread"
	RateOrigination      RateKind = "origination"
	RateRollingIncrement RateKind = "roll-increment"
	RatePenaltyPerYear   RateKind = "penalty"
)

// SetRate updates one protocol rate. Rates are 1e18 mantissas capped at 1.0
// and setting the current value again is rejected.
func (u *Usecase) SetRate(ctx context.Context, kind RateKind, mantissa string) (*domain.Settings, error) {
	rate, err := fixedpoint.Parse(mantissa)
	if err != nil {
		return nil, domain.ErrUnacceptableRange
	}
	if rate.Gt(fixedpoint.FromUnits(1)) {
		return nil, domain.ErrUnacceptableRange
	}
	s, err := u.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	var target **fixedpoint.Dec
	switch kind {
	case RateSpread:
		target = &s.SpreadRate
	case RateOrigination:
		target = &s.OriginationRate
	case RateRollingIncrement:
		target = &s.IncrementPerRoll
	case RatePenaltyPerYear:
		target = &s.PenaltyRatePerYear
	default:
		return nil, domain.ErrUnacceptableRange
	}
	if (*target).Equal(rate) {
		return nil, domain.ErrSameRate
	}
	*target = rate
	if err := u.repo.SaveSettings(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *Usecase) SetTreasury(ctx context.Context, treasuryID string) (*domain.Settings, error) {
	if treasuryID == "" {
		return nil, domain.ErrZeroAddress
	}
	s, err := u.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if s.TreasuryID == treasuryID {
		return nil, domain.ErrSameValue
	}
	s.TreasuryID = treasuryID
	if err := u.repo.SaveSettings(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *Usecase) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return u.repo.GetSettings(ctx)
}

// RegisterAsset makes an asset available for new pools.
func (u *Usecase) RegisterAsset(ctx context.Context, assetID, symbol string) (*domain.Asset, error) {
	if assetID == "" {
		return nil, domain.ErrZeroAddress
	}
	if _, err := u.repo.GetAsset(ctx, assetID); err == nil {
		return nil, domain.ErrAssetExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	a := &domain.Asset{AssetID: assetID, Symbol: symbol, Available: true}
	if err := u.repo.CreateAsset(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
