package registrymock

import (
	"context"

	domain "primepool-backend/internal/domain/registry"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies registry.Repository.
type Repo struct {
	GetMemberFn    func(ctx context.Context, memberID string) (*domain.Member, error)
	CreateMemberFn func(ctx context.Context, m *domain.Member) error
	SaveMemberFn   func(ctx context.Context, m *domain.Member) error
	GetSettingsFn  func(ctx context.Context) (*domain.Settings, error)
	SaveSettingsFn func(ctx context.Context, s *domain.Settings) error
	GetAssetFn     func(ctx context.Context, assetID string) (*domain.Asset, error)
	CreateAssetFn  func(ctx context.Context, a *domain.Asset) error
}

func (m *Repo) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	if m.GetMemberFn != nil {
		return m.GetMemberFn(ctx, memberID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) CreateMember(ctx context.Context, mem *domain.Member) error {
	if m.CreateMemberFn != nil {
		return m.CreateMemberFn(ctx, mem)
	}
	return nil
}

func (m *Repo) SaveMember(ctx context.Context, mem *domain.Member) error {
	if m.SaveMemberFn != nil {
		return m.SaveMemberFn(ctx, mem)
	}
	return nil
}

func (m *Repo) GetSettings(ctx context.Context) (*domain.Settings, error) {
	if m.GetSettingsFn != nil {
		return m.GetSettingsFn(ctx)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) SaveSettings(ctx context.Context, s *domain.Settings) error {
	if m.SaveSettingsFn != nil {
		return m.SaveSettingsFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	if m.GetAssetFn != nil {
		return m.GetAssetFn(ctx, assetID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) CreateAsset(ctx context.Context, a *domain.Asset) error {
	if m.CreateAssetFn != nil {
		return m.CreateAssetFn(ctx, a)
	}
	return nil
}

// Whitelisted is a convenience GetMemberFn serving the given ids as
// whitelisted prime members.
func Whitelisted(ids ...string) func(ctx context.Context, memberID string) (*domain.Member, error) {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(ctx context.Context, memberID string) (*domain.Member, error) {
		if set[memberID] {
			return &domain.Member{MemberID: memberID, Status: domain.StatusWhitelisted, RiskScore: 50}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
}
