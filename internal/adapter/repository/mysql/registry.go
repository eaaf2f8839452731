package mysql

import (
	"context"
	"errors"

	registryDomain "primepool-backend/internal/domain/registry"
	"primepool-backend/pkg/fixedpoint"

	"gorm.io/gorm"
)

type RegistryRepository struct{ db *gorm.DB }

func NewRegistryRepository(db *gorm.DB) *RegistryRepository { return &RegistryRepository{db: db} }

func (r *RegistryRepository) GetMember(ctx context.Context, memberID string) (*registryDomain.Member, error) {
	var out registryDomain.Member
	res := r.db.WithContext(ctx).Where("member_id = ?", memberID).First(&out)
	return &out, res.Error
}

func (r *RegistryRepository) CreateMember(ctx context.Context, m *registryDomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *RegistryRepository) SaveMember(ctx context.Context, m *registryDomain.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// GetSettings returns the singleton rate sheet, seeding a zero-rate row on
// first access so pools can be created before any admin tuning.
func (r *RegistryRepository) GetSettings(ctx context.Context) (*registryDomain.Settings, error) {
	var out registryDomain.Settings
	res := r.db.WithContext(ctx).Order("id ASC").First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		out = registryDomain.Settings{
			SpreadRate:         fixedpoint.Zero(),
			OriginationRate:    fixedpoint.Zero(),
			IncrementPerRoll:   fixedpoint.Zero(),
			PenaltyRatePerYear: fixedpoint.Zero(),
		}
		if err := r.db.WithContext(ctx).Create(&out).Error; err != nil {
			return nil, err
		}
		return &out, nil
	}
	return &out, res.Error
}

func (r *RegistryRepository) SaveSettings(ctx context.Context, s *registryDomain.Settings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *RegistryRepository) GetAsset(ctx context.Context, assetID string) (*registryDomain.Asset, error) {
	var out registryDomain.Asset
	res := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&out)
	return &out, res.Error
}

func (r *RegistryRepository) CreateAsset(ctx context.Context, a *registryDomain.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}
