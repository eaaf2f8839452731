package registry

import "context"

type Repository interface {
	GetMember(ctx context.Context, memberID string) (*Member, error)
	CreateMember(ctx context.Context, m *Member) error
	SaveMember(ctx context.Context, m *Member) error

	// GetSettings returns the singleton rate sheet, creating it with zero
	// rates on first access.
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error

	GetAsset(ctx context.Context, assetID string) (*Asset, error)
	CreateAsset(ctx context.Context, a *Asset) error
}
