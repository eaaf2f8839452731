package mysql

import (
	"context"
	"errors"
	"testing"

	"primepool-backend/internal/domain/asset"
	"primepool-backend/internal/domain/event"
	poolDomain "primepool-backend/internal/domain/pool"
	registryDomain "primepool-backend/internal/domain/registry"
	"primepool-backend/pkg/fixedpoint"
	"primepool-backend/pkg/id"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema. The domain
// models are sqlite-safe: no enums, and fixed-point columns migrate to TEXT
// on this dialect so mantissas round-trip losslessly.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&poolDomain.Pool{},
		&poolDomain.Position{},
		&poolDomain.Member{},
		&poolDomain.RollRequest{},
		&registryDomain.Member{},
		&registryDomain.Settings{},
		&registryDomain.Asset{},
		&asset.Account{},
		&event.Record{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makePool(poolID, borrowerID string) *poolDomain.Pool {
	return &poolDomain.Pool{
		PoolID:             poolID,
		BorrowerID:         borrowerID,
		AssetID:            id.NewID32(),
		TreasuryID:         id.NewID32(),
		IsBulletLoan:       true,
		MaxSize:            fixedpoint.FromUnits(20_000_000),
		CurrentSize:        fixedpoint.Zero(),
		RateMantissa:       fixedpoint.MustParse("100000000000000000"),
		SpreadRate:         fixedpoint.MustParse("100000000000000000"),
		OriginationRate:    fixedpoint.MustParse("5000000000000000"),
		IncrementPerRoll:   fixedpoint.MustParse("100000000000000000"),
		PenaltyRatePerYear: fixedpoint.MustParse("50000000000000000"),
		Tenor:              fixedpoint.SecondsPerYear,
		DepositWindow:      86400,
	}
}

func TestPoolCreateAndGetByPoolID(t *testing.T) {
	db := openTestDB(t)
	repo := NewPoolRepository(db)
	ctx := context.Background()

	poolID := id.NewID32()
	p := makePool(poolID, id.NewID32())
	p.Members = append(p.Members, poolDomain.Member{PoolID: poolID, MemberID: id.NewID32(), Whitelisted: true})

	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByPoolID(ctx, poolID)
	if err != nil {
		t.Fatalf("GetByPoolID: %v", err)
	}
	if got.PoolID != poolID || len(got.Members) != 1 || !got.Members[0].Whitelisted {
		t.Fatalf("unexpected pool: %+v", got)
	}
	if !got.MaxSize.Equal(fixedpoint.FromUnits(20_000_000)) {
		t.Fatalf("max size round trip: %s", got.MaxSize)
	}
}

func TestPoolGetByPoolID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewPoolRepository(db)

	_, err := repo.GetByPoolID(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestPoolSavePersistsAppendedAssociations(t *testing.T) {
	db := openTestDB(t)
	repo := NewPoolRepository(db)
	ctx := context.Background()

	poolID := id.NewID32()
	lender := id.NewID32()
	p := makePool(poolID, id.NewID32())
	p.Members = append(p.Members, poolDomain.Member{PoolID: poolID, MemberID: lender, Whitelisted: true})
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutate the aggregate the way a lend does: new position, new size,
	// activation timestamps.
	if _, err := p.Lend(lender, fixedpoint.FromUnits(1_000_000), 1_800_000_000); err != nil {
		t.Fatalf("Lend: %v", err)
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByPoolID(ctx, poolID)
	if err != nil {
		t.Fatalf("GetByPoolID: %v", err)
	}
	if len(got.Positions) != 1 || got.Positions[0].LenderID != lender {
		t.Fatalf("positions = %+v", got.Positions)
	}
	if !got.CurrentSize.Equal(fixedpoint.FromUnits(1_000_000)) {
		t.Fatalf("current size = %s", got.CurrentSize)
	}
	if got.DepositMaturity == 0 || got.MaturityDate == 0 {
		t.Fatalf("activation not persisted: %+v", got)
	}
}

func TestPoolSavePersistsRollRequest(t *testing.T) {
	db := openTestDB(t)
	repo := NewPoolRepository(db)
	ctx := context.Background()

	poolID := id.NewID32()
	lender := id.NewID32()
	p := makePool(poolID, id.NewID32())
	p.Members = append(p.Members, poolDomain.Member{PoolID: poolID, MemberID: lender, Whitelisted: true})
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const t0 = uint64(1_800_000_000)
	if _, err := p.Lend(lender, fixedpoint.FromUnits(1_000_000), t0); err != nil {
		t.Fatalf("Lend: %v", err)
	}
	if _, err := p.RequestRoll(lender, p.MaturityDate-3600); err != nil {
		t.Fatalf("RequestRoll: %v", err)
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByPoolID(ctx, poolID)
	if err != nil {
		t.Fatalf("GetByPoolID: %v", err)
	}
	if got.Roll == nil || got.Roll.RollID != 1 || got.Roll.Status != poolDomain.RollPending {
		t.Fatalf("roll = %+v", got.Roll)
	}
}
