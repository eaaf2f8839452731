package registry

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	domain "primepool-backend/internal/domain/registry"
	"primepool-backend/internal/testutil/registrymock"
	"primepool-backend/pkg/fixedpoint"
)

var memberID = strings.Repeat("1", 32)

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("want error %s, got nil", code)
	}
	if got := domain.CodeOf(err); got != code {
		t.Fatalf("want code %s, got %s (%v)", code, got, err)
	}
}

// repoWith serves one member and records saves/creates.
func repoWith(m *domain.Member) (*registrymock.Repo, *struct {
	saved   *domain.Member
	created *domain.Member
}) {
	spy := &struct {
		saved   *domain.Member
		created *domain.Member
	}{}
	r := &registrymock.Repo{
		GetMemberFn: func(ctx context.Context, id string) (*domain.Member, error) {
			if m != nil && m.MemberID == id {
				return m, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		SaveMemberFn: func(ctx context.Context, mem *domain.Member) error {
			spy.saved = mem
			return nil
		},
		CreateMemberFn: func(ctx context.Context, mem *domain.Member) error {
			spy.created = mem
			return nil
		},
	}
	return r, spy
}

func TestWhitelistMemberCreatesNewMember(t *testing.T) {
	r, spy := repoWith(nil)
	u := NewUsecase(r)

	dto, err := u.WhitelistMember(context.Background(), memberID, 40)
	if err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if spy.created == nil || spy.created.Status != domain.StatusWhitelisted {
		t.Fatalf("created = %+v", spy.created)
	}
	if dto.RiskScore != 40 || dto.Status != string(domain.StatusWhitelisted) {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestWhitelistMemberReAdmitsBlacklisted(t *testing.T) {
	r, spy := repoWith(&domain.Member{MemberID: memberID, Status: domain.StatusBlacklisted, RiskScore: 90})
	u := NewUsecase(r)

	dto, err := u.WhitelistMember(context.Background(), memberID, 30)
	if err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if spy.saved == nil || spy.saved.Status != domain.StatusWhitelisted || spy.saved.RiskScore != 30 {
		t.Fatalf("saved = %+v", spy.saved)
	}
	if dto.RiskScore != 30 {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestWhitelistMemberRejections(t *testing.T) {
	r, _ := repoWith(&domain.Member{MemberID: memberID, Status: domain.StatusWhitelisted, RiskScore: 50})
	u := NewUsecase(r)

	_, err := u.WhitelistMember(context.Background(), "", 50)
	wantCode(t, err, "NZA")

	_, err = u.WhitelistMember(context.Background(), memberID, 0)
	wantCode(t, err, "RSI")

	_, err = u.WhitelistMember(context.Background(), memberID, 101)
	wantCode(t, err, "RSI")

	_, err = u.WhitelistMember(context.Background(), memberID, 50)
	wantCode(t, err, "MAC")
}

func TestBlacklistMember(t *testing.T) {
	r, spy := repoWith(&domain.Member{MemberID: memberID, Status: domain.StatusWhitelisted, RiskScore: 50})
	u := NewUsecase(r)

	if _, err := u.BlacklistMember(context.Background(), memberID); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if spy.saved.Status != domain.StatusBlacklisted {
		t.Fatalf("saved = %+v", spy.saved)
	}

	_, err := u.BlacklistMember(context.Background(), memberID)
	wantCode(t, err, "AAD")

	_, err = u.BlacklistMember(context.Background(), strings.Repeat("9", 32))
	wantCode(t, err, "NPM")
}

func TestChangeRiskScore(t *testing.T) {
	r, spy := repoWith(&domain.Member{MemberID: memberID, Status: domain.StatusWhitelisted, RiskScore: 50})
	u := NewUsecase(r)

	_, err := u.ChangeRiskScore(context.Background(), memberID, 50)
	wantCode(t, err, "SVA")

	_, err = u.ChangeRiskScore(context.Background(), memberID, 120)
	wantCode(t, err, "RSI")

	_, err = u.ChangeRiskScore(context.Background(), strings.Repeat("9", 32), 20)
	wantCode(t, err, "NPM")

	if _, err := u.ChangeRiskScore(context.Background(), memberID, 20); err != nil {
		t.Fatalf("change: %v", err)
	}
	if spy.saved.RiskScore != 20 {
		t.Fatalf("saved = %+v", spy.saved)
	}
}

func settingsRepo(s *domain.Settings) (*registrymock.Repo, *struct{ saved *domain.Settings }) {
	spy := &struct{ saved *domain.Settings }{}
	r := &registrymock.Repo{
		GetSettingsFn: func(ctx context.Context) (*domain.Settings, error) { return s, nil },
		SaveSettingsFn: func(ctx context.Context, s *domain.Settings) error {
			spy.saved = s
			return nil
		},
	}
	return r, spy
}

func zeroSettings() *domain.Settings {
	return &domain.Settings{
		SpreadRate:         fixedpoint.Zero(),
		OriginationRate:    fixedpoint.Zero(),
		IncrementPerRoll:   fixedpoint.Zero(),
		PenaltyRatePerYear: fixedpoint.Zero(),
	}
}

func TestSetRate(t *testing.T) {
	s := zeroSettings()
	r, spy := settingsRepo(s)
	u := NewUsecase(r)

	got, err := u.SetRate(context.Background(), RateSpread, "100000000000000000")
	if err != nil {
		t.Fatalf("set rate: %v", err)
	}
	if got.SpreadRate.String() != "100000000000000000" {
		t.Fatalf("spread = %s", got.SpreadRate)
	}
	if spy.saved == nil {
		t.Fatal("settings not saved")
	}

	_, err = u.SetRate(context.Background(), RateSpread, "100000000000000000")
	wantCode(t, err, "SVR")

	_, err = u.SetRate(context.Background(), RateOrigination, "1000000000000000001")
	wantCode(t, err, "UTR")

	_, err = u.SetRate(context.Background(), RateKind("unknown"), "1")
	wantCode(t, err, "UTR")

	_, err = u.SetRate(context.Background(), RatePenaltyPerYear, "5%")
	wantCode(t, err, "UTR")
}

func TestSetRateTouchesOnlyItsMantissa(t *testing.T) {
	s := zeroSettings()
	r, _ := settingsRepo(s)
	u := NewUsecase(r)

	if _, err := u.SetRate(context.Background(), RateRollingIncrement, "50000000000000000"); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	if !s.SpreadRate.IsZero() || !s.OriginationRate.IsZero() || !s.PenaltyRatePerYear.IsZero() {
		t.Fatal("other mantissas must stay untouched")
	}
	if s.IncrementPerRoll.String() != "50000000000000000" {
		t.Fatalf("increment = %s", s.IncrementPerRoll)
	}
}

func TestSetTreasury(t *testing.T) {
	s := zeroSettings()
	r, _ := settingsRepo(s)
	u := NewUsecase(r)

	treasury := strings.Repeat("7", 32)
	if _, err := u.SetTreasury(context.Background(), treasury); err != nil {
		t.Fatalf("set treasury: %v", err)
	}

	_, err := u.SetTreasury(context.Background(), treasury)
	wantCode(t, err, "SVA")

	_, err = u.SetTreasury(context.Background(), "")
	wantCode(t, err, "NZA")
}

func TestRegisterAsset(t *testing.T) {
	existing := &domain.Asset{AssetID: strings.Repeat("a", 32), Symbol: "USDX", Available: true}
	var created *domain.Asset
	r := &registrymock.Repo{
		GetAssetFn: func(ctx context.Context, id string) (*domain.Asset, error) {
			if id == existing.AssetID {
				return existing, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		CreateAssetFn: func(ctx context.Context, a *domain.Asset) error {
			created = a
			return nil
		},
	}
	u := NewUsecase(r)

	_, err := u.RegisterAsset(context.Background(), "", "X")
	wantCode(t, err, "NZA")

	_, err = u.RegisterAsset(context.Background(), existing.AssetID, "USDX")
	wantCode(t, err, "AAI")

	a, err := u.RegisterAsset(context.Background(), strings.Repeat("c", 32), "EURX")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created == nil || !a.Available || a.Symbol != "EURX" {
		t.Fatalf("asset = %+v", a)
	}
}
