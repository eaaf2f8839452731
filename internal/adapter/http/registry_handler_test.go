package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strings"
	"testing"

	"gorm.io/gorm"

	registryDomain "primepool-backend/internal/domain/registry"
	"primepool-backend/internal/testutil/registrymock"
	registryUC "primepool-backend/internal/usecase/registry"
	"primepool-backend/pkg/fixedpoint"
)

func TestWhitelistMemberHandler_Success(t *testing.T) {
	repo := &registrymock.Repo{}
	h := NewRegistryHandler(registryUC.NewUsecase(repo))

	memberID := strings.Repeat("1", 32)
	rec := doPoolReq(t, h.WhitelistMember, stdhttp.MethodPost, "/members",
		mustJSON(map[string]any{"member_id": memberID, "risk_score": 40}), "")
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201 (body=%s)", rec.Code, rec.Body.String())
	}
	var dto registryUC.MemberDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.MemberID != memberID || dto.Status != "whitelisted" {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestWhitelistMemberHandler_DuplicateConflict(t *testing.T) {
	memberID := strings.Repeat("1", 32)
	repo := &registrymock.Repo{GetMemberFn: registrymock.Whitelisted(memberID)}
	h := NewRegistryHandler(registryUC.NewUsecase(repo))

	rec := doPoolReq(t, h.WhitelistMember, stdhttp.MethodPost, "/members",
		mustJSON(map[string]any{"member_id": memberID, "risk_score": 40}), "")
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Code != "MAC" {
		t.Fatalf("code = %q, want MAC", er.Code)
	}
}

func TestWhitelistMemberHandler_RiskScoreOutOfRange(t *testing.T) {
	repo := &registrymock.Repo{}
	h := NewRegistryHandler(registryUC.NewUsecase(repo))

	rec := doPoolReq(t, h.WhitelistMember, stdhttp.MethodPost, "/members",
		mustJSON(map[string]any{"member_id": strings.Repeat("1", 32), "risk_score": 101}), "")
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Code != "RSI" {
		t.Fatalf("code = %q, want RSI", er.Code)
	}
}

func TestBlacklistMemberHandler_NotFound(t *testing.T) {
	repo := &registrymock.Repo{}
	h := NewRegistryHandler(registryUC.NewUsecase(repo))

	rec := doPoolReq(t, h.BlacklistMember, stdhttp.MethodDelete, "/members/"+strings.Repeat("9", 32), nil, "",
		"member_id", strings.Repeat("9", 32))
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403 (body=%s)", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Code != "NPM" {
		t.Fatalf("code = %q, want NPM", er.Code)
	}
}

func settingsBackedHandler(s *registryDomain.Settings) *RegistryHandler {
	repo := &registrymock.Repo{
		GetSettingsFn:  func(ctx context.Context) (*registryDomain.Settings, error) { return s, nil },
		SaveSettingsFn: func(ctx context.Context, s *registryDomain.Settings) error { return nil },
	}
	return NewRegistryHandler(registryUC.NewUsecase(repo))
}

func TestSetRateHandler(t *testing.T) {
	s := &registryDomain.Settings{
		SpreadRate:         fixedpoint.Zero(),
		OriginationRate:    fixedpoint.Zero(),
		IncrementPerRoll:   fixedpoint.Zero(),
		PenaltyRatePerYear: fixedpoint.Zero(),
	}
	h := settingsBackedHandler(s)

	rec := doPoolReq(t, h.SetRate, stdhttp.MethodPut, "/rates/spread",
		mustJSON(map[string]any{"mantissa": "100000000000000000"}), "", "kind", "spread")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200 (body=%s)", rec.Code, rec.Body.String())
	}
	if s.SpreadRate.String() != "100000000000000000" {
		t.Fatalf("spread = %s", s.SpreadRate)
	}

	// same value again conflicts
	rec = doPoolReq(t, h.SetRate, stdhttp.MethodPut, "/rates/spread",
		mustJSON(map[string]any{"mantissa": "100000000000000000"}), "", "kind", "spread")
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	// unknown kind rejects
	rec = doPoolReq(t, h.SetRate, stdhttp.MethodPut, "/rates/bogus",
		mustJSON(map[string]any{"mantissa": "1"}), "", "kind", "bogus")
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterAssetHandler(t *testing.T) {
	var created *registryDomain.Asset
	repo := &registrymock.Repo{
		CreateAssetFn: func(ctx context.Context, a *registryDomain.Asset) error {
			created = a
			return nil
		},
	}
	h := NewRegistryHandler(registryUC.NewUsecase(repo))

	assetID := strings.Repeat("c", 32)
	rec := doPoolReq(t, h.RegisterAsset, stdhttp.MethodPost, "/assets",
		mustJSON(map[string]any{"asset_id": assetID, "symbol": "EURX"}), "")
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201 (body=%s)", rec.Code, rec.Body.String())
	}
	if created == nil || created.AssetID != assetID || !created.Available {
		t.Fatalf("created = %+v", created)
	}

	// duplicate rejects with AAI
	repo.GetAssetFn = func(ctx context.Context, id string) (*registryDomain.Asset, error) {
		if id == assetID {
			return created, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	rec = doPoolReq(t, h.RegisterAsset, stdhttp.MethodPost, "/assets",
		mustJSON(map[string]any{"asset_id": assetID, "symbol": "EURX"}), "")
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
