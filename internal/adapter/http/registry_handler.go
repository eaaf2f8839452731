package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"primepool-backend/internal/usecase/registry"
)

type RegistryHandler struct{ uc *registry.Usecase }

func NewRegistryHandler(uc *registry.Usecase) *RegistryHandler { return &RegistryHandler{uc: uc} }

type whitelistMemberReq struct {
	MemberID  string `json:"member_id" validate:"required,hex32"`
	RiskScore uint32 `json:"risk_score" validate:"required"`
}

func (h *RegistryHandler) WhitelistMember(c echo.Context) error {
	var req whitelistMemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.WhitelistMember(c.Request().Context(), req.MemberID, req.RiskScore)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RegistryHandler) BlacklistMember(c echo.Context) error {
	dto, err := h.uc.BlacklistMember(c.Request().Context(), c.Param("member_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RegistryHandler) GetMember(c echo.Context) error {
	dto, err := h.uc.GetMember(c.Request().Context(), c.Param("member_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type riskScoreReq struct {
	RiskScore uint32 `json:"risk_score" validate:"required"`
}

func (h *RegistryHandler) ChangeRiskScore(c echo.Context) error {
	var req riskScoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.ChangeRiskScore(c.Request().Context(), c.Param("member_id"), req.RiskScore)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type setRateReq struct {
	Mantissa string `json:"mantissa" validate:"required,amount"`
}

func (h *RegistryHandler) SetRate(c echo.Context) error {
	var req setRateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	s, err := h.uc.SetRate(c.Request().Context(), registry.RateKind(c.Param("kind")), req.Mantissa)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *RegistryHandler) GetSettings(c echo.Context) error {
	s, err := h.uc.GetSettings(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type setTreasuryReq struct {
	TreasuryID string `json:"treasury_id" validate:"required,hex32"`
}

func (h *RegistryHandler) SetTreasury(c echo.Context) error {
	var req setTreasuryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	s, err := h.uc.SetTreasury(c.Request().Context(), req.TreasuryID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type registerAssetReq struct {
	AssetID string `json:"asset_id" validate:"required,hex32"`
	Symbol  string `json:"symbol" validate:"required,max=16"`
}

func (h *RegistryHandler) RegisterAsset(c echo.Context) error {
	var req registerAssetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	a, err := h.uc.RegisterAsset(c.Request().Context(), req.AssetID, req.Symbol)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}
