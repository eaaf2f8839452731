package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"primepool-backend/internal/usecase/factory"
)

type FactoryHandler struct{ uc *factory.Usecase }

func NewFactoryHandler(uc *factory.Usecase) *FactoryHandler { return &FactoryHandler{uc: uc} }

type createPoolReq struct {
	AssetID       string   `json:"asset_id" validate:"required,hex32"`
	MaxSize       string   `json:"max_size" validate:"required,amount"`
	RateMantissa  string   `json:"rate_mantissa" validate:"required,amount"`
	Tenor         uint64   `json:"tenor" validate:"required"`
	DepositWindow uint64   `json:"deposit_window" validate:"required"`
	IsBulletLoan  bool     `json:"is_bullet_loan"`
	IsPublic      bool     `json:"is_public"`
	Members       []string `json:"members" validate:"omitempty,dive,hex32"`
}

func (h *FactoryHandler) CreatePool(c echo.Context) error {
	caller := callerID(c)
	if caller == "" {
		return respondMissingCaller(c)
	}
	var req createPoolReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Create(c.Request().Context(), factory.CreatePoolInput{
		CallerID:      caller,
		AssetID:       req.AssetID,
		MaxSize:       req.MaxSize,
		RateMantissa:  req.RateMantissa,
		Tenor:         req.Tenor,
		DepositWindow: req.DepositWindow,
		IsBulletLoan:  req.IsBulletLoan,
		IsPublic:      req.IsPublic,
		Members:       req.Members,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
