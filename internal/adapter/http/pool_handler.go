package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"primepool-backend/internal/usecase/pool"
)

type PoolHandler struct{ uc *pool.Usecase }

func NewPoolHandler(uc *pool.Usecase) *PoolHandler { return &PoolHandler{uc: uc} }

type lendReq struct {
	Amount string `json:"amount" validate:"required,amount"`
}

func (h *PoolHandler) Lend(c echo.Context) error {
	caller := callerID(c)
	if caller == "" {
		return respondMissingCaller(c)
	}
	var req lendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Lend(c.Request().Context(), pool.LendInput{
		PoolID:   c.Param("pool_id"),
		CallerID: caller,
		Amount:   req.Amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type repayReq struct {
	LenderID string `json:"lender_id" validate:"required,hex32"`
}

func (h *PoolHandler) Repay(c echo.Context) error {
	caller := callerID(c)
	if caller == "" {
		return respondMissingCaller(c)
	}
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Repay(c.Request().Context(), pool.RepayInput{
		PoolID:   c.Param("pool_id"),
		CallerID: caller,
		LenderID: req.LenderID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// callerOp handles the bodyless mutations, which differ only in the usecase
// method they invoke.
func (h *PoolHandler) callerOp(fn func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller := callerID(c)
		if caller == "" {
			return respondMissingCaller(c)
		}
		dto, err := fn(c, pool.CallerInput{PoolID: c.Param("pool_id"), CallerID: caller})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, dto)
	}
}

func (h *PoolHandler) RepayAll(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.RepayAll(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) RepayInterest(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.RepayInterest(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) RequestCallback(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.RequestCallback(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) CancelCallback(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.CancelCallback(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) RequestRoll(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.RequestRoll(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) AcceptRoll(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.AcceptRoll(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) MarkDefaulted(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.MarkDefaulted(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) Close(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.Close(c.Request().Context(), in)
	})(c)
}

func (h *PoolHandler) SwitchToPublic(c echo.Context) error {
	return h.callerOp(func(c echo.Context, in pool.CallerInput) (*pool.OperationDTO, error) {
		return h.uc.SwitchToPublic(c.Request().Context(), in)
	})(c)
}

type batchReq struct {
	LenderIDs []string `json:"lender_ids" validate:"required,dive,hex32"`
}

func (h *PoolHandler) batchOp(c echo.Context, fn func(in pool.BatchInput) (*pool.OperationDTO, error)) error {
	caller := callerID(c)
	if caller == "" {
		return respondMissingCaller(c)
	}
	var req batchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := fn(pool.BatchInput{
		PoolID:    c.Param("pool_id"),
		CallerID:  caller,
		LenderIDs: req.LenderIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PoolHandler) WhitelistLenders(c echo.Context) error {
	return h.batchOp(c, func(in pool.BatchInput) (*pool.OperationDTO, error) {
		return h.uc.WhitelistLenders(c.Request().Context(), in)
	})
}

func (h *PoolHandler) BlacklistLenders(c echo.Context) error {
	return h.batchOp(c, func(in pool.BatchInput) (*pool.OperationDTO, error) {
		return h.uc.BlacklistLenders(c.Request().Context(), in)
	})
}

// --- queries ---

func (h *PoolHandler) GetPool(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("pool_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PoolHandler) DueOf(c echo.Context) error {
	d, err := h.uc.DueOf(c.Request().Context(), c.Param("pool_id"), c.Param("lender_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *PoolHandler) DueInterestOf(c echo.Context) error {
	d, err := h.uc.DueInterestOf(c.Request().Context(), c.Param("pool_id"), c.Param("lender_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *PoolHandler) BalanceOf(c echo.Context) error {
	bal, err := h.uc.BalanceOf(c.Request().Context(), c.Param("pool_id"), c.Param("lender_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"balance": bal})
}

func (h *PoolHandler) PenaltyOf(c echo.Context) error {
	pen, err := h.uc.PenaltyOf(c.Request().Context(), c.Param("pool_id"), c.Param("lender_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"penalty": pen})
}

func (h *PoolHandler) TotalDue(c echo.Context) error {
	total, err := h.uc.TotalDue(c.Request().Context(), c.Param("pool_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"total_due": total})
}

func (h *PoolHandler) TotalDueInterest(c echo.Context) error {
	total, err := h.uc.TotalDueInterest(c.Request().Context(), c.Param("pool_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"total_due_interest": total})
}

func (h *PoolHandler) NextPayment(c echo.Context) error {
	ts, err := h.uc.NextPayment(c.Request().Context(), c.Param("pool_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"next_payment_timestamp": ts})
}

func (h *PoolHandler) CanBeDefaulted(c echo.Context) error {
	ok, err := h.uc.CanBeDefaulted(c.Request().Context(), c.Param("pool_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"can_be_defaulted": ok})
}

func (h *PoolHandler) Events(c echo.Context) error {
	recs, err := h.uc.Events(c.Request().Context(), c.Param("pool_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": recs})
}
