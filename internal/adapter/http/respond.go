package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"primepool-backend/internal/domain/asset"
	"primepool-backend/internal/domain/fault"
)

// statusOf maps domain rejection codes onto HTTP statuses. Anything without a
// code is treated as an infrastructure failure.
func statusOf(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, asset.ErrInsufficientFunds) {
		return http.StatusUnprocessableEntity
	}
	switch fault.CodeOf(err) {
	case "NPM", "IMB", "NCR", "BLS":
		return http.StatusForbidden
	case "OAC", "PDD", "AAD", "RAR", "MAC", "SVR", "SVA", "RTE", "OHD":
		return http.StatusConflict
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func respondError(c echo.Context, err error) error {
	return c.JSON(statusOf(err), ErrorResponse{Error: err.Error(), Code: fault.CodeOf(err)})
}

// callerID extracts the authenticated member from the Ax-Member-Id header.
func callerID(c echo.Context) string {
	id := c.Request().Header.Get("Ax-Member-Id")
	if !reHex32.MatchString(id) {
		return ""
	}
	return id
}

func respondMissingCaller(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-Member-Id header"})
}
