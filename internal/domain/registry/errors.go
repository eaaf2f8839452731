package registry

import "primepool-backend/internal/domain/fault"

var (
	ErrRiskScore         = fault.New("RSI", "risk score must be between 1 and 100")
	ErrMembershipExists  = fault.New("MAC", "membership already created")
	ErrSameRate          = fault.New("SVR", "rate unchanged")
	ErrSameValue         = fault.New("SVA", "value unchanged")
	ErrZeroAddress       = fault.New("NZA", "zero or missing identifier")
	ErrNotMember         = fault.New("NPM", "not a prime member")
	ErrAlreadyDone       = fault.New("AAD", "already in the requested state")
	ErrUnacceptableRange = fault.New("UTR", "value outside the acceptable range")
	ErrAssetExists       = fault.New("AAI", "asset already registered")
)

// CodeOf extracts the short code, or "" for foreign errors.
func CodeOf(err error) string { return fault.CodeOf(err) }
