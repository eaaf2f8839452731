package pool

import "primepool-backend/internal/domain/fault"

var (
	ErrNotCallerRole     = fault.New("NCR", "caller does not hold the required role")
	ErrZeroAddress       = fault.New("NZA", "zero or missing identifier")
	ErrZeroValue         = fault.New("ZVL", "amount must be positive")
	ErrOverSize          = fault.New("OSE", "lend would exceed pool max size")
	ErrDepositWindow     = fault.New("DWC", "deposit window closed")
	ErrNotMember         = fault.New("IMB", "not an eligible pool member")
	ErrBorrowerSelf      = fault.New("BLS", "borrower cannot participate as lender")
	ErrNotPrimeMember    = fault.New("NPM", "not a whitelisted prime member")
	ErrPoolClosed        = fault.New("OAC", "pool already closed")
	ErrPoolDefaulted     = fault.New("PDD", "pool already defaulted")
	ErrPeriodPaid        = fault.New("RTE", "interest already paid for this period")
	ErrNotMonthly        = fault.New("NML", "operation requires a monthly pool")
	ErrRollTiming        = fault.New("RTR", "outside the roll window")
	ErrRollConsent       = fault.New("RCR", "roll requires exactly one consenting lender")
	ErrRollRequested     = fault.New("RAR", "a roll request is already open")
	ErrRollBlocked       = fault.New("ARM", "roll blocked by a pending callback")
	ErrDefaultEarly      = fault.New("EDR", "too early to declare default")
	ErrEmptyBatch        = fault.New("LLZ", "member list must not be empty")
	ErrBatchTooLarge     = fault.New("EAL", "member list exceeds the batch limit")
	ErrAlreadyDone       = fault.New("AAD", "already in the requested state")
	ErrOutstandingDebt   = fault.New("OHD", "pool still holds outstanding debt")
	ErrPublicPool        = fault.New("OPP", "operation not allowed on a public pool")
	ErrZeroLiquidity     = fault.New("LZL", "lender holds no outstanding principal")
	ErrPastMaturity      = fault.New("EMD", "operation not allowed past maturity")
	ErrAssetUnavailable  = fault.New("AAI", "asset is not available")
	ErrUnacceptableRange = fault.New("UTR", "value outside the acceptable range")
	ErrTenorVsWindow     = fault.New("DET", "tenor must exceed the deposit window")
	ErrTenorTooShort     = fault.New("TTS", "tenor below the minimum")
)

// CodeOf extracts the short code, or "" for foreign errors.
func CodeOf(err error) string { return fault.CodeOf(err) }
