package ledger

import "errors" // Sentinel errors

var (
	// ErrInsufficientContribution is returned when a contribution converts to less than the minimum
	ErrInsufficientContribution = errors.New("insufficient contribution")
	// ErrNotOwner is returned when a caller other than the owner attempts a withdrawal
	ErrNotOwner = errors.New("caller is not the owner")
	// ErrTransferFailed is returned when the owner rejects the withdrawn funds
	ErrTransferFailed = errors.New("transfer to owner failed")
	// ErrIndexOutOfRange is returned by FunderAt for an index past the registry end
	ErrIndexOutOfRange = errors.New("funder index out of range")
	// ErrInvalidState is returned when restoring from a state that breaks the ledger invariants
	ErrInvalidState = errors.New("invalid ledger state")
)
