package tickets

import "errors"

// Lifecycle guard failures. These cross the service boundary as typed values
// so the API layer can map them to user-facing responses; collaborator
// failures (ErrLedger, ErrPaymentDeclined) carry the collaborator's reason
// via error wrapping.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("ticket not found")
	ErrInventoryExhausted = errors.New("no tickets available")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrLedger             = errors.New("ledger operation failed")
	ErrAlreadyUsed        = errors.New("ticket already used")
	ErrNotActive          = errors.New("ticket is not active")
	ErrPriceExceedsCap    = errors.New("listing price exceeds resale cap")
	ErrOwnershipMismatch  = errors.New("ticket ownership verification failed")
	ErrNotListed          = errors.New("ticket is not listed for sale")
	ErrConflict           = errors.New("ticket was modified concurrently")
)
