package transaction

import "errors"

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrValidation        = errors.New("invalid transaction")
	ErrPaymentRequired   = errors.New("payment required before label creation")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Verification reasons.
const (
	ReasonNotFound = "transaction not found"
	ReasonNotPaid  = "payment not completed"
	ReasonLabeled  = "label already issued"
)
