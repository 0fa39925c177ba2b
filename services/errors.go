package services

import "errors"

// Error taxonomy for the match engine and ledger. All failures are surfaced
// synchronously to the caller as one of these sentinels (usually wrapped with
// context via fmt.Errorf("%w: ...")). Handlers map them to HTTP status codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidState        = errors.New("invalid state")
	ErrTimeoutNotReached   = errors.New("timeout not reached")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicate           = errors.New("duplicate")
)
