package errors

import (
	"errors"
	"fmt"
)

// Taxonomy heads. Handlers map these to status codes with errors.Is;
// everything below wraps exactly one of them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

var (
	ErrListingNotFound      = fmt.Errorf("%w: no gamepass with that price and seller", ErrNotFound)
	ErrTransactionNotFound  = fmt.Errorf("%w: transaction", ErrNotFound)
	ErrBotNotFound          = fmt.Errorf("%w: bot token", ErrNotFound)
	ErrBonusNotFound        = fmt.Errorf("%w: bonus record", ErrNotFound)
	ErrSessionTokenNotFound = fmt.Errorf("%w: session token", ErrNotFound)

	ErrBotNotActive       = fmt.Errorf("%w: bot token is not active", ErrConflict)
	ErrBotAlreadySelected = fmt.Errorf("%w: bot token is already selected", ErrConflict)
	ErrTokenExists        = fmt.Errorf("%w: token is already registered", ErrConflict)
	ErrAlreadyPurchased   = fmt.Errorf("%w: gamepass is already owned", ErrConflict)

	ErrTaskAlreadyCompleted = fmt.Errorf("%w: bonus task already completed", ErrInvalidInput)
	ErrWithdrawalRequired   = fmt.Errorf("%w: valid withdrawal authorization required", ErrInvalidInput)
	ErrInvalidGamePassURL   = fmt.Errorf("%w: malformed gamepass url", ErrInvalidInput)

	ErrInvalidCredentials = errors.New("invalid credentials")
)
