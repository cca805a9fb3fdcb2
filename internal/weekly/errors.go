package weekly

import "errors"

// Typed failures surfaced by the engine. Adapters translate these into
// HTTP status codes or chat replies; they never re-implement the checks.
var (
	ErrNoRecipesAvailable     = errors.New("no active recipes available")
	ErrInvalidDaySelection    = errors.New("invalid day selection")
	ErrNoPlanToSwap           = errors.New("no plan exists for this week")
	ErrNoDraftToConfirm       = errors.New("no draft to confirm")
	ErrNoDraftToCancel        = errors.New("no draft to cancel")
	ErrNoPlanForShop          = errors.New("no plan to build a shopping list from")
	ErrInsufficientCandidates = errors.New("not enough eligible recipes")
	ErrConcurrentModification = errors.New("draft was modified concurrently")
)
