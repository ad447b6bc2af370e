package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Lookup errors
	ErrMsgNotFound = "not found"

	// Authorization errors
	ErrMsgForbidden = "forbidden"

	// Lifecycle errors
	ErrMsgInvalidState = "invalid state"

	// Ledger errors
	ErrMsgInsufficientInventory = "insufficient inventory"

	// Trade errors
	ErrMsgConflict = "conflict"

	// Configuration errors
	ErrMsgInvalidConfiguration = "invalid configuration"

	// Input errors
	ErrMsgInvalidInput = "invalid input"

	// Database/System errors
	ErrMsgContention = "storage contention"
	ErrMsgTransient  = "temporarily unavailable"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrNotFound is returned when a referenced pack, proposal or collectible does not exist.
	ErrNotFound = errors.New(ErrMsgNotFound)

	// ErrForbidden is returned when the acting user has no rights over the entity.
	ErrForbidden = errors.New(ErrMsgForbidden)

	// ErrInvalidState is returned when an operation is not legal in the entity's current lifecycle state.
	ErrInvalidState = errors.New(ErrMsgInvalidState)

	// ErrInsufficientInventory is returned when a debit would drive a quantity negative.
	ErrInsufficientInventory = errors.New(ErrMsgInsufficientInventory)

	// ErrConflict is returned when a collectible-unit is already committed to another open proposal,
	// or when the duplicates-only rule is not met.
	ErrConflict = errors.New(ErrMsgConflict)

	// ErrInvalidConfiguration is returned for malformed rarity weights or an unusable catalog.
	ErrInvalidConfiguration = errors.New(ErrMsgInvalidConfiguration)

	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// ErrContention marks a storage-level serialization failure. Units of work retry on it
	// and never surface it to callers.
	ErrContention = errors.New(ErrMsgContention)

	// ErrTransient is surfaced once contention retries are exhausted.
	ErrTransient = errors.New(ErrMsgTransient)
)
