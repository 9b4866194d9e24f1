/*
errors.go - Error types for the overtime engine and its storage contracts

PURPOSE:
  The valuation functions never fail: malformed input degrades to zero.
  Errors only come from the registry mutations and from storage, and they
  are declared here so the HTTP layer can map them to status codes.

ERROR CATEGORIES:
  1. Registry errors - Rejected model mutations
  2. Input errors - Bad dates or month keys at the boundaries
  3. Store errors - Missing records

SEE ALSO:
  - model.go: Returns the registry errors
  - api/errors.go: Maps these to HTTP status codes
*/
package overtime

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStandardModelLocked is returned when renaming, repricing or removing
	// the standard model.
	ErrStandardModelLocked = errors.New("standard calculation model cannot be changed")

	// ErrLastModel is returned when a removal would leave the registry empty.
	ErrLastModel = errors.New("registry must keep at least one calculation model")

	// ErrModelNotFound is returned when a mutation names an unknown model id.
	ErrModelNotFound = errors.New("calculation model not found")

	// ErrInvalidMultiplier is returned for multipliers below 1.
	ErrInvalidMultiplier = errors.New("multiplier must be at least 1")

	// ErrInvalidModelName is returned for blank model names.
	ErrInvalidModelName = errors.New("model name must not be blank")

	// ErrInvalidDate is returned when a date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidMonth is returned when a month key is not YYYY-MM.
	ErrInvalidMonth = errors.New("invalid month, use YYYY-MM")

	// ErrRecordNotFound is returned by stores for a missing month record.
	ErrRecordNotFound = errors.New("month record not found")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrStandardModelLocked) ||
		errors.Is(err, ErrLastModel) ||
		errors.Is(err, ErrInvalidMultiplier) ||
		errors.Is(err, ErrInvalidModelName) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMonth)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
