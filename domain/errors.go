package domain

import "fmt"

// ValidationError reports bad caller input: non-positive quantity,
// out-of-range percentage, missing required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an aggregate that does not exist within the caller's
// tenant. A cross-tenant hit is reported identically to a true miss.
type NotFoundError struct {
	Kind AggregateKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IllegalStateTransition reports an operation that is not valid for the
// aggregate's current status.
type IllegalStateTransition struct {
	Kind    AggregateKind
	ID      string
	Current Status
	Op      string
}

func (e *IllegalStateTransition) Error() string {
	return fmt.Sprintf("cannot %s %s %s: status is %s", e.Op, e.Kind, e.ID, e.Current)
}

// InsufficientAvailability reports a consumption request exceeding the
// computed upstream or inventory availability. Available carries the actual
// remaining quantity so callers can retry with a corrected amount. Unknown is
// set when the availability could not be determined and was treated as zero.
type InsufficientAvailability struct {
	Edge       string
	UpstreamID string
	Requested  float64
	Available  float64
	Unit       string
	Unknown    bool
}

func (e *InsufficientAvailability) Error() string {
	if e.Unknown {
		return fmt.Sprintf("availability on %s for %s is unknown: requested %.2f %s, treating as none available",
			e.Edge, e.UpstreamID, e.Requested, e.Unit)
	}
	return fmt.Sprintf("insufficient availability on %s for %s: requested %.2f %s, %.2f %s remaining",
		e.Edge, e.UpstreamID, e.Requested, e.Unit, e.Available, e.Unit)
}

// AttributionMissing reports an operation attempted without an authenticated
// actor or resolved tenant. It fails the whole operation before any mutation.
type AttributionMissing struct {
	Reason string
}

func (e *AttributionMissing) Error() string {
	return fmt.Sprintf("missing actor attribution: %s", e.Reason)
}
