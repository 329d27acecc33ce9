package services

import (
	"fmt"
	"math"

	"example.com/brickworks/services/production/domain"
)

// guardQuantity rejects quantities that are not finite or not strictly
// positive.
func guardQuantity(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.NewValidationError(field, "must be a finite number")
	}
	if v <= 0 {
		return domain.NewValidationError(field, fmt.Sprintf("must be positive, got %.2f", v))
	}
	return nil
}

// guardPercent rejects percentages outside [0,100].
func guardPercent(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.NewValidationError(field, "must be a finite number")
	}
	if v < 0 || v > 100 {
		return domain.NewValidationError(field, fmt.Sprintf("must be between 0 and 100, got %.2f", v))
	}
	return nil
}

// guardRequired rejects empty required strings.
func guardRequired(field, v string) error {
	if v == "" {
		return domain.NewValidationError(field, "is required")
	}
	return nil
}

// requireActor rejects operations without attribution before any mutation.
func requireActor(actor domain.Actor) error {
	if !actor.Attributed() {
		return &domain.AttributionMissing{Reason: "operation requires an authenticated actor with a tenant"}
	}
	return nil
}

func statusIn(s domain.Status, allowed []domain.Status) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
