package entity

import "trackiq/internal/core/apperror"

// Transitions is a status graph: each key lists the statuses reachable from it.
// A status missing from the map is terminal.
type Transitions[S ~string] map[S][]S

// Allows reports whether from -> to is a legal move. Staying put is always allowed.
func (t Transitions[S]) Allows(from, to S) bool {
	if from == to {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check returns an INVALID_TRANSITION error for an illegal move.
func (t Transitions[S]) Check(entityName string, from, to S) error {
	if t.Allows(from, to) {
		return nil
	}
	return apperror.NewInvalidTransition(entityName, string(from), string(to))
}
