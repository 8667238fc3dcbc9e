package order

import (
	"fmt"

	"autocare-controlplane/pkg/errutil"
)

// transitions is the legal-edge adjacency table for the work-order status
// machine. completed and canceled have no outgoing edges.
var transitions = map[Status][]Status{
	StatusScheduled:       {StatusInInspection, StatusCanceled},
	StatusInInspection:    {StatusInProgress, StatusCanceled},
	StatusInProgress:      {StatusAwaitingPayment, StatusCanceled},
	StatusAwaitingPayment: {StatusCompleted},
	StatusCompleted:       {},
	StatusCanceled:        {},
}

// CanTransition reports whether from -> to is a declared edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a bad-request error naming the rejected pair.
func ValidateTransition(from, to Status) error {
	if to.String() == "" {
		return errutil.BadRequest(fmt.Sprintf("unknown order status %q", to), nil)
	}
	if !CanTransition(from, to) {
		return errutil.BadRequest(fmt.Sprintf("invalid transition: %s -> %s", from, to), nil)
	}
	return nil
}
