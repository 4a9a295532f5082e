package chat

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sogoba/jokko/internal/store"
)

// ErrInvalidTransition is returned when a lifecycle operation would move a
// conversation along an edge the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions defines the conversation status state machine. Deletion
// is terminal and allowed from any status, so it is not modeled here. There
// is no way back from archived or blocked to active.
var validTransitions = map[store.Status][]store.Status{
	store.StatusActive:   {store.StatusArchived, store.StatusBlocked},
	store.StatusArchived: {},
	store.StatusBlocked:  {},
}

func checkTransition(from, to store.Status) error {
	if !slices.Contains(validTransitions[from], to) {
		return fmt.Errorf("%w from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}
