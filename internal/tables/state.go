package tables

import "github.com/pujasera/pos-backend/pkg/enums"

var allowedTransitions = map[enums.TableStatus][]enums.TableStatus{
	enums.TableStatusAvailable:       {enums.TableStatusReserved, enums.TableStatusOccupied},
	enums.TableStatusReserved:        {enums.TableStatusOccupied},
	enums.TableStatusOccupied:        {enums.TableStatusAwaitingCleanup, enums.TableStatusOccupied},
	enums.TableStatusAwaitingCleanup: {},
}

// CanTransition reports whether a table may move from one status to another.
// Every status may be reset to available; occupied->occupied refreshes the
// attached order snapshot.
func CanTransition(from, to enums.TableStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if to == enums.TableStatusAvailable {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Action is an operator-driven table transition.
type Action string

const (
	ActionReserve Action = "reserve"
	ActionRelease Action = "release"
	ActionClean   Action = "clean"
	ActionClear   Action = "clear"
)

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, bool) {
	switch a := Action(raw); a {
	case ActionReserve, ActionRelease, ActionClean, ActionClear:
		return a, true
	}
	return "", false
}
