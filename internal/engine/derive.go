package engine

// Derive folds Apply over the full event log, producing the current
// state from scratch. It is the ground truth for replay-equivalence:
// deriving from a snapshot plus the events after it must always equal
// deriving the whole log from empty state.
func Derive(events []Event) *State {
	return DeriveFrom(&State{CurrentActor: -1, SBSeat: -1, BBSeat: -1}, events)
}

// DeriveFrom folds Apply over events starting from an existing state,
// letting callers resume from a stored snapshot instead of replaying
// a game's entire history.
func DeriveFrom(base *State, events []Event) *State {
	state := base
	for _, event := range events {
		state = Apply(state, event)
	}
	return state
}
