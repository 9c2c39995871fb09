package engine

import "github.com/lox/holdem-engine/internal/errkind"

// ActionRequest is a player-submitted action. Amount is the raise-to
// target (the seat's new total CurrentBet) for Bet/Raise and is
// ignored for Check/Call/Fold/AllIn.
type ActionRequest struct {
	Kind   ActionKind
	Amount int
}

// LegalActions describes what the acting seat may currently do,
// ready to serialize into a wire ActionRequest prompt.
type LegalActions struct {
	Seat        int
	CanCheck    bool
	CanCall     bool
	CanBet      bool
	CanRaise    bool
	CanFold     bool
	CanAllIn    bool
	CanAdvance  bool
	CallAmount  int
	MinBet      int
	MinRaiseTo  int
	MaxRaiseTo  int
}

// Validate reports whether req is legal for seatIdx to act with right
// now, per spec.md §4.3/§4.4.
func Validate(state *State, seatIdx int, req ActionRequest) error {
	if state.ActionFinished || state.Round == RoundShowdown || state.Round == RoundWaiting {
		return errkind.New(errkind.InvalidState, "no action is open")
	}
	if seatIdx != state.CurrentActor {
		return errkind.New(errkind.InvalidState, "not this seat's turn")
	}
	seat := state.SeatByIndex(seatIdx)
	if seat == nil || seat.Status != SeatActive {
		return errkind.New(errkind.InvalidState, "seat cannot act")
	}

	switch req.Kind {
	case ActionCheck:
		if state.CurrentBet != seat.CurrentBet {
			return errkind.New(errkind.InvalidState, "cannot check facing a bet")
		}
	case ActionCall:
		if state.CurrentBet <= seat.CurrentBet {
			return errkind.New(errkind.InvalidState, "nothing to call")
		}
	case ActionFold:
		// always legal while acting
	case ActionAllIn:
		if seat.Chips <= 0 {
			return errkind.New(errkind.InvalidState, "seat has no chips")
		}
	case ActionBet:
		if state.CurrentBet != 0 {
			return errkind.New(errkind.InvalidState, "cannot bet facing a bet, use raise")
		}
		if req.Amount < state.Config.BigBlind {
			return errkind.New(errkind.InvalidAmount, "bet below minimum")
		}
		if req.Amount > seat.Chips {
			return errkind.New(errkind.InvalidAmount, "bet exceeds chips")
		}
	case ActionRaise:
		if state.CurrentBet == 0 {
			return errkind.New(errkind.InvalidState, "cannot raise an unopened pot, use bet")
		}
		if state.cappedSeats != nil && state.cappedSeats[seatIdx] {
			return errkind.New(errkind.InvalidState, "short all-in does not reopen raising for this seat")
		}
		increment := req.Amount - state.CurrentBet
		maxTotal := seat.CurrentBet + seat.Chips
		if req.Amount > maxTotal {
			return errkind.New(errkind.InvalidAmount, "raise exceeds chips")
		}
		if increment < state.LastRaise && req.Amount != maxTotal {
			return errkind.New(errkind.InvalidAmount, "raise below minimum increment")
		}
	default:
		return errkind.New(errkind.InvalidState, "unknown action")
	}
	return nil
}

// Legal computes the acting seat's LegalActions bounds. CanAdvance
// reports whether Advance is the legal affordance right now (spec.md
// §4.3): either betting has closed on this street, or the hand is
// between streets with no one left to act, outside showdown.
func Legal(state *State) LegalActions {
	out := LegalActions{Seat: state.CurrentActor}
	out.CanAdvance = state.ActionFinished ||
		(state.CurrentActor < 0 && state.Round != RoundShowdown && state.Round != RoundWaiting)
	if state.ActionFinished || state.Round == RoundShowdown || state.Round == RoundWaiting {
		return out
	}
	seat := state.SeatByIndex(state.CurrentActor)
	if seat == nil || seat.Status != SeatActive {
		return out
	}

	out.CanFold = true
	out.CanAllIn = seat.Chips > 0
	out.MaxRaiseTo = seat.CurrentBet + seat.Chips

	if state.CurrentBet == seat.CurrentBet {
		out.CanCheck = true
	} else {
		out.CanCall = true
		out.CallAmount = state.CurrentBet - seat.CurrentBet
	}
	if state.CurrentBet == 0 {
		out.CanBet = seat.Chips > 0
		out.MinBet = state.Config.BigBlind
	} else if seat.Chips > out.CallAmount && !(state.cappedSeats != nil && state.cappedSeats[state.CurrentActor]) {
		out.CanRaise = true
		out.MinRaiseTo = state.CurrentBet + state.LastRaise
		if out.MinRaiseTo > out.MaxRaiseTo {
			out.MinRaiseTo = out.MaxRaiseTo
		}
	}
	return out
}

// ResolveAction validates req and converts it into the event kind and
// payload the orchestrator should append; Amount is translated from
// req's raise-to target into the incremental chips the event expects.
func ResolveAction(state *State, seatIdx int, req ActionRequest) (EventKind, ActionPayload, error) {
	if err := Validate(state, seatIdx, req); err != nil {
		return "", ActionPayload{}, err
	}
	seat := state.SeatByIndex(seatIdx)
	payload := ActionPayload{SeatIndex: seatIdx}

	switch req.Kind {
	case ActionCheck:
		return EventCheck, payload, nil
	case ActionFold:
		return EventFold, payload, nil
	case ActionCall:
		payload.Amount = state.CurrentBet - seat.CurrentBet
		if payload.Amount > seat.Chips {
			payload.Amount = seat.Chips
			return EventAllIn, payload, nil
		}
		return EventCall, payload, nil
	case ActionBet:
		payload.Amount = req.Amount
		if payload.Amount == seat.Chips {
			return EventAllIn, payload, nil
		}
		return EventBet, payload, nil
	case ActionRaise:
		payload.Amount = req.Amount - seat.CurrentBet
		if payload.Amount == seat.Chips {
			return EventAllIn, payload, nil
		}
		return EventRaise, payload, nil
	case ActionAllIn:
		payload.Amount = seat.Chips
		return EventAllIn, payload, nil
	}
	return "", ActionPayload{}, errkind.New(errkind.InvalidState, "unknown action")
}
