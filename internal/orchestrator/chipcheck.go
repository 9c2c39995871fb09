package orchestrator

import (
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/potmgr"
)

// validateChipConservation checks spec.md §8's chip conservation
// invariant right before a hand's pot is awarded: every chip still on
// the table, committed to the pot this hand, or already folded away
// must sum to however many chips were dealt into the game. Grounded
// on the teacher's Table.validateChipConservation
// (internal/game/table_actions.go), called the same way immediately
// after a hand's winner is determined.
func validateChipConservation(state *engine.State, pots []potmgr.Pot) error {
	total := potmgr.Total(pots)
	for _, seat := range state.Seats {
		total += seat.Chips
	}

	// Every seat joins with Config.StartingChips (JoinGame, NextGame).
	expected := state.Config.StartingChips * len(state.Seats)

	if total != expected {
		return errkind.Newf(errkind.Internal,
			"chip conservation violation: chips+pot=%d, chips dealt in=%d", total, expected)
	}
	return nil
}
