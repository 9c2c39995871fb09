package engine

import "github.com/lox/holdem-engine/internal/potmgr"

// livePots recomputes the pot projection from current seat totals; it
// carries no winners, since a live pot has none yet (spec.md §3.2: pots
// are not maintained incrementally).
func livePots(s *State) []PotView {
	bets := make([]potmgr.SeatBet, len(s.Seats))
	for i, seat := range s.Seats {
		bets[i] = potmgr.SeatBet{
			Seat:     seat.Index,
			Folded:   seat.Status == SeatFolded,
			TotalBet: seat.TotalBet,
		}
	}
	pots := potmgr.Compute(bets)
	views := make([]PotView, len(pots))
	for i, p := range pots {
		views[i] = PotView{Amount: p.Amount, Eligible: p.Eligible}
	}
	return views
}
