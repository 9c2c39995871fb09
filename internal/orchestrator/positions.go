package orchestrator

import "github.com/lox/holdem-engine/internal/engine"

// nextSeatWithChips searches clockwise from index from (inclusive,
// wrapping) for the next seat still holding chips. Used at hand start
// to pick the dealer and blinds before HandStart has set any seat's
// Status, so it can't rely on engine.NextActingSeat's Status check.
func nextSeatWithChips(seats []*engine.Seat, from int) int {
	n := len(seats)
	if n == 0 {
		return -1
	}
	for i := 0; i < n; i++ {
		idx := ((from+i)%n + n) % n
		if seats[idx].Chips > 0 {
			return idx
		}
	}
	return -1
}

// rotateDealer picks the next hand's dealer: the first eligible seat
// clockwise from the previous dealer.
func rotateDealer(seats []*engine.Seat, prevDealer int) int {
	return nextSeatWithChips(seats, prevDealer+1)
}

// assignBlinds returns the small and big blind seats for a hand
// starting with dealerSeat. Heads-up play is the one case where the
// dealer itself posts the small blind; with three or more eligible
// seats the dealer posts nothing and blinds start one seat clockwise.
func assignBlinds(seats []*engine.Seat, dealerSeat int) (sb, bb int) {
	eligible := 0
	for _, seat := range seats {
		if seat.Chips > 0 {
			eligible++
		}
	}
	if eligible == 2 {
		sb = dealerSeat
		bb = nextSeatWithChips(seats, dealerSeat+1)
		return
	}
	sb = nextSeatWithChips(seats, dealerSeat+1)
	bb = nextSeatWithChips(seats, sb+1)
	return
}

// firstActorPreflop is the seat that opens preflop action: the next
// eligible seat clockwise from the big blind. In a heads-up or
// 3-handed hand this naturally wraps back to the dealer, matching
// standard position rules without any special case.
func firstActorPreflop(seats []*engine.Seat, bbSeat int) int {
	return nextSeatWithChips(seats, bbSeat+1)
}
