// Package potmgr computes side pots from per-seat bet totals and
// distributes them to showdown (or fold) winners.
package potmgr

import (
	"sort"

	"github.com/lox/holdem-engine/internal/handrank"
)

// SeatBet is a snapshot of one seat's contribution to the pot.
type SeatBet struct {
	Seat     int
	Folded   bool
	TotalBet int
}

// Pot is one pot (main, or a side pot) with its eligible seats.
type Pot struct {
	Amount   int
	Eligible []int // seat numbers, ascending
}

// Compute derives pots from seat bet snapshots per the ascending
// bet-level algorithm: seats with totalBet > 0 are grouped by their
// distinct bet levels; each level's slice of chips goes to the pot
// whose eligibility is every seat that reached that level and has not
// folded. A level with no eligible (non-folded) seats has its chips
// merged into the next pot up.
func Compute(bets []SeatBet) []Pot {
	contributing := make([]SeatBet, 0, len(bets))
	for _, b := range bets {
		if b.TotalBet > 0 {
			contributing = append(contributing, b)
		}
	}
	if len(contributing) == 0 {
		return nil
	}

	levelSet := make(map[int]bool)
	for _, b := range contributing {
		levelSet[b.TotalBet] = true
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	var pots []Pot
	carry := 0
	prev := 0
	for _, level := range levels {
		countAtOrAbove := 0
		var eligible []int
		for _, b := range contributing {
			if b.TotalBet >= level {
				countAtOrAbove++
				if !b.Folded {
					eligible = append(eligible, b.Seat)
				}
			}
		}

		amount := (level-prev)*countAtOrAbove + carry
		if len(eligible) == 0 {
			carry = amount
			prev = level
			continue
		}

		sort.Ints(eligible)
		pots = append(pots, Pot{Amount: amount, Eligible: eligible})
		carry = 0
		prev = level
	}

	if carry > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += carry
	}

	return pots
}

// Total sums a pot slice's amounts.
func Total(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// PotResult is a resolved pot: its winners and the payout each received.
type PotResult struct {
	Pot
	Winners     []int
	RankLabel   string
	PayoutBySeat map[int]int
}

// DistributeShowdown evaluates each pot's eligible seats under scores
// (seat -> evaluated 7-card score) and splits each pot's amount evenly
// among the argmax seats, awarding any integer-division remainder one
// chip at a time to winners in clockwise seat order starting from the
// seat immediately left of the dealer.
func DistributeShowdown(pots []Pot, scores map[int]handrank.Score, dealerSeat, numSeats int) []PotResult {
	results := make([]PotResult, 0, len(pots))
	for _, pot := range pots {
		results = append(results, resolvePot(pot, scores, dealerSeat, numSeats))
	}
	return results
}

// DistributeFold awards every pot's full amount to the single
// remaining seat when the hand ended by universal fold rather than
// reaching showdown.
func DistributeFold(pots []Pot, winnerSeat int) []PotResult {
	results := make([]PotResult, 0, len(pots))
	for _, pot := range pots {
		results = append(results, PotResult{
			Pot:          pot,
			Winners:      []int{winnerSeat},
			RankLabel:    "won by fold",
			PayoutBySeat: map[int]int{winnerSeat: pot.Amount},
		})
	}
	return results
}

func resolvePot(pot Pot, scores map[int]handrank.Score, dealerSeat, numSeats int) PotResult {
	if len(pot.Eligible) == 0 {
		return PotResult{Pot: pot, PayoutBySeat: map[int]int{}}
	}

	var best handrank.Score
	var winners []int
	for i, seat := range pot.Eligible {
		score := scores[seat]
		if i == 0 || score > best {
			best = score
			winners = []int{seat}
		} else if score == best {
			winners = append(winners, seat)
		}
	}
	sort.Ints(winners)

	share := pot.Amount / len(winners)
	remainder := pot.Amount % len(winners)

	payout := make(map[int]int, len(winners))
	for _, seat := range winners {
		payout[seat] = share
	}

	if remainder > 0 {
		order := clockwiseFrom(dealerSeat, numSeats)
		winnerSet := make(map[int]bool, len(winners))
		for _, w := range winners {
			winnerSet[w] = true
		}
		given := 0
		for _, seat := range order {
			if given >= remainder {
				break
			}
			if winnerSet[seat] {
				payout[seat]++
				given++
			}
		}
	}

	return PotResult{
		Pot:          pot,
		Winners:      winners,
		RankLabel:    best.String(),
		PayoutBySeat: payout,
	}
}

// clockwiseFrom returns seat indices 0..numSeats-1 in clockwise order
// starting from the seat immediately left of dealerSeat.
func clockwiseFrom(dealerSeat, numSeats int) []int {
	order := make([]int, numSeats)
	for i := 0; i < numSeats; i++ {
		order[i] = (dealerSeat + 1 + i) % numSeats
	}
	return order
}
