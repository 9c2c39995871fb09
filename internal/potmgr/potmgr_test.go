package potmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/cards"
	"github.com/lox/holdem-engine/internal/handrank"
)

func TestComputeSingleLevelPot(t *testing.T) {
	pots := Compute([]SeatBet{
		{Seat: 0, TotalBet: 20},
		{Seat: 1, TotalBet: 20},
	})
	require.Len(t, pots, 1)
	assert.Equal(t, 40, pots[0].Amount)
	assert.Equal(t, []int{0, 1}, pots[0].Eligible)
}

// Scenario 2 from spec.md §8: three-way side pot, stacks 100/50/200.
func TestComputeThreeWaySidePot(t *testing.T) {
	bets := []SeatBet{
		{Seat: 0, TotalBet: 50}, // A raised to 50
		{Seat: 1, TotalBet: 50}, // B all-in for 50
		{Seat: 2, TotalBet: 50}, // C calls 50
	}
	pots := Compute(bets)
	require.Len(t, pots, 1)
	assert.Equal(t, 150, pots[0].Amount)
	assert.ElementsMatch(t, []int{0, 1, 2}, pots[0].Eligible)
}

func TestComputeFoldedSeatsStillFundPotButAreIneligible(t *testing.T) {
	bets := []SeatBet{
		{Seat: 0, TotalBet: 100, Folded: true},
		{Seat: 1, TotalBet: 100},
		{Seat: 2, TotalBet: 40, Folded: true},
	}
	pots := Compute(bets)
	require.Len(t, pots, 2)
	assert.Equal(t, 120, pots[0].Amount) // level 40 * 3 contributors
	assert.Equal(t, []int{1}, pots[0].Eligible)
	assert.Equal(t, 120, pots[1].Amount) // (100-40) * 2
	assert.Equal(t, []int{1}, pots[1].Eligible)
}

func TestComputeMergesEmptyEligiblePotForward(t *testing.T) {
	// Two seats both fold at different levels, one active seat on top.
	bets := []SeatBet{
		{Seat: 0, TotalBet: 10, Folded: true},
		{Seat: 1, TotalBet: 20, Folded: true},
		{Seat: 2, TotalBet: 30},
	}
	pots := Compute(bets)
	require.Len(t, pots, 1)
	assert.Equal(t, 60, pots[0].Amount)
	assert.Equal(t, []int{2}, pots[0].Eligible)
}

func TestPotDecompositionInvariant(t *testing.T) {
	bets := []SeatBet{
		{Seat: 0, TotalBet: 100},
		{Seat: 1, TotalBet: 50},
		{Seat: 2, TotalBet: 200},
	}
	pots := Compute(bets)
	sum := 0
	for _, b := range bets {
		sum += b.TotalBet
	}
	assert.Equal(t, sum, Total(pots))
}

// Scenario 3 from spec.md §8: split pot with remainder, dealer seat 0.
func TestDistributeShowdownSplitPotRemainder(t *testing.T) {
	pots := []Pot{{Amount: 201, Eligible: []int{0, 1}}}
	scores := map[int]handrank.Score{
		0: handrank.Evaluate7(sampleHand()),
		1: handrank.Evaluate7(sampleHand()),
	}
	results := DistributeShowdown(pots, scores, 0, 2)
	require.Len(t, results, 1)
	assert.Equal(t, 101, results[0].PayoutBySeat[1])
	assert.Equal(t, 100, results[0].PayoutBySeat[0])
}

func TestDistributeFoldLabelsWonByFold(t *testing.T) {
	pots := []Pot{{Amount: 90, Eligible: []int{1}}}
	results := DistributeFold(pots, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "won by fold", results[0].RankLabel)
	assert.Equal(t, 90, results[0].PayoutBySeat[1])
}

func TestDistributeShowdownSingleWinnerTakesWholePot(t *testing.T) {
	pots := []Pot{{Amount: 150, Eligible: []int{0, 1, 2}}}
	strong := handrank.Evaluate7(sampleHand())
	weak := handrank.Score(0)
	scores := map[int]handrank.Score{0: weak, 1: weak, 2: strong}
	results := DistributeShowdown(pots, scores, 0, 3)
	require.Len(t, results, 1)
	assert.Equal(t, []int{2}, results[0].Winners)
	assert.Equal(t, 150, results[0].PayoutBySeat[2])
}

func sampleHand() cards.Hand {
	var h cards.Hand
	for _, s := range []string{"2c", "5d", "9h", "Jc", "Ks", "3d", "7h"} {
		c, _ := cards.ParseCard(s)
		h.Add(c)
	}
	return h
}
