package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/cards"
	"github.com/lox/holdem-engine/internal/handrank"
	"github.com/lox/holdem-engine/internal/potmgr"
)

func cfg() GameConfig {
	return GameConfig{SmallBlind: 5, BigBlind: 10, StartingChips: 100}
}

func hole(a, b string) []cards.Card {
	ca, _ := cards.ParseCard(a)
	cb, _ := cards.ParseCard(b)
	return []cards.Card{ca, cb}
}

func handOf(cs ...string) cards.Hand {
	var h cards.Hand
	for _, s := range cs {
		c, _ := cards.ParseCard(s)
		h.Add(c)
	}
	return h
}

// headsUpAllInEvents builds the event log for spec.md §8 scenario 1:
// two seats, both shove preflop, board runs out, pot is awarded.
func headsUpAllInEvents() []Event {
	var seq uint64
	next := func() uint64 { seq++; return seq }

	events := []Event{
		{Seq: next(), Kind: EventGameCreated, Payload: GameCreatedPayload{
			GameID: "g1", RoomCode: "ABCDEF", Config: cfg(), Seed: 42,
		}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "p0", Name: "A", Chips: 100}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "p1", Name: "B", Chips: 100}},
		{Seq: next(), Kind: EventHandStart, Payload: HandStartPayload{
			HandNumber: 1,
			DealerSeat: 0,
			HoleCards: map[int][]cards.Card{
				0: hole("As", "Ad"),
				1: hole("Kc", "Kd"),
			},
			DeckSize:   52 - 4,
			FirstActor: 0, // heads-up: dealer/SB acts first preflop
		}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 0, Amount: 5}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 1, Amount: 10, IsBig: true}},
		{Seq: next(), Kind: EventAllIn, Payload: ActionPayload{SeatIndex: 0, Amount: 95}},
		{Seq: next(), Kind: EventAllIn, Payload: ActionPayload{SeatIndex: 1, Amount: 90}},
		{Seq: next(), Kind: EventAdvanceRound, Payload: AdvanceRoundPayload{NewRound: RoundFlop, NextActor: -1, RevealedAll: true}},
		{Seq: next(), Kind: EventDealCommunity, Payload: DealCommunityPayload{Cards: []cards.Card{mustCard("7h"), mustCard("8c"), mustCard("9s")}, Burned: 1}},
		{Seq: next(), Kind: EventAdvanceRound, Payload: AdvanceRoundPayload{NewRound: RoundTurn, NextActor: -1, RevealedAll: true}},
		{Seq: next(), Kind: EventDealCommunity, Payload: DealCommunityPayload{Cards: []cards.Card{mustCard("2d")}, Burned: 1}},
		{Seq: next(), Kind: EventAdvanceRound, Payload: AdvanceRoundPayload{NewRound: RoundRiver, NextActor: -1, RevealedAll: true}},
		{Seq: next(), Kind: EventDealCommunity, Payload: DealCommunityPayload{Cards: []cards.Card{mustCard("3h")}, Burned: 1}},
		{Seq: next(), Kind: EventShowdown},
	}

	board := handOf("7h", "8c", "9s", "2d", "3h")
	seat0 := board
	seat0.Add(mustCard("As"))
	seat0.Add(mustCard("Ad"))
	seat1 := board
	seat1.Add(mustCard("Kc"))
	seat1.Add(mustCard("Kd"))
	scores := map[int]handrank.Score{
		0: handrank.Evaluate7(seat0),
		1: handrank.Evaluate7(seat1),
	}
	pots := potmgr.Compute([]potmgr.SeatBet{
		{Seat: 0, TotalBet: 100},
		{Seat: 1, TotalBet: 100},
	})
	results := potmgr.DistributeShowdown(pots, scores, 0, 2)

	awards := make([]PotAward, len(results))
	for i, r := range results {
		awards[i] = PotAward{
			Amount: r.Amount, Eligible: r.Eligible, Winners: r.Winners,
			RankLabel: r.RankLabel, Payouts: r.PayoutBySeat,
		}
	}
	events = append(events,
		Event{Seq: next(), Kind: EventAwardPot, Payload: AwardPotPayload{Pots: awards}},
		Event{Seq: next(), Kind: EventHandComplete, Payload: HandCompletePayload{Summary: "A wins with a pair of aces"}},
	)
	return events
}

func mustCard(s string) cards.Card {
	c, err := cards.ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

func TestHeadsUpAllInPreflopConservesChips(t *testing.T) {
	events := headsUpAllInEvents()
	state := Derive(events)

	total := 0
	for _, seat := range state.Seats {
		total += seat.Chips
	}
	assert.Equal(t, 200, total)
	assert.Equal(t, StatusComplete, state.Status)
}

func TestHeadsUpAllInPreflopPotAwardedToHigherPair(t *testing.T) {
	state := Derive(headsUpAllInEvents())
	assert.Equal(t, 200, state.Seats[0].Chips)
	assert.Equal(t, 0, state.Seats[1].Chips)
}

func TestReplayEquivalenceFromSnapshot(t *testing.T) {
	events := headsUpAllInEvents()
	full := Derive(events)

	mid := len(events) / 2
	snapshot := Derive(events[:mid])
	resumed := DeriveFrom(snapshot, events[mid:])

	assert.Equal(t, full.Seats[0].Chips, resumed.Seats[0].Chips)
	assert.Equal(t, full.Seats[1].Chips, resumed.Seats[1].Chips)
	assert.Equal(t, full.Status, resumed.Status)
	assert.Equal(t, full.Revision, resumed.Revision)
}

func TestDeriveIsDeterministic(t *testing.T) {
	events := headsUpAllInEvents()
	a := Derive(events)
	b := Derive(events)
	assert.Equal(t, a.Seats[0].Chips, b.Seats[0].Chips)
	assert.Equal(t, a.Pots(), b.Pots())
}

func TestApplyNeverMutatesInputState(t *testing.T) {
	events := headsUpAllInEvents()
	before := Derive(events[:5])
	beforeChips := before.Seats[0].Chips

	_ = Apply(before, events[5])
	assert.Equal(t, beforeChips, before.Seats[0].Chips)
}

// TestFoldToOne covers spec.md §8 scenario 4: three seats, preflop
// raise, two folds, hand ends immediately without reaching showdown.
func TestFoldToOne(t *testing.T) {
	var seq uint64
	next := func() uint64 { seq++; return seq }

	events := []Event{
		{Seq: next(), Kind: EventGameCreated, Payload: GameCreatedPayload{GameID: "g2", RoomCode: "ZZZZZZ", Config: cfg(), Seed: 7}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "a", Name: "A", Chips: 100}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "b", Name: "B", Chips: 100}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "c", Name: "C", Chips: 100}},
		{Seq: next(), Kind: EventHandStart, Payload: HandStartPayload{
			HandNumber: 1, DealerSeat: 0,
			HoleCards: map[int][]cards.Card{
				0: hole("2c", "7d"), 1: hole("Ah", "Kd"), 2: hole("9s", "9c"),
			},
			DeckSize: 46, FirstActor: 0,
		}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 1, Amount: 5}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 2, Amount: 10, IsBig: true}},
		{Seq: next(), Kind: EventRaise, Payload: ActionPayload{SeatIndex: 0, Amount: 30}}, // A (seat 0) raises to 30 total
		{Seq: next(), Kind: EventFold, Payload: ActionPayload{SeatIndex: 1}},
		{Seq: next(), Kind: EventFold, Payload: ActionPayload{SeatIndex: 2}},
	}

	state := Derive(events)
	require.Len(t, state.InHandSeats(), 1)
	assert.Equal(t, 0, state.InHandSeats()[0].Index)

	results := potmgr.DistributeFold(potmgr.Compute([]potmgr.SeatBet{
		{Seat: 0, TotalBet: 30},
		{Seat: 1, Folded: true, TotalBet: 5},
		{Seat: 2, Folded: true, TotalBet: 10},
	}), 0)
	// Bet levels 5, 10 and 30 give three pots, all won by seat 0.
	require.Len(t, results, 3)
	won := 0
	for _, r := range results {
		won += r.PayoutBySeat[0]
	}
	assert.Equal(t, 45, won)
}

func TestStateHasNoHoleCardsBeforeHandStart(t *testing.T) {
	state := Derive(headsUpAllInEvents()[:3]) // through the second join, before HandStart
	require.Len(t, state.Seats, 2)
	// The full table state always holds every seat's hole cards once
	// dealt; per-seat sanitization for other viewers is the dispatch
	// layer's job, not the engine's.
	assert.Empty(t, state.Seats[0].HoleCards)
}

func TestLegalActionsPreflopOpening(t *testing.T) {
	events := headsUpAllInEvents()[:6] // through blinds, before any action
	state := Derive(events)
	legal := Legal(state)
	assert.True(t, legal.CanCall)
	assert.True(t, legal.CanRaise)
	assert.True(t, legal.CanFold)
	assert.Equal(t, 5, legal.CallAmount)
	assert.False(t, legal.CanAdvance)
}

func TestLegalActionsCanAdvanceOnceActionFinished(t *testing.T) {
	events := headsUpAllInEvents()[:8] // through both all-ins, before the runout
	state := Derive(events)
	require.True(t, state.ActionFinished)
	legal := Legal(state)
	assert.True(t, legal.CanAdvance)
	assert.False(t, legal.CanCall)
	assert.False(t, legal.CanRaise)
}

// TestLegalActionsCanAdvanceBetweenStreetsWithoutAllIn covers spec.md
// §4.3's other CanAdvance trigger: the street closed with everyone
// still active (no all-in), so CurrentActor goes to -1 but
// ActionFinished stays false until Advance actually runs.
func TestLegalActionsCanAdvanceBetweenStreetsWithoutAllIn(t *testing.T) {
	var seq uint64
	next := func() uint64 { seq++; return seq }
	events := []Event{
		{Seq: next(), Kind: EventGameCreated, Payload: GameCreatedPayload{GameID: "g4", RoomCode: "BBBBBB", Config: cfg(), Seed: 3}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "a", Name: "A", Chips: 100}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "b", Name: "B", Chips: 100}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "c", Name: "C", Chips: 100}},
		{Seq: next(), Kind: EventHandStart, Payload: HandStartPayload{
			HandNumber: 1, DealerSeat: 0,
			HoleCards: map[int][]cards.Card{
				0: hole("2c", "7d"), 1: hole("Ah", "Kd"), 2: hole("9s", "9c"),
			},
			DeckSize: 46, FirstActor: 0,
		}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 1, Amount: 5}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 2, Amount: 10, IsBig: true}},
		{Seq: next(), Kind: EventRaise, Payload: ActionPayload{SeatIndex: 0, Amount: 30}},
		{Seq: next(), Kind: EventCall, Payload: ActionPayload{SeatIndex: 1, Amount: 25}},
		{Seq: next(), Kind: EventCall, Payload: ActionPayload{SeatIndex: 2, Amount: 20}},
	}

	state := Derive(events)
	assert.False(t, state.ActionFinished)
	assert.Equal(t, -1, state.CurrentActor)

	legal := Legal(state)
	assert.True(t, legal.CanAdvance)
}

func TestShortAllInRaiseDoesNotReopenAction(t *testing.T) {
	var seq uint64
	next := func() uint64 { seq++; return seq }
	events := []Event{
		{Seq: next(), Kind: EventGameCreated, Payload: GameCreatedPayload{GameID: "g3", RoomCode: "AAAAAA", Config: cfg(), Seed: 1}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "a", Name: "A", Chips: 100}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "b", Name: "B", Chips: 12}},
		{Seq: next(), Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{SeatID: "c", Name: "C", Chips: 100}},
		{Seq: next(), Kind: EventHandStart, Payload: HandStartPayload{
			HandNumber: 1, DealerSeat: 0,
			HoleCards: map[int][]cards.Card{
				0: hole("2c", "7d"), 1: hole("Ah", "Kd"), 2: hole("9s", "9c"),
			},
			DeckSize: 46, FirstActor: 0,
		}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 1, Amount: 5}},
		{Seq: next(), Kind: EventPostBlind, Payload: PostBlindPayload{SeatIndex: 2, Amount: 10, IsBig: true}},
		// seat 0 calls the big blind and fully acts (matches 10)
		{Seq: next(), Kind: EventCall, Payload: ActionPayload{SeatIndex: 0, Amount: 10}},
		// seat 1 (B, 12 chips, already posted 5) shoves for 7 more: total bet 12, a short raise over 10
		{Seq: next(), Kind: EventAllIn, Payload: ActionPayload{SeatIndex: 1, Amount: 7}},
	}
	state := Derive(events)

	// seat 2 (the big blind) already matched 10 before the short all-in
	// raised it to 12; they must act again but cannot re-raise.
	req := Validate(state, 2, ActionRequest{Kind: ActionRaise, Amount: 50})
	assert.Error(t, req)
	assert.NoError(t, Validate(state, 2, ActionRequest{Kind: ActionCall}))
}
