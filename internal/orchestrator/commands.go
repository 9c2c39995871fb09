package orchestrator

import (
	"context"
	"fmt"

	"github.com/lox/holdem-engine/internal/cards"
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/handrank"
	"github.com/lox/holdem-engine/internal/potmgr"
)

// burn/deal counts per street, per spec.md §4.4.3: one burn card
// ahead of each deal, 3 on the flop and 1 apiece on the turn and
// river (4/2/2 total), never the 5/3/3 some source variants used.
const (
	flopBurn, flopDeal   = 1, 3
	turnBurn, turnDeal   = 1, 1
	riverBurn, riverDeal = 1, 1
)

// JoinGame seats a player who has already authenticated at the
// transport layer (spec.md §6.2 handles credentials; this just
// records the seat once a playerID is established).
func (g *Game) JoinGame(ctx context.Context, playerID, name string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Status != engine.StatusWaiting {
		return -1, errkind.New(errkind.InvalidState, "game already has a hand in progress")
	}
	if nameTaken(g.state, name) {
		return -1, errkind.Newf(errkind.Conflict, "seat name %q already taken", name)
	}

	event := g.nextEvent(engine.EventPlayerJoined, engine.PlayerJoinedPayload{
		SeatID: playerID, Name: name, Chips: g.state.Config.StartingChips,
	})
	if err := g.commit(ctx, []engine.Event{event}); err != nil {
		return -1, err
	}

	idx, _ := seatIndexOf(g.state, playerID)
	return idx, nil
}

// StartHand deals a new hand: it shuffles a fresh shoe from the
// game's persistent RNG, deals hole cards to every seat still holding
// chips, rotates the dealer, and posts blinds.
func (g *Game) StartHand(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Status != engine.StatusWaiting {
		return errkind.New(errkind.InvalidState, "hand already in progress")
	}
	eligible := g.state.SeatsWithChips()
	if len(eligible) < 2 {
		return errkind.New(errkind.InvalidState, "need at least two seats with chips")
	}

	prevDealer := -1
	if g.state.HandNumber > 0 {
		prevDealer = g.state.DealerSeat
	}
	dealerSeat := rotateDealer(g.state.Seats, prevDealer)

	g.deck = cards.NewDeck(g.rng)
	hole := make(map[int][]cards.Card, len(eligible))
	for _, seat := range g.state.Seats {
		if seat.Chips > 0 {
			hole[seat.Index] = g.deck.Deal(2)
		}
	}

	sb, bb := assignBlinds(g.state.Seats, dealerSeat)
	firstActor := firstActorPreflop(g.state.Seats, bb)

	handStart := g.nextEvent(engine.EventHandStart, engine.HandStartPayload{
		HandNumber: g.state.HandNumber + 1,
		DealerSeat: dealerSeat,
		HoleCards:  hole,
		DeckSize:   g.deck.Remaining(),
		FirstActor: firstActor,
	})
	// HandStart must be folded in before PostBlind amounts are computed,
	// since the blind amount is capped by each seat's own chip stack.
	preBlind := engine.Apply(g.state, handStart)

	sbAmount := preBlind.Config.SmallBlind
	if sbSeat := preBlind.SeatByIndex(sb); sbSeat != nil && sbAmount > sbSeat.Chips {
		sbAmount = sbSeat.Chips
	}
	postSB := g.nextEventAfter(handStart, engine.EventPostBlind, engine.PostBlindPayload{
		SeatIndex: sb, Amount: sbAmount, IsBig: false,
	})
	afterSB := engine.Apply(preBlind, postSB)

	bbAmount := afterSB.Config.BigBlind
	if bbSeat := afterSB.SeatByIndex(bb); bbSeat != nil && bbAmount > bbSeat.Chips {
		bbAmount = bbSeat.Chips
	}
	postBB := g.nextEventAfter(postSB, engine.EventPostBlind, engine.PostBlindPayload{
		SeatIndex: bb, Amount: bbAmount, IsBig: true,
	})

	return g.commit(ctx, []engine.Event{handStart, postSB, postBB})
}

// Act validates and applies a player's action. When it leaves only
// one seat still contesting the pot, the hand is won by fold and the
// orchestrator completes it in the same command: there is nothing
// left to advance toward, so no separate Advance call is needed.
func (g *Game) Act(ctx context.Context, seatIdx int, req engine.ActionRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	kind, payload, err := engine.ResolveAction(g.state, seatIdx, req)
	if err != nil {
		return err
	}

	actionEvent := g.nextEvent(kind, payload)
	cur := engine.Apply(g.state, actionEvent)
	events := []engine.Event{actionEvent}

	if inHand := cur.InHandSeats(); len(inHand) == 1 {
		foldEvents, err := g.buildFoldCompletionEvents(cur, inHand[0])
		if err != nil {
			return err
		}
		events = append(events, foldEvents...)
	}

	return g.commit(ctx, events)
}

// Advance deals the next street, looping through consecutive streets
// (and on to showdown) without waiting for another command whenever
// every remaining seat but one is already all-in, since there is no
// one left who could still respond to a bet.
func (g *Game) Advance(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Status != engine.StatusInProgress || g.state.CurrentActor != -1 || g.state.Round == engine.RoundShowdown {
		return errkind.New(errkind.InvalidState, "no street to advance")
	}

	events, err := g.buildAdvanceSequence(g.state)
	if err != nil {
		return err
	}
	return g.commit(ctx, events)
}

// RevealCard lets the sole remaining chip holder in a heads-up all-in
// turn both in-hand seats' cards face up before the runout completes.
// If no seat is left to act afterwards, it also advances the street
// exactly as Advance would.
func (g *Game) RevealCard(ctx context.Context, seatIdx int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state.Round {
	case engine.RoundFlop, engine.RoundTurn, engine.RoundRiver:
	default:
		return errkind.New(errkind.InvalidState, "reveal only applies post-flop")
	}
	inHand := g.state.InHandSeats()
	if len(inHand) != 2 {
		return errkind.New(errkind.InvalidState, "reveal only applies heads-up")
	}
	seat := g.state.SeatByIndex(seatIdx)
	if seat == nil || seat.Chips == 0 || seat.Status != engine.SeatActive {
		return errkind.New(errkind.Forbidden, "only the remaining chip holder may reveal")
	}
	other := inHand[0]
	if other.Index == seatIdx {
		other = inHand[1]
	}
	if other.Status != engine.SeatAllIn {
		return errkind.New(errkind.InvalidState, "opponent is not all-in")
	}

	reveal := g.nextEvent(engine.EventRevealCards, engine.RevealCardsPayload{
		Seats: []int{inHand[0].Index, inHand[1].Index},
	})
	cur := engine.Apply(g.state, reveal)
	events := []engine.Event{reveal}

	if cur.CurrentActor == -1 && cur.Round != engine.RoundShowdown {
		rest, err := g.buildAdvanceSequence(cur)
		if err != nil {
			return err
		}
		events = append(events, rest...)
	}

	return g.commit(ctx, events)
}

// NextHand starts a fresh hand once the prior one reached
// HandComplete, provided at least two seats still hold chips.
func (g *Game) NextHand(ctx context.Context) error {
	return g.StartHand(ctx)
}

// nextEventAfter stamps an event as following prior in the same
// command, so a multi-event batch gets consecutive sequence numbers
// before any of it is committed.
func (g *Game) nextEventAfter(prior engine.Event, kind engine.EventKind, payload any) engine.Event {
	return engine.Event{Seq: prior.Seq + 1, HandNo: prior.HandNo, Kind: kind, Payload: payload}
}

// buildFoldCompletionEvents awards the pot to the lone remaining seat
// without reaching showdown (spec.md §8 scenario 4).
func (g *Game) buildFoldCompletionEvents(cur *engine.State, winner *engine.Seat) ([]engine.Event, error) {
	pots := livePotsFrom(cur)
	results := potmgr.DistributeFold(pots, winner.Index)

	if err := validateChipConservation(cur, pots); err != nil {
		return nil, err
	}

	award := g.nextEventForHand(cur, engine.EventAwardPot, engine.AwardPotPayload{Pots: toPotAwards(results)})
	complete := g.nextEventAfter(award, engine.EventHandComplete, engine.HandCompletePayload{
		Summary: fmt.Sprintf("%s wins, everyone else folded", winner.Name),
	})
	return []engine.Event{award, complete}, nil
}

// buildAdvanceSequence deals successive streets, and on to showdown,
// until either a seat is left with a live decision or the hand ends.
func (g *Game) buildAdvanceSequence(state *engine.State) ([]engine.Event, error) {
	var events []engine.Event
	cur := state

	for {
		if cur.Round == engine.RoundRiver {
			showdown, err := g.buildShowdownEvents(cur)
			if err != nil {
				return nil, err
			}
			return append(events, showdown...), nil
		}

		streetEvents, err := g.buildStreetEvents(cur)
		if err != nil {
			return nil, err
		}
		events = append(events, streetEvents...)
		for _, ev := range streetEvents {
			cur = engine.Apply(cur, ev)
		}
		if cur.CurrentActor != -1 {
			return events, nil
		}
	}
}

// buildStreetEvents deals the next street from cur, which always
// reflects everything queued so far this command, so Seq can simply
// continue from cur.LastSeq.
func (g *Game) buildStreetEvents(cur *engine.State) ([]engine.Event, error) {
	var newRound engine.Round
	var burn, deal int
	switch cur.Round {
	case engine.RoundPreflop:
		newRound, burn, deal = engine.RoundFlop, flopBurn, flopDeal
	case engine.RoundFlop:
		newRound, burn, deal = engine.RoundTurn, turnBurn, turnDeal
	case engine.RoundTurn:
		newRound, burn, deal = engine.RoundRiver, riverBurn, riverDeal
	default:
		return nil, errkind.New(errkind.InvalidState, "no further street to deal")
	}

	if g.deck.Remaining() < burn+deal {
		return nil, errkind.New(errkind.Internal, "deck exhausted before river")
	}
	g.deck.Deal(burn)
	dealt := g.deck.Deal(deal)

	dealEvent := g.nextEventForHand(cur, engine.EventDealCommunity, engine.DealCommunityPayload{
		Cards: dealt, Burned: burn,
	})

	revealedAll := len(cur.ActiveSeats()) <= 1
	nextActor := -1
	if !revealedAll {
		nextActor = engine.NextActingSeat(cur, cur.DealerSeat+1)
	}
	advanceEvent := g.nextEventAfter(dealEvent, engine.EventAdvanceRound, engine.AdvanceRoundPayload{
		NewRound: newRound, NextActor: nextActor, RevealedAll: revealedAll,
	})

	return []engine.Event{dealEvent, advanceEvent}, nil
}

func (g *Game) buildShowdownEvents(cur *engine.State) ([]engine.Event, error) {
	inHand := cur.InHandSeats()
	scores := make(map[int]handrank.Score, len(inHand))
	for _, seat := range inHand {
		hand := cards.NewHand(append(append([]cards.Card(nil), seat.HoleCards...), cur.Community...)...)
		scores[seat.Index] = handrank.Evaluate7(hand)
	}

	pots := livePotsFrom(cur)
	if err := validateChipConservation(cur, pots); err != nil {
		return nil, err
	}
	results := potmgr.DistributeShowdown(pots, scores, cur.DealerSeat, len(cur.Seats))

	showdown := g.nextEventForHand(cur, engine.EventShowdown, engine.ShowdownPayload{})
	afterShowdown := engine.Apply(cur, showdown)

	award := g.nextEventAfter(showdown, engine.EventAwardPot, engine.AwardPotPayload{Pots: toPotAwards(results)})
	complete := g.nextEventAfter(award, engine.EventHandComplete, engine.HandCompletePayload{
		Summary: summarizeShowdown(afterShowdown, results),
	})

	return []engine.Event{showdown, award, complete}, nil
}

// nextEventForHand stamps the first event of a not-yet-applied batch;
// cur always reflects everything queued so far this command, so
// cur.LastSeq+1 is the correct next sequence number.
func (g *Game) nextEventForHand(cur *engine.State, kind engine.EventKind, payload any) engine.Event {
	return engine.Event{Seq: cur.LastSeq + 1, HandNo: cur.HandNumber, Kind: kind, Payload: payload}
}

func livePotsFrom(cur *engine.State) []potmgr.Pot {
	bets := make([]potmgr.SeatBet, len(cur.Seats))
	for i, seat := range cur.Seats {
		bets[i] = potmgr.SeatBet{Seat: seat.Index, Folded: seat.Status == engine.SeatFolded, TotalBet: seat.TotalBet}
	}
	return potmgr.Compute(bets)
}

func toPotAwards(results []potmgr.PotResult) []engine.PotAward {
	awards := make([]engine.PotAward, len(results))
	for i, r := range results {
		awards[i] = engine.PotAward{
			Amount:    r.Amount,
			Eligible:  r.Eligible,
			Winners:   r.Winners,
			RankLabel: r.RankLabel,
			Payouts:   r.PayoutBySeat,
		}
	}
	return awards
}

func summarizeShowdown(state *engine.State, results []potmgr.PotResult) string {
	if len(results) == 0 || len(results[0].Winners) == 0 {
		return "hand complete"
	}
	main := results[0]
	names := make([]string, len(main.Winners))
	for i, seatIdx := range main.Winners {
		if seat := state.SeatByIndex(seatIdx); seat != nil {
			names[i] = seat.Name
		}
	}
	if len(names) == 1 {
		return fmt.Sprintf("%s wins with %s", names[0], main.RankLabel)
	}
	return fmt.Sprintf("split pot: %v tie with %s", names, main.RankLabel)
}
