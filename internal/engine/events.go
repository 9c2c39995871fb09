package engine

import "github.com/lox/holdem-engine/internal/cards"

// EventKind is the closed vocabulary of domain events (spec.md §4.5).
type EventKind string

const (
	EventGameCreated    EventKind = "GameCreated"
	EventPlayerJoined   EventKind = "PlayerJoined"
	EventHandStart      EventKind = "HandStart"
	EventPostBlind      EventKind = "PostBlind"
	EventCheck          EventKind = "Check"
	EventCall           EventKind = "Call"
	EventBet            EventKind = "Bet"
	EventRaise          EventKind = "Raise"
	EventFold           EventKind = "Fold"
	EventAllIn          EventKind = "AllIn"
	EventDealCommunity  EventKind = "DealCommunity"
	EventAdvanceRound   EventKind = "AdvanceRound"
	EventShowdown       EventKind = "Showdown"
	EventAwardPot       EventKind = "AwardPot"
	EventHandComplete   EventKind = "HandComplete"
	EventRevealCards    EventKind = "RevealCards"
)

// Event is one entry in a game's append-only log. Payload holds one
// of the *Payload types below, matched to Kind; apply.go type-asserts
// it at the boundary rather than relying on runtime introspection.
type Event struct {
	Seq     uint64
	HandNo  int
	Kind    EventKind
	Seat    *int
	Payload any
}

// GameCreatedPayload seeds Derive's zero state.
type GameCreatedPayload struct {
	GameID   string
	RoomCode string
	Config   GameConfig
	Seed     int64
}

// PlayerJoinedPayload seats a new player in a waiting game.
type PlayerJoinedPayload struct {
	SeatID string
	Name   string
	Chips  int
}

// HandStartPayload begins a hand with already-decided randomness: the
// shuffled deck's hole cards are baked in so Apply needs no RNG.
// FirstActor is the seat preflop action opens on, once blinds post;
// the orchestrator derives it from dealer position and seat count
// rather than Apply guessing at table topology.
type HandStartPayload struct {
	HandNumber int
	DealerSeat int
	HoleCards  map[int][]cards.Card // seat index -> 2 hole cards
	DeckSize   int                  // cards remaining in the shoe after dealing hole cards
	FirstActor int
}

// PostBlindPayload posts one seat's blind.
type PostBlindPayload struct {
	SeatIndex int
	Amount    int
	IsBig     bool
}

// ActionPayload covers Check/Call/Bet/Raise/Fold/AllIn. Amount is the
// incremental chips the seat commits with this action (0 for
// Check/Fold); Apply adds it to the seat's existing CurrentBet rather
// than taking a new total, so a Raise's Amount is the raise-to target
// minus the seat's current bet. Forced marks a Fold made on a seat's
// behalf rather than submitted by the player; no orchestrator command
// sets it.
type ActionPayload struct {
	SeatIndex int
	Amount    int
	Forced    bool
}

// DealCommunityPayload appends newly dealt community cards. Burned
// counts cards discarded face-down ahead of the deal so DeckRemaining
// stays accurate even though burns never appear in Cards.
type DealCommunityPayload struct {
	Cards  []cards.Card
	Burned int
}

// AdvanceRoundPayload transitions the street and resets per-street
// betting bookkeeping.
type AdvanceRoundPayload struct {
	NewRound     Round
	NextActor    int // -1 if none (action finished)
	RevealedAll  bool
}

// ShowdownPayload marks the hand entering showdown; it carries no data.
type ShowdownPayload struct{}

// PotAward is one pot's final resolution.
type PotAward struct {
	Amount    int
	Eligible  []int
	Winners   []int
	RankLabel string
	Payouts   map[int]int
}

// AwardPotPayload records the showdown/fold distribution.
type AwardPotPayload struct {
	Pots []PotAward
}

// HandCompletePayload closes out the hand.
type HandCompletePayload struct {
	Summary string
}

// RevealCardsPayload forces ShowCards true for the given seats.
type RevealCardsPayload struct {
	Seats []int
}
