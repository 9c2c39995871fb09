// Package wire defines the JSON shapes exchanged over the transport
// (spec.md §6.1–§6.3) and the sanitization that turns an engine.State
// into a table or per-seat player projection. Field names follow the
// teacher's internal/protocol message catalog where they map onto the
// spec's wire shape; tags switch from msgpack to JSON per spec.md §6.1.
package wire

import "github.com/lox/holdem-engine/internal/engine"

// CreateGameRequest configures a fresh game, per spec.md §6.1
// CreateGame(config).
type CreateGameRequest struct {
	SmallBlind    int    `json:"smallBlind"`
	BigBlind      int    `json:"bigBlind"`
	StartingChips int    `json:"startingChips"`
	Seed          *int64 `json:"seed,omitempty"`
}

// CreateGameResponse is CreateGame's result.
type CreateGameResponse struct {
	GameID   string `json:"gameId"`
	RoomCode string `json:"roomCode"`
}

// JoinGameRequest is a room-scoped credential presented to either
// JoinGame (first time) or AuthGame (returning player), per spec.md
// §6.1/§6.2.
type JoinGameRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// JoinGameResponse carries the seated player's seat index and the
// bearer token authenticating their subsequent commands.
type JoinGameResponse struct {
	SeatID    int    `json:"seatId"`
	AuthToken string `json:"authToken"`
}

// CommandEnvelope is one inbound message on the command/stream
// connection: Type selects which spec.md §6.1 command runs, Action
// carries SubmitAction's payload.
type CommandEnvelope struct {
	Type   string               `json:"type"` // start_hand|submit_action|reveal_card|advance|next_hand|legal_actions
	Action *SubmitActionRequest `json:"action,omitempty"`
}

// ServerEnvelope is one outbound message on the stream connection.
// At most one of State/Legal/Error is set (none for hello and
// subscribed), per spec.md §6.1's Hello, Subscribed, GameState, Error
// message catalog.
type ServerEnvelope struct {
	Type  string         `json:"type"` // hello|subscribed|game_state|legal_actions|error
	State *GameState     `json:"state,omitempty"`
	Legal *ActionRequest `json:"legal,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// SeatView is one seat's projected state. HoleCards is nil unless the
// viewer is entitled to see them. Field names match spec.md §6.3's
// player-entry list exactly (wire compatibility, not Go convention).
type SeatView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Position     int      `json:"position"`
	Chips        int      `json:"chips"`
	CurrentBet   int      `json:"currentBet"`
	TotalBet     int      `json:"totalBet"`
	Status       string   `json:"status"`
	LastAction   *string  `json:"lastAction,omitempty"`
	HoleCards    []string `json:"holeCards,omitempty"`
	ShowCards    bool     `json:"showCards,omitempty"`
	IsDealer     bool     `json:"isDealer,omitempty"`
	IsSmallBlind bool     `json:"isSmallBlind,omitempty"`
	IsBigBlind   bool     `json:"isBigBlind,omitempty"`
}

// PotView mirrors engine.PotView for the wire.
type PotView struct {
	Amount    int    `json:"amount"`
	Eligible  []int  `json:"eligible"`
	Winners   []int  `json:"winners,omitempty"`
	RankLabel string `json:"winningRankLabel,omitempty"`
}

// GameState is the full projection sent to a subscriber: either the
// table view (ViewerSeat nil) or one seat's player view. Top-level
// field names match spec.md §6.3's "exact compatibility-critical set"
// verbatim, including its one snake_case holdout (action_finished).
type GameState struct {
	ID                    string     `json:"id"`
	RoomCode              string     `json:"roomCode"`
	Status                string     `json:"status"`
	CurrentRound          string     `json:"currentRound"`
	Pot                   int        `json:"pot"`
	Pots                  []PotView  `json:"pots"`
	CurrentBet            int        `json:"currentBet"`
	CurrentPlayerPosition *int       `json:"currentPlayerPosition"`
	HandNumber            int        `json:"handNumber"`
	CommunityCards        []string   `json:"communityCards"`
	Winners               []int      `json:"winners"`
	DealerPosition        int        `json:"dealerPosition"`
	ActionFinished        bool       `json:"action_finished"`
	Players               []SeatView `json:"players"`

	Revision   uint64 `json:"revision"`
	ViewerSeat *int   `json:"viewerSeat,omitempty"`
}

// ActionRequest prompts a seat to act, with the legal bounds computed
// by engine.Legal.
type ActionRequest struct {
	Seat       int  `json:"seat"`
	CanCheck   bool `json:"canCheck"`
	CanCall    bool `json:"canCall"`
	CanBet     bool `json:"canBet"`
	CanRaise   bool `json:"canRaise"`
	CanFold    bool `json:"canFold"`
	CanAllIn   bool `json:"canAllIn"`
	CanAdvance bool `json:"canAdvance"`
	CallAmount int  `json:"callAmount,omitempty"`
	MinBet     int  `json:"minBet,omitempty"`
	MinRaiseTo int  `json:"minRaiseTo,omitempty"`
	MaxRaiseTo int  `json:"maxRaiseTo,omitempty"`
}

// SubmitActionRequest is a player's submitted decision.
type SubmitActionRequest struct {
	Kind   string `json:"kind"` // fold|check|call|bet|raise|all_in
	Amount int    `json:"amount,omitempty"`
}

// ErrorResponse reports a rejected command, keyed by errkind.Kind.
type ErrorResponse struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// ToSeatView projects one seat, applying visibility rules: hole cards
// show only to the viewing seat itself, or to anyone once the seat has
// shown (showdown or an explicit reveal).
func ToSeatView(seat *engine.Seat, viewerSeat *int) SeatView {
	view := SeatView{
		ID:         seat.ID,
		Name:       seat.Name,
		Position:   seat.Index,
		Chips:      seat.Chips,
		CurrentBet: seat.CurrentBet,
		TotalBet:   seat.TotalBet,
		Status:     string(seat.Status),
		ShowCards:  seat.ShowCards,
	}
	if seat.LastAction != nil {
		s := string(*seat.LastAction)
		view.LastAction = &s
	}

	visible := seat.ShowCards || (viewerSeat != nil && *viewerSeat == seat.Index)
	if visible {
		for _, c := range seat.HoleCards {
			view.HoleCards = append(view.HoleCards, c.String())
		}
	}
	return view
}

// ToGameState projects state for viewerSeat (nil for the table view).
func ToGameState(state *engine.State, viewerSeat *int) GameState {
	out := GameState{
		ID:             state.GameID,
		RoomCode:       state.RoomCode,
		Status:         string(state.Status),
		CurrentRound:   string(state.Round),
		Pot:            state.PotTotal(),
		CurrentBet:     state.CurrentBet,
		HandNumber:     state.HandNumber,
		DealerPosition: state.DealerSeat,
		ActionFinished: state.ActionFinished,
		Revision:       state.Revision,
		ViewerSeat:     viewerSeat,
	}
	if state.CurrentActor >= 0 {
		pos := state.CurrentActor
		out.CurrentPlayerPosition = &pos
	}
	for _, c := range state.Community {
		out.CommunityCards = append(out.CommunityCards, c.String())
	}

	winnerSeen := make(map[int]bool)
	for _, p := range state.Pots() {
		out.Pots = append(out.Pots, PotView{
			Amount: p.Amount, Eligible: p.Eligible, Winners: p.Winners, RankLabel: p.RankLabel,
		})
		for _, w := range p.Winners {
			if !winnerSeen[w] {
				winnerSeen[w] = true
				out.Winners = append(out.Winners, w)
			}
		}
	}

	for _, seat := range state.Seats {
		view := ToSeatView(seat, viewerSeat)
		view.IsDealer = seat.Index == state.DealerSeat
		view.IsSmallBlind = seat.Index == state.SBSeat
		view.IsBigBlind = seat.Index == state.BBSeat
		out.Players = append(out.Players, view)
	}
	return out
}

// ToActionRequest converts engine.Legal's bounds into the wire prompt
// for the acting seat.
func ToActionRequest(legal engine.LegalActions) ActionRequest {
	return ActionRequest{
		Seat:       legal.Seat,
		CanCheck:   legal.CanCheck,
		CanCall:    legal.CanCall,
		CanBet:     legal.CanBet,
		CanRaise:   legal.CanRaise,
		CanFold:    legal.CanFold,
		CanAllIn:   legal.CanAllIn,
		CanAdvance: legal.CanAdvance,
		CallAmount: legal.CallAmount,
		MinBet:     legal.MinBet,
		MinRaiseTo: legal.MinRaiseTo,
		MaxRaiseTo: legal.MaxRaiseTo,
	}
}
