package engine

import "github.com/lox/holdem-engine/internal/cards"

// Apply is the pure reducer: given a state and one event, it returns
// the resulting state without mutating its argument. It performs no
// I/O and consults no randomness; every value an event needs (dealt
// cards, computed seat indices) already sits in its payload.
func Apply(state *State, event Event) *State {
	next := state.clone()
	next.LastSeq = event.Seq
	next.Revision++

	actingSeat := -1 // set only by action-kind events, below

	switch event.Kind {
	case EventGameCreated:
		applyGameCreated(next, event.Payload.(GameCreatedPayload))
	case EventPlayerJoined:
		applyPlayerJoined(next, event.Payload.(PlayerJoinedPayload))
	case EventHandStart:
		applyHandStart(next, event.Payload.(HandStartPayload))
	case EventPostBlind:
		applyPostBlind(next, event.Payload.(PostBlindPayload))
	case EventCheck:
		p := event.Payload.(ActionPayload)
		applyCheck(next, p)
		actingSeat = p.SeatIndex
	case EventCall:
		p := event.Payload.(ActionPayload)
		applyCall(next, p)
		actingSeat = p.SeatIndex
	case EventBet:
		p := event.Payload.(ActionPayload)
		applyBet(next, p)
		actingSeat = p.SeatIndex
	case EventRaise:
		p := event.Payload.(ActionPayload)
		applyRaise(next, p)
		actingSeat = p.SeatIndex
	case EventFold:
		p := event.Payload.(ActionPayload)
		applyFold(next, p)
		actingSeat = p.SeatIndex
	case EventAllIn:
		p := event.Payload.(ActionPayload)
		applyAllIn(next, p)
		actingSeat = p.SeatIndex
	case EventDealCommunity:
		applyDealCommunity(next, event.Payload.(DealCommunityPayload))
	case EventAdvanceRound:
		applyAdvanceRound(next, event.Payload.(AdvanceRoundPayload))
	case EventShowdown:
		applyShowdown(next)
	case EventAwardPot:
		applyAwardPot(next, event.Payload.(AwardPotPayload))
	case EventHandComplete:
		applyHandComplete(next, event.Payload.(HandCompletePayload))
	case EventRevealCards:
		applyRevealCards(next, event.Payload.(RevealCardsPayload))
	}

	next.ActionFinished = computeActionFinished(next)

	// CurrentActor advances deterministically from the resulting state
	// after any player action; HandStart/AdvanceRound set it directly
	// from their payload instead, since they also pick the street.
	if actingSeat >= 0 {
		if isStreetComplete(next) {
			next.CurrentActor = -1
		} else {
			next.CurrentActor = NextActingSeat(next, actingSeat+1)
		}
	}
	return next
}

func applyGameCreated(s *State, p GameCreatedPayload) {
	s.GameID = p.GameID
	s.RoomCode = p.RoomCode
	s.Config = p.Config
	s.Seed = p.Seed
	s.Status = StatusWaiting
	s.Round = RoundWaiting
	s.DealerSeat = 0
	s.CurrentActor = -1
	s.SBSeat = -1
	s.BBSeat = -1
	s.Seats = nil
}

func applyPlayerJoined(s *State, p PlayerJoinedPayload) {
	s.Seats = append(s.Seats, &Seat{
		ID:     p.SeatID,
		Name:   p.Name,
		Index:  len(s.Seats),
		Chips:  p.Chips,
		Status: SeatSittingOut,
	})
}

func applyHandStart(s *State, p HandStartPayload) {
	s.HandNumber = p.HandNumber
	s.DealerSeat = p.DealerSeat
	s.Round = RoundPreflop
	s.Status = StatusInProgress
	s.Community = nil
	s.DeckRemaining = p.DeckSize
	s.CurrentBet = 0
	s.LastRaise = s.Config.BigBlind
	s.cappedSeats = nil
	s.awardedPots = nil
	s.CurrentActor = p.FirstActor
	s.SBSeat = -1
	s.BBSeat = -1

	for _, seat := range s.Seats {
		seat.CurrentBet = 0
		seat.TotalBet = 0
		seat.LastAction = nil
		seat.ShowCards = false
		if seat.Chips > 0 {
			seat.Status = SeatActive
			seat.HoleCards = append([]cards.Card(nil), p.HoleCards[seat.Index]...)
		} else {
			seat.Status = SeatOut
			seat.HoleCards = nil
		}
	}
}

func applyPostBlind(s *State, p PostBlindPayload) {
	seat := s.Seats[p.SeatIndex]
	amount := p.Amount
	if amount > seat.Chips {
		amount = seat.Chips
	}
	seat.Chips -= amount
	seat.CurrentBet += amount
	seat.TotalBet += amount
	if seat.Chips == 0 {
		seat.Status = SeatAllIn
	}
	if p.IsBig {
		s.CurrentBet = seat.CurrentBet
		s.LastRaise = s.Config.BigBlind
		s.BBSeat = p.SeatIndex
	} else {
		s.SBSeat = p.SeatIndex
	}
}

func applyCheck(s *State, p ActionPayload) {
	seat := s.Seats[p.SeatIndex]
	setLastAction(seat, ActionCheck)
}

func applyCall(s *State, p ActionPayload) {
	seat := s.Seats[p.SeatIndex]
	commitChips(seat, p.Amount)
	setLastAction(seat, ActionCall)
}

func applyBet(s *State, p ActionPayload) {
	seat := s.Seats[p.SeatIndex]
	commitChips(seat, p.Amount)
	s.CurrentBet = seat.CurrentBet
	s.LastRaise = seat.CurrentBet
	s.cappedSeats = nil
	setLastAction(seat, ActionBet)
}

func applyRaise(s *State, p ActionPayload) {
	seat := s.Seats[p.SeatIndex]
	priorBet := s.CurrentBet
	commitChips(seat, p.Amount)

	raiseSize := seat.CurrentBet - priorBet
	isFullRaise := raiseSize >= s.LastRaise

	if isFullRaise {
		s.LastRaise = raiseSize
		s.cappedSeats = nil
	} else {
		// Short all-in raise: seats that had already matched the prior
		// bet level keep their LastAction but lose the raise option.
		if s.cappedSeats == nil {
			s.cappedSeats = make(map[int]bool)
		}
		for _, other := range s.Seats {
			if other.Index == seat.Index {
				continue
			}
			if (other.Status == SeatActive || other.Status == SeatAllIn) && other.CurrentBet == priorBet {
				s.cappedSeats[other.Index] = true
			}
		}
	}
	s.CurrentBet = seat.CurrentBet
	setLastAction(seat, ActionRaise)
}

func applyFold(s *State, p ActionPayload) {
	seat := s.Seats[p.SeatIndex]
	seat.Status = SeatFolded
	setLastAction(seat, ActionFold)
}

func applyAllIn(s *State, p ActionPayload) {
	seat := s.Seats[p.SeatIndex]
	priorBet := s.CurrentBet
	commitChips(seat, p.Amount)
	seat.Status = SeatAllIn

	raiseSize := seat.CurrentBet - priorBet
	if seat.CurrentBet > priorBet {
		isFullRaise := raiseSize >= s.LastRaise
		if isFullRaise {
			s.LastRaise = raiseSize
			s.cappedSeats = nil
		} else {
			if s.cappedSeats == nil {
				s.cappedSeats = make(map[int]bool)
			}
			for _, other := range s.Seats {
				if other.Index == seat.Index {
					continue
				}
				if (other.Status == SeatActive || other.Status == SeatAllIn) && other.CurrentBet == priorBet {
					s.cappedSeats[other.Index] = true
				}
			}
		}
		s.CurrentBet = seat.CurrentBet
	}
	setLastAction(seat, ActionAllIn)
}

func applyDealCommunity(s *State, p DealCommunityPayload) {
	s.Community = append(s.Community, p.Cards...)
	s.DeckRemaining -= len(p.Cards) + p.Burned
}

func applyAdvanceRound(s *State, p AdvanceRoundPayload) {
	s.Round = p.NewRound
	s.CurrentBet = 0
	s.LastRaise = s.Config.BigBlind
	s.cappedSeats = nil
	s.CurrentActor = p.NextActor

	for _, seat := range s.Seats {
		if seat.Status != SeatActive && seat.Status != SeatAllIn {
			continue
		}
		seat.CurrentBet = 0
		seat.LastAction = nil
		if p.RevealedAll {
			seat.ShowCards = true
		}
	}
}

func applyShowdown(s *State) {
	s.Round = RoundShowdown
	s.CurrentActor = -1
	for _, seat := range s.Seats {
		if seat.Status == SeatActive || seat.Status == SeatAllIn {
			seat.ShowCards = true
		}
	}
}

func applyAwardPot(s *State, p AwardPotPayload) {
	views := make([]PotView, len(p.Pots))
	for i, award := range p.Pots {
		views[i] = PotView{
			Amount:    award.Amount,
			Eligible:  award.Eligible,
			Winners:   award.Winners,
			RankLabel: award.RankLabel,
		}
		for seatIdx, amount := range award.Payouts {
			s.Seats[seatIdx].Chips += amount
		}
	}
	s.awardedPots = views
}

func applyHandComplete(s *State, _ HandCompletePayload) {
	if len(s.SeatsWithChips()) <= 1 {
		s.Status = StatusComplete
	} else {
		s.Status = StatusWaiting
	}
	s.CurrentActor = -1
}

func applyRevealCards(s *State, p RevealCardsPayload) {
	for _, idx := range p.Seats {
		if seat := s.SeatByIndex(idx); seat != nil {
			seat.ShowCards = true
		}
	}
}

func commitChips(seat *Seat, amount int) {
	seat.Chips -= amount
	seat.CurrentBet += amount
	seat.TotalBet += amount
	if seat.Chips == 0 {
		seat.Status = SeatAllIn
	}
}

func setLastAction(seat *Seat, kind ActionKind) {
	k := kind
	seat.LastAction = &k
}
