// Package round runs the shared crash-game round: one authoritative
// BETTING → FLYING → CRASHED timeline that every connected client watches.
package round

import "math"

type Phase string

const (
	PhaseBetting Phase = "betting"
	PhaseFlying  Phase = "flying"
	PhaseCrashed Phase = "crashed"
)

// Bet is one user's stake in the current round. It is created during
// BETTING and flips to cashed-out at most once.
type Bet struct {
	UserID            int64   `json:"user_id"`
	Amount            float64 `json:"amount"`
	CashedOut         bool    `json:"cashed_out"`
	CashOutMultiplier float64 `json:"cash_out_multiplier,omitempty"`
}

// Round is the state owned by the engine's actor goroutine. Nothing outside
// the actor may touch it.
type Round struct {
	Number     int64
	Phase      Phase
	Multiplier float64
	CrashPoint float64
	Bets       map[int64]*Bet
}

func newRound(number int64) *Round {
	return &Round{
		Number:     number,
		Phase:      PhaseBetting,
		Multiplier: 1.0,
		Bets:       make(map[int64]*Bet),
	}
}

// Snapshot is the reconnect view of the live round. The crash point is
// never included.
type Snapshot struct {
	RoundNumber int64   `json:"round_number"`
	Phase       Phase   `json:"phase"`
	Multiplier  float64 `json:"multiplier"`
	Position    float64 `json:"position"`
	SecondsLeft int     `json:"seconds_left,omitempty"`
	BetCount    int     `json:"bet_count"`
}

// Broadcaster receives round events for fan-out to all connected clients.
// The websocket hub implements it. BetAccepted and CashedOut carry the
// acting user's new balance so the hub can confirm it to that user directly.
type Broadcaster interface {
	BettingOpened(roundNumber int64, secondsLeft int)
	Countdown(roundNumber int64, secondsLeft int)
	BetAccepted(roundNumber int64, userID int64, amount, balance float64)
	FlightStarted(roundNumber int64)
	MultiplierTick(roundNumber int64, multiplier, position float64)
	CashedOut(roundNumber int64, userID int64, multiplier, payout, balance float64)
	Crashed(roundNumber int64, crashPoint float64)
}

// position derives the client-side flight altitude from the multiplier.
func position(multiplier float64) float64 {
	return math.Round(math.Log(multiplier)*1000) / 10
}
