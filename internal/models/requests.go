package models

// Round endpoints.

type PlaceBetRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

type PlaceBetResponse struct {
	Accepted    bool    `json:"accepted"`
	RoundNumber int64   `json:"round_number"`
	Balance     float64 `json:"balance"`
}

type CashOutResponse struct {
	Winnings   float64 `json:"winnings"`
	Multiplier float64 `json:"multiplier"`
	Balance    float64 `json:"balance"`
}

// Mines endpoints.

type MinesStartRequest struct {
	Bet       float64 `json:"bet" binding:"required"`
	TrapCount int     `json:"trap_count" binding:"required"`
}

type MinesRevealRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Position  int    `json:"position"`
}

type MinesCashOutRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Blackjack endpoints.

type BlackjackStartRequest struct {
	Bet float64 `json:"bet" binding:"required"`
}

type BlackjackActionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Spin endpoints.

type SpinRequest struct {
	Bet float64 `json:"bet" binding:"required"`
}

// CardsRequest carries the three-way table bet. At least one side must be
// staked; sides left at zero are uncovered.
type CardsRequest struct {
	PlayerBet float64 `json:"player_bet"`
	BankerBet float64 `json:"banker_bet"`
	TieBet    float64 `json:"tie_bet"`
}

func (r *CardsRequest) Total() float64 {
	return r.PlayerBet + r.BankerBet + r.TieBet
}

func (r *PlaceBetRequest) Validate() error {
	return validateBet(r.Amount)
}

func (r *MinesStartRequest) Validate(gridSize, maxTraps int) error {
	if err := validateBet(r.Bet); err != nil {
		return err
	}
	if r.TrapCount < 1 || r.TrapCount > maxTraps {
		return NewValidationError("trap count must be between 1 and %d", maxTraps)
	}
	return nil
}

func (r *CardsRequest) Validate() error {
	for _, amt := range []float64{r.PlayerBet, r.BankerBet, r.TieBet} {
		if amt < 0 {
			return NewValidationError("bet amounts must not be negative")
		}
	}
	if r.Total() <= 0 {
		return NewValidationError("at least one side must be staked")
	}
	return validateBet(r.Total())
}

const (
	MinBet = 1
	MaxBet = 10000
)

func validateBet(amount float64) error {
	if amount < MinBet {
		return NewValidationError("minimum bet is %d", MinBet)
	}
	if amount > MaxBet {
		return NewValidationError("maximum bet is %d", MaxBet)
	}
	return nil
}
