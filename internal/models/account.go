package models

import "time"

// Currency selects which of the two wagering balances an operation touches.
// Cash backs the crash and card tables, chips back the reel and tile games.
type Currency string

const (
	CurrencyCash  Currency = "cash"
	CurrencyChips Currency = "chips"
)

func (c Currency) Valid() bool {
	return c == CurrencyCash || c == CurrencyChips
}

type Account struct {
	UserID   int64   `json:"user_id" redis:"user_id"`
	Username string  `json:"username" redis:"username"`
	Balance  float64 `json:"balance" redis:"balance"`
	Chips    float64 `json:"chips" redis:"chips"`

	TotalWagered float64 `json:"total_wagered" redis:"total_wagered"`
	TotalWon     float64 `json:"total_won" redis:"total_won"`

	LosingStreak      int `json:"losing_streak" redis:"losing_streak"`
	ComebackSpinsLeft int `json:"comeback_spins_left" redis:"comeback_spins_left"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}

// Amount returns the spendable amount of the given currency.
func (a *Account) Amount(c Currency) float64 {
	if c == CurrencyChips {
		return a.Chips
	}
	return a.Balance
}

func (a *Account) SetAmount(c Currency, v float64) {
	if c == CurrencyChips {
		a.Chips = v
		return
	}
	a.Balance = v
}

func NewAccount(userID int64, startingBalance, startingChips float64) *Account {
	now := time.Now()
	return &Account{
		UserID:    userID,
		Balance:   startingBalance,
		Chips:     startingChips,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HistoryEntry is an append-only outcome summary kept for display.
type HistoryEntry struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Game      GameType  `json:"game"`
	Bet       float64   `json:"bet"`
	Payout    float64   `json:"payout"`
	Win       bool      `json:"win"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
