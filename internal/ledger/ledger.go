// Package ledger owns every balance mutation. All debits check funds before
// decrementing and all operations on one account run under that account's
// lock, so a wagering request can never overdraw or double-settle.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/store"
)

// LosingStreakThreshold is the streak length that arms comeback mode.
const LosingStreakThreshold = 10

// Rakeback tiers, applied to totalWagered at drain time.
const (
	rakebackTier1Cap = 10000
	rakebackTier2Cap = 100000

	rakebackTier1Rate = 0.005
	rakebackTier2Rate = 0.01
	rakebackTier3Rate = 0.02
)

type Ledger struct {
	store store.Store
	locks *keyMutex
}

func New(s store.Store) *Ledger {
	return &Ledger{store: s, locks: newKeyMutex()}
}

// Account returns the current account state, creating it on first use.
func (l *Ledger) Account(ctx context.Context, userID int64) (*models.Account, error) {
	account, err := l.store.Account(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError("failed to load account", err)
	}
	return account, nil
}

// Debit withdraws a wager. It fails with InsufficientFunds before touching
// the stored balance and must succeed before any bet is considered placed.
func (l *Ledger) Debit(ctx context.Context, userID int64, currency models.Currency, amount float64) (*models.Account, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("debit amount must be positive")
	}

	unlock := l.locks.lock(userID)
	defer unlock()

	account, err := l.store.Account(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError("failed to load account", err)
	}

	have := account.Amount(currency)
	if amount > have {
		return nil, models.NewInsufficientFundsError(have, amount)
	}

	account.SetAmount(currency, have-amount)
	account.TotalWagered += amount

	if err := l.store.Save(ctx, account); err != nil {
		return nil, models.NewInternalError("failed to save account", err)
	}

	return account, nil
}

// Credit deposits winnings, bonuses or cash-outs.
func (l *Ledger) Credit(ctx context.Context, userID int64, currency models.Currency, amount float64) (*models.Account, error) {
	if amount < 0 {
		return nil, models.NewValidationError("credit amount must not be negative")
	}

	unlock := l.locks.lock(userID)
	defer unlock()

	account, err := l.store.Account(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError("failed to load account", err)
	}

	account.SetAmount(currency, account.Amount(currency)+amount)
	account.TotalWon += amount

	if err := l.store.Save(ctx, account); err != nil {
		return nil, models.NewInternalError("failed to save account", err)
	}

	return account, nil
}

// RecordHistory appends an outcome summary for display.
func (l *Ledger) RecordHistory(ctx context.Context, userID int64, game models.GameType, bet, payout float64, detail string) {
	entry := models.HistoryEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Game:      game,
		Bet:       bet,
		Payout:    payout,
		Win:       payout > 0,
		Detail:    detail,
		CreatedAt: time.Now(),
	}

	if err := l.store.AppendHistory(ctx, entry); err != nil {
		log.WithFields(log.Fields{
			"user_id": userID,
			"game":    game,
		}).WithError(err).Warn("failed to record history entry")
	}
}

// History returns the most recent outcome summaries, newest first.
func (l *Ledger) History(ctx context.Context, userID int64, limit int64) ([]models.HistoryEntry, error) {
	entries, err := l.store.History(ctx, userID, limit)
	if err != nil {
		return nil, models.NewInternalError("failed to load history", err)
	}
	return entries, nil
}

// ApplySpinOutcome updates the losing-streak counters after a reel spin. A
// win resets the streak. A loss increments it; when the streak reaches the
// threshold, comeback mode is armed for armSpins spins and the streak resets.
func (l *Ledger) ApplySpinOutcome(ctx context.Context, userID int64, won bool, armSpins int) (*models.Account, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	account, err := l.store.Account(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError("failed to load account", err)
	}

	if won {
		account.LosingStreak = 0
	} else {
		account.LosingStreak++
		if account.LosingStreak >= LosingStreakThreshold {
			account.ComebackSpinsLeft = armSpins
			account.LosingStreak = 0
		}
	}

	if err := l.store.Save(ctx, account); err != nil {
		return nil, models.NewInternalError("failed to save account", err)
	}

	return account, nil
}

// ConsumeComebackSpin burns one armed comeback spin and reports whether one
// was available.
func (l *Ledger) ConsumeComebackSpin(ctx context.Context, userID int64) (bool, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	account, err := l.store.Account(ctx, userID)
	if err != nil {
		return false, models.NewInternalError("failed to load account", err)
	}

	if account.ComebackSpinsLeft <= 0 {
		return false, nil
	}

	account.ComebackSpinsLeft--
	if err := l.store.Save(ctx, account); err != nil {
		return false, models.NewInternalError("failed to save account", err)
	}

	return true, nil
}

// DrainRakeback converts the accrued totalWagered into a tiered credit and
// resets the counter. It is a batch operation for the periodic job, distinct
// from per-bet debit/credit.
func (l *Ledger) DrainRakeback(ctx context.Context, userID int64) (float64, error) {
	unlock := l.locks.lock(userID)
	defer unlock()

	account, err := l.store.Account(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError("failed to load account", err)
	}

	wagered := account.TotalWagered
	if wagered <= 0 {
		return 0, nil
	}

	credit := wagered * rakebackRate(wagered)
	account.Balance += credit
	account.TotalWagered = 0

	if err := l.store.Save(ctx, account); err != nil {
		return 0, models.NewInternalError("failed to save account", err)
	}

	l.RecordHistory(ctx, userID, models.GameTypeRakeback, 0, credit, fmt.Sprintf("rakeback on %.2f wagered", wagered))

	return credit, nil
}

// DrainAllRakeback runs the rakeback drain against every known account.
func (l *Ledger) DrainAllRakeback(ctx context.Context) {
	ids, err := l.store.AccountIDs(ctx)
	if err != nil {
		log.WithError(err).Error("rakeback sweep failed to list accounts")
		return
	}

	for _, id := range ids {
		credit, err := l.DrainRakeback(ctx, id)
		if err != nil {
			log.WithField("user_id", id).WithError(err).Warn("rakeback drain failed")
			continue
		}
		if credit > 0 {
			log.WithFields(log.Fields{
				"user_id": id,
				"credit":  credit,
			}).Info("rakeback credited")
		}
	}
}

func rakebackRate(wagered float64) float64 {
	switch {
	case wagered < rakebackTier1Cap:
		return rakebackTier1Rate
	case wagered < rakebackTier2Cap:
		return rakebackTier2Rate
	default:
		return rakebackTier3Rate
	}
}
