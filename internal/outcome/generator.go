// Package outcome computes weighted random game results and applies the
// payout-shaping policy: win gating, RTP clawback and streak-dependent bias.
package outcome

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/rng"
)

type Generator struct {
	ledger *ledger.Ledger
	src    rng.Source
	pool   []string
}

func NewGenerator(l *ledger.Ledger, src rng.Source) *Generator {
	return &Generator{
		ledger: l,
		src:    src,
		pool:   symbolPool(),
	}
}

type SpinResult struct {
	Grid     [Reels][Rows]string `json:"grid"`
	LineWins []LineWin           `json:"line_wins"`
	Win      bool                `json:"win"`
	Payout   float64             `json:"payout"`
	Gated    bool                `json:"-"`

	Chips             float64 `json:"chips"`
	LosingStreak      int     `json:"losing_streak"`
	ComebackSpinsLeft int     `json:"comeback_spins_left"`
	ComebackUsed      bool    `json:"comeback_used"`
}

// Spin runs one reel spin against the chips balance: debit, grid draw,
// payline evaluation, gate, clawback, credit, streak bookkeeping.
func (g *Generator) Spin(ctx context.Context, userID int64, bet float64) (*SpinResult, error) {
	account, err := g.ledger.Debit(ctx, userID, models.CurrencyChips, bet)
	if err != nil {
		return nil, err
	}

	grid := drawGrid(g.src, g.pool)
	lineWins, rawWin := evaluateLines(grid, bet)

	// An armed comeback spin is burned only when the grid produced a win
	// for the gate to judge; a blank grid leaves the boost for a later spin.
	payout := rawWin
	gated := false
	comebackUsed := false
	if payout > 0 {
		if comebackUsed, err = g.ledger.ConsumeComebackSpin(ctx, userID); err != nil {
			return nil, err
		}
		threshold := winThreshold(g.src, account.Chips, comebackUsed)
		if !gateAllowsWin(g.src, threshold) {
			payout = 0
			gated = true
			lineWins = nil
		} else {
			payout = applyClawback(g.src, payout)
		}
	}

	if payout > 0 {
		if account, err = g.ledger.Credit(ctx, userID, models.CurrencyChips, payout); err != nil {
			return nil, err
		}
	}

	account, err = g.ledger.ApplySpinOutcome(ctx, userID, payout > 0, rollComebackSpins(g.src))
	if err != nil {
		return nil, err
	}

	g.ledger.RecordHistory(ctx, userID, models.GameTypeSlots, bet, payout,
		fmt.Sprintf("%d line wins", len(lineWins)))

	log.WithFields(log.Fields{
		"user_id": userID,
		"bet":     bet,
		"payout":  payout,
		"gated":   gated,
	}).Debug("spin settled")

	return &SpinResult{
		Grid:              grid,
		LineWins:          lineWins,
		Win:               payout > 0,
		Payout:            payout,
		Gated:             gated,
		Chips:             account.Chips,
		LosingStreak:      account.LosingStreak,
		ComebackSpinsLeft: account.ComebackSpinsLeft,
		ComebackUsed:      comebackUsed,
	}, nil
}

type CardsResult struct {
	Winner      Side    `json:"winner"`
	PlayerHand  []int   `json:"player_hand"`
	BankerHand  []int   `json:"banker_hand"`
	PlayerTotal int     `json:"player_total"`
	BankerTotal int     `json:"banker_total"`
	Payout      float64 `json:"payout"`
	Balance     float64 `json:"balance"`
}

// Cards settles a three-way table bet. The winning side is drawn from a
// distribution biased toward uncovered outcomes; the hands are synthesized
// afterwards to match.
func (g *Generator) Cards(ctx context.Context, userID int64, req *models.CardsRequest) (*CardsResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := g.ledger.Debit(ctx, userID, models.CurrencyCash, req.Total())
	if err != nil {
		return nil, err
	}

	covered := map[Side]bool{
		SidePlayer: req.PlayerBet > 0,
		SideBanker: req.BankerBet > 0,
		SideTie:    req.TieBet > 0,
	}

	winner := drawWinningSide(g.src, covered)
	playerHand, bankerHand, playerTotal, bankerTotal := synthesizeHands(g.src, winner)

	var payout float64
	switch winner {
	case SidePlayer:
		payout = req.PlayerBet * sidePayoutMultipliers[SidePlayer]
	case SideBanker:
		payout = req.BankerBet * sidePayoutMultipliers[SideBanker]
	case SideTie:
		payout = req.TieBet * sidePayoutMultipliers[SideTie]
	}

	if payout > 0 {
		if account, err = g.ledger.Credit(ctx, userID, models.CurrencyCash, payout); err != nil {
			return nil, err
		}
	}

	g.ledger.RecordHistory(ctx, userID, models.GameTypeCards, req.Total(), payout,
		fmt.Sprintf("%s won %d:%d", winner, playerTotal, bankerTotal))

	return &CardsResult{
		Winner:      winner,
		PlayerHand:  playerHand,
		BankerHand:  bankerHand,
		PlayerTotal: playerTotal,
		BankerTotal: bankerTotal,
		Payout:      payout,
		Balance:     account.Balance,
	}, nil
}
