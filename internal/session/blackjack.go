package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/rng"
)

const (
	dealerStandsAt = 17

	// Naturals pay 3:2 on lucky days and 6:5 otherwise.
	naturalLuckyMultiplier  = 2.5
	naturalNormalMultiplier = 2.2
)

type BlackjackSession struct {
	ID        string
	UserID    int64
	Bet       float64
	Deck      []Card
	Player    []Card
	Dealer    []Card
	State     models.SessionState
	CreatedAt time.Time
}

func (s *BlackjackSession) draw() Card {
	c := s.Deck[0]
	s.Deck = s.Deck[1:]
	return c
}

type BlackjackView struct {
	SessionID   string              `json:"session_id"`
	State       models.SessionState `json:"state"`
	Bet         float64             `json:"bet"`
	Player      []Card              `json:"player"`
	PlayerValue int                 `json:"player_value"`
	Dealer      []Card              `json:"dealer"`
	DealerValue int                 `json:"dealer_value,omitempty"`
	Winnings    float64             `json:"winnings"`
	Balance     float64             `json:"balance"`
}

type Blackjack struct {
	sessions *Store[BlackjackSession]
	ledger   *ledger.Ledger
	src      rng.Source
	now      func() time.Time
}

func NewBlackjack(l *ledger.Ledger, src rng.Source) *Blackjack {
	return &Blackjack{
		sessions: NewStore[BlackjackSession](),
		ledger:   l,
		src:      src,
		now:      time.Now,
	}
}

// Start debits the bet and deals. Player naturals settle immediately; any
// unresolved prior session is played out as a stand first.
func (b *Blackjack) Start(ctx context.Context, userID int64, req *models.BlackjackStartRequest) (*BlackjackView, error) {
	if err := (&models.PlaceBetRequest{Amount: req.Bet}).Validate(); err != nil {
		return nil, err
	}

	release, err := b.sessions.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	if prior, ok := b.sessions.Get(userID); ok && !prior.State.Terminal() {
		if _, err := b.resolveStand(ctx, prior); err != nil {
			return nil, err
		}
	}

	account, err := b.ledger.Debit(ctx, userID, models.CurrencyCash, req.Bet)
	if err != nil {
		return nil, err
	}

	sess := &BlackjackSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Bet:       req.Bet,
		Deck:      newShuffledDeck(b.src),
		State:     models.SessionActive,
		CreatedAt: b.now(),
	}
	sess.Player = []Card{sess.draw(), sess.draw()}
	sess.Dealer = []Card{sess.draw(), sess.draw()}

	if isNatural(sess.Player) {
		return b.settleNatural(ctx, sess)
	}

	b.sessions.Set(userID, sess)

	log.WithFields(log.Fields{
		"user_id": userID,
		"bet":     req.Bet,
	}).Debug("blackjack session started")

	return b.view(sess, 0, account.Balance), nil
}

// Hit draws one card; busting over 21 loses the session.
func (b *Blackjack) Hit(ctx context.Context, userID int64, sessionID string) (*BlackjackView, error) {
	release, err := b.sessions.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := b.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Player = append(sess.Player, sess.draw())

	account, err := b.ledger.Account(ctx, userID)
	if err != nil {
		return nil, err
	}

	if handValue(sess.Player) > 21 {
		sess.State = models.SessionLost
		b.ledger.RecordHistory(ctx, userID, models.GameTypeBlackjack, sess.Bet, 0,
			fmt.Sprintf("busted at %d", handValue(sess.Player)))
		view := b.view(sess, 0, account.Balance)
		b.sessions.Delete(userID)
		return view, nil
	}

	return b.view(sess, 0, account.Balance), nil
}

// Stand lets the dealer draw to 17 and settles the hand.
func (b *Blackjack) Stand(ctx context.Context, userID int64, sessionID string) (*BlackjackView, error) {
	release, err := b.sessions.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := b.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	return b.resolveStand(ctx, sess)
}

func (b *Blackjack) lookup(userID int64, sessionID string) (*BlackjackSession, error) {
	sess, ok := b.sessions.Get(userID)
	if !ok {
		return nil, models.NewNotFoundError("no active blackjack session")
	}
	if sess.ID != sessionID {
		return nil, models.NewNotFoundError("session %s not found", sessionID)
	}
	if sess.State.Terminal() {
		return nil, models.NewStateError("session is already finished")
	}
	return sess, nil
}

// resolveStand finishes the dealer's hand, compares totals and credits
// exactly once: 2x bet on a win, the bet back on a push, nothing on a loss.
func (b *Blackjack) resolveStand(ctx context.Context, sess *BlackjackSession) (*BlackjackView, error) {
	for handValue(sess.Dealer) < dealerStandsAt {
		sess.Dealer = append(sess.Dealer, sess.draw())
	}

	playerTotal := handValue(sess.Player)
	dealerTotal := handValue(sess.Dealer)

	var payout float64
	switch {
	case dealerTotal > 21 || playerTotal > dealerTotal:
		payout = 2 * sess.Bet
		sess.State = models.SessionWon
	case playerTotal == dealerTotal:
		payout = sess.Bet
		sess.State = models.SessionPush
	default:
		sess.State = models.SessionLost
	}

	account, err := b.settle(ctx, sess, payout,
		fmt.Sprintf("stood at %d vs dealer %d", playerTotal, dealerTotal))
	if err != nil {
		return nil, err
	}

	return b.view(sess, payout, account.Balance), nil
}

// settleNatural pays a two-card 21 immediately. Both-natural is a push.
func (b *Blackjack) settleNatural(ctx context.Context, sess *BlackjackSession) (*BlackjackView, error) {
	var payout float64
	var detail string

	if isNatural(sess.Dealer) {
		payout = sess.Bet
		sess.State = models.SessionPush
		detail = "both natural, push"
	} else {
		payout = sess.Bet * b.naturalMultiplier()
		sess.State = models.SessionWon
		detail = fmt.Sprintf("natural 21 pays %.1fx", b.naturalMultiplier())
	}

	account, err := b.settle(ctx, sess, payout, detail)
	if err != nil {
		return nil, err
	}

	return b.view(sess, payout, account.Balance), nil
}

func (b *Blackjack) settle(ctx context.Context, sess *BlackjackSession, payout float64, detail string) (*models.Account, error) {
	account, err := b.ledger.Account(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	if payout > 0 {
		account, err = b.ledger.Credit(ctx, sess.UserID, models.CurrencyCash, payout)
		if err != nil {
			return nil, err
		}
	}

	b.ledger.RecordHistory(ctx, sess.UserID, models.GameTypeBlackjack, sess.Bet, payout, detail)
	b.sessions.Delete(sess.UserID)
	return account, nil
}

// naturalMultiplier pays 3:2 on Friday through Sunday, 6:5 the rest of the
// week.
func (b *Blackjack) naturalMultiplier() float64 {
	switch b.now().Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return naturalLuckyMultiplier
	default:
		return naturalNormalMultiplier
	}
}

// view hides the dealer's hole card and total while the hand is live.
func (b *Blackjack) view(sess *BlackjackSession, winnings, balance float64) *BlackjackView {
	view := &BlackjackView{
		SessionID:   sess.ID,
		State:       sess.State,
		Bet:         sess.Bet,
		Player:      sess.Player,
		PlayerValue: handValue(sess.Player),
		Winnings:    winnings,
		Balance:     balance,
	}

	if sess.State.Terminal() {
		view.Dealer = sess.Dealer
		view.DealerValue = handValue(sess.Dealer)
	} else {
		view.Dealer = sess.Dealer[:1]
	}

	return view
}
