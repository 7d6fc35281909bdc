package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/rng"
)

const (
	MinesGridSize = 25
	MinesMaxTraps = 24

	// Each safe reveal adds a quarter of the bet, linear not compounding.
	minesStepMultiplier = 0.25
)

type MinesSession struct {
	ID        string
	UserID    int64
	Bet       float64
	Traps     map[int]bool
	Revealed  map[int]bool
	State     models.SessionState
	CreatedAt time.Time
}

// Multiplier is the accrued cash-out multiplier: 1 + 0.25 per safe reveal.
func (s *MinesSession) Multiplier() float64 {
	return 1 + minesStepMultiplier*float64(len(s.Revealed))
}

type MinesView struct {
	SessionID  string              `json:"session_id"`
	State      models.SessionState `json:"state"`
	Bet        float64             `json:"bet"`
	GridSize   int                 `json:"grid_size"`
	TrapCount  int                 `json:"trap_count"`
	Revealed   []int               `json:"revealed"`
	Multiplier float64             `json:"multiplier"`
	Traps      []int               `json:"traps,omitempty"`
	Winnings   float64             `json:"winnings,omitempty"`
	Chips      float64             `json:"chips"`
}

type Mines struct {
	sessions *Store[MinesSession]
	ledger   *ledger.Ledger
	src      rng.Source
}

func NewMines(l *ledger.Ledger, src rng.Source) *Mines {
	return &Mines{
		sessions: NewStore[MinesSession](),
		ledger:   l,
		src:      src,
	}
}

// Start opens a new session. An unresolved prior session is cashed out at
// its accrued multiplier first; it is never silently dropped.
func (m *Mines) Start(ctx context.Context, userID int64, req *models.MinesStartRequest) (*MinesView, error) {
	if err := req.Validate(MinesGridSize, MinesMaxTraps); err != nil {
		return nil, err
	}

	release, err := m.sessions.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	if prior, ok := m.sessions.Get(userID); ok && !prior.State.Terminal() {
		if err := m.settle(ctx, prior, prior.Multiplier(), models.SessionCashedOut, "auto-settled on new start"); err != nil {
			return nil, err
		}
	}

	account, err := m.ledger.Debit(ctx, userID, models.CurrencyChips, req.Bet)
	if err != nil {
		return nil, err
	}

	traps := make(map[int]bool, req.TrapCount)
	for _, pos := range rng.SampleDistinct(m.src, MinesGridSize, req.TrapCount) {
		traps[pos] = true
	}

	sess := &MinesSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Bet:       req.Bet,
		Traps:     traps,
		Revealed:  make(map[int]bool),
		State:     models.SessionActive,
		CreatedAt: time.Now(),
	}
	m.sessions.Set(userID, sess)

	log.WithFields(log.Fields{
		"user_id": userID,
		"bet":     req.Bet,
		"traps":   req.TrapCount,
	}).Debug("mines session started")

	return m.view(sess, account.Chips), nil
}

// Reveal uncovers one tile. A trap ends the session as lost; a safe tile
// raises the accrued multiplier.
func (m *Mines) Reveal(ctx context.Context, userID int64, sessionID string, position int) (*MinesView, error) {
	if position < 0 || position >= MinesGridSize {
		return nil, models.NewValidationError("position must be between 0 and %d", MinesGridSize-1)
	}

	release, err := m.sessions.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Revealed[position] {
		return nil, models.NewStateError("position %d already revealed", position)
	}

	account, err := m.ledger.Account(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sess.Traps[position] {
		sess.State = models.SessionLost
		m.ledger.RecordHistory(ctx, userID, models.GameTypeMines, sess.Bet, 0,
			fmt.Sprintf("hit trap at %d after %d reveals", position, len(sess.Revealed)))
		view := m.view(sess, account.Chips)
		m.sessions.Delete(userID)
		return view, nil
	}

	sess.Revealed[position] = true
	return m.view(sess, account.Chips), nil
}

// CashOut settles the session at the accrued multiplier. With zero reveals
// the multiplier is 1x, paying the original bet back.
func (m *Mines) CashOut(ctx context.Context, userID int64, sessionID string) (*MinesView, error) {
	release, err := m.sessions.Acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	multiplier := sess.Multiplier()
	if err := m.settle(ctx, sess, multiplier, models.SessionCashedOut,
		fmt.Sprintf("cashed out at %.2fx", multiplier)); err != nil {
		return nil, err
	}

	account, err := m.ledger.Account(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := m.view(sess, account.Chips)
	view.Winnings = sess.Bet * multiplier
	return view, nil
}

func (m *Mines) lookup(userID int64, sessionID string) (*MinesSession, error) {
	sess, ok := m.sessions.Get(userID)
	if !ok {
		return nil, models.NewNotFoundError("no active mines session")
	}
	if sess.ID != sessionID {
		return nil, models.NewNotFoundError("session %s not found", sessionID)
	}
	if sess.State.Terminal() {
		return nil, models.NewStateError("session is already finished")
	}
	return sess, nil
}

// settle credits exactly once and removes the session.
func (m *Mines) settle(ctx context.Context, sess *MinesSession, multiplier float64, state models.SessionState, detail string) error {
	payout := sess.Bet * multiplier
	if _, err := m.ledger.Credit(ctx, sess.UserID, models.CurrencyChips, payout); err != nil {
		return err
	}

	sess.State = state
	m.ledger.RecordHistory(ctx, sess.UserID, models.GameTypeMines, sess.Bet, payout, detail)
	m.sessions.Delete(sess.UserID)
	return nil
}

func (m *Mines) view(sess *MinesSession, chips float64) *MinesView {
	revealed := make([]int, 0, len(sess.Revealed))
	for pos := range sess.Revealed {
		revealed = append(revealed, pos)
	}
	sort.Ints(revealed)

	view := &MinesView{
		SessionID:  sess.ID,
		State:      sess.State,
		Bet:        sess.Bet,
		GridSize:   MinesGridSize,
		TrapCount:  len(sess.Traps),
		Revealed:   revealed,
		Multiplier: sess.Multiplier(),
		Chips:      chips,
	}

	// Trap layout stays hidden until the session is over.
	if sess.State.Terminal() {
		for pos := range sess.Traps {
			view.Traps = append(view.Traps, pos)
		}
		sort.Ints(view.Traps)
	}

	return view
}
