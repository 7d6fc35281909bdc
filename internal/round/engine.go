package round

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/coder/quartz"
	log "github.com/sirupsen/logrus"

	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/rng"
)

const (
	BettingWindowSeconds = 5
	FlightTickInterval   = 150 * time.Millisecond
	RestartDelay         = 3 * time.Second

	GrowthFactor  = 1.02
	MaxCrashPoint = 20.0
)

// Engine owns the round. A single goroutine processes user commands and
// timer events from one channel in arrival order, so a cash-out and the
// crash-triggering tick can never interleave.
type Engine struct {
	ledger *ledger.Ledger
	src    rng.Source
	clock  quartz.Clock
	bc     Broadcaster

	cmds     chan command
	done     chan struct{}
	stopOnce sync.Once
}

type command interface{ isCommand() }

type placeBetCmd struct {
	ctx    context.Context
	userID int64
	amount float64
	reply  chan placeBetReply
}

type cashOutCmd struct {
	ctx    context.Context
	userID int64
	reply  chan cashOutReply
}

type snapshotCmd struct {
	reply chan Snapshot
}

// Timer events go through the same channel as user commands.
type countdownEvent struct{ roundNumber int64 }
type flightTickEvent struct{ roundNumber int64 }
type restartEvent struct{ roundNumber int64 }

func (placeBetCmd) isCommand()     {}
func (cashOutCmd) isCommand()      {}
func (snapshotCmd) isCommand()     {}
func (countdownEvent) isCommand()  {}
func (flightTickEvent) isCommand() {}
func (restartEvent) isCommand()    {}

type placeBetReply struct {
	resp *models.PlaceBetResponse
	err  error
}

type cashOutReply struct {
	resp *models.CashOutResponse
	err  error
}

func NewEngine(l *ledger.Ledger, src rng.Source, clock quartz.Clock, bc Broadcaster) *Engine {
	return &Engine{
		ledger: l,
		src:    src,
		clock:  clock,
		bc:     bc,
		cmds:   make(chan command),
		done:   make(chan struct{}),
	}
}

// PlaceBet stakes amount on the current round. Only valid during BETTING,
// one bet per user per round, debited before the bet is recorded.
func (e *Engine) PlaceBet(ctx context.Context, userID int64, amount float64) (*models.PlaceBetResponse, error) {
	reply := make(chan placeBetReply, 1)
	if err := e.send(ctx, placeBetCmd{ctx: ctx, userID: userID, amount: amount, reply: reply}); err != nil {
		return nil, err
	}
	r := <-reply
	return r.resp, r.err
}

// CashOut locks in the current multiplier for the user's bet. Only valid
// during FLYING, once per bet.
func (e *Engine) CashOut(ctx context.Context, userID int64) (*models.CashOutResponse, error) {
	reply := make(chan cashOutReply, 1)
	if err := e.send(ctx, cashOutCmd{ctx: ctx, userID: userID, reply: reply}); err != nil {
		return nil, err
	}
	r := <-reply
	return r.resp, r.err
}

// Snapshot returns the reconnect view of the live round.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := e.send(ctx, snapshotCmd{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	return <-reply, nil
}

func (e *Engine) send(ctx context.Context, cmd command) error {
	select {
	case e.cmds <- cmd:
		return nil
	case <-e.done:
		return models.NewStateError("round engine is shut down")
	case <-ctx.Done():
		return models.NewInternalError("request cancelled", ctx.Err())
	}
}

// Stop tears the engine down. Pending timers become no-ops. Safe to call
// more than once; Run also invokes it when its context is cancelled.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.done) })
}

// Run is the actor loop. It must be started exactly once.
func (e *Engine) Run(ctx context.Context) {
	state := &roundState{round: newRound(1), secondsLeft: BettingWindowSeconds}
	e.bc.BettingOpened(state.round.Number, state.secondsLeft)
	e.armTimer(time.Second, countdownEvent{roundNumber: state.round.Number})

	for {
		select {
		case cmd := <-e.cmds:
			e.handle(ctx, state, cmd)
		case <-e.done:
			return
		case <-ctx.Done():
			// Close done so fired timer callbacks blocked on the command
			// channel are released too.
			e.Stop()
			return
		}
	}
}

type roundState struct {
	round       *Round
	secondsLeft int
}

func (e *Engine) handle(ctx context.Context, state *roundState, cmd command) {
	switch c := cmd.(type) {
	case placeBetCmd:
		c.reply <- e.placeBet(state, c)
	case cashOutCmd:
		c.reply <- e.cashOut(state, c)
	case snapshotCmd:
		c.reply <- e.snapshot(state)
	case countdownEvent:
		e.onCountdown(ctx, state, c)
	case flightTickEvent:
		e.onFlightTick(ctx, state, c)
	case restartEvent:
		e.onRestart(state, c)
	}
}

func (e *Engine) placeBet(state *roundState, c placeBetCmd) placeBetReply {
	r := state.round

	if r.Phase != PhaseBetting {
		return placeBetReply{err: models.NewStateError("betting is closed for round %d", r.Number)}
	}
	if err := (&models.PlaceBetRequest{Amount: c.amount}).Validate(); err != nil {
		return placeBetReply{err: err}
	}
	if _, exists := r.Bets[c.userID]; exists {
		return placeBetReply{err: models.NewStateError("bet already placed this round")}
	}

	account, err := e.ledger.Debit(c.ctx, c.userID, models.CurrencyCash, c.amount)
	if err != nil {
		return placeBetReply{err: err}
	}

	r.Bets[c.userID] = &Bet{UserID: c.userID, Amount: c.amount}
	e.bc.BetAccepted(r.Number, c.userID, c.amount, account.Balance)

	log.WithFields(log.Fields{
		"round":   r.Number,
		"user_id": c.userID,
		"amount":  c.amount,
	}).Debug("bet accepted")

	return placeBetReply{resp: &models.PlaceBetResponse{
		Accepted:    true,
		RoundNumber: r.Number,
		Balance:     account.Balance,
	}}
}

func (e *Engine) cashOut(state *roundState, c cashOutCmd) cashOutReply {
	r := state.round

	if r.Phase != PhaseFlying {
		return cashOutReply{err: models.NewStateError("round %d is not in flight", r.Number)}
	}

	bet, ok := r.Bets[c.userID]
	if !ok {
		return cashOutReply{err: models.NewNotFoundError("no bet placed this round")}
	}
	if bet.CashedOut {
		return cashOutReply{err: models.NewStateError("bet already cashed out")}
	}

	payout := bet.Amount * r.Multiplier
	account, err := e.ledger.Credit(c.ctx, c.userID, models.CurrencyCash, payout)
	if err != nil {
		return cashOutReply{err: err}
	}

	bet.CashedOut = true
	bet.CashOutMultiplier = r.Multiplier

	e.ledger.RecordHistory(c.ctx, c.userID, models.GameTypeCrash, bet.Amount, payout, "")
	e.bc.CashedOut(r.Number, c.userID, r.Multiplier, payout, account.Balance)

	return cashOutReply{resp: &models.CashOutResponse{
		Winnings:   payout,
		Multiplier: r.Multiplier,
		Balance:    account.Balance,
	}}
}

func (e *Engine) snapshot(state *roundState) Snapshot {
	r := state.round
	snap := Snapshot{
		RoundNumber: r.Number,
		Phase:       r.Phase,
		Multiplier:  r.Multiplier,
		Position:    position(r.Multiplier),
		BetCount:    len(r.Bets),
	}
	if r.Phase == PhaseBetting {
		snap.SecondsLeft = state.secondsLeft
	}
	return snap
}

func (e *Engine) onCountdown(ctx context.Context, state *roundState, ev countdownEvent) {
	r := state.round
	if r.Phase != PhaseBetting || r.Number != ev.roundNumber {
		return
	}

	state.secondsLeft--
	if state.secondsLeft > 0 {
		e.bc.Countdown(r.Number, state.secondsLeft)
		e.armTimer(time.Second, countdownEvent{roundNumber: r.Number})
		return
	}

	// Betting closed: draw the crash point and take off. The draw happens
	// here, after the window, and is revealed only on crash.
	r.CrashPoint = e.drawCrashPoint()
	r.Phase = PhaseFlying

	log.WithFields(log.Fields{
		"round": r.Number,
		"bets":  len(r.Bets),
	}).Info("flight started")

	e.bc.FlightStarted(r.Number)
	e.armTimer(FlightTickInterval, flightTickEvent{roundNumber: r.Number})
}

func (e *Engine) onFlightTick(ctx context.Context, state *roundState, ev flightTickEvent) {
	r := state.round
	if r.Phase != PhaseFlying || r.Number != ev.roundNumber {
		return
	}

	r.Multiplier = math.Round(r.Multiplier*GrowthFactor*100) / 100

	if r.Multiplier >= r.CrashPoint {
		e.crash(ctx, state)
		return
	}

	e.bc.MultiplierTick(r.Number, r.Multiplier, position(r.Multiplier))
	e.armTimer(FlightTickInterval, flightTickEvent{roundNumber: r.Number})
}

// crash resolves every bet that did not cash out as lost, then schedules
// the next round.
func (e *Engine) crash(ctx context.Context, state *roundState) {
	r := state.round
	r.Phase = PhaseCrashed
	r.Multiplier = r.CrashPoint

	for _, bet := range r.Bets {
		if !bet.CashedOut {
			e.ledger.RecordHistory(ctx, bet.UserID, models.GameTypeCrash, bet.Amount, 0, "")
		}
	}

	log.WithFields(log.Fields{
		"round":       r.Number,
		"crash_point": r.CrashPoint,
	}).Info("round crashed")

	e.bc.Crashed(r.Number, r.CrashPoint)
	e.armTimer(RestartDelay, restartEvent{roundNumber: r.Number})
}

func (e *Engine) onRestart(state *roundState, ev restartEvent) {
	if state.round.Number != ev.roundNumber || state.round.Phase != PhaseCrashed {
		return
	}

	state.round = newRound(state.round.Number + 1)
	state.secondsLeft = BettingWindowSeconds

	e.bc.BettingOpened(state.round.Number, state.secondsLeft)
	e.armTimer(time.Second, countdownEvent{roundNumber: state.round.Number})
}

// drawCrashPoint is an inverse-CDF draw: crash = 1/(1-r) for uniform r, so
// low values are common and large ones rare. Rounded to 2 decimals, capped.
func (e *Engine) drawCrashPoint() float64 {
	r := e.src.Float64()
	crash := math.Round(100/(1-r)) / 100
	if crash > MaxCrashPoint {
		crash = MaxCrashPoint
	}
	if crash < 1.0 {
		crash = 1.0
	}
	return crash
}

// armTimer schedules ev to re-enter the actor loop after d. Callbacks only
// enqueue; all state changes happen on the loop goroutine.
func (e *Engine) armTimer(d time.Duration, ev command) {
	e.clock.AfterFunc(d, func() {
		select {
		case e.cmds <- ev:
		case <-e.done:
		}
	})
}
