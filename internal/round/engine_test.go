package round

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/store"
)

// stubSource fixes the crash-point draw.
type stubSource struct{ r float64 }

func (s stubSource) Float64() float64 { return s.r }
func (s stubSource) Intn(n int) int   { return 0 }
func (s stubSource) Perm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// recorder captures broadcast events for assertions.
type recorder struct {
	mu          sync.Mutex
	crashPoints []float64
	betsOpened  []int64
	balances    []float64
}

func (r *recorder) BettingOpened(roundNumber int64, secondsLeft int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.betsOpened = append(r.betsOpened, roundNumber)
}
func (r *recorder) Countdown(roundNumber int64, secondsLeft int) {}
func (r *recorder) BetAccepted(roundNumber int64, userID int64, amount, balance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances = append(r.balances, balance)
}
func (r *recorder) FlightStarted(roundNumber int64)                                {}
func (r *recorder) MultiplierTick(roundNumber int64, multiplier, position float64) {}
func (r *recorder) CashedOut(roundNumber int64, userID int64, multiplier, payout, balance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances = append(r.balances, balance)
}
func (r *recorder) Crashed(roundNumber int64, crashPoint float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crashPoints = append(r.crashPoints, crashPoint)
}

func (r *recorder) crashed() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64{}, r.crashPoints...)
}

func (r *recorder) lastBalance() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.balances) == 0 {
		return 0
	}
	return r.balances[len(r.balances)-1]
}

func newTestEngine(t *testing.T, crashDraw float64) (*Engine, *ledger.Ledger, *quartz.Mock, *recorder) {
	t.Helper()

	l := ledger.New(store.NewMemoryStore(1000, 1000))
	clock := quartz.NewMock(t)
	rec := &recorder{}

	e := NewEngine(l, stubSource{r: crashDraw}, clock, rec)
	go e.Run(context.Background())
	t.Cleanup(e.Stop)

	// The first snapshot round-trips through the actor, so by the time it
	// returns the loop is live and the countdown timer is armed.
	_, err := e.Snapshot(context.Background())
	require.NoError(t, err)

	return e, l, clock, rec
}

// advance moves the mock clock and synchronizes with the actor so the fired
// event is fully processed and any follow-up timer is armed before returning.
func advance(t *testing.T, e *Engine, clock *quartz.Mock, d time.Duration) Snapshot {
	t.Helper()
	ctx := context.Background()

	clock.Advance(d).MustWait(ctx)

	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	return snap
}

// toFlight burns down the betting window one countdown tick at a time.
func toFlight(t *testing.T, e *Engine, clock *quartz.Mock) Snapshot {
	t.Helper()
	var snap Snapshot
	for i := 0; i < BettingWindowSeconds; i++ {
		snap = advance(t, e, clock, time.Second)
	}
	require.Equal(t, PhaseFlying, snap.Phase)
	return snap
}

func TestBettingWindow(t *testing.T) {
	ctx := context.Background()
	e, _, clock, _ := newTestEngine(t, 0.9)

	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.RoundNumber)
	assert.Equal(t, PhaseBetting, snap.Phase)
	assert.Equal(t, BettingWindowSeconds, snap.SecondsLeft)

	resp, err := e.PlaceBet(ctx, 1, 50)
	require.NoError(t, err)
	assert.True(t, resp.Accepted)
	assert.Equal(t, int64(1), resp.RoundNumber)
	assert.Equal(t, 950.0, resp.Balance)

	// One bet per user per round.
	_, err = e.PlaceBet(ctx, 1, 25)
	require.Error(t, err)
	assert.True(t, models.IsStateError(err))

	// No cashing out before takeoff.
	_, err = e.CashOut(ctx, 1)
	require.Error(t, err)
	assert.True(t, models.IsStateError(err))

	snap = advance(t, e, clock, time.Second)
	assert.Equal(t, PhaseBetting, snap.Phase)
	assert.Equal(t, BettingWindowSeconds-1, snap.SecondsLeft)
	assert.Equal(t, 1, snap.BetCount)
}

func TestBettingClosesAtTakeoff(t *testing.T) {
	ctx := context.Background()
	e, _, clock, _ := newTestEngine(t, 0.9)

	snap := toFlight(t, e, clock)
	assert.Equal(t, 1.0, snap.Multiplier)

	_, err := e.PlaceBet(ctx, 1, 50)
	require.Error(t, err)
	assert.True(t, models.IsStateError(err))
}

func TestBetRejectedOnInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	e, l, _, _ := newTestEngine(t, 0.9)

	_, err := e.PlaceBet(ctx, 1, 5000)
	require.Error(t, err)
	assert.True(t, models.IsInsufficientFunds(err))

	account, err := l.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, account.Balance)
}

func TestCashOutLocksInMultiplier(t *testing.T) {
	ctx := context.Background()
	// Draw of 0.9 puts the crash at 10.00, far above this test's flight.
	e, _, clock, rec := newTestEngine(t, 0.9)

	_, err := e.PlaceBet(ctx, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 950.0, rec.lastBalance())

	toFlight(t, e, clock)

	snap := advance(t, e, clock, FlightTickInterval)
	assert.Equal(t, 1.02, snap.Multiplier)

	resp, err := e.CashOut(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.02, resp.Multiplier)
	assert.InDelta(t, 51.0, resp.Winnings, 1e-9)
	assert.InDelta(t, 1001.0, resp.Balance, 1e-9)
	assert.InDelta(t, 1001.0, rec.lastBalance(), 1e-9)

	// Cashing out twice is rejected.
	_, err = e.CashOut(ctx, 1)
	require.Error(t, err)
	assert.True(t, models.IsStateError(err))

	// So is cashing out without a bet.
	_, err = e.CashOut(ctx, 2)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestCrashResolvesUncashedBetsAsLost(t *testing.T) {
	ctx := context.Background()
	// Draw of 0.5 puts the crash at exactly 2.00.
	e, l, clock, rec := newTestEngine(t, 0.5)

	_, err := e.PlaceBet(ctx, 1, 50)
	require.NoError(t, err)

	toFlight(t, e, clock)

	var snap Snapshot
	for i := 0; i < 100; i++ {
		snap = advance(t, e, clock, FlightTickInterval)
		if snap.Phase == PhaseCrashed {
			break
		}
	}
	require.Equal(t, PhaseCrashed, snap.Phase)
	assert.Equal(t, 2.0, snap.Multiplier)
	assert.Equal(t, []float64{2.0}, rec.crashed())

	// The stake is gone and the loss is on record.
	account, err := l.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 950.0, account.Balance)

	entries, err := l.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.GameTypeCrash, entries[0].Game)
	assert.Equal(t, 0.0, entries[0].Payout)
}

func TestNextRoundOpensAfterRestartDelay(t *testing.T) {
	ctx := context.Background()
	e, _, clock, _ := newTestEngine(t, 0.5)

	_, err := e.PlaceBet(ctx, 1, 50)
	require.NoError(t, err)

	toFlight(t, e, clock)

	var snap Snapshot
	for i := 0; i < 100; i++ {
		snap = advance(t, e, clock, FlightTickInterval)
		if snap.Phase == PhaseCrashed {
			break
		}
	}
	require.Equal(t, PhaseCrashed, snap.Phase)

	snap = advance(t, e, clock, RestartDelay)
	assert.Equal(t, int64(2), snap.RoundNumber)
	assert.Equal(t, PhaseBetting, snap.Phase)
	assert.Equal(t, BettingWindowSeconds, snap.SecondsLeft)
	assert.Equal(t, 0, snap.BetCount)

	// The slate is clean: the same user can bet again.
	resp, err := e.PlaceBet(ctx, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RoundNumber)
}

func TestDrawCrashPointBounds(t *testing.T) {
	l := ledger.New(store.NewMemoryStore(1000, 1000))

	cases := []struct {
		name string
		draw float64
		want float64
	}{
		{"floor", 0.0, 1.0},
		{"median", 0.5, 2.0},
		{"cap", 0.99999, MaxCrashPoint},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(l, stubSource{r: tc.draw}, quartz.NewMock(t), &recorder{})
			assert.Equal(t, tc.want, e.drawCrashPoint())
		})
	}
}

func TestPosition(t *testing.T) {
	assert.Equal(t, 0.0, position(1.0))
	assert.InDelta(t, 69.3, position(2.0), 0.05)
}

func TestContextCancelShutsEngineDown(t *testing.T) {
	l := ledger.New(store.NewMemoryStore(1000, 1000))
	e := NewEngine(l, stubSource{r: 0.9}, quartz.NewMock(t), &recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)

	_, err := e.Snapshot(context.Background())
	require.NoError(t, err)

	// Cancelling the run context must release any fired timer callback
	// still waiting on the command channel, not just the loop itself.
	cancel()
	<-e.done

	_, err = e.PlaceBet(context.Background(), 1, 50)
	require.Error(t, err)
	assert.True(t, models.IsStateError(err))

	// Stop after a context-driven shutdown is a no-op, not a panic.
	e.Stop()
}
