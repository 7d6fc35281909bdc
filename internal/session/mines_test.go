package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItzYourBread/cashmash-sub000/internal/ledger"
	"github.com/ItzYourBread/cashmash-sub000/internal/models"
	"github.com/ItzYourBread/cashmash-sub000/internal/rng"
	"github.com/ItzYourBread/cashmash-sub000/internal/store"
)

func newTestMines(t *testing.T) (*Mines, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(store.NewMemoryStore(1000, 1000))
	return NewMines(l, rng.New(42)), l
}

// safeAndTrap picks one unrevealed safe position and one trap from the live
// session's hidden layout.
func safeAndTrap(t *testing.T, m *Mines, userID int64) (safe, trap int) {
	t.Helper()
	sess, ok := m.sessions.Get(userID)
	require.True(t, ok)

	safe, trap = -1, -1
	for pos := 0; pos < MinesGridSize; pos++ {
		if sess.Traps[pos] {
			trap = pos
		} else if !sess.Revealed[pos] {
			safe = pos
		}
	}
	require.NotEqual(t, -1, safe)
	require.NotEqual(t, -1, trap)
	return safe, trap
}

func TestMinesStart(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMines(t)

	view, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	assert.Equal(t, models.SessionActive, view.State)
	assert.Equal(t, MinesGridSize, view.GridSize)
	assert.Equal(t, 3, view.TrapCount)
	assert.Equal(t, 1.0, view.Multiplier)
	assert.Empty(t, view.Revealed)
	assert.Empty(t, view.Traps)
	assert.Equal(t, 990.0, view.Chips)
}

func TestMinesStartValidation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMines(t)

	_, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 0})
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))

	_, err = m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: MinesGridSize})
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))

	_, err = m.Start(ctx, 1, &models.MinesStartRequest{Bet: 0, TrapCount: 3})
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}

func TestMinesRevealAndCashOut(t *testing.T) {
	ctx := context.Background()
	m, l := newTestMines(t)

	start, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		safe, _ := safeAndTrap(t, m, 1)
		view, err := m.Reveal(ctx, 1, start.SessionID, safe)
		require.NoError(t, err)
		assert.Equal(t, models.SessionActive, view.State)
		assert.Len(t, view.Revealed, i)
		assert.InDelta(t, 1+0.25*float64(i), view.Multiplier, 1e-9)
	}

	view, err := m.CashOut(ctx, 1, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCashedOut, view.State)
	assert.Equal(t, 1.5, view.Multiplier)
	assert.Equal(t, 15.0, view.Winnings)

	account, err := l.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1005.0, account.Chips)

	// The session is gone after settlement.
	_, err = m.CashOut(ctx, 1, start.SessionID)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestMinesCashOutWithoutRevealsReturnsBet(t *testing.T) {
	ctx := context.Background()
	m, l := newTestMines(t)

	start, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	view, err := m.CashOut(ctx, 1, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, view.Multiplier)
	assert.Equal(t, 10.0, view.Winnings)

	account, err := l.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, account.Chips)
}

func TestMinesHitTrapLosesSession(t *testing.T) {
	ctx := context.Background()
	m, l := newTestMines(t)

	start, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	_, trap := safeAndTrap(t, m, 1)
	view, err := m.Reveal(ctx, 1, start.SessionID, trap)
	require.NoError(t, err)
	assert.Equal(t, models.SessionLost, view.State)
	assert.Len(t, view.Traps, 3, "trap layout is exposed once the session ends")

	account, err := l.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 990.0, account.Chips)

	_, err = m.Reveal(ctx, 1, start.SessionID, 0)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestMinesDuplicateReveal(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMines(t)

	start, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	safe, _ := safeAndTrap(t, m, 1)
	_, err = m.Reveal(ctx, 1, start.SessionID, safe)
	require.NoError(t, err)

	_, err = m.Reveal(ctx, 1, start.SessionID, safe)
	require.Error(t, err)
	assert.True(t, models.IsStateError(err))
}

func TestMinesRevealPositionBounds(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMines(t)

	start, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	for _, pos := range []int{-1, MinesGridSize} {
		_, err := m.Reveal(ctx, 1, start.SessionID, pos)
		require.Error(t, err)
		assert.True(t, models.IsValidationError(err))
	}
}

func TestMinesStartAutoSettlesPriorSession(t *testing.T) {
	ctx := context.Background()
	m, l := newTestMines(t)

	first, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	safe, _ := safeAndTrap(t, m, 1)
	_, err = m.Reveal(ctx, 1, first.SessionID, safe)
	require.NoError(t, err)

	// The prior session is cashed out at its accrued 1.25x before the new
	// bet is taken: 1000 - 10 + 12.5 - 10.
	second, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 992.5, second.Chips)

	entries, err := l.History(ctx, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.GameTypeMines, entries[0].Game)
	assert.Equal(t, 12.5, entries[0].Payout)
}

func TestMinesWrongSessionID(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMines(t)

	_, err := m.Start(ctx, 1, &models.MinesStartRequest{Bet: 10, TrapCount: 3})
	require.NoError(t, err)

	_, err = m.Reveal(ctx, 1, "bogus", 0)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}
