package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItzYourBread/cashmash-sub000/internal/round"
)

var _ round.Broadcaster = (*WebSocketHub)(nil)

// newTestHub builds a hub without the run goroutine so tests can read
// pushed messages straight off the broadcast buffer.
func newTestHub() *WebSocketHub {
	return &WebSocketHub{
		clients:   make(map[int64]*websocket.Conn),
		broadcast: make(chan *Message, 256),
	}
}

func nextMessage(t *testing.T, hub *WebSocketHub) *Message {
	t.Helper()
	select {
	case msg := <-hub.broadcast:
		return msg
	default:
		t.Fatal("expected a queued message")
		return nil
	}
}

func TestBetAcceptedPushesTargetedBalance(t *testing.T) {
	hub := newTestHub()

	hub.BetAccepted(7, 42, 50, 950)

	public := nextMessage(t, hub)
	assert.Equal(t, "BET_ACCEPTED", public.Type)
	assert.Equal(t, int64(0), public.UserID)
	assert.Equal(t, gin.H{"round_number": int64(7), "user_id": int64(42), "amount": 50.0}, public.Data)

	private := nextMessage(t, hub)
	assert.Equal(t, "BALANCE_UPDATE", private.Type)
	assert.Equal(t, int64(42), private.UserID)
	assert.Equal(t, gin.H{"balance": 950.0}, private.Data)
}

func TestCashedOutPushesTargetedBalance(t *testing.T) {
	hub := newTestHub()

	hub.CashedOut(7, 42, 1.02, 51, 1001)

	public := nextMessage(t, hub)
	assert.Equal(t, "CASHED_OUT", public.Type)
	assert.Equal(t, int64(0), public.UserID)

	private := nextMessage(t, hub)
	assert.Equal(t, "BALANCE_UPDATE", private.Type)
	assert.Equal(t, int64(42), private.UserID)
	require.IsType(t, gin.H{}, private.Data)
	assert.Equal(t, 1001.0, private.Data.(gin.H)["balance"])
}

func TestPushDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub()
	hub.broadcast = make(chan *Message, 1)

	hub.push(&Message{Type: "COUNTDOWN"})
	hub.push(&Message{Type: "CRASHED"})

	msg := nextMessage(t, hub)
	assert.Equal(t, "COUNTDOWN", msg.Type)
	select {
	case extra := <-hub.broadcast:
		t.Fatalf("unexpected queued message %q", extra.Type)
	default:
	}
}
