package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the wire envelope for round events. A zero UserID means the
// message fans out to everyone.
type Message struct {
	Type   string      `json:"type"`
	UserID int64       `json:"-"`
	Data   interface{} `json:"data"`
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
}

// WebSocketHub fans round events out to every connected client. It also
// implements round.Broadcaster, so the round engine pushes phase changes
// and multiplier ticks straight into it.
type WebSocketHub struct {
	clients    map[int64]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

func NewWebSocketHub() *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[int64]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}

	go hub.run()
	return hub
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.UserID] = client.Conn
			log.WithField("user_id", client.UserID).Debug("websocket client registered")

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.UserID]; ok {
				delete(hub.clients, client.UserID)
				log.WithField("user_id", client.UserID).Debug("websocket client unregistered")
			}

		case message := <-hub.broadcast:
			hub.deliver(message)
		}
	}
}

func (hub *WebSocketHub) deliver(message *Message) {
	if message.UserID != 0 {
		if conn, ok := hub.clients[message.UserID]; ok {
			conn.WriteJSON(message)
		}
		return
	}
	for _, conn := range hub.clients {
		conn.WriteJSON(message)
	}
}

func (hub *WebSocketHub) push(msg *Message) {
	select {
	case hub.broadcast <- msg:
	default:
		// A full buffer means a stalled consumer; drop rather than block
		// the round engine.
		log.WithField("type", msg.Type).Warn("websocket broadcast buffer full, dropping")
	}
}

// pushBalance confirms a balance change to one user only; deliver routes it
// on the non-zero UserID instead of fanning it out.
func (hub *WebSocketHub) pushBalance(userID int64, balance float64) {
	hub.push(&Message{Type: "BALANCE_UPDATE", UserID: userID, Data: gin.H{
		"balance": balance,
	}})
}

// round.Broadcaster implementation.

func (hub *WebSocketHub) BettingOpened(roundNumber int64, secondsLeft int) {
	hub.push(&Message{Type: "BETTING_OPENED", Data: gin.H{
		"round_number": roundNumber,
		"seconds_left": secondsLeft,
	}})
}

func (hub *WebSocketHub) Countdown(roundNumber int64, secondsLeft int) {
	hub.push(&Message{Type: "COUNTDOWN", Data: gin.H{
		"round_number": roundNumber,
		"seconds_left": secondsLeft,
	}})
}

func (hub *WebSocketHub) BetAccepted(roundNumber int64, userID int64, amount, balance float64) {
	hub.push(&Message{Type: "BET_ACCEPTED", Data: gin.H{
		"round_number": roundNumber,
		"user_id":      userID,
		"amount":       amount,
	}})
	hub.pushBalance(userID, balance)
}

func (hub *WebSocketHub) FlightStarted(roundNumber int64) {
	hub.push(&Message{Type: "FLIGHT_STARTED", Data: gin.H{
		"round_number": roundNumber,
	}})
}

func (hub *WebSocketHub) MultiplierTick(roundNumber int64, multiplier, position float64) {
	hub.push(&Message{Type: "MULTIPLIER_TICK", Data: gin.H{
		"round_number": roundNumber,
		"multiplier":   multiplier,
		"position":     position,
		"timestamp":    time.Now().UnixMilli(),
	}})
}

func (hub *WebSocketHub) CashedOut(roundNumber int64, userID int64, multiplier, payout, balance float64) {
	hub.push(&Message{Type: "CASHED_OUT", Data: gin.H{
		"round_number": roundNumber,
		"user_id":      userID,
		"multiplier":   multiplier,
		"payout":       payout,
	}})
	hub.pushBalance(userID, balance)
}

func (hub *WebSocketHub) Crashed(roundNumber int64, crashPoint float64) {
	hub.push(&Message{Type: "CRASHED", Data: gin.H{
		"round_number": roundNumber,
		"crash_point":  crashPoint,
	}})
}

type WebSocketHandler struct {
	hub *WebSocketHub
}

func NewWebSocketHandler(hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade to websocket")
		return
	}

	client := &Client{UserID: userID, Conn: conn}
	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("websocket read error")
			}
			break
		}

		if msg.Type == "PING" {
			conn.WriteJSON(Message{Type: "PONG", Data: gin.H{"timestamp": time.Now().Unix()}})
		}
	}
}
