package models

type GameType string

const (
	GameTypeCrash     GameType = "crash"
	GameTypeMines     GameType = "mines"
	GameTypeBlackjack GameType = "blackjack"
	GameTypeSlots     GameType = "slots"
	GameTypeCards     GameType = "cards"

	// GameTypeRakeback tags rakeback credits in the history list; it is not
	// a playable game.
	GameTypeRakeback GameType = "rakeback"
)

func (g GameType) Valid() bool {
	switch g {
	case GameTypeCrash, GameTypeMines, GameTypeBlackjack, GameTypeSlots, GameTypeCards:
		return true
	}
	return false
}

// SessionState is the lifecycle of a per-user game session.
type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionWon       SessionState = "won"
	SessionLost      SessionState = "lost"
	SessionCashedOut SessionState = "cashed_out"
	SessionPush      SessionState = "push"
)

// Terminal reports whether a session in this state is finished.
func (s SessionState) Terminal() bool { return s != SessionActive }
