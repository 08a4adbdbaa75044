package analytics

import (
	"time"

	"github.com/kiwikodes/Four-In-A-Row/internal/game"
)

// GameEvent represents an event in the game
type GameEvent struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	GameID    string                 `json:"gameId"`
	Data      map[string]interface{} `json:"data"`
}

// EventType constants
const (
	EventGameStart = "game_start"
	EventMove      = "move"
	EventGameEnd   = "game_end"
)

// NewGameStartEvent records a fresh board. players is 1 against the bot, 2 hot-seat.
func NewGameStartEvent(gameID string, size, players int) GameEvent {
	return GameEvent{
		Type:   EventGameStart,
		GameID: gameID,
		Data: map[string]interface{}{
			"boardSize": size,
			"players":   players,
			"isBotGame": players == 1,
		},
	}
}

// NewMoveEvent records one committed move.
func NewMoveEvent(gameID string, out *game.MoveOutcome, byBot bool) GameEvent {
	return GameEvent{
		Type:   EventMove,
		GameID: gameID,
		Data: map[string]interface{}{
			"player": out.Player.String(),
			"row":    out.Row,
			"column": out.Column,
			"points": out.Points,
			"byBot":  byBot,
		},
	}
}

// NewGameEndEvent records the verdict of a full board.
func NewGameEndEvent(gameID string, size int, scores [2]int, winner game.Player, duration time.Duration) GameEvent {
	return GameEvent{
		Type:   EventGameEnd,
		GameID: gameID,
		Data: map[string]interface{}{
			"boardSize":      size,
			"winner":         winner.String(),
			"isDraw":         winner == game.Empty,
			"playerOneScore": scores[0],
			"playerTwoScore": scores[1],
			"duration":       duration.Seconds(),
		},
	}
}
