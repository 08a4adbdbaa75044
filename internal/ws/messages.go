package ws

import (
	"encoding/json"

	"github.com/kiwikodes/Four-In-A-Row/internal/game"
)

// Inbound message types.
const (
	TypeNewGame = "newGame"
	TypeMove    = "move"
	TypeRestart = "restart"
	TypeState   = "state"
	TypeEndGame = "endGame"
)

// Outbound message types.
const (
	TypeGameStart    = "gameStart"
	TypeMoveMade     = "moveMade"
	TypeGameFinished = "gameFinished"
	TypeGameState    = "gameState"
	TypeGameEnded    = "gameEnded"
	TypeError        = "error"
)

// Message is what clients send. Payload is decoded per Type.
type Message struct {
	Type    string          `json:"type"`
	GameID  string          `json:"gameId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// GameMessage is what the server sends.
type GameMessage struct {
	Type    string      `json:"type"`
	GameID  string      `json:"gameId,omitempty"`
	Payload interface{} `json:"payload"`
}

// NewGamePayload asks for a board. Size falls back to the server default.
type NewGamePayload struct {
	Size    *int `json:"size,omitempty"`
	Players int  `json:"players"`
}

type MovePayload struct {
	Column *int `json:"column"`
}

type GameStartPayload struct {
	SessionID string         `json:"sessionId"`
	Players   int            `json:"players"`
	Bot       string         `json:"bot,omitempty"`
	State     *game.Snapshot `json:"state"`
}

type MoveMadePayload struct {
	Column int            `json:"column"`
	Row    int            `json:"row"`
	Player game.Player    `json:"player"`
	Points int            `json:"points"`
	ByBot  bool           `json:"byBot"`
	Lines  []game.Line    `json:"lines"`
	State  *game.Snapshot `json:"state"`
}

type GameFinishedPayload struct {
	Scores [2]int      `json:"scores"`
	Winner game.Player `json:"winner"`
	IsDraw bool        `json:"isDraw"`
	BotWon bool        `json:"botWon"`
}

type GameEndedPayload struct {
	WasOngoing bool `json:"wasOngoing"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
