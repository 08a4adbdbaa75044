package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiwikodes/Four-In-A-Row/internal/analytics"
	"github.com/kiwikodes/Four-In-A-Row/internal/database"
	"github.com/kiwikodes/Four-In-A-Row/internal/game"
	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

// Session is one board shown to one client, either hot-seat or against the bot.
// Restart replaces the game but keeps the session.
type Session struct {
	ID      string
	client  *Client
	players int

	mu        sync.Mutex
	game      *game.Game
	gameID    uuid.UUID
	round     int
	startedAt time.Time
	closed    bool
}

func (s *Session) currentGameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID.String()
}

// botTurn reports whether the bot is to move. Caller holds s.mu.
func (s *Session) botTurn() bool {
	return s.players == 1 && s.game.CurrentPlayer() == game.PlayerTwo
}

// reset starts a fresh game of size. Caller holds s.mu.
func (s *Session) reset(size int) error {
	g, err := game.NewGame(size)
	if err != nil {
		return err
	}
	s.game = g
	s.gameID = uuid.New()
	s.round++
	s.startedAt = time.Now().UTC()
	return nil
}

func (h *Hub) handleNewGame(c *Client, p NewGamePayload) {
	size := h.opts.DefaultBoardSize
	if p.Size != nil {
		size = *p.Size
	}
	if size < 1 || size > h.opts.MaxBoardSize {
		c.sendError(c.gameID(), fmt.Sprintf("board size must be between 1 and %d", h.opts.MaxBoardSize))
		return
	}
	if p.Players != 1 && p.Players != 2 {
		c.sendError(c.gameID(), "players must be 1 or 2")
		return
	}

	c.endSession()

	s := &Session{ID: uuid.NewString(), client: c, players: p.Players}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reset(size); err != nil {
		c.sendError("", err.Error())
		return
	}
	c.session = s
	h.addSession(s)

	logger.Info("Game started", logger.Fields{
		"session": s.ID, "gameId": s.gameID.String(), "size": size, "players": s.players,
	})
	h.startRound(s)
}

// startRound announces a fresh game. Caller holds s.mu.
func (h *Hub) startRound(s *Session) {
	payload := GameStartPayload{SessionID: s.ID, Players: s.players, State: s.game.Snapshot()}
	if s.players == 1 {
		payload.Bot = h.bot.Name
	}
	s.client.sendMessage(GameMessage{Type: TypeGameStart, GameID: s.gameID.String(), Payload: payload})
	h.emit(analytics.NewGameStartEvent(s.gameID.String(), s.game.Size(), s.players))
}

func (h *Hub) handleMove(c *Client, column int) {
	s := c.session
	if s == nil {
		c.sendError("", "no game in progress")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gameID := s.gameID.String()
	switch {
	case s.game.IsBoardFull():
		c.sendError(gameID, "game is over")
		return
	case s.botTurn():
		c.sendError(gameID, "wait for "+h.bot.Name+" to move")
		return
	}

	out, err := s.game.CommitMove(column)
	if err != nil {
		// Illegal moves leave the game untouched.
		c.sendError(gameID, err.Error())
		return
	}
	h.afterMove(s, out, false)
}

// afterMove reports a committed move and either ends the game or hands the
// turn to the bot. Caller holds s.mu.
func (h *Hub) afterMove(s *Session, out *game.MoveOutcome, byBot bool) {
	gameID := s.gameID.String()
	s.client.sendMessage(GameMessage{
		Type:   TypeMoveMade,
		GameID: gameID,
		Payload: MoveMadePayload{
			Column: out.Column,
			Row:    out.Row,
			Player: out.Player,
			Points: out.Points,
			ByBot:  byBot,
			Lines:  out.Lines(),
			State:  s.game.Snapshot(),
		},
	})
	h.emit(analytics.NewMoveEvent(gameID, out, byBot))

	if s.game.IsBoardFull() {
		h.finish(s)
		return
	}
	if s.botTurn() {
		h.scheduleBotMove(s)
	}
}

// scheduleBotMove plays the bot's reply after the configured delay. The reply
// is discarded when the session was restarted or ended in the meantime.
func (h *Hub) scheduleBotMove(s *Session) {
	round := s.round
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		timer := time.NewTimer(h.opts.BotMoveDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-s.client.done:
			return
		case <-h.done:
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.round != round || !s.botTurn() {
			return
		}

		column, err := h.bot.CalculateNextMove(s.game)
		if err != nil {
			logger.Error("Bot move error", logger.Fields{"gameId": s.gameID.String(), "error": err.Error()})
			return
		}
		out, err := s.game.CommitMove(column)
		if err != nil {
			logger.Error("Bot chose an illegal move", logger.Fields{"gameId": s.gameID.String(), "column": column, "error": err.Error()})
			return
		}
		logger.Debug("Bot moved", logger.Fields{"gameId": s.gameID.String(), "column": column, "points": out.Points})
		h.afterMove(s, out, true)
	}()
}

// finish announces the verdict and records the result. Caller holds s.mu.
func (h *Hub) finish(s *Session) {
	winner, ok := s.game.Winner()
	if !ok {
		return
	}
	gameID := s.gameID.String()
	scores := s.game.Scores()
	endedAt := time.Now().UTC()

	s.client.sendMessage(GameMessage{
		Type:   TypeGameFinished,
		GameID: gameID,
		Payload: GameFinishedPayload{
			Scores: scores,
			Winner: winner,
			IsDraw: winner == game.Empty,
			BotWon: s.players == 1 && winner == game.PlayerTwo,
		},
	})
	h.emit(analytics.NewGameEndEvent(gameID, s.game.Size(), scores, winner, endedAt.Sub(s.startedAt)))

	logger.Info("Game finished", logger.Fields{
		"session": s.ID, "gameId": gameID, "scores": scores, "outcome": database.Outcome(winner),
	})

	result, err := database.NewGameResult(s.gameID, s.players, s.startedAt, endedAt, s.game)
	if err != nil {
		logger.Error("Error building game result", err)
		return
	}
	h.storeResult(result)
}

func (h *Hub) handleRestart(c *Client) {
	s := c.session
	if s == nil {
		c.sendError("", "no game to restart")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reset(s.game.Size()); err != nil {
		c.sendError(s.gameID.String(), err.Error())
		return
	}
	logger.Info("Game restarted", logger.Fields{"session": s.ID, "gameId": s.gameID.String()})
	h.startRound(s)
}

func (h *Hub) handleState(c *Client) {
	s := c.session
	if s == nil {
		c.sendError("", "no game in progress")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.sendMessage(GameMessage{Type: TypeGameState, GameID: s.gameID.String(), Payload: s.game.Snapshot()})
}

func (h *Hub) handleEndGame(c *Client) {
	s := c.session
	if s == nil {
		c.sendMessage(GameMessage{Type: TypeGameEnded, Payload: GameEndedPayload{}})
		return
	}

	s.mu.Lock()
	gameID := s.gameID.String()
	ongoing := s.game.HasStarted()
	s.mu.Unlock()

	c.endSession()
	c.sendMessage(GameMessage{Type: TypeGameEnded, GameID: gameID, Payload: GameEndedPayload{WasOngoing: ongoing}})
}

// endSession closes the client's session, if any, and forgets it.
func (c *Client) endSession() {
	s := c.session
	if s == nil {
		return
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	c.hub.dropSession(s)
	c.session = nil
	logger.Debug("Session ended", logger.Fields{"session": s.ID})
}
