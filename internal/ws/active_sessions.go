package ws

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/kiwikodes/Four-In-A-Row/internal/game"
	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

type ActiveSession struct {
	ID        string          `json:"id"`
	GameID    string          `json:"gameId"`
	BoardSize int             `json:"boardSize"`
	Players   int             `json:"players"`
	Moves     int             `json:"moves"`
	Status    game.GameStatus `json:"status"`
	StartedAt time.Time       `json:"startedAt"`
}

// GetActiveSessions returns every live session, oldest first.
func (h *Hub) GetActiveSessions() []ActiveSession {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	active := make([]ActiveSession, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		if !s.closed {
			active = append(active, ActiveSession{
				ID:        s.ID,
				GameID:    s.gameID.String(),
				BoardSize: s.game.Size(),
				Players:   s.players,
				Moves:     s.game.Moves(),
				Status:    s.game.Status(),
				StartedAt: s.startedAt,
			})
		}
		s.mu.Unlock()
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartedAt.Before(active[j].StartedAt)
	})
	return active
}

// HandleActiveSessions is an HTTP handler for listing live sessions
func (h *Hub) HandleActiveSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.GetActiveSessions()); err != nil {
		logger.Error("Error encoding active sessions", err)
	}
}
