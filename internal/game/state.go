package game

// GameStatus represents the current state of the game
type GameStatus string

const (
	StatusNotStarted GameStatus = "not_started"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
	StatusDraw       GameStatus = "draw"
)

// Snapshot is a read-only copy of the game for renderers and scoreboards.
// Board is column-major: Board[col][row] with row 0 at the bottom.
type Snapshot struct {
	Size          int        `json:"size"`
	Board         [][]Player `json:"board"`
	CurrentPlayer Player     `json:"currentPlayer"`
	Scores        [2]int     `json:"scores"`
	Moves         int        `json:"moves"`
	LegalColumns  []int      `json:"legalColumns"`
	HasStarted    bool       `json:"hasStarted"`
	IsFull        bool       `json:"isFull"`
	Status        GameStatus `json:"status"`
	Winner        Player     `json:"winner,omitempty"`
	IsDraw        bool       `json:"isDraw,omitempty"`
}

// Status derives the lifecycle status from the board.
func (g *Game) Status() GameStatus {
	if w, ok := g.Winner(); ok {
		if w == Empty {
			return StatusDraw
		}
		return StatusCompleted
	}
	if g.grid.filled == 0 {
		return StatusNotStarted
	}
	return StatusInProgress
}

// Snapshot returns the current state
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		Size:          g.grid.size,
		Board:         g.grid.Columns(),
		CurrentPlayer: g.current,
		Scores:        g.scores,
		Moves:         g.grid.filled,
		LegalColumns:  g.grid.LegalColumns(),
		HasStarted:    g.HasStarted(),
		IsFull:        g.grid.Full(),
		Status:        g.Status(),
	}
	if w, ok := g.Winner(); ok {
		s.Winner = w
		s.IsDraw = w == Empty
	}
	return s
}
