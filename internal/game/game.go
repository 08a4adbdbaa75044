package game

// MoveOutcome describes a committed move.
type MoveOutcome struct {
	Column      int         `json:"column"`
	Row         int         `json:"row"`
	Player      Player      `json:"player"`
	Points      int         `json:"points"`
	Connections Connections `json:"-"`
}

// Lines returns the lines formed by the move with their cell coordinates.
func (o *MoveOutcome) Lines() []Line {
	return o.Connections.Lines(Cell{Column: o.Column, Row: o.Row})
}

// Game owns a grid, both scores and the turn. It is not safe for concurrent use.
type Game struct {
	grid    *Grid
	current Player
	scores  [2]int
}

// NewGame starts a fresh game on a size×size board with PlayerOne to move.
func NewGame(size int) (*Game, error) {
	grid, err := NewGrid(size)
	if err != nil {
		return nil, err
	}
	return &Game{grid: grid, current: PlayerOne}, nil
}

func (g *Game) Size() int                { return g.grid.size }
func (g *Game) CurrentPlayer() Player    { return g.current }
func (g *Game) Moves() int               { return g.grid.filled }
func (g *Game) LegalColumns() []int      { return g.grid.LegalColumns() }
func (g *Game) Cell(col, row int) Player { return g.grid.At(col, row) }
func (g *Game) Height(col int) int       { return g.grid.Height(col) }

// Score returns the points accumulated by p.
func (g *Game) Score(p Player) int {
	if !p.valid() {
		return 0
	}
	return g.scores[p-1]
}

// Scores returns PlayerOne's and PlayerTwo's points.
func (g *Game) Scores() [2]int { return g.scores }

// IsBoardFull reports whether no more pieces can be placed.
func (g *Game) IsBoardFull() bool { return g.grid.Full() }

// HasStarted reports whether a game is in progress: at least one piece placed
// and the board not yet full.
func (g *Game) HasStarted() bool {
	return g.grid.filled > 0 && !g.grid.Full()
}

// CommitMove drops a piece for the current player, scores it and passes the turn.
func (g *Game) CommitMove(col int) (*MoveOutcome, error) {
	if err := g.grid.check(col); err != nil {
		return nil, err
	}
	p := g.current
	row := g.grid.drop(col, p)
	conns := scan(g.grid, col, row, p)
	points := conns.Points()

	g.scores[p-1] += points
	g.current = p.Opponent()

	return &MoveOutcome{
		Column:      col,
		Row:         row,
		Player:      p,
		Points:      points,
		Connections: conns,
	}, nil
}

// SimulateMove returns how many points p would score by playing col.
// The grid is restored before it returns; scores and turn are never touched.
func (g *Game) SimulateMove(col int, p Player) (int, error) {
	if !p.valid() {
		return 0, ErrInvalidPlayer
	}
	if err := g.grid.check(col); err != nil {
		return 0, err
	}
	var points int
	g.withPiece(col, p, func(row int) {
		points = scan(g.grid, col, row, p).Points()
	})
	return points, nil
}

// withPiece places a temporary piece, runs fn and always takes the piece back.
func (g *Game) withPiece(col int, p Player, fn func(row int)) {
	row := g.grid.drop(col, p)
	defer g.grid.removeTop(col)
	fn(row)
}

// Winner returns the verdict once the board is full: the player with more
// points, or Empty for a draw. ok is false while the game is still running.
func (g *Game) Winner() (winner Player, ok bool) {
	if !g.grid.Full() {
		return Empty, false
	}
	switch {
	case g.scores[0] > g.scores[1]:
		return PlayerOne, true
	case g.scores[1] > g.scores[0]:
		return PlayerTwo, true
	}
	return Empty, true
}
