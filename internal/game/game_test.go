package game

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func mustGame(t *testing.T, size int) *Game {
	t.Helper()
	g, err := NewGame(size)
	if err != nil {
		t.Fatalf("NewGame(%d): %v", size, err)
	}
	return g
}

func play(t *testing.T, g *Game, cols ...int) *MoveOutcome {
	t.Helper()
	var last *MoveOutcome
	for _, col := range cols {
		out, err := g.CommitMove(col)
		if err != nil {
			t.Fatalf("CommitMove(%d): %v", col, err)
		}
		last = out
	}
	return last
}

func TestCommitMoveScoresHorizontalLine(t *testing.T) {
	g := mustGame(t, 4)
	// PlayerOne fills row 0, PlayerTwo stacks on top of it.
	play(t, g, 0, 0, 1, 1, 2, 2)
	out := play(t, g, 3)

	if out.Player != PlayerOne || out.Row != 0 || out.Column != 3 {
		t.Fatalf("outcome = %+v, want PlayerOne at (3, 0)", out)
	}
	if out.Points != 1 {
		t.Fatalf("Points = %d, want 1", out.Points)
	}
	if !reflect.DeepEqual(out.Connections[Horizontal], []int{-3}) {
		t.Fatalf("horizontal offsets = %v, want [-3]", out.Connections[Horizontal])
	}
	lines := out.Lines()
	if len(lines) != 1 || lines[0].Cells != [4]Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}} {
		t.Fatalf("Lines = %+v", lines)
	}
	if g.Scores() != [2]int{1, 0} {
		t.Fatalf("Scores = %v, want [1 0]", g.Scores())
	}
	if g.CurrentPlayer() != PlayerTwo {
		t.Fatalf("CurrentPlayer = %v, want PlayerTwo", g.CurrentPlayer())
	}
}

func TestCommitMoveAlternatesTurns(t *testing.T) {
	g := mustGame(t, 3)
	want := []Player{PlayerOne, PlayerTwo, PlayerOne, PlayerTwo}
	for i, p := range want {
		if g.CurrentPlayer() != p {
			t.Fatalf("move %d: CurrentPlayer = %v, want %v", i, g.CurrentPlayer(), p)
		}
		out := play(t, g, i%3)
		if out.Player != p {
			t.Fatalf("move %d placed by %v, want %v", i, out.Player, p)
		}
	}
}

func TestIllegalMoves(t *testing.T) {
	g := mustGame(t, 2)
	play(t, g, 0, 0)

	for _, col := range []int{-1, 2, 0} {
		_, err := g.CommitMove(col)
		if !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("CommitMove(%d) error = %v, want ErrIllegalMove", col, err)
		}
		var ime *IllegalMoveError
		if !errors.As(err, &ime) || ime.Column != col {
			t.Fatalf("CommitMove(%d) error %v is not an IllegalMoveError for that column", col, err)
		}
		if _, err := g.SimulateMove(col, PlayerOne); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("SimulateMove(%d) error = %v, want ErrIllegalMove", col, err)
		}
	}
	if g.Moves() != 2 || g.CurrentPlayer() != PlayerOne {
		t.Fatalf("rejected moves changed state: moves=%d current=%v", g.Moves(), g.CurrentPlayer())
	}
}

func TestSimulateMoveRejectsEmptyPlayer(t *testing.T) {
	g := mustGame(t, 4)
	if _, err := g.SimulateMove(0, Empty); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("error = %v, want ErrInvalidPlayer", err)
	}
}

func TestSimulateMoveLeavesNoTrace(t *testing.T) {
	g := mustGame(t, 5)
	play(t, g, 0, 1, 0, 1, 0, 1)

	before := g.Snapshot()
	heights := make([]int, g.Size())
	for col := range heights {
		heights[col] = g.Height(col)
	}

	for _, col := range g.LegalColumns() {
		for _, p := range []Player{PlayerOne, PlayerTwo} {
			first, err := g.SimulateMove(col, p)
			if err != nil {
				t.Fatalf("SimulateMove(%d, %v): %v", col, p, err)
			}
			second, _ := g.SimulateMove(col, p)
			if first != second {
				t.Fatalf("SimulateMove(%d, %v) returned %d then %d", col, p, first, second)
			}
		}
	}

	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("snapshot changed:\nbefore %+v\nafter  %+v", before, after)
	}
	for col, h := range heights {
		if g.Height(col) != h {
			t.Fatalf("height of column %d changed from %d to %d", col, h, g.Height(col))
		}
	}
}

func TestSimulateMoveCountsOpponentPoints(t *testing.T) {
	g := mustGame(t, 4)
	// PlayerTwo holds columns 0-2 on row 1; column 3 row 1 is the next landing spot there.
	play(t, g, 0, 0, 1, 1, 2, 2, 3)

	got, err := g.SimulateMove(3, PlayerTwo)
	if err != nil {
		t.Fatalf("SimulateMove: %v", err)
	}
	if got != 1 {
		t.Fatalf("SimulateMove(3, PlayerTwo) = %d, want 1", got)
	}
	if mine, _ := g.SimulateMove(3, PlayerOne); mine != 0 {
		t.Fatalf("SimulateMove(3, PlayerOne) = %d, want 0", mine)
	}
	if g.Scores() != [2]int{1, 0} || g.CurrentPlayer() != PlayerTwo {
		t.Fatalf("simulate touched scores or turn: %v %v", g.Scores(), g.CurrentPlayer())
	}
}

func TestBoardLifecycle(t *testing.T) {
	g := mustGame(t, 2)
	if g.HasStarted() || g.IsBoardFull() || g.Status() != StatusNotStarted {
		t.Fatal("fresh game should be neither started nor full")
	}
	play(t, g, 0)
	if !g.HasStarted() || g.Status() != StatusInProgress {
		t.Fatal("game should be in progress after one move")
	}
	if _, ok := g.Winner(); ok {
		t.Fatal("Winner reported before the board filled")
	}
	play(t, g, 0, 1, 1)
	if !g.IsBoardFull() || g.HasStarted() {
		t.Fatal("full board should not count as started")
	}
	if w, ok := g.Winner(); !ok || w != Empty || g.Status() != StatusDraw {
		t.Fatalf("Winner = %v, %v; status %s, want draw", w, ok, g.Status())
	}
}

func TestWinnerByScore(t *testing.T) {
	g := mustGame(t, 4)
	// PlayerOne takes row 0 and row 2; PlayerTwo takes row 1 and row 3.
	play(t, g, 0, 0, 1, 1, 2, 2, 3, 3)
	play(t, g, 0, 0, 1, 1, 2, 2, 3, 3)

	if g.Scores() != [2]int{2, 2} {
		t.Fatalf("Scores = %v, want [2 2]", g.Scores())
	}
	if w, ok := g.Winner(); !ok || w != Empty {
		t.Fatalf("Winner = %v, %v, want draw", w, ok)
	}

	g = mustGame(t, 4)
	// PlayerOne fills column 0, then completes row 2; PlayerTwo never lines up.
	play(t, g, 0, 1, 0, 2, 0, 3, 0)
	play(t, g, 1, 1, 2, 2, 3, 3, 1, 2, 3)
	if g.Scores() != [2]int{2, 0} {
		t.Fatalf("Scores = %v, want [2 0]", g.Scores())
	}
	if w, ok := g.Winner(); !ok || w != PlayerOne || g.Status() != StatusCompleted {
		t.Fatalf("Winner = %v, %v, want PlayerOne", w, ok)
	}
}

// countLines counts every monochrome run on a board by brute force.
func countLines(g *Grid) [2]int {
	var counts [2]int
	for col := 0; col < g.size; col++ {
		for row := 0; row < g.size; row++ {
			p := g.At(col, row)
			if p == Empty {
				continue
			}
			for _, d := range Directions {
				dx, dy := d.Step()
				endCol, endRow := col+3*dx, row+3*dy
				if endCol < 0 || endCol >= g.size || endRow < 0 || endRow >= g.size {
					continue
				}
				if runMatches(g, col, row, dx, dy, p) {
					counts[p-1]++
				}
			}
		}
	}
	return counts
}

func TestRandomGamesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for size := 1; size <= 8; size++ {
		for round := 0; round < 20; round++ {
			g := mustGame(t, size)
			for !g.IsBoardFull() {
				legal := g.LegalColumns()
				col := legal[rng.Intn(len(legal))]
				before := g.Scores()
				out, err := g.CommitMove(col)
				if err != nil {
					t.Fatalf("size %d: CommitMove(%d): %v", size, col, err)
				}
				for _, line := range out.Lines() {
					for _, c := range line.Cells {
						if c.Column < 0 || c.Column >= size || c.Row < 0 || c.Row >= size {
							t.Fatalf("size %d: line %+v leaves the board", size, line)
						}
						if g.Cell(c.Column, c.Row) != out.Player {
							t.Fatalf("size %d: line %+v has a foreign cell", size, line)
						}
					}
				}
				after := g.Scores()
				if after[out.Player-1]-before[out.Player-1] != out.Points {
					t.Fatalf("size %d: score delta does not match %d points", size, out.Points)
				}
				assertContiguous(t, g.grid)
			}
			if g.Moves() != size*size {
				t.Fatalf("size %d: full board has %d moves", size, g.Moves())
			}
			if got := countLines(g.grid); got != g.Scores() {
				t.Fatalf("size %d: scores %v, brute force %v", size, g.Scores(), got)
			}
		}
	}
}

func TestSnapshotJSON(t *testing.T) {
	g := mustGame(t, 2)
	play(t, g, 1)

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded struct {
		Board         [][]int `json:"board"`
		CurrentPlayer int     `json:"currentPlayer"`
		Status        string  `json:"status"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal %s: %v", data, err)
	}
	if !reflect.DeepEqual(decoded.Board, [][]int{{0, 0}, {1, 0}}) {
		t.Fatalf("board = %v", decoded.Board)
	}
	if decoded.CurrentPlayer != 2 || decoded.Status != string(StatusInProgress) {
		t.Fatalf("decoded = %+v", decoded)
	}
}
