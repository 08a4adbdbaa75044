package game

import "fmt"

// Grid is the N×N occupancy state stored column-major.
// Pieces stack from row 0 upward, so cells[col][:heights[col]] are always occupied.
type Grid struct {
	size    int
	cells   [][]Player
	heights []int
	filled  int
}

// NewGrid creates an empty grid. size must be positive.
func NewGrid(size int) (*Grid, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	cells := make([][]Player, size)
	for col := range cells {
		cells[col] = make([]Player, size)
	}
	return &Grid{
		size:    size,
		cells:   cells,
		heights: make([]int, size),
	}, nil
}

func (g *Grid) Size() int { return g.size }

// Height returns the number of pieces stacked in col.
func (g *Grid) Height(col int) int { return g.heights[col] }

// At returns the occupant of (col, row).
func (g *Grid) At(col, row int) Player { return g.cells[col][row] }

// Filled returns the total number of pieces on the board.
func (g *Grid) Filled() int { return g.filled }

// Full reports whether every column is at capacity.
func (g *Grid) Full() bool { return g.filled == g.size*g.size }

// LegalColumns returns every column that can still take a piece, in ascending order.
func (g *Grid) LegalColumns() []int {
	cols := make([]int, 0, g.size)
	for col, h := range g.heights {
		if h < g.size {
			cols = append(cols, col)
		}
	}
	return cols
}

// check validates col without mutating anything.
func (g *Grid) check(col int) error {
	if col < 0 || col >= g.size {
		return &IllegalMoveError{Column: col, Reason: reasonOutOfRange}
	}
	if g.heights[col] == g.size {
		return &IllegalMoveError{Column: col, Reason: reasonColumnFull}
	}
	return nil
}

// drop lands a piece for p on top of col and returns its row.
// Callers must have validated col with check.
func (g *Grid) drop(col int, p Player) int {
	row := g.heights[col]
	g.cells[col][row] = p
	g.heights[col]++
	g.filled++
	return row
}

// removeTop clears the highest piece of col. Only the simulate path uses it.
func (g *Grid) removeTop(col int) {
	if g.heights[col] == 0 {
		panic(fmt.Sprintf("game: removeTop on empty column %d", col))
	}
	g.heights[col]--
	g.filled--
	g.cells[col][g.heights[col]] = Empty
}

// Columns returns a copy of the cells, column-major with row 0 at the bottom.
func (g *Grid) Columns() [][]Player {
	out := make([][]Player, g.size)
	for col := range g.cells {
		out[col] = append([]Player(nil), g.cells[col]...)
	}
	return out
}
