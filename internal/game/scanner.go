package game

// runLength is the number of pieces that make a line.
const runLength = 4

// Connections holds, per direction, the start offsets of every run that
// passes through an anchor cell. Offset i means the run covers
// anchor + (i+c)*step for c in 0..3, so i is always within [-3, 0].
type Connections [4][]int

// Points counts every run across all directions. Overlapping runs count separately.
func (c Connections) Points() int {
	n := 0
	for _, offsets := range c {
		n += len(offsets)
	}
	return n
}

// Line is a completed four-in-a-row.
type Line struct {
	Direction Direction `json:"direction"`
	Offset    int       `json:"offset"`
	Cells     [4]Cell   `json:"cells"`
}

// Lines expands the offsets around anchor into explicit cell coordinates.
func (c Connections) Lines(anchor Cell) []Line {
	lines := make([]Line, 0, c.Points())
	for _, d := range Directions {
		dx, dy := d.Step()
		for _, off := range c[d] {
			line := Line{Direction: d, Offset: off}
			for k := 0; k < runLength; k++ {
				line.Cells[k] = Cell{
					Column: anchor.Column + (off+k)*dx,
					Row:    anchor.Row + (off+k)*dy,
				}
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// scan finds every run of p through (col, row). Only the four directions
// through the anchor are inspected, never the whole board.
func scan(g *Grid, col, row int, p Player) Connections {
	var conns Connections
	for _, d := range Directions {
		dx, dy := d.Step()
		lo, hi := offsetRange(g.size, col, dx)
		ylo, yhi := offsetRange(g.size, row, dy)
		lo, hi = max(lo, ylo), min(hi, yhi)
		for i := lo; i <= hi; i++ {
			if runMatches(g, col+i*dx, row+i*dy, dx, dy, p) {
				conns[d] = append(conns[d], i)
			}
		}
	}
	return conns
}

// offsetRange clips the candidate offsets [-3, 0] so that every cell
// x + (i+c)*step, c in 0..3, stays inside [0, size).
func offsetRange(size, x, step int) (lo, hi int) {
	lo, hi = -(runLength - 1), 0
	switch step {
	case 1:
		lo = max(lo, -x)
		hi = min(hi, size-runLength-x)
	case -1:
		lo = max(lo, x-size+1)
		hi = min(hi, x-(runLength-1))
	}
	return lo, hi
}

// runMatches reports whether the four cells starting at (col, row) all belong to p.
func runMatches(g *Grid, col, row, dx, dy int, p Player) bool {
	for k := 0; k < runLength; k++ {
		if g.cells[col+k*dx][row+k*dy] != p {
			return false
		}
	}
	return true
}
