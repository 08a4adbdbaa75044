package bot

import (
	"errors"

	"github.com/kiwikodes/Four-In-A-Row/internal/game"
)

// ErrNoLegalMoves is returned when the board has no column left to play.
var ErrNoLegalMoves = errors.New("bot: no legal moves")

// Board is the part of the move engine the bot needs. *game.Game satisfies it.
type Board interface {
	Size() int
	LegalColumns() []int
	CurrentPlayer() game.Player
	SimulateMove(col int, as game.Player) (int, error)
}

// Bot represents the AI opponent
type Bot struct {
	Name string
}

// NewBot creates a new bot instance
func NewBot(name string) *Bot {
	return &Bot{Name: name}
}

// CalculateNextMove picks the column that scores the most points right now.
// If nothing scores, it picks the column where the opponent would score the
// most and takes it away from them. Ties go to the column nearest the centre.
// The move is only chosen, never committed.
func (b *Bot) CalculateNextMove(board Board) (int, error) {
	moves := orderedMoves(board)
	if len(moves) == 0 {
		return -1, ErrNoLegalMoves
	}

	me := board.CurrentPlayer()
	best, points, err := bestMove(board, moves, me)
	if err != nil {
		return -1, err
	}
	if points < 1 {
		best, _, err = bestMove(board, moves, me.Opponent())
		if err != nil {
			return -1, err
		}
	}
	return best, nil
}

// bestMove returns the first column in moves with the highest yield for p.
func bestMove(board Board, moves []int, p game.Player) (col, points int, err error) {
	col, points = moves[0], -1
	for _, m := range moves {
		got, err := board.SimulateMove(m, p)
		if err != nil {
			return -1, 0, err
		}
		if got > points {
			col, points = m, got
		}
	}
	return col, points, nil
}

// orderedMoves filters CenterOrder down to the legal columns, keeping its order.
func orderedMoves(board Board) []int {
	legal := make(map[int]bool)
	for _, col := range board.LegalColumns() {
		legal[col] = true
	}
	moves := make([]int, 0, len(legal))
	for _, col := range CenterOrder(board.Size()) {
		if legal[col] {
			moves = append(moves, col)
		}
	}
	return moves
}

// CenterOrder lists the columns of an n-wide board from the centre outwards.
func CenterOrder(n int) []int {
	order := make([]int, 0, n)
	for i := n - 1; i >= 0; i-- {
		if i%2 == 0 {
			order = append(order, n-1-i/2)
		} else {
			order = append(order, i/2)
		}
	}
	return order
}
