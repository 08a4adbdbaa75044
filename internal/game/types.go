package game

import (
	"errors"
	"fmt"
)

// Player identifies the owner of a cell. Empty marks an unoccupied cell.
type Player int

const (
	Empty Player = iota
	PlayerOne
	PlayerTwo
)

// Opponent returns the other player. Empty has no opponent and is returned unchanged.
func (p Player) Opponent() Player {
	switch p {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	}
	return Empty
}

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "player_one"
	case PlayerTwo:
		return "player_two"
	}
	return "empty"
}

func (p Player) valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// Direction is one of the four axes a line can run along.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
	DiagonalUp
	DiagonalDown
)

// Directions lists every direction in scan order.
var Directions = [4]Direction{Horizontal, Vertical, DiagonalUp, DiagonalDown}

// Step returns the unit vector (dx, dy) of the direction.
func (d Direction) Step() (dx, dy int) {
	switch d {
	case Horizontal:
		return 1, 0
	case Vertical:
		return 0, 1
	case DiagonalUp:
		return 1, 1
	case DiagonalDown:
		return 1, -1
	}
	panic(fmt.Sprintf("game: unknown direction %d", int(d)))
}

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case DiagonalUp:
		return "diagonal_up"
	case DiagonalDown:
		return "diagonal_down"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// MarshalText lets directions appear by name in JSON payloads.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Cell is a board coordinate. Row 0 is the bottom of a column.
type Cell struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidSize   = errors.New("board size must be positive")
	ErrInvalidPlayer = errors.New("invalid player")
)

// IllegalMoveError reports a column that cannot accept a piece.
// It matches ErrIllegalMove with errors.Is.
type IllegalMoveError struct {
	Column int
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move: column %d %s", e.Column, e.Reason)
}

func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

const (
	reasonOutOfRange = "is out of range"
	reasonColumnFull = "is full"
)
