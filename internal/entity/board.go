package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

const (
	Rows      = 6
	Columns   = 7
	WinLength = 4
)

// Mark is the content of a single board cell.
type Mark int8

const (
	Empty Mark = iota
	MarkA
	MarkB
)

// placeholder token used when rendering an empty cell.
const emptyToken = 'O'

var (
	ErrInvalidColumn = errors.New("invalid column index")
	ErrInvalidMark   = errors.New("invalid mark")

	// directions probed from every start cell: horizontal, vertical, "/" and "\".
	lineDirections = [4][2]int{
		{0, 1},
		{1, 0},
		{1, -1},
		{1, 1},
	}
)

// Token returns the single character a mark is rendered with on the wire.
func (that Mark) Token() byte {
	switch that {
	case MarkA:
		return 'R'
	case MarkB:
		return 'Y'
	default:
		return emptyToken
	}
}

func (that Mark) String() string {
	return string(that.Token())
}

// Board is a Connect Four grid. Row 0 is the top row, so pieces fall towards Rows-1.
// The zero value is an empty board.
type Board struct {
	cells [Rows][Columns]Mark
}

func NewBoard() *Board {
	return &Board{}
}

// Reset empties every cell.
func (that *Board) Reset() {
	that.cells = [Rows][Columns]Mark{}
}

// Cell returns the mark at (row, column), or Empty when the position is off the board.
func (that *Board) Cell(row, column int) Mark {
	if !inBounds(row, column) {
		return Empty
	}

	return that.cells[row][column]
}

// ColumnFull reports whether column has no empty cell left.
func (that *Board) ColumnFull(column int) bool {
	if column < 0 || column >= Columns {
		return false
	}

	return that.cells[0][column] != Empty
}

// Drop places mark into the lowest empty cell of column and returns the row it landed in.
func (that *Board) Drop(column int, mark Mark) (int, error) {
	if column < 0 || column >= Columns {
		return -1, fmt.Errorf("%w: column %d", ErrInvalidColumn, column)
	}

	if mark != MarkA && mark != MarkB {
		return -1, fmt.Errorf("%w: %d", ErrInvalidMark, mark)
	}

	for row := Rows - 1; row >= 0; row-- {
		if that.cells[row][column] == Empty {
			that.cells[row][column] = mark
			return row, nil
		}
	}

	return -1, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, column)
}

// IsFull reports whether the top row is occupied. Gravity guarantees the rest is too.
func (that *Board) IsFull() bool {
	for column := 0; column < Columns; column++ {
		if that.cells[0][column] == Empty {
			return false
		}
	}

	return true
}

// LineOfFourExists reports whether mark owns WinLength contiguous cells in any orientation.
func (that *Board) LineOfFourExists(mark Mark) bool {
	if mark == Empty {
		return false
	}

	for row := 0; row < Rows; row++ {
		for column := 0; column < Columns; column++ {
			for _, dir := range lineDirections {
				if that.lineFrom(row, column, dir[0], dir[1], mark) {
					return true
				}
			}
		}
	}

	return false
}

// lineFrom checks the WinLength cells starting at (row, column) along (dRow, dColumn).
func (that *Board) lineFrom(row, column, dRow, dColumn int, mark Mark) bool {
	endRow := row + dRow*(WinLength-1)
	endColumn := column + dColumn*(WinLength-1)
	if !inBounds(row, column) || !inBounds(endRow, endColumn) {
		return false
	}

	for step := 0; step < WinLength; step++ {
		if that.cells[row+dRow*step][column+dColumn*step] != mark {
			return false
		}
	}

	return true
}

// Rows renders every row top to bottom as a string of tokens, e.g. "OOORYOO".
func (that *Board) Rows() []string {
	rows := make([]string, 0, Rows)

	var sb strings.Builder
	for row := 0; row < Rows; row++ {
		sb.Reset()
		for column := 0; column < Columns; column++ {
			sb.WriteByte(that.cells[row][column].Token())
		}
		rows = append(rows, sb.String())
	}

	return rows
}

func inBounds(row, column int) bool {
	return row >= 0 && row < Rows && column >= 0 && column < Columns
}
