package rules

import (
	"gobblet/internal/board"
	"gobblet/internal/core"
)

// WinScore is the score of an owner who already holds a full line.
const WinScore = 100

// Line is four cells that win when one owner shows on all of them.
type Line [core.BoardSize]core.Coord

var rows, columns, diagonals = buildLines()

// buildLines lays out rows and columns in wire order. The diagonals are
// wire [0][0]..[3][3] and [3][0]..[0][3].
func buildLines() (r, c, d []Line) {
	for row := core.BoardSize - 1; row >= 0; row-- {
		var l Line
		for col := 0; col < core.BoardSize; col++ {
			l[col] = core.Coord{Col: col, Row: row}
		}
		r = append(r, l)
	}
	for col := 0; col < core.BoardSize; col++ {
		var l Line
		for i, row := 0, core.BoardSize-1; row >= 0; i, row = i+1, row-1 {
			l[i] = core.Coord{Col: col, Row: row}
		}
		c = append(c, l)
	}
	var down, up Line
	for i := 0; i < core.BoardSize; i++ {
		down[i] = core.Coord{Col: i, Row: core.BoardSize - 1 - i}
		up[i] = core.Coord{Col: i, Row: i}
	}
	d = []Line{down, up}
	return r, c, d
}

// Lines returns the 4 rows, 4 columns and 2 diagonals.
func Lines() []Line {
	out := make([]Line, 0, len(rows)+len(columns)+len(diagonals))
	out = append(out, rows...)
	out = append(out, columns...)
	return append(out, diagonals...)
}

// count returns how many visible pieces of each player sit on the line.
func count(b *board.Board, l Line, owner core.Owner) (mine, theirs int) {
	for _, c := range l {
		switch b.TopOwner(c) {
		case owner:
			mine++
		case owner.Opponent():
			theirs++
		}
	}
	return mine, theirs
}

// HasWin reports whether owner shows a piece on every cell of some line.
func HasWin(b *board.Board, owner core.Owner) bool {
	for _, l := range Lines() {
		if mine, _ := count(b, l, owner); mine == core.BoardSize {
			return true
		}
	}
	return false
}

// Result classifies a position.
type Result int

const (
	Ongoing Result = iota
	Win
	DoubleWin
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case DoubleWin:
		return "double win"
	default:
		return "ongoing"
	}
}

// Outcome is the terminal status of a board. Winner is set only for Win.
type Outcome struct {
	Result Result
	Winner core.Owner
}

func (o Outcome) Terminal() bool {
	return o.Result != Ongoing
}

// Evaluate checks both players. Both holding a line at once is a DoubleWin
// with no winner named.
func Evaluate(b *board.Board) Outcome {
	one, two := HasWin(b, core.Player1), HasWin(b, core.Player2)
	switch {
	case one && two:
		return Outcome{Result: DoubleWin}
	case one:
		return Outcome{Result: Win, Winner: core.Player1}
	case two:
		return Outcome{Result: Win, Winner: core.Player2}
	}
	return Outcome{Result: Ongoing}
}

// Score is the positional value of b for owner: the best open line count
// among rows, among columns and among diagonals, summed. A line is open
// when the opponent shows nothing on it. A full line scores WinScore.
func Score(b *board.Board, owner core.Owner) int {
	if HasWin(b, owner) {
		return WinScore
	}
	total := 0
	for _, group := range [][]Line{rows, columns, diagonals} {
		best := 0
		for _, l := range group {
			mine, theirs := count(b, l, owner)
			if theirs == 0 && mine > best {
				best = mine
			}
		}
		total += best
	}
	return total
}
