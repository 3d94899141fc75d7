package board

import (
	"fmt"

	"gobblet/internal/core"
)

// Stack is the pieces of one cell, bottom first.
type Stack []core.Piece

// Top returns the visible piece of the stack.
func (s Stack) Top() (core.Piece, bool) {
	if len(s) == 0 {
		return core.Piece{}, false
	}
	return s[len(s)-1], true
}

// Same reports whether both stacks hold the same pieces, owners included.
func (s Stack) Same(o Stack) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Same(o[i]) {
			return false
		}
	}
	return true
}

// Board is the 4x4 grid of cell stacks. Cells are stored in wire order
// (top visual row first); every access goes through at().
type Board struct {
	cells [core.BoardSize][core.BoardSize]Stack
}

func New() *Board {
	return &Board{}
}

// WireIndex maps a logical coordinate to its [row][col] wire position.
func WireIndex(c core.Coord) (row, col int) {
	return core.BoardSize - 1 - c.Row, c.Col
}

// Cells lists every coordinate in wire order: top row first, left to right.
func Cells() []core.Coord {
	out := make([]core.Coord, 0, core.BoardSize*core.BoardSize)
	for row := core.BoardSize - 1; row >= 0; row-- {
		for col := 0; col < core.BoardSize; col++ {
			out = append(out, core.Coord{Col: col, Row: row})
		}
	}
	return out
}

func (b *Board) at(c core.Coord) *Stack {
	r, col := WireIndex(c)
	return &b.cells[r][col]
}

// Place puts p on top of the cell at c. The cell must be empty or show a
// strictly smaller piece.
func (b *Board) Place(c core.Coord, p core.Piece) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", core.ErrOutOfBounds, c)
	}
	if err := b.CanCover(c, p); err != nil {
		return err
	}
	s := b.at(c)
	*s = append(*s, p)
	return nil
}

// CanCover reports whether p may be placed at c without changing the board.
func (b *Board) CanCover(c core.Coord, p core.Piece) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", core.ErrOutOfBounds, c)
	}
	if top, ok := b.at(c).Top(); ok && core.Compare(top, p) >= 0 {
		return fmt.Errorf("%w: %s on %s at %s", core.ErrIllegalCapture, p, top, c)
	}
	return nil
}

// Remove pops the top piece of the cell at c.
func (b *Board) Remove(c core.Coord) (core.Piece, error) {
	if !c.Valid() {
		return core.Piece{}, fmt.Errorf("%w: %s", core.ErrOutOfBounds, c)
	}
	s := b.at(c)
	top, ok := s.Top()
	if !ok {
		return core.Piece{}, fmt.Errorf("%w: %s", core.ErrEmptyCell, c)
	}
	*s = (*s)[:len(*s)-1]
	return top, nil
}

// Top returns the visible piece at c.
func (b *Board) Top(c core.Coord) (core.Piece, bool) {
	if !c.Valid() {
		return core.Piece{}, false
	}
	return b.at(c).Top()
}

// TopOwner returns the owner of the visible piece at c, or NoOwner.
func (b *Board) TopOwner(c core.Coord) core.Owner {
	if p, ok := b.Top(c); ok {
		return p.Owner()
	}
	return core.NoOwner
}

// Stack returns a copy of the cell stack at c.
func (b *Board) Stack(c core.Coord) Stack {
	if !c.Valid() {
		return nil
	}
	s := *b.at(c)
	return append(Stack(nil), s...)
}

func (b *Board) Clone() *Board {
	out := &Board{}
	for r := range b.cells {
		for col := range b.cells[r] {
			if len(b.cells[r][col]) > 0 {
				out.cells[r][col] = append(Stack(nil), b.cells[r][col]...)
			}
		}
	}
	return out
}

// Equal compares every stack, owners included.
func (b *Board) Equal(o *Board) bool {
	for r := range b.cells {
		for col := range b.cells[r] {
			if !b.cells[r][col].Same(o.cells[r][col]) {
				return false
			}
		}
	}
	return true
}

// Snapshot returns the wire form of the board.
func (b *Board) Snapshot() core.BoardSnapshot {
	out := make(core.BoardSnapshot, core.BoardSize)
	for r := range b.cells {
		out[r] = make([]core.CellSnapshot, core.BoardSize)
		for col, s := range b.cells[r] {
			cell := make(core.CellSnapshot, 0, len(s))
			for _, p := range s {
				cell = append(cell, core.Pair{int(p.Owner()), p.Size()})
			}
			out[r][col] = cell
		}
	}
	return out
}

// FromSnapshot rebuilds a board from its wire form, checking dimensions,
// piece values and that every stack grows strictly in size.
func FromSnapshot(snap core.BoardSnapshot) (*Board, error) {
	if len(snap) != core.BoardSize {
		return nil, fmt.Errorf("%w: %d rows, want %d", core.ErrMalformedBoard, len(snap), core.BoardSize)
	}
	b := New()
	for r, row := range snap {
		if len(row) != core.BoardSize {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", core.ErrMalformedBoard, r, len(row), core.BoardSize)
		}
		for col, cell := range row {
			for depth, pair := range cell {
				p, err := PieceFromPair(pair)
				if err != nil {
					return nil, fmt.Errorf("%w: cell [%d][%d] depth %d: %v", core.ErrMalformedBoard, r, col, depth, err)
				}
				s := &b.cells[r][col]
				if top, ok := s.Top(); ok && core.Compare(top, p) >= 0 {
					return nil, fmt.Errorf("%w: cell [%d][%d] stacks %s on %s", core.ErrMalformedBoard, r, col, p, top)
				}
				*s = append(*s, p)
			}
		}
	}
	return b, nil
}

// PieceFromPair decodes an [owner, size] wire pair.
func PieceFromPair(pair core.Pair) (core.Piece, error) {
	if len(pair) != 2 {
		return core.Piece{}, fmt.Errorf("%w: pair has %d entries", core.ErrInvalidPiece, len(pair))
	}
	return core.NewPiece(pair[1], core.Owner(pair[0]))
}
