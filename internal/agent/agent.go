// Package agent picks moves for the automated player with a one-ply greedy search.
package agent

import (
	"errors"

	"gobblet/internal/board"
	"gobblet/internal/core"
	"gobblet/internal/game"
	"gobblet/internal/rules"
)

var (
	ErrNoLegalMove     = errors.New("no legal move found")
	ErrGameAlreadyOver = errors.New("game already over")
)

// Value is Score(self) minus half of Score(opponent).
func Value(b *board.Board, self core.Owner) float64 {
	return float64(rules.Score(b, self)) - float64(rules.Score(b, self.Opponent()))/2
}

// Search returns the move self should play in s.
//
// The origin is the largest reserve piece (lowest slot on ties). Every cell
// that piece may cover is tried on a scratch copy; moves that do not lower
// Value are kept and the highest wins, first in wire order on ties. When no
// reserve move qualifies, the first own size 3 piece showing on the board is
// tried the same way.
func Search(s *game.State, self core.Owner) (core.Move, error) {
	b := s.Board()
	if rules.Score(b, self) == rules.WinScore || rules.Score(b, self.Opponent()) == rules.WinScore {
		return core.Move{}, ErrGameAlreadyOver
	}
	pre := Value(b, self)

	if slot, p, ok := s.Reserve(self).Largest(); ok {
		if m, ok := best(s, self, core.FromReserve(slot), p, pre); ok {
			return m, nil
		}
	}
	if c, p, ok := largestOnBoard(b, self); ok {
		if m, ok := best(s, self, core.FromBoard(c), p, pre); ok {
			return m, nil
		}
	}
	return core.Move{}, ErrNoLegalMove
}

// largestOnBoard finds the first own size 3 piece showing, scanning wire order.
func largestOnBoard(b *board.Board, self core.Owner) (core.Coord, core.Piece, bool) {
	for _, c := range board.Cells() {
		if p, ok := b.Top(c); ok && p.Owner() == self && p.Size() == core.MaxSize {
			return c, p, true
		}
	}
	return core.Coord{}, core.Piece{}, false
}

func best(s *game.State, self core.Owner, origin core.Origin, p core.Piece, pre float64) (core.Move, bool) {
	var (
		chosen core.Move
		top    float64
		found  bool
	)
	for _, dest := range board.Cells() {
		if !origin.IsReserve() && dest == *origin.Cell {
			continue
		}
		if s.CanCover(dest, p) != nil {
			continue
		}
		m := core.Move{Origin: origin, Destination: dest}
		scratch := s.Clone()
		if err := rules.Apply(scratch, self, m); err != nil {
			continue
		}
		v := Value(scratch.Board(), self)
		if v < pre {
			continue
		}
		if !found || v > top {
			chosen, top, found = m, v, true
		}
	}
	return chosen, found
}

// Mover adapts Search to the session's move source.
type Mover struct{}

func (Mover) NextMove(s *game.State, self core.Owner) (core.Move, error) {
	return Search(s, self)
}
