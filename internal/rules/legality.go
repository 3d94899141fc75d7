// Package rules decides move legality and evaluates positions.
package rules

import (
	"fmt"

	"gobblet/internal/board"
	"gobblet/internal/core"
	"gobblet/internal/game"
)

// MovingPiece returns the piece the owner would lift from origin.
func MovingPiece(s *game.State, owner core.Owner, o core.Origin) (core.Piece, error) {
	if o.IsReserve() {
		slot, err := s.Reserve(owner).Slot(o.Slot)
		if err != nil {
			return core.Piece{}, err
		}
		if slot.Empty() {
			return core.Piece{}, fmt.Errorf("%w: slot %d", core.ErrEmptySlot, o.Slot)
		}
		p, _ := s.Reserve(owner).Top(o.Slot)
		return p, nil
	}
	c := *o.Cell
	if !c.Valid() {
		return core.Piece{}, fmt.Errorf("%w: origin %s", core.ErrOutOfBounds, c)
	}
	top, ok := s.Top(c)
	if !ok {
		return core.Piece{}, fmt.Errorf("%w: origin %s", core.ErrEmptyCell, c)
	}
	if top.Owner() != owner {
		return core.Piece{}, fmt.Errorf("%w: origin %s", core.ErrNotYourPiece, c)
	}
	return top, nil
}

// Check reports whether owner may play m. It never changes s.
// A rejection is a *core.IllegalMoveError wrapping the rule that failed.
func Check(s *game.State, owner core.Owner, m core.Move) error {
	if !owner.Valid() {
		return &core.ValidationError{Field: "owner", Err: fmt.Errorf("%w: owner %d", core.ErrInvalidPiece, owner)}
	}
	p, err := MovingPiece(s, owner, m.Origin)
	if err != nil {
		return &core.IllegalMoveError{Owner: owner, Move: m, Err: err}
	}
	if err := s.CanCover(m.Destination, p); err != nil {
		return &core.IllegalMoveError{Owner: owner, Move: m, Err: err}
	}
	return nil
}

// Apply checks m and then plays it on s.
func Apply(s *game.State, owner core.Owner, m core.Move) error {
	if err := Check(s, owner, m); err != nil {
		return err
	}
	var (
		p   core.Piece
		err error
	)
	if m.Origin.IsReserve() {
		p, err = s.Consume(owner, m.Origin.Slot)
	} else {
		p, err = s.Remove(*m.Origin.Cell)
	}
	if err != nil {
		return err
	}
	return s.Place(m.Destination, p)
}

// LegalMoves lists every legal move for owner: reserve slots first, then
// board origins, each in wire order.
func LegalMoves(s *game.State, owner core.Owner) []core.Move {
	var origins []core.Origin
	for slot := 0; slot < core.SlotCount; slot++ {
		origins = append(origins, core.FromReserve(slot))
	}
	for _, c := range board.Cells() {
		origins = append(origins, core.FromBoard(c))
	}

	var moves []core.Move
	for _, o := range origins {
		if _, err := MovingPiece(s, owner, o); err != nil {
			continue
		}
		for _, dest := range board.Cells() {
			m := core.Move{Origin: o, Destination: dest}
			if Check(s, owner, m) == nil {
				moves = append(moves, m)
			}
		}
	}
	return moves
}
