// Package reconcile recovers the opponent's move from two snapshots and
// replays it on the local mirror.
package reconcile

import (
	"fmt"

	"gobblet/internal/board"
	"gobblet/internal/core"
	"gobblet/internal/game"
)

// Delta is the single opponent action found between two states.
type Delta interface {
	String() string
	apply(mirror *game.State, opponent core.Owner) error
}

// NoChange means the opponent did not move.
type NoChange struct{}

// ReserveRelease is a piece taken from reserve Slot and placed at To.
// Drained is how many pieces left the slot; it is 1 for a normal move.
type ReserveRelease struct {
	Slot    int
	Piece   core.Piece
	To      core.Coord
	Drained int
}

// BoardMove is a piece lifted from From and placed at To.
type BoardMove struct {
	From  core.Coord
	To    core.Coord
	Piece core.Piece
}

func (NoChange) String() string { return "no change" }

func (d ReserveRelease) String() string {
	return fmt.Sprintf("reserve %d -> %s %s", d.Slot, d.To, d.Piece)
}

func (d BoardMove) String() string {
	return fmt.Sprintf("%s -> %s %s", d.From, d.To, d.Piece)
}

// DesyncError reports a diff that is not exactly one opponent move.
// The mirror can no longer be trusted.
type DesyncError struct {
	Reason string
}

func (e *DesyncError) Error() string {
	return "state desynchronized: " + e.Reason
}

func desync(format string, args ...any) error {
	return &DesyncError{Reason: fmt.Sprintf(format, args...)}
}

type cellChange struct {
	at    core.Coord
	piece core.Piece
}

// Diff compares the mirror before the round trip with the server state
// after it and names the opponent's action. The mover's reserve must be
// unchanged. The opponent may have released one reserve slot or lifted one
// board piece, and exactly one cell must have received that piece.
func Diff(before, after *game.State, opponent core.Owner) (Delta, error) {
	if before.Reserve(opponent.Opponent()) != after.Reserve(opponent.Opponent()) {
		return nil, desync("%s reserve changed", opponent.Opponent())
	}

	slot, drained, err := reserveDiff(before.Reserve(opponent), after.Reserve(opponent))
	if err != nil {
		return nil, err
	}

	var grown, shrunk []cellChange
	for _, c := range board.Cells() {
		b, a := before.Stack(c), after.Stack(c)
		switch {
		case b.Same(a):
		case len(a) == len(b)+1 && b.Same(a[:len(b)]):
			grown = append(grown, cellChange{at: c, piece: a[len(b)]})
		case len(b) == len(a)+1 && a.Same(b[:len(a)]):
			shrunk = append(shrunk, cellChange{at: c, piece: b[len(a)]})
		default:
			return nil, desync("cell %s changed by more than one piece", c)
		}
	}

	if slot >= 0 {
		if len(grown) != 1 || len(shrunk) != 0 {
			return nil, desync("reserve slot %d released but %d cells grew and %d shrank", slot, len(grown), len(shrunk))
		}
		g := grown[0]
		top, _ := before.Reserve(opponent).Top(slot)
		left, _ := after.Reserve(opponent).Slot(slot)
		if g.piece.Owner() != opponent || g.piece.Size() > top.Size() || g.piece.Size() <= left.Size() {
			return nil, desync("piece %s at %s did not come from reserve slot %d", g.piece, g.at, slot)
		}
		return ReserveRelease{Slot: slot, Piece: g.piece, To: g.at, Drained: drained}, nil
	}

	switch {
	case len(grown) == 0 && len(shrunk) == 0:
		return NoChange{}, nil
	case len(grown) == 1 && len(shrunk) == 1:
		from, to := shrunk[0], grown[0]
		if !from.piece.Same(to.piece) || from.piece.Owner() != opponent {
			return nil, desync("%s left %s but %s arrived at %s", from.piece, from.at, to.piece, to.at)
		}
		return BoardMove{From: from.at, To: to.at, Piece: from.piece}, nil
	default:
		return nil, desync("%d cells grew and %d shrank", len(grown), len(shrunk))
	}
}

// reserveDiff finds the one reserve slot that lost pieces. It returns -1
// when no slot changed.
func reserveDiff(before, after core.Reserve) (slot, drained int, err error) {
	slot = -1
	for i := 0; i < core.SlotCount; i++ {
		b, _ := before.Slot(i)
		a, _ := after.Slot(i)
		if a.Size() == b.Size() {
			continue
		}
		if a.Size() > b.Size() {
			return -1, 0, desync("reserve slot %d grew from %d to %d", i, b.Size(), a.Size())
		}
		if slot >= 0 {
			return -1, 0, desync("reserve slots %d and %d both changed", slot, i)
		}
		slot, drained = i, b.Size()-a.Size()
	}
	return slot, drained, nil
}

func (NoChange) apply(*game.State, core.Owner) error { return nil }

func (d ReserveRelease) apply(mirror *game.State, opponent core.Owner) error {
	for i := 0; i < d.Drained; i++ {
		if _, err := mirror.Consume(opponent, d.Slot); err != nil {
			return err
		}
	}
	return mirror.Place(d.To, d.Piece)
}

func (d BoardMove) apply(mirror *game.State, _ core.Owner) error {
	if _, err := mirror.Remove(d.From); err != nil {
		return err
	}
	return mirror.Place(d.To, d.Piece)
}

// Apply replays d on the mirror.
func Apply(mirror *game.State, d Delta, opponent core.Owner) error {
	if err := d.apply(mirror, opponent); err != nil {
		return desync("replaying %s: %v", d, err)
	}
	return nil
}

// Sync diffs, replays the delta on the mirror and checks that the mirror
// now matches the server state.
func Sync(mirror, after *game.State, opponent core.Owner) (Delta, error) {
	d, err := Diff(mirror, after, opponent)
	if err != nil {
		return nil, err
	}
	if err := Apply(mirror, d, opponent); err != nil {
		return nil, err
	}
	if !mirror.Equal(after) {
		return nil, desync("mirror differs from server after replaying %s", d)
	}
	return d, nil
}
