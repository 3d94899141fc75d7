package core

import "fmt"

// SlotCount is the number of reserve slots each player owns.
const SlotCount = 3

const emptySlot = -1

// Slot is a telescoping pile of nested pieces. Only the exposed size is
// stored; consuming it reveals size-1 until size 0 is gone.
type Slot struct {
	size int
}

func (s Slot) Empty() bool { return s.size == emptySlot }

// Size returns the exposed size, or -1 when the slot is empty.
func (s Slot) Size() int { return s.size }

// Reserve is one player's set of reserve slots.
type Reserve struct {
	owner Owner
	slots [SlotCount]Slot
}

// NewReserve returns a full reserve: every slot exposes a size 3 piece.
func NewReserve(owner Owner) Reserve {
	r := Reserve{owner: owner}
	for i := range r.slots {
		r.slots[i] = Slot{size: MaxSize}
	}
	return r
}

// EmptyReserve returns a reserve with no pieces, ready to be filled from a snapshot.
func EmptyReserve(owner Owner) Reserve {
	r := Reserve{owner: owner}
	for i := range r.slots {
		r.slots[i] = Slot{size: emptySlot}
	}
	return r
}

func (r Reserve) Owner() Owner { return r.owner }

// Slot returns slot i by value.
func (r Reserve) Slot(i int) (Slot, error) {
	if i < 0 || i >= SlotCount {
		return Slot{}, fmt.Errorf("%w: %d", ErrInvalidSlot, i)
	}
	return r.slots[i], nil
}

// Top returns the exposed piece of slot i.
func (r Reserve) Top(i int) (Piece, bool) {
	if i < 0 || i >= SlotCount || r.slots[i].Empty() {
		return Piece{}, false
	}
	return Piece{size: r.slots[i].size, owner: r.owner}, true
}

// Fill sets the exposed piece of an empty slot. It is only valid while
// building a reserve from a snapshot.
func (r *Reserve) Fill(i int, p Piece) error {
	if i < 0 || i >= SlotCount {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, i)
	}
	if !r.slots[i].Empty() {
		return fmt.Errorf("%w: slot %d", ErrIllegalReplenish, i)
	}
	if p.owner != r.owner {
		return fmt.Errorf("%w: %s piece in %s reserve", ErrInvalidPiece, p.owner, r.owner)
	}
	r.slots[i].size = p.size
	return nil
}

// Consume removes and returns the exposed piece of slot i.
func (r *Reserve) Consume(i int) (Piece, error) {
	if i < 0 || i >= SlotCount {
		return Piece{}, fmt.Errorf("%w: %d", ErrInvalidSlot, i)
	}
	if r.slots[i].Empty() {
		return Piece{}, fmt.Errorf("%w: slot %d", ErrEmptySlot, i)
	}
	p := Piece{size: r.slots[i].size, owner: r.owner}
	// size 0 becomes emptySlot
	r.slots[i].size--
	return p, nil
}

// Largest returns the slot exposing the largest piece, lowest index on ties.
func (r Reserve) Largest() (int, Piece, bool) {
	best := -1
	for i, s := range r.slots {
		if s.Empty() {
			continue
		}
		if best < 0 || s.size > r.slots[best].size {
			best = i
		}
	}
	if best < 0 {
		return 0, Piece{}, false
	}
	return best, Piece{size: r.slots[best].size, owner: r.owner}, true
}
