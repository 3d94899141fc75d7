package core

import (
	"cmp"
	"fmt"
)

// Owner identifies a player. NoOwner marks an empty cell in the owner grid.
type Owner int

const (
	NoOwner Owner = iota
	Player1
	Player2
)

func (o Owner) Valid() bool {
	return o == Player1 || o == Player2
}

// Opponent returns the other player.
func (o Owner) Opponent() Owner {
	if o == Player1 {
		return Player2
	}
	return Player1
}

func (o Owner) String() string {
	switch o {
	case Player1:
		return "player 1"
	case Player2:
		return "player 2"
	default:
		return "none"
	}
}

// Piece sizes run from MinSize (smallest) to MaxSize (largest).
const (
	MinSize = 0
	MaxSize = 3
)

// Piece is an immutable sized token owned by one player.
type Piece struct {
	size  int
	owner Owner
}

// NewPiece fails with ErrInvalidPiece unless size is in [0,3] and owner is 1 or 2.
func NewPiece(size int, owner Owner) (Piece, error) {
	if size < MinSize || size > MaxSize {
		return Piece{}, fmt.Errorf("%w: size %d not in [%d,%d]", ErrInvalidPiece, size, MinSize, MaxSize)
	}
	if !owner.Valid() {
		return Piece{}, fmt.Errorf("%w: owner %d not 1 or 2", ErrInvalidPiece, owner)
	}
	return Piece{size: size, owner: owner}, nil
}

// MustPiece is NewPiece for arguments known to be valid.
func MustPiece(size int, owner Owner) Piece {
	p, err := NewPiece(size, owner)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Piece) Size() int    { return p.size }
func (p Piece) Owner() Owner { return p.owner }

// Compare orders pieces by size only.
func Compare(a, b Piece) int {
	return cmp.Compare(a.size, b.size)
}

// Equal reports whether both pieces have the same size. Owners are ignored.
func (p Piece) Equal(o Piece) bool {
	return Compare(p, o) == 0
}

// Same reports whether both pieces have the same size and owner.
func (p Piece) Same(o Piece) bool {
	return p.size == o.size && p.owner == o.owner
}

func (p Piece) String() string {
	return fmt.Sprintf("[%d,%d]", p.owner, p.size)
}
