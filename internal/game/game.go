package game

import (
	"fmt"

	"gobblet/internal/board"
	"gobblet/internal/core"
)

// State is a full position: the board, both reserves and the player names.
// It changes only through Place, Remove and Consume.
type State struct {
	board    *board.Board
	reserves [2]core.Reserve
	names    [2]string
}

// New returns the opening position: an empty board and full reserves.
func New(name1, name2 string) *State {
	return &State{
		board:    board.New(),
		reserves: [2]core.Reserve{core.NewReserve(core.Player1), core.NewReserve(core.Player2)},
		names:    [2]string{name1, name2},
	}
}

// FromSnapshot validates a wire snapshot and builds the state it describes.
// Every failure is a *core.ValidationError.
func FromSnapshot(snap core.GameSnapshot) (*State, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	b, err := board.FromSnapshot(snap.Board)
	if err != nil {
		return nil, &core.ValidationError{Field: "board", Err: err}
	}
	s := &State{board: b}
	for i, ps := range snap.Players {
		owner := core.Owner(i + 1)
		r := core.EmptyReserve(owner)
		for slot, pair := range ps.Reserves {
			if len(pair) == 0 {
				continue
			}
			p, err := board.PieceFromPair(pair)
			if err != nil {
				return nil, &core.ValidationError{Field: fmt.Sprintf("players[%d].reserves[%d]", i, slot), Err: err}
			}
			if err := r.Fill(slot, p); err != nil {
				return nil, &core.ValidationError{Field: fmt.Sprintf("players[%d].reserves[%d]", i, slot), Err: err}
			}
		}
		s.reserves[i] = r
		s.names[i] = ps.Name
	}
	return s, nil
}

// Snapshot returns the wire form of the state under the given game id.
func (s *State) Snapshot(id string) core.GameSnapshot {
	snap := core.GameSnapshot{ID: id, Board: s.board.Snapshot()}
	for i, r := range s.reserves {
		ps := core.PlayerSnapshot{Name: s.names[i], Reserves: make([]core.Pair, core.SlotCount)}
		for slot := 0; slot < core.SlotCount; slot++ {
			if p, ok := r.Top(slot); ok {
				ps.Reserves[slot] = core.Pair{int(p.Owner()), p.Size()}
			} else {
				ps.Reserves[slot] = core.Pair{}
			}
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}

func (s *State) Clone() *State {
	return &State{board: s.board.Clone(), reserves: s.reserves, names: s.names}
}

// Equal compares board stacks and reserve slots. Names are ignored.
func (s *State) Equal(o *State) bool {
	return s.board.Equal(o.board) && s.reserves == o.reserves
}

// Board returns a copy of the board.
func (s *State) Board() *board.Board {
	return s.board.Clone()
}

func (s *State) Top(c core.Coord) (core.Piece, bool) {
	return s.board.Top(c)
}

func (s *State) Stack(c core.Coord) board.Stack {
	return s.board.Stack(c)
}

// Reserve returns a copy of the owner's reserve.
func (s *State) Reserve(owner core.Owner) core.Reserve {
	return s.reserves[ownerIndex(owner)]
}

func (s *State) Name(owner core.Owner) string {
	return s.names[ownerIndex(owner)]
}

// CanCover reports whether p may be placed at c.
func (s *State) CanCover(c core.Coord, p core.Piece) error {
	return s.board.CanCover(c, p)
}

func (s *State) Place(c core.Coord, p core.Piece) error {
	return s.board.Place(c, p)
}

func (s *State) Remove(c core.Coord) (core.Piece, error) {
	return s.board.Remove(c)
}

// Consume takes the exposed piece of one of the owner's reserve slots.
func (s *State) Consume(owner core.Owner, slot int) (core.Piece, error) {
	if !owner.Valid() {
		return core.Piece{}, fmt.Errorf("%w: owner %d", core.ErrInvalidPiece, owner)
	}
	return s.reserves[ownerIndex(owner)].Consume(slot)
}

func ownerIndex(o core.Owner) int {
	if o == core.Player2 {
		return 1
	}
	return 0
}
