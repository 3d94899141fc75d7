package agent

import (
	"testing"

	"gobblet/internal/core"
	"gobblet/internal/game"
	"gobblet/internal/rules"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func at(col, row int) core.Coord { return core.Coord{Col: col, Row: row} }

func play(t *testing.T, s *game.State, owner core.Owner, origin core.Origin, dest core.Coord) {
	t.Helper()
	require.NoError(t, rules.Apply(s, owner, core.Move{Origin: origin, Destination: dest}))
}

func TestSearchOpening(t *testing.T) {
	s := game.New("a", "b")
	m, err := Search(s, core.Player1)
	require.NoError(t, err)
	require.True(t, m.Origin.IsReserve())
	require.Equal(t, 0, m.Origin.Slot)
	// the top-left corner sits on a row, a column and a diagonal and comes first
	require.Equal(t, at(0, 3), m.Destination)
}

func TestSearchPrefersLargestSlot(t *testing.T) {
	s := game.New("a", "b")
	_, err := s.Consume(core.Player1, 0)
	require.NoError(t, err)

	m, err := Search(s, core.Player1)
	require.NoError(t, err)
	require.Equal(t, 1, m.Origin.Slot)
}

func TestSearchCompletesLine(t *testing.T) {
	s := game.New("a", "b")
	for col := 0; col < 3; col++ {
		play(t, s, core.Player1, core.FromReserve(col), at(col, 1))
	}
	m, err := Search(s, core.Player1)
	require.NoError(t, err)
	require.Equal(t, at(3, 1), m.Destination)

	require.NoError(t, rules.Apply(s, core.Player1, m))
	require.True(t, rules.HasWin(s.Board(), core.Player1))
}

func TestSearchGameAlreadyOver(t *testing.T) {
	s := game.New("a", "b")
	for col := 0; col < 3; col++ {
		play(t, s, core.Player2, core.FromReserve(col), at(col, 0))
	}
	play(t, s, core.Player2, core.FromReserve(0), at(3, 0))

	for _, owner := range []core.Owner{core.Player1, core.Player2} {
		_, err := Search(s, owner)
		require.ErrorIs(t, err, ErrGameAlreadyOver)
	}
}

func TestSearchFallsBackToBoard(t *testing.T) {
	s := game.New("a", "b")
	// empty player 1's reserve: the first three pieces go on the board, the rest are discarded
	for slot := 0; slot < core.SlotCount; slot++ {
		play(t, s, core.Player1, core.FromReserve(slot), at(slot, 3-slot))
		for i := 0; i < 3; i++ {
			_, err := s.Consume(core.Player1, slot)
			require.NoError(t, err)
		}
	}

	m, err := Search(s, core.Player1)
	require.NoError(t, err)
	require.False(t, m.Origin.IsReserve())
	require.Equal(t, at(0, 3), *m.Origin.Cell, "first size 3 piece in wire order")
	require.NoError(t, rules.Check(s, core.Player1, m))
}

func TestSearchNoLegalMove(t *testing.T) {
	s := game.New("a", "b")
	for slot := 0; slot < core.SlotCount; slot++ {
		for i := 0; i < 4; i++ {
			_, err := s.Consume(core.Player1, slot)
			require.NoError(t, err)
		}
	}
	_, err := Search(s, core.Player1)
	require.ErrorIs(t, err, ErrNoLegalMove)
}

// Random legal games from the opening: every move the search proposes
// must pass the legality check.
func TestSearchProposesLegalMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for g := 0; g < 40; g++ {
		s := game.New("a", "b")
		mover := core.Player1
		for ply := 0; ply < 60; ply++ {
			if rules.Evaluate(s.Board()).Terminal() {
				break
			}
			m, err := Search(s, mover)
			if err == nil {
				require.NoError(t, rules.Check(s, mover, m), "game %d ply %d", g, ply)
			} else {
				require.ErrorIs(t, err, ErrNoLegalMove)
			}

			legal := rules.LegalMoves(s, mover)
			if len(legal) == 0 {
				break
			}
			require.NoError(t, rules.Apply(s, mover, legal[rng.Intn(len(legal))]))
			mover = mover.Opponent()
		}
	}
}
