package board

import (
	"encoding/json"
	"testing"

	"gobblet/internal/core"

	"github.com/stretchr/testify/require"
)

func at(col, row int) core.Coord { return core.Coord{Col: col, Row: row} }

func TestPlaceAndRemove(t *testing.T) {
	b := New()
	require.NoError(t, b.Place(at(0, 0), core.MustPiece(0, core.Player1)))
	require.NoError(t, b.Place(at(0, 0), core.MustPiece(2, core.Player2)))

	top, ok := b.Top(at(0, 0))
	require.True(t, ok)
	require.Equal(t, 2, top.Size())
	require.Equal(t, core.Player2, b.TopOwner(at(0, 0)))

	p, err := b.Remove(at(0, 0))
	require.NoError(t, err)
	require.Equal(t, 2, p.Size())
	require.Equal(t, core.Player1, b.TopOwner(at(0, 0)), "covered piece is exposed again")

	_, err = b.Remove(at(1, 1))
	require.ErrorIs(t, err, core.ErrEmptyCell)
	_, err = b.Remove(at(4, 0))
	require.ErrorIs(t, err, core.ErrOutOfBounds)
	require.ErrorIs(t, b.Place(at(0, -1), core.MustPiece(3, core.Player1)), core.ErrOutOfBounds)
}

func TestPlaceIllegalCapture(t *testing.T) {
	for top := core.MinSize; top <= core.MaxSize; top++ {
		for size := core.MinSize; size <= top; size++ {
			b := New()
			require.NoError(t, b.Place(at(2, 1), core.MustPiece(top, core.Player1)))
			before := b.Clone()

			err := b.Place(at(2, 1), core.MustPiece(size, core.Player2))
			require.ErrorIs(t, err, core.ErrIllegalCapture, "size %d on %d", size, top)
			require.True(t, b.Equal(before), "failed placement must not change the board")
		}
	}
}

func TestWireOrientation(t *testing.T) {
	b := New()
	require.NoError(t, b.Place(at(0, 0), core.MustPiece(1, core.Player1)))
	require.NoError(t, b.Place(at(3, 3), core.MustPiece(2, core.Player2)))

	snap := b.Snapshot()
	require.Equal(t, core.CellSnapshot{{1, 1}}, snap[3][0], "row 0 is the last wire row")
	require.Equal(t, core.CellSnapshot{{2, 2}}, snap[0][3], "row 3 is the first wire row")

	cells := Cells()
	require.Len(t, cells, 16)
	require.Equal(t, at(0, 3), cells[0])
	require.Equal(t, at(3, 0), cells[15])
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := New()
	moves := []struct {
		c core.Coord
		p core.Piece
	}{
		{at(0, 0), core.MustPiece(0, core.Player1)},
		{at(0, 0), core.MustPiece(1, core.Player2)},
		{at(0, 0), core.MustPiece(3, core.Player1)},
		{at(2, 3), core.MustPiece(2, core.Player2)},
		{at(1, 2), core.MustPiece(0, core.Player2)},
	}
	for _, m := range moves {
		require.NoError(t, b.Place(m.c, m.p))
	}

	data, err := json.Marshal(b.Snapshot())
	require.NoError(t, err)
	var snap core.BoardSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	back, err := FromSnapshot(snap)
	require.NoError(t, err)
	require.True(t, back.Equal(b))
}

func TestFromSnapshotMalformed(t *testing.T) {
	empty := func() core.BoardSnapshot {
		s := make(core.BoardSnapshot, 4)
		for i := range s {
			s[i] = make([]core.CellSnapshot, 4)
		}
		return s
	}

	tests := []struct {
		name string
		snap func() core.BoardSnapshot
	}{
		{"three rows", func() core.BoardSnapshot { return empty()[:3] }},
		{"short row", func() core.BoardSnapshot { s := empty(); s[2] = s[2][:3]; return s }},
		{"bad pair", func() core.BoardSnapshot { s := empty(); s[0][0] = core.CellSnapshot{{1}}; return s }},
		{"bad size", func() core.BoardSnapshot { s := empty(); s[0][0] = core.CellSnapshot{{1, 4}}; return s }},
		{"bad owner", func() core.BoardSnapshot { s := empty(); s[0][0] = core.CellSnapshot{{3, 1}}; return s }},
		{"not nested", func() core.BoardSnapshot { s := empty(); s[1][1] = core.CellSnapshot{{1, 2}, {2, 2}}; return s }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSnapshot(tt.snap())
			require.ErrorIs(t, err, core.ErrMalformedBoard)
		})
	}
}
