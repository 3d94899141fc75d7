package service

import (
	"path/filepath"
	"testing"
	"time"

	"gobblet/internal/core"
	"gobblet/internal/game"
	"gobblet/internal/rules"
	"gobblet/internal/server/storage"

	"github.com/stretchr/testify/require"
)

func at(col, row int) core.Coord { return core.Coord{Col: col, Row: row} }

func moveReq(id string, origin core.Origin, dest core.Coord) core.MoveRequest {
	return core.MoveRequest{ID: id, Origin: origin, Destination: dest}
}

// started opens a game for alice and returns the service and its match.
func started(t *testing.T) (*Service, *match) {
	t.Helper()
	svc := New(nil)
	resp, err := svc.StartGame("alice")
	require.NoError(t, err)
	m, err := svc.lookup("alice", resp.ID)
	require.NoError(t, err)
	return svc, m
}

func pieces(t *testing.T, snap core.GameSnapshot, owner core.Owner) []core.Coord {
	t.Helper()
	s, err := game.FromSnapshot(snap)
	require.NoError(t, err)
	var out []core.Coord
	for row := 0; row < core.BoardSize; row++ {
		for col := 0; col < core.BoardSize; col++ {
			if p, ok := s.Top(at(col, row)); ok && p.Owner() == owner {
				out = append(out, at(col, row))
			}
		}
	}
	return out
}

func TestStartGame(t *testing.T) {
	svc := New(nil)
	resp, err := svc.StartGame("alice")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.False(t, resp.Terminal())
	require.Equal(t, "alice", resp.Players[0].Name)
	require.Equal(t, OpponentName, resp.Players[1].Name)
	require.Equal(t, core.Pair{1, 3}, resp.Players[0].Reserves[0])

	got, err := svc.GetGame("alice", resp.ID)
	require.NoError(t, err)
	require.Equal(t, resp.GameSnapshot, got.GameSnapshot)

	_, err = svc.GetGame("bob", resp.ID)
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestPlayAnswersWithOpponentMove(t *testing.T) {
	svc, m := started(t)

	resp, err := svc.Play("alice", moveReq(m.id, core.FromReserve(0), at(0, 0)))
	require.NoError(t, err)
	require.False(t, resp.Terminal())
	require.Equal(t, []core.Coord{at(0, 0)}, pieces(t, resp.GameSnapshot, core.Player1))
	require.Len(t, pieces(t, resp.GameSnapshot, core.Player2), 1)
	require.Equal(t, 2, m.ply)
}

func TestPlayRejectsIllegalMove(t *testing.T) {
	svc, m := started(t)
	before := m.state.Clone()

	_, err := svc.Play("alice", moveReq(m.id, core.FromBoard(at(1, 1)), at(2, 2)))
	var illegal *core.IllegalMoveError
	require.ErrorAs(t, err, &illegal)
	require.ErrorIs(t, err, core.ErrEmptyCell)
	require.True(t, before.Equal(m.state))
	require.Zero(t, m.ply)

	_, err = svc.Play("bob", moveReq(m.id, core.FromReserve(0), at(0, 0)))
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestPlayerWinEndsGame(t *testing.T) {
	svc, m := started(t)
	for col := 0; col < 3; col++ {
		require.NoError(t, rules.Apply(m.state, core.Player1, core.Move{Origin: core.FromReserve(col), Destination: at(col, 0)}))
	}

	resp, err := svc.Play("alice", moveReq(m.id, core.FromReserve(0), at(3, 0)))
	require.NoError(t, err)
	require.True(t, resp.Terminal())
	require.Equal(t, "alice", resp.Winner)
	require.Empty(t, pieces(t, resp.GameSnapshot, core.Player2), "no reply after a win")

	_, err = svc.Play("alice", moveReq(m.id, core.FromReserve(1), at(3, 3)))
	require.ErrorIs(t, err, ErrGameOver)

	got, err := svc.GetGame("alice", m.id)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Winner)
}

func TestOpponentWithoutMovesDraws(t *testing.T) {
	svc, m := started(t)
	for slot := 0; slot < core.SlotCount; slot++ {
		for i := 0; i < 4; i++ {
			_, err := m.state.Consume(core.Player2, slot)
			require.NoError(t, err)
		}
	}

	resp, err := svc.Play("alice", moveReq(m.id, core.FromReserve(0), at(1, 1)))
	require.NoError(t, err)
	require.Equal(t, DrawWinner, resp.Winner)
}

func TestOpponentFallsBackToRandomMove(t *testing.T) {
	svc, m := started(t)
	// player 2 keeps a single size 2 piece on the board and nothing in reserve
	_, err := m.state.Consume(core.Player2, 0)
	require.NoError(t, err)
	require.NoError(t, rules.Apply(m.state, core.Player2, core.Move{Origin: core.FromReserve(0), Destination: at(3, 0)}))
	for slot := 0; slot < core.SlotCount; slot++ {
		for {
			sl, err := m.state.Reserve(core.Player2).Slot(slot)
			require.NoError(t, err)
			if sl.Empty() {
				break
			}
			_, err = m.state.Consume(core.Player2, slot)
			require.NoError(t, err)
		}
	}

	resp, err := svc.Play("alice", moveReq(m.id, core.FromReserve(0), at(0, 3)))
	require.NoError(t, err)
	require.False(t, resp.Terminal())
	mine := pieces(t, resp.GameSnapshot, core.Player2)
	require.Len(t, mine, 1)
	require.NotEqual(t, at(3, 0), mine[0])
	require.NotEqual(t, at(0, 3), mine[0])
}

func TestListGames(t *testing.T) {
	svc := New(nil)
	first, err := svc.StartGame("alice")
	require.NoError(t, err)
	_, err = svc.StartGame("bob")
	require.NoError(t, err)

	// force distinct start dates
	m, err := svc.lookup("alice", first.ID)
	require.NoError(t, err)
	m.started = m.started.Add(-time.Hour)
	second, err := svc.StartGame("alice")
	require.NoError(t, err)

	games, err := svc.ListGames("alice")
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.Equal(t, second.ID, games[0].ID)
	require.Equal(t, []string{"alice", OpponentName}, games[0].Players)
	require.Nil(t, games[0].Winner)
}

func TestEvict(t *testing.T) {
	svc, m := started(t)
	require.Zero(t, svc.evict(time.Now().UTC().Add(-time.Hour)))

	m.winner = "alice"
	require.Equal(t, 1, svc.evict(time.Now().UTC().Add(-time.Hour)))
	_, err := svc.GetGame("alice", m.id)
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestTooManyGames(t *testing.T) {
	svc := New(nil)
	for i := 0; i < MaxActiveGames; i++ {
		_, err := svc.StartGame("alice")
		require.NoError(t, err)
	}
	_, err := svc.StartGame("alice")
	require.ErrorIs(t, err, ErrTooManyGames)
}

func TestAuthenticateDevMode(t *testing.T) {
	svc := New(nil)
	require.NoError(t, svc.Authenticate("anyone", ""))
	require.ErrorIs(t, svc.Authenticate("", "x"), ErrBadCredentials)
	require.Equal(t, "disabled", svc.GetStorageHealth())
}

func TestAuthenticateAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gobblet.db")
	store, err := storage.NewStore(path, true)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())

	svc := New(store)
	require.Equal(t, "ok", svc.GetStorageHealth())
	require.NoError(t, svc.RegisterPlayer("alice", "s3cret-pass"))
	require.ErrorIs(t, svc.RegisterPlayer("alice", "other-pass"), storage.ErrPlayerExists)
	require.ErrorIs(t, svc.RegisterPlayer("bob", "short"), ErrWeakSecret)

	require.NoError(t, svc.Authenticate("alice", "s3cret-pass"))
	require.ErrorIs(t, svc.Authenticate("alice", "wrong"), ErrBadCredentials)
	require.ErrorIs(t, svc.Authenticate("mallory", "s3cret-pass"), ErrBadCredentials)
	require.ErrorIs(t, svc.Authenticate("mallory", "x"), ErrBadCredentials)

	hash, err := HashSecret("dave-secret")
	require.NoError(t, err)
	require.NoError(t, svc.ImportPlayer("dave", hash))
	require.NoError(t, svc.Authenticate("dave", "dave-secret"))
	require.Error(t, svc.ImportPlayer("erin", "plain"))

	resp, err := svc.StartGame("alice")
	require.NoError(t, err)
	_, err = svc.Play("alice", moveReq(resp.ID, core.FromReserve(0), at(2, 2)))
	require.NoError(t, err)
	require.NoError(t, svc.Shutdown())

	store, err = storage.NewStore(path, true)
	require.NoError(t, err)
	defer store.Close()
	moves, err := store.QueryMoves(resp.ID)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	require.Equal(t, "0", moves[0].Origin)
	require.Equal(t, "2,2", moves[0].Destination)

	// evicted games are still listed from storage
	svc = New(store)
	games, err := svc.ListGames("alice")
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, resp.ID, games[0].ID)
}
