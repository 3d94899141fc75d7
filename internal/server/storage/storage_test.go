package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, true)
	require.NoError(t, err)
	require.NoError(t, s.InitDB())
	return s
}

func TestPlayers(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "players.db"))
	defer s.Close()

	require.NoError(t, s.CreatePlayer(PlayerRecord{Name: "alice", SecretHash: "h1"}))
	require.ErrorIs(t, s.CreatePlayer(PlayerRecord{Name: "ALICE", SecretHash: "h2"}), ErrPlayerExists)
	require.NoError(t, s.CreatePlayer(PlayerRecord{Name: "bob", SecretHash: "h3"}))

	p, err := s.GetPlayer("Alice")
	require.NoError(t, err)
	require.Equal(t, "alice", p.Name)
	require.Equal(t, "h1", p.SecretHash)
	require.Nil(t, p.LastSeenAt)

	_, err = s.GetPlayer("carol")
	require.ErrorIs(t, err, ErrPlayerNotFound)

	players, err := s.ListPlayers()
	require.NoError(t, err)
	require.Len(t, players, 2)
	require.Equal(t, "bob", players[1].Name)

	require.NoError(t, s.DeletePlayer("bob"))
	require.ErrorIs(t, s.DeletePlayer("bob"), ErrPlayerNotFound)
}

func TestAsyncGameRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	s := openStore(t, path)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.RecordNewGame(GameRecord{GameID: "g1", PlayerName: "alice", Opponent: "robot", StartedAt: start})
	s.RecordNewGame(GameRecord{GameID: "g2", PlayerName: "bob", Opponent: "robot", StartedAt: start.Add(time.Hour)})
	s.RecordMove(MoveRecord{GameID: "g1", Ply: 1, Mover: 1, Origin: "0", Destination: "1,1", Snapshot: "{}", PlayedAt: start})
	s.RecordMove(MoveRecord{GameID: "g1", Ply: 2, Mover: 2, Origin: "1", Destination: "2,2", Snapshot: "{}", PlayedAt: start})
	s.RecordResult("g1", "alice")

	// Close drains the writer.
	require.NoError(t, s.Close())
	require.True(t, s.IsHealthy())

	s = openStore(t, path)
	defer s.Close()

	all, err := s.QueryGames("*", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "g2", all[0].GameID)
	require.Nil(t, all[0].Winner)

	games, err := s.QueryGames("", "ALICE")
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.NotNil(t, games[0].Winner)
	require.Equal(t, "alice", *games[0].Winner)

	moves, err := s.QueryMoves("g1")
	require.NoError(t, err)
	require.Len(t, moves, 2)
	require.Equal(t, 2, moves[1].Mover)
	require.Equal(t, "2,2", moves[1].Destination)
}

func TestFailedWriteDegradesStore(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "degraded.db"))

	rec := GameRecord{GameID: "dup", PlayerName: "alice", Opponent: "robot", StartedAt: time.Now().UTC()}
	s.RecordNewGame(rec)
	s.RecordNewGame(rec)
	require.NoError(t, s.Close())
	require.False(t, s.IsHealthy())
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.db")
	s := openStore(t, path)
	require.NoError(t, s.DeleteDB())
	require.NoFileExists(t, path)
}
