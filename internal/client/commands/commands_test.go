package commands

import (
	"context"
	"net"
	"testing"

	"gobblet/internal/client/api"
	"gobblet/internal/client/savefile"
	"gobblet/internal/core"
	"gobblet/internal/server/http"
	"gobblet/internal/server/service"
	"gobblet/internal/session"

	"github.com/stretchr/testify/require"
)

// newEnv serves a fresh in-memory game server and returns a client
// environment pointed at it.
func newEnv(t *testing.T) *Env {
	t.Helper()
	svc := service.New(nil)
	app := http.NewFiberApp(svc, true)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() {
		app.Shutdown()
		svc.Shutdown()
	})

	return &Env{
		Ctx:     context.Background(),
		Client:  api.New("http://"+ln.Addr().String()+"/api", "alice", "s3cret"),
		SaveDir: t.TempDir(),
	}
}

func TestStopAndResume(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, StartGame(env))
	id := env.Game.ID()

	require.NoError(t, moveHandler(env, []string{"0", "1,1"}))
	require.NotNil(t, env.Game)
	require.Equal(t, session.AwaitingLocalMove, env.Game.State())
	mirror := env.Game.Mirror()

	require.NoError(t, stopHandler(env, nil))
	require.Nil(t, env.Game)
	ids, err := savefile.IDs(env.SaveDir)
	require.NoError(t, err)
	require.Equal(t, []string{id}, ids)

	// a second game the client never saved is not offered for resume
	require.NoError(t, StartGame(env))
	env.Game = nil

	saved, err := SavedGames(env)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, id, saved[0].ID)

	require.NoError(t, resumeHandler(env, []string{"1"}))
	require.Equal(t, id, env.Game.ID())
	require.True(t, mirror.Equal(env.Game.Mirror()))
}

func TestMoveErrors(t *testing.T) {
	env := newEnv(t)
	require.ErrorIs(t, moveHandler(env, []string{"0", "1,1"}), errNoGame)

	require.NoError(t, StartGame(env))
	require.Error(t, moveHandler(env, []string{"0"}))

	var verr *core.ValidationError
	require.ErrorAs(t, moveHandler(env, []string{"7", "1,1"}), &verr)

	var illegal *core.IllegalMoveError
	require.ErrorAs(t, moveHandler(env, []string{"2,2", "1,1"}), &illegal)
	require.Equal(t, session.AwaitingLocalMove, env.Game.State())
}

func TestAutoStep(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, StartGame(env))
	require.NoError(t, autoHandler(env, nil))
	require.NotNil(t, env.Game)
	require.NotNil(t, env.Game.LastDelta())
}

func TestExecute(t *testing.T) {
	env := newEnv(t)
	r := NewRegistry(env)

	require.NoError(t, r.Execute(""))
	require.NoError(t, r.Execute("bogus"))
	require.NoError(t, r.Execute("show"), "handler errors are printed, not returned")
	require.NoError(t, r.Execute("n"))
	require.NotNil(t, env.Game)
	require.NoError(t, r.Execute("health"))
	require.ErrorIs(t, r.Execute("x"), ErrExit)
	require.ErrorIs(t, r.Execute("exit"), ErrExit)
}
