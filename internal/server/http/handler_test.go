package http

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gobblet/internal/agent"
	"gobblet/internal/client/api"
	"gobblet/internal/core"
	"gobblet/internal/game"
	"gobblet/internal/server/service"
	"gobblet/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.New(nil)
	t.Cleanup(func() { svc.Shutdown() })
	return NewFiberApp(svc, true)
}

// do sends a request as alice and decodes the JSON answer into out.
func do(t *testing.T, app *fiber.App, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth("alice", "s3cret")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthNeedsNoAuth(t *testing.T) {
	app := newApp(t)
	for _, path := range []string{"/health", "/api/health"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)

		var h core.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
		require.Equal(t, "healthy", h.Status)
		require.Equal(t, "disabled", h.Storage)
	}
}

func TestMissingCredentials(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/games", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var e core.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	require.Equal(t, core.CodeUnauthorized, e.Code)
	require.NotEmpty(t, e.Message)
}

func TestGameLifecycle(t *testing.T) {
	app := newApp(t)

	var games core.GameListResponse
	require.Equal(t, fiber.StatusOK, do(t, app, fiber.MethodGet, "/api/games", "", &games))
	require.NotNil(t, games.Games)
	require.Empty(t, games.Games)

	var start core.GameResponse
	require.Equal(t, fiber.StatusOK, do(t, app, fiber.MethodPost, "/api/game", "", &start))
	require.True(t, isValidUUID(start.ID))
	require.Equal(t, "alice", start.Players[0].Name)

	var got core.GameResponse
	require.Equal(t, fiber.StatusOK, do(t, app, fiber.MethodGet, "/api/game/"+start.ID, "", &got))
	require.Equal(t, start.GameSnapshot, got.GameSnapshot)

	var played core.GameResponse
	body := `{"id":"` + start.ID + `","origin":0,"destination":[1,2]}`
	require.Equal(t, fiber.StatusOK, do(t, app, fiber.MethodPut, "/api/play", body, &played))
	s, err := game.FromSnapshot(played.GameSnapshot)
	require.NoError(t, err)
	top, ok := s.Top(core.Coord{Col: 1, Row: 2})
	require.True(t, ok)
	require.Equal(t, core.Player1, top.Owner())
	require.Equal(t, core.Pair{1, 2}, played.Players[0].Reserves[0])

	require.Equal(t, fiber.StatusOK, do(t, app, fiber.MethodGet, "/api/games", "", &games))
	require.Len(t, games.Games, 1)
	require.Equal(t, start.ID, games.Games[0].ID)
}

func TestRejections(t *testing.T) {
	app := newApp(t)
	var start core.GameResponse
	require.Equal(t, fiber.StatusOK, do(t, app, fiber.MethodPost, "/api/game", "", &start))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   string
	}{
		{"unknown game id", fiber.MethodGet, "/api/game/not-a-uuid", "", core.CodeGameNotFound},
		{"missing game", fiber.MethodGet, "/api/game/6f1c2a9e-2d7b-4c1e-9a53-1f0e8c7d6b5a", "", core.CodeGameNotFound},
		{"empty origin cell", fiber.MethodPut, "/api/play", `{"id":"` + start.ID + `","origin":[0,0],"destination":[1,1]}`, core.CodeInvalidMove},
		{"slot out of range", fiber.MethodPut, "/api/play", `{"id":"` + start.ID + `","origin":5,"destination":[1,1]}`, core.CodeInvalidRequest},
		{"destination off board", fiber.MethodPut, "/api/play", `{"id":"` + start.ID + `","origin":0,"destination":[4,1]}`, core.CodeInvalidRequest},
		{"missing id", fiber.MethodPut, "/api/play", `{"origin":0,"destination":[1,1]}`, core.CodeInvalidRequest},
		{"malformed body", fiber.MethodPut, "/api/play", `{"id":`, core.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e core.ErrorResponse
			require.Equal(t, fiber.StatusNotAcceptable, do(t, app, tt.method, tt.path, tt.body, &e))
			require.Equal(t, tt.code, e.Code)
			require.NotEmpty(t, e.Message)
		})
	}
}

func TestContentType(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest(fiber.MethodPut, "/api/play", strings.NewReader("id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("alice", "s3cret")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

// A client session plays against the real server over TCP and stays in
// sync with it.
func TestClientSessionAgainstServer(t *testing.T) {
	app := newApp(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := api.New("http://"+ln.Addr().String()+"/api", "alice", "s3cret")
	_, err = client.Health(ctx)
	require.NoError(t, err)

	start, err := client.StartGame(ctx)
	require.NoError(t, err)
	sess, err := session.New(start, client)
	require.NoError(t, err)

	for i := 0; i < 12 && sess.State() != session.GameOver; i++ {
		_, err := sess.Step(ctx, agent.Mover{})
		require.NoError(t, err)
		// stay under the per-second rate limit
		time.Sleep(60 * time.Millisecond)
	}

	current, err := client.GetGame(ctx, start.ID)
	require.NoError(t, err)
	if sess.State() == session.GameOver {
		require.True(t, current.Terminal())
		return
	}
	server, err := game.FromSnapshot(current.GameSnapshot)
	require.NoError(t, err)
	require.True(t, sess.Mirror().Equal(server))
}
