package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gobblet/internal/client/api"

	"github.com/stretchr/testify/require"
)

func TestRunUsage(t *testing.T) {
	require.ErrorIs(t, run(nil, nil), errUsage)
	require.ErrorIs(t, run([]string{"alice", "bob"}, nil), errUsage)
}

// A refused start comes back as an error after readline is closed.
func TestRunReturnsServerError(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized","code":"UNAUTHORIZED","message":"bad secret"}`))
	}))
	defer srv.Close()

	args := []string{"-url", srv.URL + "/api", "-secret", "wrong-secret", "-save-dir", t.TempDir(), "alice"}
	err := run(args, io.NopCloser(strings.NewReader("")))
	require.ErrorIs(t, err, api.ErrUnauthorized)
}
