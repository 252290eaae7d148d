package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PratikDhanave/profile-sync-service/internal/profilesync"
	"github.com/PratikDhanave/profile-sync-service/internal/store"
)

type downStore struct{ *store.MemoryStore }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, st Pinger, w profilesync.ProfileWriter, logger *zap.Logger) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	syncer := profilesync.New(w, logger, profilesync.WithMetrics(profilesync.NewMetrics(reg)))
	srv := httptest.NewServer(NewRouter(st, syncer, reg, logger))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestHealth_ReturnsOK(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, st, zap.NewNop())

	code, _ := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
}

func TestReady_ReflectsStore(t *testing.T) {
	st := store.NewMemoryStore()
	up := newTestServer(t, st, st, zap.NewNop())
	code, _ := get(t, up.URL+"/ready")
	assert.Equal(t, http.StatusOK, code)

	down := newTestServer(t, downStore{st}, st, zap.NewNop())
	code, body := get(t, down.URL+"/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "connection refused")
}

func TestWebhook_EndToEndWithMetricsAndRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, st, zap.New(core))

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/handle-new-user",
		strings.NewReader(`{"event":"INSERT","session":{"user":{"id":"u1","email":"a@b.com"}}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-42")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User profile created", string(b))
	assert.Equal(t, "req-42", resp.Header.Get(RequestIDHeader))
	assert.Len(t, st.Records(), 1)

	created := logs.FilterMessage("profile created").All()
	require.Len(t, created, 1)
	assert.Equal(t, "req-42", created[0].ContextMap()["request_id"])
	assert.Equal(t, "u1", created[0].ContextMap()["user_id"])

	_, metrics := get(t, srv.URL+"/metrics")
	assert.Contains(t, metrics, `profile_sync_events_total{outcome="created"} 1`)
}

func TestWebhook_WrongMethodIsNotAllowed(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, st, zap.NewNop())

	for _, path := range []string{"/", "/handle-new-user"} {
		code, body := get(t, srv.URL+path)
		assert.Equal(t, http.StatusMethodNotAllowed, code, path)
		assert.Equal(t, "Method not allowed", body, path)
	}
	assert.Empty(t, st.Records())

	code, _ := get(t, srv.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, st, zap.NewNop())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, Run(ctx, srv, zap.NewNop()))
}
