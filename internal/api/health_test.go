package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mosscap/mosscap/internal/testutil"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	health(testutil.DiscardLogger())(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		w := httptest.NewRecorder()
		readiness(fakePinger{}, testutil.DiscardLogger())(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unreachable database", func(t *testing.T) {
		w := httptest.NewRecorder()
		readiness(fakePinger{err: errors.New("refused")}, testutil.DiscardLogger())(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "not_ready")
	})

	t.Run("no database wired", func(t *testing.T) {
		w := httptest.NewRecorder()
		readiness(nil, testutil.DiscardLogger())(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHealthBypassesRateLimit(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Logger:    testutil.DiscardLogger(),
		Runner:    &fakeRunner{reply: "ok"},
		RateBurst: 1,
	})
	assert.NoError(t, err)

	// Far more requests than the burst allows; probes must all succeed.
	for range 10 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.9:1000"
		srv.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
