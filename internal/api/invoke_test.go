package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosscap/mosscap/internal/orchestrator"
	"github.com/mosscap/mosscap/internal/testutil"
)

type fakeRunner struct {
	reply string
	err   error

	userID    string
	sessionID string
	input     string
	calls     int
}

func (f *fakeRunner) Run(_ context.Context, userID, sessionID, userInput string) (string, error) {
	f.calls++
	f.userID = userID
	f.sessionID = sessionID
	f.input = userInput
	if strings.TrimSpace(userInput) == "" {
		return "", orchestrator.ErrEmptyInput
	}
	return f.reply, f.err
}

func newTestServer(t *testing.T, runner *fakeRunner) http.Handler {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Logger:    testutil.DiscardLogger(),
		Runner:    runner,
		RateBurst: 1000,
	})
	require.NoError(t, err)
	return srv.Handler()
}

func postInvoke(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoke", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestInvoke(t *testing.T) {
	runner := &fakeRunner{reply: "Hello from Mosscap."}
	handler := newTestServer(t, runner)

	w := postInvoke(t, handler, `{"user_input":"hi","user_id":"alice","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp invokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hello from Mosscap.", resp.Response)
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, "s1", resp.SessionID)

	assert.Equal(t, "alice", runner.userID)
	assert.Equal(t, "s1", runner.sessionID)
	assert.Equal(t, "hi", runner.input)
}

func TestInvokeDefaultsIdentifiers(t *testing.T) {
	runner := &fakeRunner{reply: "ok"}
	handler := newTestServer(t, runner)

	w := postInvoke(t, handler, `{"user_input":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp invokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, orchestrator.DefaultUserID, resp.UserID)
	assert.Equal(t, orchestrator.DefaultSessionID, resp.SessionID)
}

func TestInvokeEmptyInput(t *testing.T) {
	handler := newTestServer(t, &fakeRunner{})

	for _, body := range []string{`{}`, `{"user_input":""}`, `{"user_input":"   "}`} {
		w := postInvoke(t, handler, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "empty_input", resp.Error)
	}
}

func TestInvokeTurnFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("model exploded")}
	handler := newTestServer(t, runner)

	w := postInvoke(t, handler, `{"user_input":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "turn_failed", resp.Error)
	assert.Equal(t, turnFailedMessage, resp.Message)
	assert.NotContains(t, w.Body.String(), "model exploded")
}

func TestInvokeInvalidJSON(t *testing.T) {
	handler := newTestServer(t, &fakeRunner{})

	w := postInvoke(t, handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_body", resp.Error)
}

func TestInvokeBodyTooLarge(t *testing.T) {
	runner := &fakeRunner{}
	handler := newTestServer(t, runner)

	big := strings.Repeat("a", maxInvokeBodyBytes+1)
	w := postInvoke(t, handler, `{"user_input":"`+big+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, 0, runner.calls)
}

func TestInvokeMethodNotAllowed(t *testing.T) {
	handler := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoke", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestNewServerRequiresRunner(t *testing.T) {
	_, err := NewServer(ServerConfig{Logger: testutil.DiscardLogger()})
	assert.Error(t, err)
}
