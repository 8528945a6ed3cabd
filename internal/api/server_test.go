package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boardroom/internal/catalog"
	"boardroom/internal/config"
	"boardroom/internal/game"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, errs := catalog.Load()
	require.Empty(t, errs)
	g := game.New(game.Config{
		TeamCount:     3,
		RoundDuration: 30 * time.Second,
		Seed:          11,
	}, cat, nil)
	srv := New(config.APIConfig{}, nil, g, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	status, out := doJSON(t, ts, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, out["ok"])
}

func TestJoinAndPlayRound(t *testing.T) {
	ts := newTestServer(t)

	status, out := doJSON(t, ts, http.MethodPost, "/v1/teams/join", map[string]any{"team_name": "Alpha"})
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, out["team_id"])
	connID, _ := out["connection_id"].(string)
	require.NotEmpty(t, connID)

	status, _ = doJSON(t, ts, http.MethodPost, "/v1/admin/start", map[string]any{})
	require.Equal(t, http.StatusOK, status)

	status, out = doJSON(t, ts, http.MethodGet, "/v1/state", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "active", out["status"])
	require.EqualValues(t, 1, out["current_round"])
	require.EqualValues(t, 2026, out["year"])

	status, out = doJSON(t, ts, http.MethodGet, "/v1/decisions", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, out["decisions"])

	status, _ = doJSON(t, ts, http.MethodPost, "/v1/teams/submit", map[string]any{
		"connection_id": connID,
		"decision_ids":  []string{"grow_new_market"},
	})
	require.Equal(t, http.StatusOK, status)

	status, out = doJSON(t, ts, http.MethodGet, "/v1/submissions", nil)
	require.Equal(t, http.StatusOK, status)
	teams, _ := out["teams"].([]any)
	require.Len(t, teams, 3)
	first, _ := teams[0].(map[string]any)
	require.Equal(t, true, first["has_submitted"])

	status, _ = doJSON(t, ts, http.MethodPost, "/v1/admin/end-round", map[string]any{})
	require.Equal(t, http.StatusOK, status)

	status, out = doJSON(t, ts, http.MethodGet, "/v1/results/round", nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, out["round"])
	board, _ := out["leaderboard"].([]any)
	require.Len(t, board, 1)
}

func TestResultsNotFoundBeforeSettlement(t *testing.T) {
	ts := newTestServer(t)
	status, _ := doJSON(t, ts, http.MethodGet, "/v1/results/round", nil)
	require.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, ts, http.MethodGet, "/v1/results/final", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestDomainErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	// In the lobby the status guard fires before the team lookup.
	status, out := doJSON(t, ts, http.MethodPost, "/v1/teams/unsubmit", map[string]any{"connection_id": "ghost"})
	require.Equal(t, http.StatusConflict, status)
	require.NotEmpty(t, out["error"])

	_, join := doJSON(t, ts, http.MethodPost, "/v1/teams/join", map[string]any{"team_name": "Alpha"})
	connID, _ := join["connection_id"].(string)

	// Claiming a connected team's name -> 409.
	status, _ = doJSON(t, ts, http.MethodPost, "/v1/teams/join", map[string]any{"team_name": "alpha"})
	require.Equal(t, http.StatusConflict, status)

	// Empty name -> 400.
	status, _ = doJSON(t, ts, http.MethodPost, "/v1/teams/join", map[string]any{"team_name": "  "})
	require.Equal(t, http.StatusBadRequest, status)

	doJSON(t, ts, http.MethodPost, "/v1/admin/start", map[string]any{})

	// Unknown decision -> 400.
	status, _ = doJSON(t, ts, http.MethodPost, "/v1/teams/submit", map[string]any{
		"connection_id": connID,
		"decision_ids":  []string{"made_up"},
	})
	require.Equal(t, http.StatusBadRequest, status)

	// Unknown connection on submit -> 404.
	status, _ = doJSON(t, ts, http.MethodPost, "/v1/teams/submit", map[string]any{
		"connection_id": "ghost",
		"decision_ids":  []string{},
	})
	require.Equal(t, http.StatusNotFound, status)

	// Starting twice -> 409.
	status, _ = doJSON(t, ts, http.MethodPost, "/v1/admin/start", map[string]any{})
	require.Equal(t, http.StatusConflict, status)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	ts := newTestServer(t)
	status, out := doJSON(t, ts, http.MethodPost, "/v1/teams/join", map[string]any{
		"team_name": "Alpha",
		"mystery":   true,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, out["error"], "unknown field")
}

func TestAdminConfig(t *testing.T) {
	ts := newTestServer(t)

	status, _ := doJSON(t, ts, http.MethodPost, "/v1/admin/config", map[string]any{
		"team_count":    5,
		"round_seconds": 60,
	})
	require.Equal(t, http.StatusOK, status)

	_, out := doJSON(t, ts, http.MethodGet, "/v1/state", nil)
	require.EqualValues(t, 5, out["team_count"])
	require.EqualValues(t, 60, out["round_duration_seconds"])

	status, _ = doJSON(t, ts, http.MethodPost, "/v1/admin/config", map[string]any{"team_count": 40})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAdminEvent(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, ts, http.MethodPost, "/v1/teams/join", map[string]any{"team_name": "Alpha"})
	doJSON(t, ts, http.MethodPost, "/v1/admin/start", map[string]any{})

	status, _ := doJSON(t, ts, http.MethodPost, "/v1/admin/event", map[string]any{"description": "flash strike"})
	require.Equal(t, http.StatusOK, status)

	_, out := doJSON(t, ts, http.MethodGet, "/v1/state", nil)
	scn, _ := out["scenario"].(map[string]any)
	require.Equal(t, true, scn["event_triggered"])
	require.Equal(t, "flash strike", scn["event_description"])
}
