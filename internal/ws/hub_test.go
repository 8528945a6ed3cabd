package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boardroom/internal/game"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(hub)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestHubBroadcastsTimerFrames(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)

	// Registration races the broadcast; wait for the socket to land.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.TimerTick(2, 45)

	f := readFrame(t, conn)
	require.Equal(t, "timer", f.Type)
	payload, ok := f.Payload.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 2, payload["round"])
	require.EqualValues(t, 45, payload["seconds_remaining"])
}

func TestHubBroadcastsGameEvents(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.StateChanged(game.Snapshot{Status: game.StatusActive, CurrentRound: 3})
	hub.RoundEnded(game.RoundResults{Round: 3})

	state := readFrame(t, conn)
	require.Equal(t, "state", state.Type)

	results := readFrame(t, conn)
	require.Equal(t, "round_results", results.Type)
}
