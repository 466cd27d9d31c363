package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHandler sets up a test server with the handler and returns a WS connection.
func dialHandler(t *testing.T, handler *Handler) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

// readJSON reads the next JSON message from the connection.
func readJSON(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

// sendJSON sends a JSON message on the connection.
func sendJSON(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	data, err := NewEnvelope(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func newTestHandler(t *testing.T) (*Handler, *Bridge, *Hub) {
	t.Helper()
	hub := NewHub()
	bridge := NewBridge(hub)
	bridge.Publish(testRun(t))
	return NewHandler(hub, bridge), bridge, hub
}

func requestSeries(t *testing.T, conn *websocket.Conn, req SeriesRequestPayload) SeriesDataPayload {
	t.Helper()
	sendJSON(t, conn, TypeSeriesRequest, req)
	env := readJSON(t, conn)
	require.Equal(t, TypeSeriesData, env.Type, string(env.Payload))
	var p SeriesDataPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	return p
}

func readError(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	env := readJSON(t, conn)
	require.Equal(t, TypeError, env.Type)
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	return p.Message
}

func TestHandler_InitialRunLoaded(t *testing.T) {
	handler, bridge, _ := newTestHandler(t)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	env := readJSON(t, conn)
	assert.Equal(t, TypeRunLoaded, env.Type)

	var p RunLoadedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, bridge.Current().ID.String(), p.RunID)
	assert.NotEmpty(t, p.Series)
}

func TestHandler_SeriesRequest_Full(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn) // run:loaded

	p := requestSeries(t, conn, SeriesRequestPayload{Scenario: "2024"})
	assert.Equal(t, 24.0, p.SetpointC)
	require.Len(t, p.Timestamps, 7)
	assert.Equal(t, "2024-01-10T00:00:00Z", p.Timestamps[0])
	assert.Equal(t, []float64{20, 21, 23.5, 26.75, 26.375, 24.1875, 22.09375}, p.InternalC)
	assert.Len(t, p.LoadKWe, 7)
	assert.Len(t, p.DemandMW, 7)
	assert.Equal(t, 0.0, p.LoadKWe[2])
	assert.Greater(t, p.DemandMW[3], 0.0)
}

func TestHandler_SeriesRequest_Period(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn)

	p := requestSeries(t, conn, SeriesRequestPayload{Scenario: "2024", Period: "late"})
	assert.Equal(t, "late", p.Period)
	assert.Equal(t, []float64{26.75, 26.375, 24.1875, 22.09375}, p.InternalC)
}

func TestHandler_SeriesRequest_Window(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn)

	p := requestSeries(t, conn, SeriesRequestPayload{
		Scenario: "SSP5",
		Start:    startTime.Add(time.Hour).Format(time.RFC3339),
		End:      startTime.Add(3 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, []string{"2024-01-10T01:00:00Z", "2024-01-10T02:00:00Z"}, p.Timestamps)
	assert.Len(t, p.InternalC, 2)
}

func TestHandler_SeriesRequest_Errors(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn)

	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{Scenario: "SSP1"})
	assert.Contains(t, readError(t, conn), `unknown scenario "SSP1"`)

	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{Scenario: "2024", Period: "july"})
	assert.Contains(t, readError(t, conn), "unknown period")

	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{Scenario: "2024", Start: "yesterday"})
	assert.Contains(t, readError(t, conn), "invalid start")
}

func TestHandler_NoRunPublished(t *testing.T) {
	hub := NewHub()
	handler := NewHandler(hub, NewBridge(hub))
	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	sendJSON(t, conn, TypeSeriesRequest, SeriesRequestPayload{Scenario: "2024"})
	assert.Equal(t, "no run loaded", readError(t, conn))
}

func TestHandler_PublishBroadcasts(t *testing.T) {
	handler, bridge, hub := newTestHandler(t)
	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn)
	assert.Equal(t, 1, hub.ClientCount())

	next := testRun(t)
	bridge.Publish(next)

	env := readJSON(t, conn)
	assert.Equal(t, TypeRunLoaded, env.Type)
	var p RunLoadedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, next.ID.String(), p.RunID)
}

func TestHandler_InvalidMessage(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	conn, cleanup := dialHandler(t, handler)
	defer cleanup()
	readJSON(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	sendJSON(t, conn, "sim:start", nil)

	// Connection stays usable
	p := requestSeries(t, conn, SeriesRequestPayload{Scenario: "2024", Period: "early"})
	assert.Len(t, p.Timestamps, 3)
}

func TestHandler_Disconnect(t *testing.T) {
	handler, _, hub := newTestHandler(t)
	conn, cleanup := dialHandler(t, handler)
	readJSON(t, conn)
	assert.Equal(t, 1, hub.ClientCount())

	cleanup()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_SendAfterCloseAll(t *testing.T) {
	h, bridge, hub := newTestHandler(t)
	c := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.Register(c)
	hub.CloseAll()

	req, err := NewEnvelope(TypeSeriesRequest, SeriesRequestPayload{Scenario: "2024"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		h.sendError(c, "late")
		h.sendRunLoaded(c, bridge.Current())
		h.handleMessage(c, req)
	})
}
