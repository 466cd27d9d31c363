package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"cooling_demand/internal/model"
	"cooling_demand/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and answers series requests from
// the published run.
type Handler struct {
	hub    *Hub
	bridge *Bridge
}

func NewHandler(hub *Hub, bridge *Bridge) *Handler {
	return &Handler{hub: hub, bridge: bridge}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	if run := h.bridge.Current(); run != nil {
		h.sendRunLoaded(client, run)
	}

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeSeriesRequest:
		var p SeriesRequestPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("Invalid series:request payload: %v", err)
			h.sendError(c, "invalid series:request payload")
			return
		}
		data, err := h.seriesData(p)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		h.send(c, TypeSeriesData, data)

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

func (h *Handler) seriesData(p SeriesRequestPayload) (SeriesDataPayload, error) {
	run := h.bridge.Current()
	if run == nil {
		return SeriesDataPayload{}, fmt.Errorf("no run loaded")
	}

	setpoint, ok := run.Store.Setpoint(p.Scenario)
	if !ok {
		return SeriesDataPayload{}, fmt.Errorf("unknown scenario %q", p.Scenario)
	}

	start, end, err := requestWindow(run, p)
	if err != nil {
		return SeriesDataPayload{}, err
	}

	internal, _ := run.Store.InRange(store.SeriesID(p.Scenario, model.KindInternalTemp), start, end)
	load, _ := run.Store.InRange(store.SeriesID(p.Scenario, model.KindNormalizedLoad), start, end)
	mw, _ := run.Store.InRange(store.SeriesID(p.Scenario, model.KindGridDemand), start, end)

	timestamps := make([]string, internal.Len())
	for i, ts := range internal.Index {
		timestamps[i] = ts.Format(time.RFC3339)
	}

	return SeriesDataPayload{
		Scenario:   p.Scenario,
		Period:     p.Period,
		SetpointC:  setpoint,
		Timestamps: timestamps,
		InternalC:  internal.Values,
		LoadKWe:    load.Values,
		DemandMW:   mw.Values,
	}, nil
}

// requestWindow resolves the [start, end) window of a request.
func requestWindow(run *Run, p SeriesRequestPayload) (time.Time, time.Time, error) {
	if p.Period != "" {
		per, ok := run.Period(p.Period)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", p.Period)
		}
		return per.Start, per.End, nil
	}

	tr, ok := run.Store.GlobalTimeRange()
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("run has no data")
	}
	start, end := tr.Start, tr.End.Add(time.Nanosecond)

	if p.Start != "" {
		t, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
		}
		start = t
	}
	if p.End != "" {
		t, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
		}
		end = t
	}
	return start, end, nil
}

func (h *Handler) sendRunLoaded(c *Client, run *Run) {
	h.send(c, TypeRunLoaded, run.loadedPayload())
}

func (h *Handler) sendError(c *Client, message string) {
	h.send(c, TypeError, ErrorPayload{Message: message})
}

func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Printf("Error creating %s message: %v", msgType, err)
		return
	}
	h.hub.Send(c, msg)
}
