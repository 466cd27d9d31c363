package ws

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"cooling_demand/internal/model"
	"cooling_demand/internal/pipeline"
	"cooling_demand/internal/stats"
	"cooling_demand/internal/store"
)

// Run is a completed pipeline run as served to clients.
type Run struct {
	ID        uuid.UUID
	Store     *store.Store
	Failed    []string
	Periods   []model.Period
	Summaries []stats.Summary
}

// NewRun loads res into a fresh store and summarizes it.
func NewRun(res *pipeline.Result, periods []model.Period) *Run {
	s := store.New()
	s.LoadResult(res)

	var failed []string
	for _, l := range res.Labels {
		if _, ok := res.Failures[l]; ok {
			failed = append(failed, l)
		}
	}

	return &Run{
		ID:        res.ID,
		Store:     s,
		Failed:    failed,
		Periods:   periods,
		Summaries: stats.SummarizeAll(res),
	}
}

// Period looks up a named period.
func (r *Run) Period(name string) (model.Period, bool) {
	for _, p := range r.Periods {
		if p.Name == name {
			return p, true
		}
	}
	return model.Period{}, false
}

func (r *Run) loadedPayload() RunLoadedPayload {
	p := RunLoadedPayload{
		RunID:     r.ID.String(),
		Scenarios: []ScenarioInfo{},
		Failed:    r.Failed,
		Series:    []SeriesInfo{},
		Periods:   make([]PeriodInfo, 0, len(r.Periods)),
		Summaries: make([]SummaryPayload, 0, len(r.Summaries)),
	}

	for _, label := range r.Store.Scenarios() {
		sp, _ := r.Store.Setpoint(label)
		p.Scenarios = append(p.Scenarios, ScenarioInfo{Label: label, SetpointC: sp})
	}
	for _, m := range r.Store.Meta() {
		p.Series = append(p.Series, SeriesInfoFromMeta(m))
	}
	if tr, ok := r.Store.GlobalTimeRange(); ok {
		p.TimeRange = TimeRangeInfo{
			Start: tr.Start.Format(time.RFC3339),
			End:   tr.End.Format(time.RFC3339),
		}
	}
	for _, per := range r.Periods {
		p.Periods = append(p.Periods, PeriodInfoFromModel(per))
	}
	for _, s := range r.Summaries {
		p.Summaries = append(p.Summaries, SummaryFromStats(s))
	}
	return p
}

// Bridge holds the currently published run and announces new runs to the
// WebSocket hub.
type Bridge struct {
	hub *Hub

	mu  sync.RWMutex
	run *Run
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

// Publish makes run current and broadcasts run:loaded to every client.
func (b *Bridge) Publish(run *Run) {
	b.mu.Lock()
	b.run = run
	b.mu.Unlock()

	msg, err := NewEnvelope(TypeRunLoaded, run.loadedPayload())
	if err != nil {
		log.Printf("Error marshaling run:loaded: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

// Current returns the published run, or nil before the first Publish.
func (b *Bridge) Current() *Run {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.run
}
