// Package coordinator drives the reoptimization control loop: one tick per
// interval, scheduled full replans on the wall clock, incremental replans on
// disruption events, and publication of shared state for monitors.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fleetopt/internal/feed"
	"fleetopt/internal/metrics"
	"fleetopt/internal/model"
	"fleetopt/internal/monitor"
	"fleetopt/internal/plan"
	"fleetopt/internal/state"
	"fleetopt/internal/store"
)

// Loop states. The coordinator spends almost all its life in IdleWaiting;
// the replanning states are visible to monitors for the duration of one
// trigger handling.
const (
	StateIdleWaiting         = "idle_waiting"
	StateScheduledReplanning = "scheduled_replanning"
	StateEventReplanning     = "event_replanning"
	StateStopped             = "stopped"
)

// recentEventsWindow bounds the event history published to monitors.
const recentEventsWindow = 3

type Options struct {
	Tick           time.Duration // loop cadence, default 1s
	ReplanInterval time.Duration // scheduled trigger threshold, default 1h
	Composer       plan.Composer
	Solver         plan.Solver
	Aggregator     *feed.Aggregator
	Solutions      *state.SolutionState
	Shared         *state.SharedState
	Archive        store.Store
	Broker         monitor.EventBroker
}

type Coordinator struct {
	tickEvery   time.Duration
	replanEvery time.Duration
	composer    plan.Composer
	solver      plan.Solver
	agg         *feed.Aggregator
	solutions   *state.SolutionState
	shared      *state.SharedState
	archive     store.Store
	broker      monitor.EventBroker

	now func() time.Time

	mu      sync.Mutex
	state   string
	err     error
	lastOpt time.Time
	recent  []model.DisruptionEvent
}

func New(opts Options) *Coordinator {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.ReplanInterval <= 0 {
		opts.ReplanInterval = time.Hour
	}
	c := &Coordinator{
		tickEvery:   opts.Tick,
		replanEvery: opts.ReplanInterval,
		composer:    opts.Composer,
		solver:      opts.Solver,
		agg:         opts.Aggregator,
		solutions:   opts.Solutions,
		shared:      opts.Shared,
		archive:     opts.Archive,
		broker:      opts.Broker,
		now:         time.Now,
		state:       StateIdleWaiting,
	}
	c.lastOpt = c.now()
	return c
}

// Run executes the loop until ctx is cancelled. A panic inside a tick marks
// the coordinator stopped and is returned as an error; it never turns into
// a silent crash loop.
func (c *Coordinator) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("coordinator: fatal: %v", r)
			c.fail(err)
		}
	}()
	log.Printf("coordinator: loop starting tick=%s replanInterval=%s", c.tickEvery, c.replanEvery)
	ticker := time.NewTicker(c.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.setState(StateStopped)
			log.Printf("coordinator: loop stopped: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			c.tick(ctx, c.now())
		}
	}
}

// tick runs one loop iteration. Steps are strictly sequential: refresh,
// trigger check (scheduled wins over event), dispatch, publish.
func (c *Coordinator) tick(ctx context.Context, now time.Time) {
	metrics.Ticks.Inc()
	snap := c.agg.Refresh(ctx)

	switch {
	case now.Sub(c.lastOptimization()) >= c.replanEvery:
		c.setState(StateScheduledReplanning)
		c.scheduledReplan(ctx, snap, now)
	default:
		if ev := c.agg.Detect(now); ev != nil {
			c.setState(StateEventReplanning)
			c.eventReplan(ctx, *ev, now)
		}
	}

	c.dispatch()
	c.shared.Publish(snap.Vehicles, snap.Production, c.recentEvents(), now)
	c.setState(StateIdleWaiting)
}

// scheduledReplan recomputes the full plan from composed demand. On solver
// failure the previous solution stays installed and lastOptimization is not
// advanced, so the next tick retries.
func (c *Coordinator) scheduledReplan(ctx context.Context, snap model.Snapshot, now time.Time) {
	pending := c.agg.Pending(ctx)
	batches := c.agg.Production(ctx)
	demands := c.composer.Compose(pending, batches, now)
	log.Printf("coordinator: scheduled replan demands=%d pending=%d batches=%d", len(demands), len(pending), len(batches))

	start := time.Now()
	sol, err := c.solver.Solve(ctx, demands, snap.Vehicles)
	dur := time.Since(start)
	metrics.SolverDuration.Observe(dur.Seconds())
	if err != nil {
		log.Printf("coordinator: solver failed, keeping previous solution: %v", err)
		metrics.SolverFailures.Inc()
		return
	}
	sol.Trigger = "scheduled"
	sol.GeneratedAt = now
	c.solutions.Install(&sol)
	c.setLastOptimization(now)
	metrics.Replans.WithLabelValues("scheduled").Inc()
	metrics.ActiveRoutes.Set(float64(len(sol.Routes)))

	c.record(ctx, store.ReplanRecord{
		Trigger:    "scheduled",
		Demands:    len(demands),
		Routes:     len(sol.Routes),
		DurationMs: int(dur.Milliseconds()),
		At:         now,
	})
	c.publishEvent(monitor.Event{Type: "replan.scheduled", Data: map[string]any{
		"demands": len(demands),
		"routes":  len(sol.Routes),
		"at":      now.UTC().Format(time.RFC3339),
	}})
}

// eventReplan installs the minimal scoped adjustment for one disruption.
// Latency beats optimality here; the full recompute waits for the schedule.
func (c *Coordinator) eventReplan(ctx context.Context, ev model.DisruptionEvent, now time.Time) {
	log.Printf("coordinator: event replan type=%s at=(%.4f,%.4f)", ev.Type, ev.Location.Lat, ev.Location.Lng)
	sol := plan.Reroute(ev, now)
	c.solutions.Install(&sol)
	c.pushEvent(ev)
	metrics.Replans.WithLabelValues("event").Inc()
	metrics.EventsDetected.WithLabelValues(string(ev.Type)).Inc()
	metrics.ActiveRoutes.Set(float64(len(sol.Routes)))

	c.record(ctx, store.ReplanRecord{
		Trigger:   "event",
		EventType: string(ev.Type),
		Routes:    len(sol.Routes),
		At:        now,
	})
	c.publishEvent(monitor.Event{Type: "disruption.detected", Data: map[string]any{
		"eventType": string(ev.Type),
		"lat":       ev.Location.Lat,
		"lng":       ev.Location.Lng,
		"at":        now.UTC().Format(time.RFC3339),
	}})
}

// dispatch reports the active plan. Observability only, no state change.
func (c *Coordinator) dispatch() {
	sol := c.solutions.Read()
	if sol != nil && len(sol.Routes) > 0 {
		log.Printf("coordinator: dispatching routes=%d", len(sol.Routes))
	}
}

func (c *Coordinator) record(ctx context.Context, rec store.ReplanRecord) {
	if c.archive == nil {
		return
	}
	if err := c.archive.RecordReplan(ctx, rec); err != nil {
		log.Printf("coordinator: archive write failed: %v", err)
	}
}

func (c *Coordinator) publishEvent(evt monitor.Event) {
	if c.broker != nil {
		c.broker.Publish(monitor.TopicEvents, evt)
	}
}

func (c *Coordinator) pushEvent(ev model.DisruptionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recent = append(c.recent, ev)
	if len(c.recent) > recentEventsWindow {
		c.recent = c.recent[len(c.recent)-recentEventsWindow:]
	}
}

func (c *Coordinator) recentEvents() []model.DisruptionEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.DisruptionEvent(nil), c.recent...)
}

func (c *Coordinator) lastOptimization() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOpt
}

func (c *Coordinator) setLastOptimization(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastOpt = t
}

func (c *Coordinator) setState(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Coordinator) fail(err error) {
	c.mu.Lock()
	c.err = err
	c.state = StateStopped
	c.mu.Unlock()
	log.Printf("coordinator: stopped, external restart required: %v", err)
}

// State reports the current loop state for monitors.
func (c *Coordinator) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the fatal error if the coordinator stopped abnormally.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LastOptimization reports when the last scheduled replan completed.
func (c *Coordinator) LastOptimization() time.Time {
	return c.lastOptimization()
}
