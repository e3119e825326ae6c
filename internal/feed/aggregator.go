package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"fleetopt/internal/metrics"
	"fleetopt/internal/model"
)

// Aggregator pulls one snapshot per tick from all five providers. Provider
// failures stop at this boundary: the failing field keeps its last good
// value, the error is logged and counted, and the tick goes on.
type Aggregator struct {
	providers Providers

	mu   sync.Mutex
	last model.Snapshot
}

func NewAggregator(p Providers) *Aggregator {
	return &Aggregator{providers: p}
}

// Refresh returns a fresh snapshot, degrading to stale fields on provider
// errors. It never fails.
func (a *Aggregator) Refresh(ctx context.Context) model.Snapshot {
	a.mu.Lock()
	snap := a.last
	a.mu.Unlock()

	if orders, err := a.providers.Orders.Latest(ctx); err != nil {
		a.reportErr("orders", err)
	} else {
		snap.Orders = orders
	}
	if vehicles, err := a.providers.Vehicles.Status(ctx); err != nil {
		a.reportErr("vehicles", err)
	} else {
		snap.Vehicles = vehicles
	}
	if traffic, err := a.providers.Traffic.Levels(ctx); err != nil {
		a.reportErr("traffic", err)
	} else {
		snap.Traffic = traffic
	}
	if weather, err := a.providers.Weather.Conditions(ctx); err != nil {
		a.reportErr("weather", err)
	} else {
		snap.Weather = weather
	}
	if prod, err := a.providers.Production.Production(ctx); err != nil {
		a.reportErr("factory", err)
	} else {
		snap.Production = prod
	}
	snap.TakenAt = time.Now().UTC()

	a.mu.Lock()
	a.last = snap
	a.mu.Unlock()
	return snap
}

// Pending returns the pending order backlog for demand composition.
func (a *Aggregator) Pending(ctx context.Context) []model.DeliveryDemand {
	out, err := a.providers.Orders.Pending(ctx)
	if err != nil {
		a.reportErr("orders", err)
		return nil
	}
	return out
}

// Production returns the latest factory batches for demand composition.
func (a *Aggregator) Production(ctx context.Context) []model.FactoryProduction {
	out, err := a.providers.Production.Production(ctx)
	if err != nil {
		a.reportErr("factory", err)
		return nil
	}
	return out
}

// Detect samples the disruption detector once. Nil means no event this tick.
func (a *Aggregator) Detect(now time.Time) *model.DisruptionEvent {
	if a.providers.Detector == nil {
		return nil
	}
	return a.providers.Detector.Detect(now)
}

func (a *Aggregator) reportErr(provider string, err error) {
	log.Printf("feed: provider=%s refresh failed: %v", provider, err)
	metrics.ProviderErrors.WithLabelValues(provider).Inc()
}
