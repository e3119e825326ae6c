package feed

import (
	"context"
	"time"

	"fleetopt/internal/model"
)

// Provider interfaces for the five upstream telemetry sources. The
// coordinator only ever talks to these through the Aggregator.

type OrderProvider interface {
	Pending(ctx context.Context) ([]model.DeliveryDemand, error)
	Latest(ctx context.Context) ([]model.DeliveryDemand, error)
}

type VehicleProvider interface {
	Status(ctx context.Context) ([]model.VehicleState, error)
}

type TrafficProvider interface {
	Levels(ctx context.Context) (model.TrafficReport, error)
}

type WeatherProvider interface {
	Conditions(ctx context.Context) (model.WeatherReport, error)
}

type ProductionProvider interface {
	Production(ctx context.Context) ([]model.FactoryProduction, error)
}

// EventDetector samples for a disruption once per tick. Returning nil means
// no event this tick. The coordinator never depends on randomness directly;
// the simulated detector is one implementation, fixtures are another.
type EventDetector interface {
	Detect(now time.Time) *model.DisruptionEvent
}

// Providers bundles the five sources plus the detector for the Aggregator.
type Providers struct {
	Orders     OrderProvider
	Vehicles   VehicleProvider
	Traffic    TrafficProvider
	Weather    WeatherProvider
	Production ProductionProvider
	Detector   EventDetector
}
