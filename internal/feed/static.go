package feed

import (
	"context"
	"time"

	"fleetopt/internal/model"
)

// Deterministic fixture providers. Used by tests and as a drop-in for
// environments without live telemetry.

type StaticOrders struct {
	PendingOrders []model.DeliveryDemand
	LatestOrders  []model.DeliveryDemand
	Err           error
}

func (s *StaticOrders) Pending(ctx context.Context) ([]model.DeliveryDemand, error) {
	return s.PendingOrders, s.Err
}

func (s *StaticOrders) Latest(ctx context.Context) ([]model.DeliveryDemand, error) {
	return s.LatestOrders, s.Err
}

type StaticVehicles struct {
	Fleet []model.VehicleState
	Err   error
}

func (s *StaticVehicles) Status(ctx context.Context) ([]model.VehicleState, error) {
	return s.Fleet, s.Err
}

type StaticTraffic struct {
	Report model.TrafficReport
	Err    error
}

func (s *StaticTraffic) Levels(ctx context.Context) (model.TrafficReport, error) {
	return s.Report, s.Err
}

type StaticWeather struct {
	Report model.WeatherReport
	Err    error
}

func (s *StaticWeather) Conditions(ctx context.Context) (model.WeatherReport, error) {
	return s.Report, s.Err
}

type StaticFactory struct {
	Batches []model.FactoryProduction
	Err     error
}

func (s *StaticFactory) Production(ctx context.Context) ([]model.FactoryProduction, error) {
	return s.Batches, s.Err
}

// ScriptedDetector fires the queued events in order, one per Detect call,
// then reports nothing.
type ScriptedDetector struct {
	Queue []*model.DisruptionEvent
	pos   int
}

func (d *ScriptedDetector) Detect(now time.Time) *model.DisruptionEvent {
	if d.pos >= len(d.Queue) {
		return nil
	}
	ev := d.Queue[d.pos]
	d.pos++
	if ev != nil {
		e := *ev
		e.DetectedAt = now
		return &e
	}
	return nil
}

// StaticProviders returns a provider set with empty but valid data,
// convenient as a baseline for tests that override single fields.
func StaticProviders() Providers {
	return Providers{
		Orders:     &StaticOrders{},
		Vehicles:   &StaticVehicles{},
		Traffic:    &StaticTraffic{Report: model.TrafficReport{Current: model.TrafficClear}},
		Weather:    &StaticWeather{Report: model.WeatherReport{Weather: model.WeatherSunny, RoadCondition: 1}},
		Production: &StaticFactory{},
		Detector:   &ScriptedDetector{},
	}
}
