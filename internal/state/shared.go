package state

import (
	"sync"
	"time"

	"fleetopt/internal/model"
)

// SharedState is the snapshot read by external monitors while the
// coordinator rewrites it. One mutex covers the whole multi-field update;
// per-field locks would let a reader observe a mix of two publishes.
type SharedState struct {
	mu   sync.Mutex
	snap model.SharedSnapshot
}

func NewSharedState() *SharedState {
	return &SharedState{snap: model.SharedSnapshot{
		Vehicles:   []model.VehicleState{},
		Production: []model.FactoryProduction{},
		Events:     []model.DisruptionEvent{},
	}}
}

// Publish replaces vehicles, production and events together with the update
// timestamp. Slices are copied so the caller may reuse its buffers.
func (s *SharedState) Publish(vehicles []model.VehicleState, production []model.FactoryProduction, events []model.DisruptionEvent, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Vehicles = append([]model.VehicleState(nil), vehicles...)
	s.snap.Production = append([]model.FactoryProduction(nil), production...)
	s.snap.Events = append([]model.DisruptionEvent(nil), events...)
	s.snap.LastUpdate = at
}

// Read copies out the snapshot under the same lock.
func (s *SharedState) Read() model.SharedSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SharedSnapshot{
		Vehicles:   append([]model.VehicleState(nil), s.snap.Vehicles...),
		Production: append([]model.FactoryProduction(nil), s.snap.Production...),
		Events:     append([]model.DisruptionEvent(nil), s.snap.Events...),
		LastUpdate: s.snap.LastUpdate,
	}
}
