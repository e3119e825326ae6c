package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetopt/internal/model"
)

// Solver turns a demand set into a route plan. Implementations must keep
// vehicle load within capacity; the coordinator treats solver errors as
// recoverable and keeps the previous solution.
type Solver interface {
	Solve(ctx context.Context, demands []model.DeliveryDemand, vehicles []model.VehicleState) (model.Solution, error)
}

// PartitionSolver is the baseline plan builder: it slices the demand list
// into fixed-size groups, one route per group. Even an empty demand set
// yields one (empty) route.
type PartitionSolver struct {
	GroupSize int // defaults to 3
}

func (s PartitionSolver) Solve(ctx context.Context, demands []model.DeliveryDemand, vehicles []model.VehicleState) (model.Solution, error) {
	size := s.GroupSize
	if size <= 0 {
		size = 3
	}
	n := len(demands)/size + 1
	routes := make([]model.Route, 0, n)
	for i := 0; i < n; i++ {
		r := model.Route{
			ID:      uuid.New().String(),
			Summary: fmt.Sprintf("route %d", i),
		}
		for j := i * size; j < (i+1)*size && j < len(demands); j++ {
			r.DemandIDs = append(r.DemandIDs, demands[j].ID)
			r.Stops = append(r.Stops, demands[j].Location)
		}
		routes = append(routes, r)
	}
	return model.Solution{Routes: routes}, nil
}

// Reroute builds the minimal adjusted solution installed on a disruption
// event: a single synthetic directive scoped to the event location. Cheap
// and immediate, a full recompute waits for the next scheduled pass.
func Reroute(ev model.DisruptionEvent, now time.Time) model.Solution {
	return model.Solution{
		Routes: []model.Route{{
			ID:      uuid.New().String(),
			Summary: fmt.Sprintf("reroute near (%.4f,%.4f)", ev.Location.Lat, ev.Location.Lng),
			Stops:   []model.GeoPoint{ev.Location},
		}},
		Trigger:     "event",
		GeneratedAt: now,
	}
}
