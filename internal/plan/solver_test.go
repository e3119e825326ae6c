package plan

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"fleetopt/internal/model"
)

func demandSet(n int) []model.DeliveryDemand {
	out := make([]model.DeliveryDemand, n)
	for i := range out {
		out[i] = model.DeliveryDemand{
			ID:       fmt.Sprintf("d%d", i),
			Quantity: 10,
			Location: model.GeoPoint{Lat: 31.23 + float64(i)*0.001, Lng: 121.47},
		}
	}
	return out
}

func TestPartitionSolverRouteCount(t *testing.T) {
	cases := []struct{ demands, routes int }{
		{0, 1},
		{1, 1},
		{3, 2},
		{7, 3},
		{9, 4},
	}
	for _, c := range cases {
		sol, err := PartitionSolver{}.Solve(context.Background(), demandSet(c.demands), nil)
		if err != nil {
			t.Fatalf("solve: %v", err)
		}
		if len(sol.Routes) != c.routes {
			t.Fatalf("demands=%d: want %d routes, got %d", c.demands, c.routes, len(sol.Routes))
		}
	}
}

func TestPartitionSolverCoversAllDemands(t *testing.T) {
	demands := demandSet(7)
	sol, _ := PartitionSolver{}.Solve(context.Background(), demands, nil)
	seen := map[string]bool{}
	for _, r := range sol.Routes {
		for _, id := range r.DemandIDs {
			seen[id] = true
		}
	}
	for _, d := range demands {
		if !seen[d.ID] {
			t.Fatalf("demand %s not assigned to any route", d.ID)
		}
	}
}

func TestRerouteSingleDirective(t *testing.T) {
	ev := model.DisruptionEvent{
		Type:     model.EventTrafficJam,
		Location: model.GeoPoint{Lat: 31.25, Lng: 121.50},
	}
	now := time.Now()
	sol := Reroute(ev, now)
	if len(sol.Routes) != 1 {
		t.Fatalf("want exactly one route, got %d", len(sol.Routes))
	}
	r := sol.Routes[0]
	if !strings.Contains(r.Summary, "31.2500") || !strings.Contains(r.Summary, "121.5000") {
		t.Fatalf("summary should reference the event location: %q", r.Summary)
	}
	if len(r.Stops) != 1 || r.Stops[0] != ev.Location {
		t.Fatalf("route should target the event location: %+v", r.Stops)
	}
	if sol.Trigger != "event" {
		t.Fatalf("trigger: got %q", sol.Trigger)
	}
}
