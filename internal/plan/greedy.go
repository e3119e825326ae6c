package plan

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"fleetopt/internal/model"
)

// GreedySolver assigns demands to the vehicle with the most remaining
// capacity, orders each route nearest-neighbor from the vehicle position
// and then improves it with 2-opt. Distances are haversine meters.
type GreedySolver struct {
	Iterations int // 2-opt improvement rounds per route, defaults to 3
}

var errNoCapacity = errors.New("no vehicle capacity for demand set")

func (s GreedySolver) Solve(ctx context.Context, demands []model.DeliveryDemand, vehicles []model.VehicleState) (model.Solution, error) {
	if len(vehicles) == 0 {
		return model.Solution{}, errors.New("no vehicles available")
	}
	iters := s.Iterations
	if iters <= 0 {
		iters = 3
	}

	remaining := make([]int, len(vehicles))
	for i, v := range vehicles {
		remaining[i] = v.Capacity - v.CurrentLoad
	}
	assigned := make([][]model.DeliveryDemand, len(vehicles))
	for _, d := range demands {
		if err := ctx.Err(); err != nil {
			return model.Solution{}, err
		}
		vi := -1
		for i := range vehicles {
			if remaining[i] >= d.Quantity && (vi == -1 || remaining[i] > remaining[vi]) {
				vi = i
			}
		}
		if vi == -1 {
			return model.Solution{}, fmt.Errorf("%w: %s qty=%d", errNoCapacity, d.ProductType, d.Quantity)
		}
		remaining[vi] -= d.Quantity
		assigned[vi] = append(assigned[vi], d)
	}

	routes := make([]model.Route, 0, len(vehicles))
	for i, v := range vehicles {
		if len(assigned[i]) == 0 {
			continue
		}
		order := nearestNeighborOrder(v.Position, assigned[i])
		order = improve2Opt(v.Position, assigned[i], order, iters)
		r := model.Route{
			ID:      uuid.New().String(),
			Summary: fmt.Sprintf("vehicle %s: %d stops", v.ID, len(order)),
		}
		for _, idx := range order {
			r.DemandIDs = append(r.DemandIDs, assigned[i][idx].ID)
			r.Stops = append(r.Stops, assigned[i][idx].Location)
		}
		routes = append(routes, r)
	}
	return model.Solution{Routes: routes}, nil
}

func nearestNeighborOrder(start model.GeoPoint, demands []model.DeliveryDemand) []int {
	n := len(demands)
	order := make([]int, 0, n)
	used := make([]bool, n)
	cur := start
	for len(order) < n {
		best, bestDist := -1, math.MaxFloat64
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			d := haversine(cur.Lat, cur.Lng, demands[i].Location.Lat, demands[i].Location.Lng)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		order = append(order, best)
		used[best] = true
		cur = demands[best].Location
	}
	return order
}

// improve2Opt reverses segments while that shortens the path.
func improve2Opt(start model.GeoPoint, demands []model.DeliveryDemand, order []int, iterations int) []int {
	best := append([]int(nil), order...)
	bestDist := routeDistance(start, demands, best)
	n := len(order)
	for it := 0; it < iterations; it++ {
		improved := false
		for i := 0; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				cand := append([]int(nil), best...)
				for a, b := i, k; a < b; a, b = a+1, b-1 {
					cand[a], cand[b] = cand[b], cand[a]
				}
				if d := routeDistance(start, demands, cand); d+1e-3 < bestDist {
					best = cand
					bestDist = d
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return best
}

func routeDistance(start model.GeoPoint, demands []model.DeliveryDemand, order []int) float64 {
	total := 0.0
	cur := start
	for _, idx := range order {
		loc := demands[idx].Location
		total += haversine(cur.Lat, cur.Lng, loc.Lat, loc.Lng)
		cur = loc
	}
	return total
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
