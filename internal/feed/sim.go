package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetopt/internal/model"
)

// Simulated providers. These stand in for real order/telematics/traffic/
// weather/factory integrations and produce randomized data around a center
// point.

// NewSimProviders builds the full simulated provider set sharing one rng.
func NewSimProviders(center model.GeoPoint, eventProb float64, seed int64) Providers {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := &lockedRand{r: rand.New(rand.NewSource(seed))}
	return Providers{
		Orders:     &SimOrders{Center: center},
		Vehicles:   &SimVehicles{Center: center, N: 3, rng: rng},
		Traffic:    &SimTraffic{rng: rng},
		Weather:    &SimWeather{rng: rng},
		Production: &SimFactory{N: 2, rng: rng},
		Detector:   &SimDetector{Center: center, Prob: eventProb, rng: rng},
	}
}

// lockedRand guards a rand.Rand shared across providers.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 { l.mu.Lock(); defer l.mu.Unlock(); return l.r.Float64() }
func (l *lockedRand) Intn(n int) int   { l.mu.Lock(); defer l.mu.Unlock(); return l.r.Intn(n) }

func (l *lockedRand) uniform(lo, hi float64) float64 { return lo + l.Float64()*(hi-lo) }

type SimOrders struct {
	Center model.GeoPoint
}

func (s *SimOrders) Pending(ctx context.Context) ([]model.DeliveryDemand, error) {
	return []model.DeliveryDemand{}, nil
}

func (s *SimOrders) Latest(ctx context.Context) ([]model.DeliveryDemand, error) {
	now := time.Now().UTC()
	return []model.DeliveryDemand{{
		ID:          uuid.New().String(),
		ProductType: "standard",
		Quantity:    200,
		Location:    model.GeoPoint{Lat: s.Center.Lat + 0.005, Lng: s.Center.Lng + 0.006},
		Window:      model.TimeWindow{Start: now.Add(1 * time.Hour), End: now.Add(3 * time.Hour)},
	}}, nil
}

type SimVehicles struct {
	Center model.GeoPoint
	N      int
	rng    *lockedRand
}

func (s *SimVehicles) Status(ctx context.Context) ([]model.VehicleState, error) {
	out := make([]model.VehicleState, 0, s.N)
	for i := 0; i < s.N; i++ {
		out = append(out, model.VehicleState{
			ID: fmt.Sprintf("veh-%d", i),
			Position: model.GeoPoint{
				Lat: s.Center.Lat + s.rng.uniform(-0.01, 0.01),
				Lng: s.Center.Lng + s.rng.uniform(-0.01, 0.01),
			},
			Capacity:    1000,
			CurrentLoad: 500,
		})
	}
	return out, nil
}

type SimTraffic struct {
	rng *lockedRand
}

func (s *SimTraffic) Levels(ctx context.Context) (model.TrafficReport, error) {
	levels := []model.TrafficLevel{model.TrafficClear, model.TrafficSlow, model.TrafficCongested}
	return model.TrafficReport{Current: levels[s.rng.Intn(len(levels))]}, nil
}

type SimWeather struct {
	rng *lockedRand
}

func (s *SimWeather) Conditions(ctx context.Context) (model.WeatherReport, error) {
	kinds := []model.WeatherKind{model.WeatherSunny, model.WeatherRain, model.WeatherFog}
	return model.WeatherReport{
		Weather:       kinds[s.rng.Intn(len(kinds))],
		RoadCondition: s.rng.uniform(0.8, 1.0),
	}, nil
}

type SimFactory struct {
	N   int
	rng *lockedRand
}

func (s *SimFactory) Production(ctx context.Context) ([]model.FactoryProduction, error) {
	out := make([]model.FactoryProduction, 0, s.N)
	for i := 0; i < s.N; i++ {
		out = append(out, model.FactoryProduction{
			ProductType: fmt.Sprintf("product-%c", 'A'+i),
			Amount:      100 + s.rng.Intn(401),
			Timestamp:   time.Now().UTC(),
		})
	}
	return out, nil
}

// SimDetector is a per-tick Bernoulli sample with probability Prob.
type SimDetector struct {
	Center model.GeoPoint
	Prob   float64
	rng    *lockedRand
}

func (d *SimDetector) Detect(now time.Time) *model.DisruptionEvent {
	if d.rng.Float64() >= d.Prob {
		return nil
	}
	types := []model.EventType{model.EventAccident, model.EventTrafficJam, model.EventWeatherAlert, model.EventOrderChange}
	return &model.DisruptionEvent{
		Type: types[d.rng.Intn(len(types))],
		Location: model.GeoPoint{
			Lat: d.Center.Lat + d.rng.uniform(-0.1, 0.1),
			Lng: d.Center.Lng + d.rng.uniform(-0.1, 0.1),
		},
		DetectedAt: now,
	}
}
