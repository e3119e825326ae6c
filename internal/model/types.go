package model

import "time"

// Core domain types shared by the feed, planner, coordinator and monitor.

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DeliveryDemand is one unit of work for the planner. Demands are rebuilt
// from scratch on every reoptimization pass and never persisted.
type DeliveryDemand struct {
	ID          string     `json:"id"`
	ProductType string     `json:"productType"`
	Quantity    int        `json:"quantity"`
	Location    GeoPoint   `json:"location"`
	Window      TimeWindow `json:"timeWindow"`
}

// VehicleState is a read-only copy of telemetry for one vehicle. The
// invariant CurrentLoad <= Capacity is owned by the solver, not checked here.
type VehicleState struct {
	ID          string   `json:"id"`
	Position    GeoPoint `json:"position"`
	Capacity    int      `json:"capacity"`
	CurrentLoad int      `json:"currentLoad"`
	Route       []string `json:"route,omitempty"`
}

type FactoryProduction struct {
	ProductType string    `json:"productType"`
	Amount      int       `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

type TrafficLevel string

const (
	TrafficClear     TrafficLevel = "clear"
	TrafficSlow      TrafficLevel = "slow"
	TrafficCongested TrafficLevel = "congested"
)

type TrafficReport struct {
	Current TrafficLevel `json:"current"`
}

type WeatherKind string

const (
	WeatherSunny WeatherKind = "sunny"
	WeatherRain  WeatherKind = "rain"
	WeatherFog   WeatherKind = "fog"
)

type WeatherReport struct {
	Weather       WeatherKind `json:"weather"`
	RoadCondition float64     `json:"roadCondition"` // 0..1, 1 = perfect
}

type EventType string

const (
	EventAccident     EventType = "accident"
	EventTrafficJam   EventType = "traffic_jam"
	EventWeatherAlert EventType = "weather_alert"
	EventOrderChange  EventType = "order_change"
)

// DisruptionEvent lives for a single coordinator tick. Concurrent events
// within one tick are not distinguished; only the sampled event matters.
type DisruptionEvent struct {
	Type       EventType `json:"type"`
	Location   GeoPoint  `json:"location"`
	DetectedAt time.Time `json:"detectedAt"`
}

// Route is one descriptor inside a Solution.
type Route struct {
	ID        string     `json:"id"`
	Summary   string     `json:"summary"`
	Stops     []GeoPoint `json:"stops,omitempty"`
	DemandIDs []string   `json:"demandIds,omitempty"`
}

// Solution is the current delivery plan. It is installed as a whole and
// replaced as a whole; readers never see a partially built one.
type Solution struct {
	Routes      []Route   `json:"routes"`
	Trigger     string    `json:"trigger,omitempty"` // scheduled, event
	GeneratedAt time.Time `json:"generatedAt"`
}

// Snapshot is the per-tick aggregation of all five providers.
type Snapshot struct {
	Orders     []DeliveryDemand    `json:"orders"`
	Vehicles   []VehicleState      `json:"vehicles"`
	Traffic    TrafficReport       `json:"traffic"`
	Weather    WeatherReport       `json:"weather"`
	Production []FactoryProduction `json:"production"`
	TakenAt    time.Time           `json:"takenAt"`
}

// SharedSnapshot is what the monitor reads. All fields are written together
// under one lock so a reader never mixes data from two publishes.
type SharedSnapshot struct {
	Vehicles   []VehicleState      `json:"vehicles"`
	Production []FactoryProduction `json:"production"`
	Events     []DisruptionEvent   `json:"events"`
	LastUpdate time.Time           `json:"lastUpdate"`
}
