package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fleetopt/internal/model"
	"fleetopt/internal/state"
	"fleetopt/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	shared := state.NewSharedState()
	solutions := state.NewSolutionState()
	return NewServer(shared, solutions, store.NewMemory(), NewBroker(), 1000, 1000)
}

func TestSnapshotHandler(t *testing.T) {
	s := newTestServer(t)
	s.Shared.Publish(
		[]model.VehicleState{{ID: "v1", Capacity: 1000, CurrentLoad: 500}},
		[]model.FactoryProduction{{ProductType: "A", Amount: 100}},
		nil,
		time.Now(),
	)
	rr := httptest.NewRecorder()
	s.SnapshotHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil))
	if rr.Code != 200 {
		t.Fatalf("snapshot: got %d", rr.Code)
	}
	var snap model.SharedSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Vehicles) != 1 || snap.Vehicles[0].ID != "v1" {
		t.Fatalf("wrong snapshot: %+v", snap)
	}
}

func TestSolutionHandler(t *testing.T) {
	s := newTestServer(t)
	s.Solutions.Install(&model.Solution{Routes: []model.Route{{ID: "r1", Summary: "route 0"}}, Trigger: "scheduled"})
	rr := httptest.NewRecorder()
	s.SolutionHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solution", nil))
	if rr.Code != 200 {
		t.Fatalf("solution: got %d", rr.Code)
	}
	var sol model.Solution
	if err := json.Unmarshal(rr.Body.Bytes(), &sol); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sol.Routes) != 1 || sol.Trigger != "scheduled" {
		t.Fatalf("wrong solution: %+v", sol)
	}
}

func TestReplansHandler(t *testing.T) {
	s := newTestServer(t)
	_ = s.Archive.RecordReplan(context.Background(), store.ReplanRecord{Trigger: "scheduled", Demands: 4, Routes: 2})
	rr := httptest.NewRecorder()
	s.ReplansHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/replans", nil))
	if rr.Code != 200 {
		t.Fatalf("replans: got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"scheduled"`) {
		t.Fatalf("missing record: %s", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.SnapshotHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/snapshot", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", rr.Code)
	}
}

func TestReadyReportsCoordinatorFailure(t *testing.T) {
	s := newTestServer(t)
	s.Status = func() (string, error) { return "stopped", errors.New("boom") }
	rr := httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rr.Code)
	}

	s.Status = func() (string, error) { return "idle_waiting", nil }
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("want 200, got %d", rr.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	shared := state.NewSharedState()
	solutions := state.NewSolutionState()
	s := NewServer(shared, solutions, store.NewMemory(), NewBroker(), 1, 1)
	h := s.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil))
	if rr.Code != 200 {
		t.Fatalf("first request: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rr.Code)
	}
	// health is exempt
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("healthz should bypass the limiter, got %d", rr.Code)
	}
}

func TestStreamDeliversBrokerEvents(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// give the handler a moment to register its subscription
	time.Sleep(50 * time.Millisecond)
	s.Broker.Publish(TopicEvents, Event{Type: "replan.scheduled", Data: map[string]any{"routes": 2}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read: %v", err)
	}
	if evt.Type != "replan.scheduled" {
		t.Fatalf("wrong event: %+v", evt)
	}
}
