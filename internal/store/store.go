package store

import (
	"context"
	"errors"
	"time"
)

// ReplanRecord archives the outcome of one reoptimization. The current
// solution itself is deliberately not persisted; only this audit trail is.
type ReplanRecord struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"` // scheduled, event
	EventType  string    `json:"eventType,omitempty"`
	Demands    int       `json:"demands"`
	Routes     int       `json:"routes"`
	DurationMs int       `json:"durationMs"`
	At         time.Time `json:"at"`
}

// Store is the replan archive used by the coordinator and the monitor.
type Store interface {
	RecordReplan(ctx context.Context, rec ReplanRecord) error
	ListReplans(ctx context.Context, limit int) ([]ReplanRecord, error)
}

var ErrNotFound = errors.New("not found")
