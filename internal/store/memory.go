package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is the default archive when no DATABASE_URL is set. It keeps a
// bounded window of recent replans, newest first.
type Memory struct {
	mu   sync.Mutex
	recs []ReplanRecord
	max  int
}

func NewMemory() *Memory {
	return &Memory{max: 1000}
}

func (m *Memory) RecordReplan(ctx context.Context, rec ReplanRecord) error {
	m.mu.Lock(); defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	m.recs = append(m.recs, rec)
	if len(m.recs) > m.max {
		m.recs = m.recs[len(m.recs)-m.max:]
	}
	return nil
}

func (m *Memory) ListReplans(ctx context.Context, limit int) ([]ReplanRecord, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := []ReplanRecord{}
	for i := len(m.recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.recs[i])
	}
	return out, nil
}
