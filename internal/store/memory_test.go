package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryRecordAndList(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := m.RecordReplan(ctx, ReplanRecord{
			Trigger: "scheduled",
			Demands: i,
			At:      time.Date(2026, 3, 1, 9, i, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	items, err := m.ListReplans(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("want 3, got %d", len(items))
	}
	// newest first
	if items[0].Demands != 4 || items[2].Demands != 2 {
		t.Fatalf("wrong order: %+v", items)
	}
	if items[0].ID == "" {
		t.Fatal("record should get an id assigned")
	}
}

func TestMemoryRetentionBound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 1500; i++ {
		_ = m.RecordReplan(ctx, ReplanRecord{Trigger: "event", EventType: fmt.Sprintf("t%d", i)})
	}
	items, _ := m.ListReplans(ctx, 2000)
	if len(items) != 1000 {
		t.Fatalf("retention bound: want 1000, got %d", len(items))
	}
	if items[0].EventType != "t1499" {
		t.Fatalf("newest record missing: %+v", items[0])
	}
}
