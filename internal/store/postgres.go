package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres archives replans when DATABASE_URL is set.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate creates the replans table if missing (dev helper).
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS replans (
        id UUID PRIMARY KEY,
        trigger TEXT NOT NULL,
        event_type TEXT,
        demands INT NOT NULL,
        routes INT NOT NULL,
        duration_ms INT NOT NULL,
        at TIMESTAMPTZ NOT NULL
    )`)
	return err
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) RecordReplan(ctx context.Context, rec ReplanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO replans (id, trigger, event_type, demands, routes, duration_ms, at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.ID, rec.Trigger, nullIfEmpty(rec.EventType), rec.Demands, rec.Routes, rec.DurationMs, rec.At)
	return err
}

func (p *Postgres) ListReplans(ctx context.Context, limit int) ([]ReplanRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, trigger, COALESCE(event_type,''), demands, routes, duration_ms, at FROM replans ORDER BY at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ReplanRecord{}
	for rows.Next() {
		var r ReplanRecord
		if err := rows.Scan(&r.ID, &r.Trigger, &r.EventType, &r.Demands, &r.Routes, &r.DurationMs, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" { return nil }
	return s
}
