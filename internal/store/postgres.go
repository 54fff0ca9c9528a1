package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/session"
)

// PostgresStore persists sessions in Postgres, sharing the SQLite schema
// shape with native uuid/timestamptz/jsonb columns.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			map_json JSONB NOT NULL,
			roster_json JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			id UUID NOT NULL,
			turn INTEGER NOT NULL,
			phase TEXT NOT NULL,
			type TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			payload JSONB,
			at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (session_id, seq)
		)`,
	} {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess *session.Session) error {
	mapJSON, err := encodeMap(sess.Config.Grid)
	if err != nil {
		return err
	}
	rosterJSON, err := encodeRoster(sess.Config)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, name, created_at, map_json, roster_json)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		sess.ID, sess.Config.Name, time.Now().UTC(), mapJSON, rosterJSON)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", sess.ID, err)
	}

	if err := appendEventsPg(ctx, tx, sess.ID, sess.Events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) AppendEvents(ctx context.Context, id uuid.UUID, events []session.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := appendEventsPg(ctx, tx, id, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func appendEventsPg(ctx context.Context, tx pgx.Tx, id uuid.UUID, events []session.Event) error {
	for _, e := range events {
		payload, err := encodePayload(e)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO events (session_id, seq, id, turn, phase, type, actor, payload, at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (session_id, seq) DO NOTHING`,
			id, e.Seq, e.ID, e.Turn, string(e.Phase), string(e.Type), e.Actor, payload, e.At.UTC())
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
	}
	return nil
}

func (s *PostgresStore) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var (
		name       string
		mapJSON    []byte
		rosterJSON []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT name, map_json, roster_json FROM sessions WHERE id = $1`, id).
		Scan(&name, &mapJSON, &rosterJSON)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("session %s: not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	cfg, err := decodeConfig(name, mapJSON, rosterJSON)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT seq, id, turn, phase, type, actor, payload, at
		 FROM events WHERE session_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", id, err)
	}
	defer rows.Close()

	var events []session.Event
	for rows.Next() {
		var (
			e       session.Event
			phase   string
			etype   string
			payload []byte
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.Turn, &phase, &etype, &e.Actor, &payload, &e.At); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Phase = session.Phase(phase)
		e.Type = session.EventType(etype)
		if err := decodeEvent(&e, payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load events for %s: %w", id, err)
	}

	return session.Rehydrate(id, cfg, events)
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.id, s.name, s.created_at, COUNT(e.seq)
		 FROM sessions s LEFT JOIN events e ON e.session_id = s.id
		 GROUP BY s.id ORDER BY s.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var count int64
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &count); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.EventCount = int(count)
		out = append(out, rec)
	}
	return out, rows.Err()
}
