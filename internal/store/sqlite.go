package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/session"
)

// SQLiteStore persists sessions in a single local database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database, applies pragmas and the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			map_json TEXT NOT NULL,
			roster_json TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			phase TEXT NOT NULL,
			type TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			payload TEXT,
			at TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		)`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSession(ctx context.Context, sess *session.Session) error {
	mapJSON, err := encodeMap(sess.Config.Grid)
	if err != nil {
		return err
	}
	rosterJSON, err := encodeRoster(sess.Config)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, created_at, map_json, roster_json)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		sess.ID.String(), sess.Config.Name, time.Now().UTC().Format(time.RFC3339Nano),
		string(mapJSON), string(rosterJSON))
	if err != nil {
		return fmt.Errorf("insert session %s: %w", sess.ID, err)
	}

	if err := appendEventsTx(ctx, tx, sess.ID, sess.Events); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) AppendEvents(ctx context.Context, id uuid.UUID, events []session.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := appendEventsTx(ctx, tx, id, events); err != nil {
		return err
	}
	return tx.Commit()
}

func appendEventsTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, events []session.Event) error {
	for _, e := range events {
		payload, err := encodePayload(e)
		if err != nil {
			return err
		}
		var p any
		if payload != nil {
			p = string(payload)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (session_id, seq, id, turn, phase, type, actor, payload, at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (session_id, seq) DO NOTHING`,
			id.String(), e.Seq, e.ID.String(), e.Turn, string(e.Phase), string(e.Type),
			e.Actor, p, e.At.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
	}
	return nil
}

func (s *SQLiteStore) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var name, mapJSON, rosterJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, map_json, roster_json FROM sessions WHERE id = ?`,
		id.String()).Scan(&name, &mapJSON, &rosterJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	cfg, err := decodeConfig(name, []byte(mapJSON), []byte(rosterJSON))
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, turn, phase, type, actor, payload, at
		 FROM events WHERE session_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", id, err)
	}
	defer rows.Close()

	var events []session.Event
	for rows.Next() {
		var (
			e       session.Event
			eid     string
			phase   string
			etype   string
			payload sql.NullString
			at      string
		)
		if err := rows.Scan(&e.Seq, &eid, &e.Turn, &phase, &etype, &e.Actor, &payload, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ID, err = uuid.Parse(eid)
		if err != nil {
			return nil, fmt.Errorf("event %d: bad id %q: %w", e.Seq, eid, err)
		}
		e.Phase = session.Phase(phase)
		e.Type = session.EventType(etype)
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("event %d: bad timestamp %q: %w", e.Seq, at, err)
		}
		var raw []byte
		if payload.Valid {
			raw = []byte(payload.String)
		}
		if err := decodeEvent(&e, raw); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load events for %s: %w", id, err)
	}

	return session.Rehydrate(id, cfg, events)
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.name, s.created_at, COUNT(e.seq)
		 FROM sessions s LEFT JOIN events e ON e.session_id = s.id
		 GROUP BY s.id ORDER BY s.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec       SessionRecord
			id        string
			createdAt string
		)
		if err := rows.Scan(&id, &rec.Name, &createdAt, &rec.EventCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad session id %q: %w", id, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
