package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	qstash "github.com/austindbirch/qstash-go"
)

// Connect establishes a connection pool to the archive database and returns the pool
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	// Parse config from DSN
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// Set max connections and create pool
	cfg.MaxConns = 10
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Ping the database to verify connection
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS qstash`,
	`CREATE TABLE IF NOT EXISTS qstash.events (
		message_id    TEXT        NOT NULL,
		state         TEXT        NOT NULL,
		event_time    TIMESTAMPTZ NOT NULL,
		url           TEXT,
		method        TEXT,
		topic_name    TEXT,
		endpoint_name TEXT,
		schedule_id   TEXT,
		queue_name    TEXT,
		error         TEXT,
		header        JSONB,
		body          BYTEA,
		archived_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (message_id, state, event_time)
	)`,
	`CREATE TABLE IF NOT EXISTS qstash.dlq_messages (
		dlq_id          TEXT PRIMARY KEY,
		message_id      TEXT,
		url             TEXT,
		method          TEXT,
		header          JSONB,
		body            TEXT,
		response_status INT,
		response_header JSONB,
		response_body   TEXT,
		created_at      TIMESTAMPTZ,
		archived_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Store persists delivery events and dead letter messages
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the archive tables when they do not exist yet
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertEvents stores a page of events, skipping rows already archived.
// It returns the number of newly inserted rows.
func (s *Store) UpsertEvents(ctx context.Context, events []qstash.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, ev := range events {
		// Marshal once, pass as TEXT and cast to ::jsonb in SQL (avoids some driver type ambiguity issues)
		headerJSON, err := json.Marshal(ev.Header)
		if err != nil {
			return 0, fmt.Errorf("marshal header: %w", err)
		}
		batch.Queue(`
			INSERT INTO qstash.events(message_id, state, event_time, url, method, topic_name, endpoint_name, schedule_id, queue_name, error, header, body)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)
			ON CONFLICT (message_id, state, event_time) DO NOTHING`,
			ev.MessageID, string(ev.State), time.UnixMilli(ev.Time).UTC(), ev.URL, ev.Method,
			ev.TopicName, ev.EndpointName, ev.ScheduleID, ev.QueueName, ev.Error,
			string(headerJSON), ev.Body,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range events {
		ct, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert event: %w", err)
		}
		inserted += int(ct.RowsAffected())
	}
	return inserted, nil
}

// UpsertDLQMessages stores a page of dead letter messages, skipping rows
// already archived. It returns the number of newly inserted rows.
func (s *Store) UpsertDLQMessages(ctx context.Context, msgs []qstash.DLQMessage) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, m := range msgs {
		headerJSON, err := json.Marshal(m.Header)
		if err != nil {
			return 0, fmt.Errorf("marshal header: %w", err)
		}
		respHeaderJSON, err := json.Marshal(m.ResponseHeader)
		if err != nil {
			return 0, fmt.Errorf("marshal response header: %w", err)
		}

		var createdAt any
		if m.CreatedAt != 0 {
			createdAt = time.UnixMilli(m.CreatedAt).UTC()
		}

		batch.Queue(`
			INSERT INTO qstash.dlq_messages(dlq_id, message_id, url, method, header, body, response_status, response_header, response_body, created_at)
			VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8::jsonb, $9, $10)
			ON CONFLICT (dlq_id) DO NOTHING`,
			m.DLQID, m.MessageID, m.URL, m.Method, string(headerJSON), m.Body,
			m.ResponseStatus, string(respHeaderJSON), m.ResponseBody, createdAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range msgs {
		ct, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert dlq message: %w", err)
		}
		inserted += int(ct.RowsAffected())
	}
	return inserted, nil
}

// LatestEventTime returns the newest archived event time in unix
// milliseconds, or zero when the archive is empty.
func (s *Store) LatestEventTime(ctx context.Context) (int64, error) {
	var nt sql.NullTime
	if err := s.pool.QueryRow(ctx, `SELECT MAX(event_time) FROM qstash.events`).Scan(&nt); err != nil {
		return 0, err
	}
	if !nt.Valid {
		return 0, nil
	}
	return nt.Time.UnixMilli(), nil
}
