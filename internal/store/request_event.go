package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// eventRepo implements EventRepo on SQLite and the global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

func (r *eventRepo) timestamp() int64 {
	if r.now != nil {
		return r.now().UnixMilli()
	}
	return time.Now().UnixMilli()
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args, err := builder.Insert("request_events").
		Columns("sequence", "timestamp", "method", "endpoint", "status_code", "latency_ms", "success", "error_message").
		Values(seqNum, r.timestamp(), data.Method, data.Endpoint, data.StatusCode, data.LatencyMs, data.Success, data.ErrorMessage).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

var requestColumns = []string{
	"id", "sequence", "timestamp", "method", "endpoint", "status_code", "latency_ms", "success", "error_message",
}

func (r *eventRepo) QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	q := applyOpts(builder.Select(requestColumns...).From("request_events"), opts)
	if opts.Endpoint != "" {
		q = q.Where(sq.Eq{"endpoint": opts.Endpoint})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		ev, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetRequest(ctx context.Context, id int64) (*RequestEvent, error) {
	query, args, err := builder.Select(requestColumns...).
		From("request_events").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	ev, err := scanRequest(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ev, err
}

func (r *eventRepo) UsageByEndpoint(ctx context.Context) ([]EndpointUsage, error) {
	query, args, err := builder.Select(
		"endpoint",
		"COUNT(*)",
		"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
		"AVG(latency_ms)",
	).
		From("request_events").
		GroupBy("endpoint").
		OrderBy("endpoint").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query endpoint usage: %w", err)
	}
	defer rows.Close()

	var usage []EndpointUsage
	for rows.Next() {
		var u EndpointUsage
		if err := rows.Scan(&u.Endpoint, &u.Requests, &u.Failures, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan endpoint usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (*RequestEvent, error) {
	var (
		ev RequestEvent
		ts int64
	)
	err := s.Scan(&ev.ID, &ev.Sequence, &ts, &ev.Method, &ev.Endpoint,
		&ev.StatusCode, &ev.LatencyMs, &ev.Success, &ev.ErrorMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan request event: %w", err)
	}
	ev.Timestamp = time.UnixMilli(ts).UTC()
	return &ev, nil
}

// applyOpts adds the common sequence, time and limit filters. Results are
// ordered newest first.
func applyOpts(q sq.SelectBuilder, opts QueryOpts) sq.SelectBuilder {
	if opts.After > 0 {
		q = q.Where(sq.Gt{"sequence": opts.After})
	}
	if opts.Before > 0 {
		q = q.Where(sq.Lt{"sequence": opts.Before})
	}
	if !opts.From.IsZero() {
		q = q.Where(sq.GtOrEq{"timestamp": opts.From.UnixMilli()})
	}
	if !opts.To.IsZero() {
		q = q.Where(sq.LtOrEq{"timestamp": opts.To.UnixMilli()})
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	return q.OrderBy("sequence DESC")
}
