package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
)

type transcriptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *transcriptRepo) Append(ctx context.Context, msg TranscriptMessage) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args, err := builder.Insert("transcript_messages").
		Columns("sequence", "timestamp", "user_id", "message_id", "role", "content").
		Values(seqNum, ts.UnixMilli(), msg.UserID, msg.MessageID, msg.Role, msg.Content).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save transcript message: %w", err)
	}
	return nil
}

func (r *transcriptRepo) Recent(ctx context.Context, userID string, limit int) ([]TranscriptMessage, error) {
	q := builder.Select("sequence", "timestamp", "user_id", "message_id", "role", "content").
		From("transcript_messages").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("sequence DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var msgs []TranscriptMessage
	for rows.Next() {
		var (
			m  TranscriptMessage
			ts int64
		)
		if err := rows.Scan(&m.Sequence, &ts, &m.UserID, &m.MessageID, &m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan transcript message: %w", err)
		}
		m.Timestamp = time.UnixMilli(ts).UTC()
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(msgs)
	return msgs, nil
}

func (r *transcriptRepo) Clear(ctx context.Context, userID string) error {
	query, args, err := builder.Delete("transcript_messages").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}
