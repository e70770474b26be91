package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args, err := builder.Insert("llm_request_events").
		Columns("sequence", "timestamp", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success",
			"error_message", "request_body", "response_body").
		Values(seqNum, r.timestamp(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	query, args, err := applyOpts(builder.Select(
		"id", "sequence", "timestamp", "provider", "model", "purpose",
		"input_tokens", "output_tokens", "latency_ms", "success",
		"error_message", "request_body", "response_body",
	).From("llm_request_events"), opts).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	defer rows.Close()

	var events []LLMRequestEvent
	for rows.Next() {
		var (
			ev LLMRequestEvent
			ts int64
		)
		if err := rows.Scan(&ev.ID, &ev.Sequence, &ts, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
			&ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody); err != nil {
			return nil, fmt.Errorf("scan LLM request event: %w", err)
		}
		ev.Timestamp = time.UnixMilli(ts).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	query, args, err := builder.Select("model", "COUNT(*)", "SUM(input_tokens)", "SUM(output_tokens)").
		From("llm_request_events").
		GroupBy("model").
		OrderBy("model").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query model usage: %w", err)
	}
	defer rows.Close()

	var usage []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Requests, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
