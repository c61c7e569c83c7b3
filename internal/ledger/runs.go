package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"worldmanager/internal/repair"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one compress invocation.
type Run struct {
	ID         string
	World      string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    *repair.Summary
	Error      string
}

// ActionRecord is a stored repair.Action.
type ActionRecord struct {
	ID        int64
	RunID     string
	CreatedAt time.Time
	repair.Action
}

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// StartRun creates a running entry for world and returns it. The id is a
// fresh UUID.
func (l *Ledger) StartRun(ctx context.Context, world string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		World:     world,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	err := l.exec(ctx,
		"INSERT INTO runs (id, world, status, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.World, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final status, the summary and the error, if any.
func (l *Ledger) FinishRun(ctx context.Context, id string, status Status, summary *repair.Summary, runErr error) error {
	var summaryJSON sql.NullString
	if summary != nil {
		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		summaryJSON = sql.NullString{String: string(data), Valid: true}
	}
	var message sql.NullString
	if runErr != nil {
		message = sql.NullString{String: runErr.Error(), Valid: true}
	}
	if err := l.exec(ctx,
		"UPDATE runs SET status = ?, finished_at = ?, summary_json = ?, error_message = ? WHERE id = ?",
		string(status), formatTime(time.Now()), summaryJSON, message, id,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT id, world, status, started_at, finished_at, summary_json, error_message FROM runs ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun loads one run by id.
func (l *Ledger) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := l.db.QueryRowContext(ctx,
		"SELECT id, world, status, started_at, finished_at, summary_json, error_message FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run                        Run
		status                     string
		started, finished, summary sql.NullString
		message                    sql.NullString
	)
	if err := s.Scan(&run.ID, &run.World, &status, &started, &finished, &summary, &message); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Error = message.String
	if summary.Valid && summary.String != "" {
		var sum repair.Summary
		if err := json.Unmarshal([]byte(summary.String), &sum); err != nil {
			return nil, fmt.Errorf("decode summary of run %s: %w", run.ID, err)
		}
		run.Summary = &sum
	}
	return &run, nil
}

// AddAction appends a repair action to run id.
func (l *Ledger) AddAction(ctx context.Context, runID string, a repair.Action) error {
	err := l.exec(ctx,
		"INSERT INTO actions (run_id, pass, kind, from_path, to_path, refs, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		runID, a.Pass, a.Kind, a.From, a.To, a.Refs, a.Detail, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// Actions lists the actions of a run in insertion order.
func (l *Ledger) Actions(ctx context.Context, runID string) ([]ActionRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, run_id, pass, kind, from_path, to_path, refs, detail, created_at FROM actions WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []ActionRecord
	for rows.Next() {
		var (
			rec       ActionRecord
			to        sql.NullString
			detail    sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Pass, &rec.Kind, &rec.From, &to, &rec.Refs, &detail, &createdAt); err != nil {
			return nil, err
		}
		rec.To = to.String
		rec.Detail = detail.String
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Recorder returns a repair.Recorder that writes into run runID.
func (l *Ledger) Recorder(runID string) repair.Recorder {
	return runRecorder{ledger: l, runID: runID}
}

type runRecorder struct {
	ledger *Ledger
	runID  string
}

func (r runRecorder) RecordAction(ctx context.Context, a repair.Action) error {
	return r.ledger.AddAction(ctx, r.runID, a)
}
