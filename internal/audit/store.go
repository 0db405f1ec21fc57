// Package audit keeps a history of reconciliation runs in a local SQLite
// database: one row per run with its summary, and the full decision log.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/utc"
	_ "modernc.org/sqlite"

	"github.com/agentstation/membermatch/pkg/constants"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/logging"
	"github.com/agentstation/membermatch/pkg/review"
	"github.com/agentstation/membermatch/pkg/status"
)

// Store persists runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores run and its decision log in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, log []review.Entry) error {
	if run.ID == "" {
		return &errors.ValidationError{Field: "id", Message: "cannot be empty"}
	}
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return errors.WrapParse("json", "summary", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, input_file, output_file, mapping,
            rule_set, workers, roster_size, target_rows, confirmed, summary_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.InputFile,
		run.OutputFile,
		run.Mapping,
		run.RuleSet,
		run.Workers,
		run.RosterSize,
		run.TargetRows,
		run.Confirmed(),
		string(summary),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return errors.WrapResource("record", "run", run.ID, errors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO decisions (
            run_id, row, name, context, identifier, status, display, label,
            reason, source_row, candidates
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare decision insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range log {
		if _, err := stmt.ExecContext(ctx,
			run.ID, e.Row, e.Name, e.Context, e.Identifier, string(e.Status),
			string(e.Display), e.Label, e.Reason, e.SourceRow, e.Candidates,
		); err != nil {
			return fmt.Errorf("insert decision for row %d: %w", e.Row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	logging.FromContext(ctx).Debug().
		Str("run_id", run.ID).
		Int("decisions", len(log)).
		Msg("Recorded run")
	return nil
}

const runColumns = `id, started_at, finished_at, input_file, output_file, mapping,
    rule_set, workers, roster_size, target_rows, summary_json`

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose ID is id or starts with id. A prefix shared
// by several runs is rejected.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &errors.ValidationError{Field: "id", Message: "cannot be empty"}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\\' ORDER BY id LIMIT 2",
		id, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, &errors.NotFoundError{Resource: "run", ID: id}
	case 1:
		return found[0], nil
	default:
		return nil, &errors.ValidationError{Field: "id", Value: id, Message: "prefix matches more than one run"}
	}
}

// RunDecisions returns the decision log of a run in ledger order.
func (s *Store) RunDecisions(ctx context.Context, id string) ([]review.Entry, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row, name, context, identifier, status, display, label, reason, source_row, candidates
        FROM decisions WHERE run_id = ? ORDER BY row`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []review.Entry
	for rows.Next() {
		var (
			e               review.Entry
			kind, displayed string
		)
		if err := rows.Scan(&e.Row, &e.Name, &e.Context, &e.Identifier, &kind, &displayed,
			&e.Label, &e.Reason, &e.SourceRow, &e.Candidates); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.Status = status.Kind(kind)
		e.Display = status.Kind(displayed)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return entries, nil
}

// DeleteRun removes a run and its decisions.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", run.ID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run               Run
		started, finished string
		summary           string
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.InputFile, &run.OutputFile, &run.Mapping,
		&run.RuleSet, &run.Workers, &run.RosterSize, &run.TargetRows, &summary); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return nil, errors.WrapParse("json", "summary of run "+run.ID, err)
	}
	return &run, nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t utc.Time) string {
	return t.Time.UTC().Format(timeLayout)
}

func parseTime(s string) (utc.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return utc.Time{}, errors.WrapParse("time", "runs", err)
	}
	return utc.Time{Time: t}, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
