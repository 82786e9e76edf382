// Package store archives pipeline runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/docketscan/internal/model"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// Archive stores runs with their records, outcomes and phone candidates
type Archive struct {
	db *sql.DB
}

// RunSummary is one row of the run listing
type RunSummary struct {
	ID         uuid.UUID
	Town       string
	StartedAt  time.Time
	FinishedAt time.Time
	Cases      int
	Failed     int
}

// Open opens or creates the archive at path and applies the schema
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// One connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "pragma foreign_keys = on"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveRun stores run in a single transaction, replacing any earlier copy
func (a *Archive) SaveRun(ctx context.Context, run *model.RunResult) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id := run.RunID.String()
	if _, err = tx.ExecContext(ctx, "delete from runs where id = ?", id); err != nil {
		return fmt.Errorf("replace run: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		"insert into runs (id, town, started_at, finished_at) values (?, ?, ?, ?)",
		id, run.Town, formatTime(run.StartedAt), formatTime(run.FinishedAt),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	outcomes := make(map[*model.CaseRecord]model.EnrichOutcome, len(run.Outcomes))
	for _, o := range run.Outcomes {
		outcomes[o.Record] = o
	}

	for i, record := range run.Records {
		var enrichErr string
		outcome := outcomes[record]
		if outcome.Err != nil {
			enrichErr = outcome.Err.Error()
		}

		if _, err = tx.ExecContext(ctx,
			`insert into cases (run_id, position, docket, name, defendant, property_address, town, attempts, enrich_error)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, record.Docket, record.Name, record.Defendant, record.PropertyAddress, record.Town, outcome.Attempts, enrichErr,
		); err != nil {
			return fmt.Errorf("insert case %s: %w", record.Docket, err)
		}

		for j, number := range record.PhoneNumbers {
			if _, err = tx.ExecContext(ctx,
				"insert into phone_numbers (run_id, case_position, position, number) values (?, ?, ?, ?)",
				id, i, j, number,
			); err != nil {
				return fmt.Errorf("insert phone %s: %w", record.Docket, err)
			}
		}
	}

	for docket, candidates := range run.Candidates {
		for j, c := range candidates {
			phones, merr := json.Marshal(c.PhoneNumbers)
			if merr != nil {
				err = fmt.Errorf("marshal candidate phones: %w", merr)
				return err
			}
			if _, err = tx.ExecContext(ctx,
				`insert into candidates (run_id, docket, position, name, address, phone_numbers, similarity)
				values (?, ?, ?, ?, ?, ?, ?)`,
				id, docket, j, c.Name, c.Address, string(phones), c.Similarity,
			); err != nil {
				return fmt.Errorf("insert candidate %s: %w", docket, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRun reads a run back. Enrichment errors come back as plain errors
// carrying the stored message.
func (a *Archive) LoadRun(ctx context.Context, id uuid.UUID) (*model.RunResult, error) {
	run := &model.RunResult{
		RunID:      id,
		Candidates: make(map[string][]model.PhoneCandidate),
	}

	var started, finished string
	err := a.db.QueryRowContext(ctx,
		"select town, started_at, finished_at from runs where id = ?", id.String(),
	).Scan(&run.Town, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)

	if err := a.loadCases(ctx, run); err != nil {
		return nil, err
	}
	if err := a.loadCandidates(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (a *Archive) loadCases(ctx context.Context, run *model.RunResult) error {
	rows, err := a.db.QueryContext(ctx,
		`select docket, name, defendant, property_address, town, attempts, enrich_error
		from cases where run_id = ? order by position`, run.RunID.String())
	if err != nil {
		return fmt.Errorf("query cases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			docket, name, enrichErr string
			attempts                int
		)
		record := &model.CaseRecord{}
		if err := rows.Scan(&docket, &name, &record.Defendant, &record.PropertyAddress, &record.Town, &attempts, &enrichErr); err != nil {
			return fmt.Errorf("scan case: %w", err)
		}
		record.Docket, record.Name = docket, name
		record.PhoneNumbers = []string{}
		run.Records = append(run.Records, record)

		if attempts > 0 {
			outcome := model.EnrichOutcome{Record: record, Attempts: attempts}
			if enrichErr != "" {
				outcome.Err = errors.New(enrichErr)
			}
			run.Outcomes = append(run.Outcomes, outcome)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read cases: %w", err)
	}

	phones, err := a.db.QueryContext(ctx,
		"select case_position, number from phone_numbers where run_id = ? order by case_position, position",
		run.RunID.String())
	if err != nil {
		return fmt.Errorf("query phones: %w", err)
	}
	defer func() { _ = phones.Close() }()

	for phones.Next() {
		var (
			pos    int
			number string
		)
		if err := phones.Scan(&pos, &number); err != nil {
			return fmt.Errorf("scan phone: %w", err)
		}
		if pos < len(run.Records) {
			run.Records[pos].PhoneNumbers = append(run.Records[pos].PhoneNumbers, number)
		}
	}
	return phones.Err()
}

func (a *Archive) loadCandidates(ctx context.Context, run *model.RunResult) error {
	rows, err := a.db.QueryContext(ctx,
		`select docket, name, address, phone_numbers, similarity
		from candidates where run_id = ? order by docket, position`, run.RunID.String())
	if err != nil {
		return fmt.Errorf("query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			docket, phones string
			c              model.PhoneCandidate
		)
		if err := rows.Scan(&docket, &c.Name, &c.Address, &phones, &c.Similarity); err != nil {
			return fmt.Errorf("scan candidate: %w", err)
		}
		if err := json.Unmarshal([]byte(phones), &c.PhoneNumbers); err != nil {
			return fmt.Errorf("decode candidate phones: %w", err)
		}
		run.Candidates[docket] = append(run.Candidates[docket], c)
	}
	return rows.Err()
}

// ListRuns returns the most recent runs first
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.db.QueryContext(ctx,
		`select r.id, r.town, r.started_at, r.finished_at,
			count(c.docket), coalesce(sum(case when c.enrich_error != '' then 1 else 0 end), 0)
		from runs r left join cases c on c.run_id = r.id
		group by r.id
		order by r.started_at desc
		limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []RunSummary
	for rows.Next() {
		var (
			s                 RunSummary
			id                string
			started, finished string
		)
		if err := rows.Scan(&id, &s.Town, &started, &finished, &s.Cases, &s.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		s.StartedAt = parseTime(started)
		s.FinishedAt = parseTime(finished)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// FindDocket returns every archived copy of a docket, newest run first
func (a *Archive) FindDocket(ctx context.Context, docket string) ([]*model.CaseRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`select c.docket, c.name, c.defendant, c.property_address, c.town
		from cases c join runs r on r.id = c.run_id
		where c.docket = ?
		order by r.started_at desc`, docket)
	if err != nil {
		return nil, fmt.Errorf("query docket: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*model.CaseRecord
	for rows.Next() {
		record := &model.CaseRecord{PhoneNumbers: []string{}}
		if err := rows.Scan(&record.Docket, &record.Name, &record.Defendant, &record.PropertyAddress, &record.Town); err != nil {
			return nil, fmt.Errorf("scan docket: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
