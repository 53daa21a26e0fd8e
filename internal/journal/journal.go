// Package journal records translation runs in a SQLite database: one row
// per run and one row per translated question, including provider errors.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run describes one invocation of the translation loop
type Run struct {
	Input    string
	Output   string
	Source   string
	Pivot    string
	Provider string
}

// Entry is the outcome of translating one row
type Entry struct {
	RowIndex   int
	Original   string
	Translated string
	Error      string
}

// Journal is an open journal database
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal tables: %w", err)
	}

	return j, nil
}

func (j *Journal) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id integer PRIMARY KEY AUTOINCREMENT,
			started_at text NOT NULL,
			finished_at text,
			input text NOT NULL,
			output text NOT NULL,
			source text NOT NULL,
			pivot text NOT NULL,
			provider text NOT NULL,
			total integer NOT NULL DEFAULT 0,
			failed integer NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id integer NOT NULL REFERENCES runs(id),
			row_index integer NOT NULL,
			original text NOT NULL,
			translated text NOT NULL,
			error text NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, row_index)
		)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// StartRun inserts a run and returns its id
func (j *Journal) StartRun(run Run) (int64, error) {
	res, err := j.db.Exec(
		`INSERT INTO runs (started_at, input, output, source, pivot, provider) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), run.Input, run.Output, run.Source, run.Pivot, run.Provider,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}
	return res.LastInsertId()
}

// RecordRow stores the outcome of one row
func (j *Journal) RecordRow(runID int64, entry Entry) error {
	_, err := j.db.Exec(
		`INSERT OR REPLACE INTO run_rows (run_id, row_index, original, translated, error) VALUES (?, ?, ?, ?, ?)`,
		runID, entry.RowIndex, entry.Original, entry.Translated, entry.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record row %d: %w", entry.RowIndex, err)
	}
	return nil
}

// FinishRun stores the final counts of a run
func (j *Journal) FinishRun(runID int64, total, failed int) error {
	_, err := j.db.Exec(
		`UPDATE runs SET finished_at = ?, total = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), total, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// Rows returns the recorded rows of a run ordered by row index
func (j *Journal) Rows(runID int64) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT row_index, original, translated, error FROM run_rows WHERE run_id = ? ORDER BY row_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RowIndex, &e.Original, &e.Translated, &e.Error); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RunCounts returns total and failed for a run; finished is false while
// the run has not been closed with FinishRun
func (j *Journal) RunCounts(runID int64) (total, failed int, finished bool, err error) {
	var finishedAt sql.NullString
	err = j.db.QueryRow(
		`SELECT total, failed, finished_at FROM runs WHERE id = ?`, runID,
	).Scan(&total, &failed, &finishedAt)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to query run %d: %w", runID, err)
	}
	return total, failed, finishedAt.Valid, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}
