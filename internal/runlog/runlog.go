// Package runlog keeps a SQLite log of training runs: one row per run and
// one row per batch loss.
//
// The database is opened with the pure-Go modernc.org/sqlite driver, so no
// cgo toolchain is needed.
//
// Example:
//
//	store, err := runlog.Open("runs.sqlite3")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	id, err := store.Record(ctx, "ficnn", params, history)
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/born-ml/icnn/internal/train"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("runlog: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	ts         TEXT NOT NULL,
	model      TEXT NOT NULL,
	params     TEXT NOT NULL,
	epochs     INTEGER NOT NULL,
	batches    INTEGER NOT NULL,
	final_loss REAL
);
CREATE TABLE IF NOT EXISTS losses(
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	step   INTEGER NOT NULL,
	epoch  INTEGER NOT NULL,
	loss   REAL NOT NULL,
	PRIMARY KEY (run_id, step)
);
`

// Run is one row of the runs table.
type Run struct {
	ID        int64
	CreatedAt time.Time
	Model     string
	Params    map[string]string
	Epochs    int     // Completed epochs
	Batches   int     // Batches per epoch
	FinalLoss float64 // NaN if the run recorded no losses
}

// Store is a SQLite-backed run log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}
	// SQLite serializes writers; a single connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("runlog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("runlog: apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores history under model and params in a single transaction and
// returns the new run id.
func (s *Store) Record(ctx context.Context, model string, params map[string]string, history *train.History) (int64, error) {
	if history == nil {
		return 0, errors.New("runlog: nil history")
	}
	if params == nil {
		params = map[string]string{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("runlog: encode params: %w", err)
	}

	epochs := len(history.EpochMeans)
	perEpoch := history.BatchesPerEpoch
	if perEpoch < 0 {
		return 0, fmt.Errorf("runlog: negative batches per epoch %d", perEpoch)
	}
	if perEpoch == 0 && len(history.Losses) > 0 {
		// Histories built by hand may leave the count unset; only an
		// even split can be labelled without it.
		if epochs == 0 || len(history.Losses)%epochs != 0 {
			return 0, fmt.Errorf("runlog: %d losses over %d epochs need BatchesPerEpoch", len(history.Losses), epochs)
		}
		perEpoch = len(history.Losses) / epochs
	}
	if perEpoch > 0 && len(history.Losses) > perEpoch*(epochs+1) {
		return 0, fmt.Errorf("runlog: %d losses exceed %d epochs of %d batches", len(history.Losses), epochs+1, perEpoch)
	}
	var final sql.NullFloat64
	if n := len(history.Losses); n > 0 {
		final = sql.NullFloat64{Float64: history.Losses[n-1], Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("runlog: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs(ts, model, params, epochs, batches, final_loss) VALUES(?,?,?,?,?,?)",
		s.now().UTC().Format(time.RFC3339Nano), model, string(encoded), epochs, perEpoch, final)
	if err != nil {
		return 0, fmt.Errorf("runlog: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("runlog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO losses(run_id, step, epoch, loss) VALUES(?,?,?,?)")
	if err != nil {
		return 0, fmt.Errorf("runlog: prepare: %w", err)
	}
	defer stmt.Close()

	for step, loss := range history.Losses {
		epoch := 0
		if perEpoch > 0 {
			epoch = step / perEpoch
		}
		if _, err := stmt.ExecContext(ctx, id, step, epoch, loss); err != nil {
			return 0, fmt.Errorf("runlog: insert loss %d: %w", step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("runlog: commit: %w", err)
	}
	return id, nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT id, ts, model, params, epochs, batches, final_loss FROM runs ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("runlog: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns a single run.
func (s *Store) Get(ctx context.Context, id int64) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, ts, model, params, epochs, batches, final_loss FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return r, err
}

// Losses returns the per-batch losses of a run in batch order.
func (s *Store) Losses(ctx context.Context, id int64) ([]float64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT loss FROM losses WHERE run_id = ? ORDER BY step", id)
	if err != nil {
		return nil, fmt.Errorf("runlog: query losses: %w", err)
	}
	defer rows.Close()

	losses := []float64{}
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("runlog: scan loss: %w", err)
		}
		losses = append(losses, v)
	}
	return losses, rows.Err()
}

// Delete removes a run and its losses.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("runlog: delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r      Run
		ts     string
		params string
		final  sql.NullFloat64
	)
	if err := sc.Scan(&r.ID, &ts, &r.Model, &params, &r.Epochs, &r.Batches, &final); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("runlog: scan run: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Run{}, fmt.Errorf("runlog: run %d: bad timestamp %q: %w", r.ID, ts, err)
	}
	r.CreatedAt = created
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return Run{}, fmt.Errorf("runlog: run %d: bad params: %w", r.ID, err)
	}
	r.FinalLoss = math.NaN()
	if final.Valid {
		r.FinalLoss = final.Float64
	}
	return r, nil
}
