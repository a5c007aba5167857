package results

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/systemstart/paychain/pkg/api"
	_ "modernc.org/sqlite"
)

// Store appends records to the runs table of a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			step_order INTEGER NOT NULL,
			call_type TEXT NOT NULL,
			test_id TEXT NOT NULL,
			status TEXT NOT NULL,
			http_status INTEGER,
			response_code TEXT,
			business_status TEXT,
			payment_id TEXT,
			refund_id TEXT,
			trace_id TEXT,
			merchant_description TEXT,
			card_description TEXT,
			request TEXT,
			response TEXT,
			assertions TEXT,
			passed INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			worker_id INTEGER,
			error TEXT,
			error_title TEXT,
			error_detail TEXT,
			dcc_note TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

var insertQuery = fmt.Sprintf("INSERT INTO runs (%s) VALUES (%s)",
	strings.Join(Columns, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", "))

func (s *Store) Insert(r Record) error {
	_, err := s.db.Exec(insertQuery,
		r.RunID, r.ChainID, r.StepOrder, r.CallType, r.TestID, string(r.Status),
		r.HTTPStatus, r.ResponseCode, r.BusinessStatus, r.PaymentID, r.RefundID, r.TraceID,
		r.MerchantDescription, r.CardDescription, r.Request, r.Response, r.Assertions, r.Passed,
		r.Duration.Milliseconds(), r.StartedAt.UTC().Format(timeLayout), r.WorkerID,
		r.Error, r.ErrorTitle, r.ErrorDetail, r.DCCNote,
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// RunRecords returns the records of runID in insertion order.
func (s *Store) RunRecords(runID string) ([]Record, error) {
	query := fmt.Sprintf("SELECT %s FROM runs WHERE run_id = ? ORDER BY id", strings.Join(Columns, ", "))
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r          Record
			status     string
			durationMS int64
			startedAt  string
		)
		err := rows.Scan(&r.RunID, &r.ChainID, &r.StepOrder, &r.CallType, &r.TestID, &status,
			&r.HTTPStatus, &r.ResponseCode, &r.BusinessStatus, &r.PaymentID, &r.RefundID, &r.TraceID,
			&r.MerchantDescription, &r.CardDescription, &r.Request, &r.Response, &r.Assertions, &r.Passed,
			&durationMS, &startedAt, &r.WorkerID,
			&r.Error, &r.ErrorTitle, &r.ErrorDetail, &r.DCCNote)
		if err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		r.Status = api.StepStatus(status)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists the distinct run ids, newest first.
func (s *Store) Runs() ([]string, error) {
	rows, err := s.db.Query("SELECT run_id FROM runs GROUP BY run_id ORDER BY MAX(id) DESC")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
