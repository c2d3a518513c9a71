// Package store provides a SQLite-backed journal of pacing snapshots.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/theirongolddev/pacer/internal/metrics"

	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout is fixed-width so taken_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot is one observation of pacing and cash flow.
type Snapshot struct {
	ID                 int64     `json:"id"`
	TakenAt            time.Time `json:"taken_at"`
	PeriodStart        string    `json:"period_start"`
	PeriodEnd          string    `json:"period_end"`
	Mode               string    `json:"mode"`
	PacingStatus       string    `json:"pacing_status"`
	TargetAmount       float64   `json:"target_amount"`
	CurrentSpend       float64   `json:"current_spend"`
	PacingPercentage   float64   `json:"pacing_percentage"`
	ExpectedPercentage float64   `json:"expected_percentage"`
	Income             *float64  `json:"income,omitempty"`
	Expenses           *float64  `json:"expenses,omitempty"`
	NetFlow            *float64  `json:"net_flow,omitempty"`
	RunwayMonths       *float64  `json:"runway_months,omitempty"`
}

// Journal records snapshots to SQLite.
type Journal struct {
	db *sql.DB
}

// Path returns the journal location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, "journal.db")
}

// Open opens or creates the journal database at the given path.
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends a snapshot and returns its id. A zero TakenAt is stamped
// with the current time.
func (j *Journal) Record(s Snapshot) (int64, error) {
	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now()
	}

	res, err := j.db.Exec(`INSERT INTO snapshots
		(taken_at, period_start, period_end, mode, pacing_status,
		 target_amount, current_spend, pacing_percentage, expected_percentage,
		 income, expenses, net_flow, runway_months)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TakenAt.UTC().Format(timeLayout), s.PeriodStart, s.PeriodEnd, s.Mode, s.PacingStatus,
		s.TargetAmount, s.CurrentSpend, s.PacingPercentage, s.ExpectedPercentage,
		nullFloat(s.Income), nullFloat(s.Expenses), nullFloat(s.NetFlow), nullFloat(s.RunwayMonths),
	)
	if err != nil {
		return 0, fmt.Errorf("recording snapshot: %w", err)
	}
	return res.LastInsertId()
}

const selectSnapshot = `SELECT
	id, taken_at, period_start, period_end, mode, pacing_status,
	target_amount, current_spend, pacing_percentage, expected_percentage,
	income, expenses, net_flow, runway_months
	FROM snapshots`

// Latest returns the most recent snapshot, or nil if the journal is empty.
func (j *Journal) Latest() (*Snapshot, error) {
	rows, err := j.db.Query(selectSnapshot + " ORDER BY id DESC LIMIT 1")
	if err != nil {
		return nil, err
	}
	snaps, err := scanSnapshots(rows)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[0], nil
}

// List returns snapshots taken at or after since, oldest first. limit <= 0
// means no limit; otherwise the newest limit snapshots are returned.
func (j *Journal) List(since time.Time, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(selectSnapshot+" WHERE taken_at >= ? ORDER BY id DESC LIMIT ?",
		since.UTC().Format(timeLayout), limit)
	if err != nil {
		return nil, err
	}
	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(snaps)
	return snaps, nil
}

// PeriodSpend returns the last recorded spend of each of the newest n
// periods, oldest first, labelled by month.
func (j *Journal) PeriodSpend(n int) (metrics.Series, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := j.db.Query(`SELECT s.period_start, s.current_spend
		FROM snapshots s
		JOIN (SELECT period_start, MAX(id) AS id FROM snapshots
		      WHERE period_start != '' GROUP BY period_start) l ON s.id = l.id
		ORDER BY s.period_start DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var s metrics.Series
	for rows.Next() {
		var start string
		var p metrics.Point
		if err := rows.Scan(&start, &p.Value); err != nil {
			return nil, err
		}
		p.Label = start
		if t, err := time.Parse(time.DateOnly, start); err == nil {
			p.Date = &t
			p.Label = t.Format("Jan")
		}
		s = append(s, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(s)
	return s, nil
}

// Prune deletes snapshots taken before cutoff and returns how many were
// removed.
func (j *Journal) Prune(cutoff time.Time) (int64, error) {
	res, err := j.db.Exec("DELETE FROM snapshots WHERE taken_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of recorded snapshots.
func (j *Journal) Count() (int, error) {
	var count int
	err := j.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count)
	return count, err
}

func scanSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var taken string
		var income, expenses, netFlow, runway sql.NullFloat64
		err := rows.Scan(
			&s.ID, &taken, &s.PeriodStart, &s.PeriodEnd, &s.Mode, &s.PacingStatus,
			&s.TargetAmount, &s.CurrentSpend, &s.PacingPercentage, &s.ExpectedPercentage,
			&income, &expenses, &netFlow, &runway,
		)
		if err != nil {
			return nil, err
		}
		s.TakenAt, _ = time.Parse(timeLayout, taken)
		s.Income = floatPtr(income)
		s.Expenses = floatPtr(expenses)
		s.NetFlow = floatPtr(netFlow)
		s.RunwayMonths = floatPtr(runway)
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
