// Package storage keeps the history of answered weather reports in SQLite.
//
// The pure-Go modernc.org/sqlite driver is used so the binary needs no cgo.
// History is capped: Rotate drops the oldest reports beyond the configured
// maximum, mirroring how the service bounds memory elsewhere.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rewired-gh/whetherai/internal/models"
)

// ErrNotFound is returned when a report ID is unknown.
var ErrNotFound = errors.New("report not found")

const schema = `CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	location    TEXT NOT NULL,
	temperature REAL NOT NULL,
	humidity    INTEGER NOT NULL,
	description TEXT NOT NULL,
	rain_chance REAL NOT NULL,
	sunlight    REAL NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);`

// Storage is a SQLite-backed report history
type Storage struct {
	db         *sql.DB
	maxReports int
}

// New opens (or creates) the database at dbPath. Use ":memory:" for tests.
func New(maxReports int, dbPath string) (*Storage, error) {
	if maxReports < 1 {
		return nil, fmt.Errorf("max reports must be at least 1, got %d", maxReports)
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection to :memory: would get its own empty database.
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Storage{db: db, maxReports: maxReports}, nil
}

// AddReport stores a report
func (s *Storage) AddReport(report *models.Report) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	_, err := s.db.Exec(
		`INSERT INTO reports(id, location, temperature, humidity, description, rain_chance, sunlight, created_at)
		 VALUES(?,?,?,?,?,?,?,?)`,
		report.ID, report.Location, report.Temperature, report.Humidity, report.Description,
		report.RainChance, report.Sunlight, report.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", report.ID, err)
	}
	return nil
}

// GetReport retrieves a report by ID
func (s *Storage) GetReport(id string) (*models.Report, error) {
	row := s.db.QueryRow(
		`SELECT id, location, temperature, humidity, description, rain_chance, sunlight, created_at
		 FROM reports WHERE id = ?`, id)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns up to limit reports, newest first
func (s *Storage) ListReports(limit int) ([]*models.Report, error) {
	if limit < 1 || limit > s.maxReports {
		limit = s.maxReports
	}

	rows, err := s.db.Query(
		`SELECT id, location, temperature, humidity, description, rain_chance, sunlight, created_at
		 FROM reports ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}
	return reports, nil
}

// Count returns the number of stored reports
func (s *Storage) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// Rotate removes the oldest reports exceeding the max limit
func (s *Storage) Rotate() (int, error) {
	res, err := s.db.Exec(
		`DELETE FROM reports WHERE id NOT IN (
			SELECT id FROM reports ORDER BY created_at DESC, id LIMIT ?
		)`, s.maxReports)
	if err != nil {
		return 0, fmt.Errorf("failed to rotate reports: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count rotated reports: %w", err)
	}
	return int(removed), nil
}

// Ping checks the database connection
func (s *Storage) Ping() error {
	return s.db.Ping()
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var r models.Report
	var createdAt int64
	if err := row.Scan(&r.ID, &r.Location, &r.Temperature, &r.Humidity, &r.Description,
		&r.RainChance, &r.Sunlight, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, createdAt)
	return &r, nil
}
