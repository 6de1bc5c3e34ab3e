// Package store provides the SQLite-backed home for meeting state and history.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/meetcost/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// DB is the meetcost state database.
type DB struct {
	db *sql.DB
}

// DataDir returns the meetcost data directory, following XDG_DATA_HOME.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "meetcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "meetcost")
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	return filepath.Join(DataDir(), "meetcost.db")
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Get returns the value stored under key. ok is false when the key is absent.
func (d *DB) Get(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (d *DB) Set(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.db.Exec(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, now)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (d *DB) Delete(key string) error {
	_, err := d.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

// SaveMeeting records a finished meeting.
func (d *DB) SaveMeeting(rec model.MeetingRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`INSERT OR REPLACE INTO meetings
		(meeting_id, ended_at, elapsed_secs, attendees, hourly_rate, total_cost, target_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EndedAt.UTC().Format(time.RFC3339), rec.ElapsedSecs, rec.Attendees,
		rec.HourlyRate, rec.TotalCost, rec.TargetMinutes,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ListMeetings returns recorded meetings, newest first. limit <= 0 means all.
func (d *DB) ListMeetings(limit int) ([]model.MeetingRecord, error) {
	query := `SELECT meeting_id, ended_at, elapsed_secs, attendees, hourly_rate, total_cost, target_minutes
		FROM meetings ORDER BY ended_at DESC, meeting_id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.MeetingRecord
	for rows.Next() {
		var rec model.MeetingRecord
		var ended string
		if err := rows.Scan(&rec.ID, &ended, &rec.ElapsedSecs, &rec.Attendees,
			&rec.HourlyRate, &rec.TotalCost, &rec.TargetMinutes); err != nil {
			return nil, err
		}
		rec.EndedAt, _ = time.Parse(time.RFC3339, ended)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteMeeting removes one recorded meeting.
func (d *DB) DeleteMeeting(id string) error {
	_, err := d.db.Exec("DELETE FROM meetings WHERE meeting_id = ?", id)
	return err
}

// MeetingCount returns the number of recorded meetings.
func (d *DB) MeetingCount() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM meetings").Scan(&count)
	return count, err
}
