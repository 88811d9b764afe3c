// Package storage records per-cycle population history using SQLite.
package storage

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // Driver sqlite

	"herald/internal/models"
)

// Recorder manages the SQLite history database connection.
type Recorder struct {
	db *sql.DB
}

// New initializes a new SQLite connection, sets connection pool parameters, and runs migrations.
func New(dbPath string) (*Recorder, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Recorder{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// RecordCycle inserts one population sample per rendered server, all in a
// single transaction so a failed cycle leaves no partial sample set.
func (r *Recorder) RecordCycle(items []models.BoardItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO samples (server_key, server_name, players, max_players, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for _, item := range items {
		if _, err := stmt.Exec(item.Key, item.DisplayName, item.Players, item.MaxPlayers, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// PruneBefore deletes samples older than the given age and returns the
// number of rows removed.
func (r *Recorder) PruneBefore(age time.Duration) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM samples WHERE recorded_at < ?`, time.Now().Add(-age))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Peak returns the highest recorded population for a server key within the
// given window, or 0 when no samples exist.
func (r *Recorder) Peak(key string, window time.Duration) (int, error) {
	row := r.db.QueryRow(`
		SELECT COALESCE(MAX(players), 0)
		FROM samples
		WHERE server_key = ? AND recorded_at >= ?
	`, key, time.Now().Add(-window))

	var peak int
	if err := row.Scan(&peak); err != nil {
		return 0, err
	}

	return peak, nil
}
