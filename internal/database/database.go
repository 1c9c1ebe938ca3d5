package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the sqlite connection for the reservation service.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

var (
	// ErrDuplicateUser means the user already holds a reservation for the day.
	ErrDuplicateUser = errors.New("user already has a reservation for this day")
	// ErrDuplicateSeat means the seat is already taken for the day.
	ErrDuplicateSeat = errors.New("seat already reserved for this day")
)

// NewDB initializes the database connection and creates tables if they don't exist.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode and a busy timeout keep concurrent request handlers from
	// tripping over sqlite's single-writer lock.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}

	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			room TEXT NOT NULL,
			seat INTEGER NOT NULL,
			day TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS blocks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			starts_at TEXT NOT NULL,
			ends_at TEXT NOT NULL,
			reason TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Uniqueness invariants live here: concurrent borrow requests race
		// between check and insert, the losing writer gets a constraint error.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_user_day
			ON reservations(user_id, day)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_room_seat_day
			ON reservations(room, seat, day)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_room_day ON reservations(room, day)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_user ON blocks(user_id, starts_at, ends_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// classifyConflict maps a sqlite unique-constraint violation on the
// reservations table to the matching sentinel error. Any other error is
// returned unchanged.
func classifyConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	if strings.Contains(msg, "reservations.user_id") {
		return ErrDuplicateUser
	}
	if strings.Contains(msg, "reservations.room") || strings.Contains(msg, "reservations.seat") {
		return ErrDuplicateSeat
	}
	return err
}

func (db *DB) Close() error {
	return db.DB.Close()
}
