// Package store provides SQLite-backed persistence for scan records and users.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/google/uuid"
)

// dbFileName is the SQLite database file created under the storage directory
const dbFileName = "recon.db"

// Store provides SQLite-based storage for scan records and users. Scan
// records are append-only: a row is written once per completed pipeline run
// and no update or delete path exists for them.
type Store struct {
	// db is the underlying SQL database connection
	db *sql.DB

	// dbPath is the path to the SQLite database file
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store database under dir.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating new
	// files, mode=rwc allows creation
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Users registered with the service; scan records may link back to one
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		created_at TEXT NOT NULL
	);

	-- Scan records are the audit trail: one row per completed classification,
	-- never updated or deleted
	CREATE TABLE IF NOT EXISTS scan_records (
		id TEXT PRIMARY KEY,
		degree TEXT NOT NULL,
		reason TEXT NOT NULL,
		client_ip TEXT,
		request_time TEXT NOT NULL,
		request_object TEXT NOT NULL,
		user_id TEXT REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_scan_records_time ON scan_records(request_time);
	CREATE INDEX IF NOT EXISTS idx_scan_records_user ON scan_records(user_id);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// User is a registered service user. The recon pipeline only ever checks for
// existence; registration and lookup live on the user endpoints.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScanRecord is one persisted classification outcome.
type ScanRecord struct {
	// ID is the record identifier assigned at write time
	ID string
	// Degree is the validated risk verdict
	Degree string
	// Reason is the classifier's justification
	Reason string
	// ClientIP is the requester address captured by the transport layer
	ClientIP string
	// RequestTime is assigned at the moment of write, never caller-supplied
	RequestTime time.Time
	// RequestObject is the serialized original site metadata, stored as an
	// immutable snapshot in string form
	RequestObject string
	// UserID links the record to a user when the requester reference resolved
	UserID string
}

// CreateScanRecord inserts a scan record. The record ID and request time are
// assigned here when unset. Records are never updated; a duplicate ID is a
// failure, not an upsert.
func (s *Store) CreateScanRecord(ctx context.Context, record *ScanRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if record.RequestTime.IsZero() {
		record.RequestTime = time.Now().UTC()
	}

	userID := sql.NullString{String: record.UserID, Valid: record.UserID != ""}

	query := `
	INSERT INTO scan_records (id, degree, reason, client_ip, request_time, request_object, user_id)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Degree,
		record.Reason,
		record.ClientIP,
		record.RequestTime.UTC().Format(time.RFC3339Nano),
		record.RequestObject,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan record: %w", err)
	}

	return nil
}

// GetScanRecord retrieves a scan record by ID, returning nil when absent.
func (s *Store) GetScanRecord(ctx context.Context, id string) (*ScanRecord, error) {
	query := `
	SELECT id, degree, reason, client_ip, request_time, request_object, user_id
	FROM scan_records
	WHERE id = ?
	`

	var record ScanRecord
	var requestTime string
	var userID sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Degree,
		&record.Reason,
		&record.ClientIP,
		&requestTime,
		&record.RequestObject,
		&userID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan record: %w", err)
	}

	record.RequestTime = parseTimestamp(requestTime)
	record.UserID = userID.String

	return &record, nil
}

// ListScanRecords returns all scan records ordered by request time, newest
// first. This is an operator read path; it never mutates the trail.
func (s *Store) ListScanRecords(ctx context.Context) ([]ScanRecord, error) {
	query := `
	SELECT id, degree, reason, client_ip, request_time, request_object, user_id
	FROM scan_records
	ORDER BY request_time DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ScanRecord

	for rows.Next() {
		var record ScanRecord
		var requestTime string
		var userID sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.Degree,
			&record.Reason,
			&record.ClientIP,
			&requestTime,
			&record.RequestObject,
			&userID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}

		record.RequestTime = parseTimestamp(requestTime)
		record.UserID = userID.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}

	return records, nil
}

// CountScanRecords returns the total number of stored scan records.
func (s *Store) CountScanRecords(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scan_records").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scan records: %w", err)
	}

	return count, nil
}

// CreateUser inserts a new user, assigning an ID when unset. A duplicate ID
// or email fails with ErrUserExists.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}

		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// FindUserByID retrieves a user by ID, returning nil when absent.
func (s *Store) FindUserByID(ctx context.Context, id string) (*User, error) {
	return s.findUser(ctx, "id", id)
}

// FindUserByEmail retrieves a user by email, returning nil when absent.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findUser(ctx, "email", email)
}

// findUser looks up a single user by a unique column.
func (s *Store) findUser(ctx context.Context, column, value string) (*User, error) {
	query := fmt.Sprintf("SELECT id, email, name, created_at FROM users WHERE %s = ?", column)

	var user User
	var name sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx, query, value).Scan(&user.ID, &user.Email, &name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.Name = name.String
	user.CreatedAt = parseTimestamp(createdAt)

	return &user, nil
}

// ListUsers returns all registered users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, email, name, created_at FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []User

	for rows.Next() {
		var user User
		var name sql.NullString
		var createdAt string

		if err := rows.Scan(&user.ID, &user.Email, &name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}

		user.Name = name.String
		user.CreatedAt = parseTimestamp(createdAt)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parseTimestamp parses a stored timestamp, tolerating the formats SQLite may
// return depending on how the value was written.
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}

	return time.Time{}
}
