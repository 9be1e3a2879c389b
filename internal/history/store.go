package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one journaled operation.
type Entry struct {
	ID           int64         `json:"id"`
	RequestID    string        `json:"request_id"`
	Operation    string        `json:"operation"`
	Subject      string        `json:"subject,omitempty"`
	Success      bool          `json:"success"`
	OutputFolder string        `json:"output_folder,omitempty"`
	OutputFiles  []string      `json:"output_files"`
	Message      string        `json:"message"`
	Warnings     []string      `json:"warnings,omitempty"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Store manages the journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// DefaultLimit caps Recent when callers pass a non-positive limit.
	DefaultLimit = 20
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the journal at path, creating parent
// directories as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	ctx = ensureContext(ctx)
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("open history: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends entry to the journal and returns its row ID. A zero
// CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(entry.Operation) == "" {
		return 0, errors.New("record history: operation is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	files, err := encodeList(entry.OutputFiles)
	if err != nil {
		return 0, fmt.Errorf("encode output files: %w", err)
	}
	warnings, err := encodeList(entry.Warnings)
	if err != nil {
		return 0, fmt.Errorf("encode warnings: %w", err)
	}

	var res sql.Result
	err = retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO operations
			(request_id, operation, subject, success, output_folder, output_files, message, warnings, error_kind, duration_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.RequestID,
			entry.Operation,
			entry.Subject,
			boolToInt(entry.Success),
			entry.OutputFolder,
			files,
			entry.Message,
			warnings,
			entry.ErrorKind,
			entry.Duration.Milliseconds(),
			entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("insert history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history entry id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, operation, subject, success, output_folder, output_files, message, warnings, error_kind, duration_ms, created_at
		FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			success    int
			files      string
			warnings   string
			durationMS int64
			created    string
		)
		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Operation, &entry.Subject, &success,
			&entry.OutputFolder, &files, &entry.Message, &warnings, &entry.ErrorKind, &durationMS, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entry.Success = success != 0
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		if entry.OutputFiles, err = decodeList(files); err != nil {
			return nil, fmt.Errorf("decode output files for entry %d: %w", entry.ID, err)
		}
		if entry.Warnings, err = decodeList(warnings); err != nil {
			return nil, fmt.Errorf("decode warnings for entry %d: %w", entry.ID, err)
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at for entry %d: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
