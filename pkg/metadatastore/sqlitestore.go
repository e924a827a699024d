package metadatastore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// SQLiteStore provides SQLite-based persistence for configuration documents
// and validation runs
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based storage instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Format: file:path?param=value
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writes are serialized by SQLite anyway
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}

	// In-memory databases report "memory" or "delete"
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return nil, fmt.Errorf("failed to check journal mode: %w", err)
	}
	if journalMode != "wal" && journalMode != "delete" && journalMode != "memory" {
		return nil, fmt.Errorf("unexpected journal mode: got %s", journalMode)
	}

	// Initialize schema
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// retryOnBusy retries a database operation if it fails due to SQLITE_BUSY
// on top of the busy_timeout pragma
func (s *SQLiteStore) retryOnBusy(operation func() error, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "SQLITE_BUSY") {
			// Exponential backoff: 10ms, 20ms, 40ms, 80ms, 160ms
			backoff := time.Duration(10*(1<<uint(i))) * time.Millisecond
			time.Sleep(backoff)
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, err)
}

// initSchema creates the database schema if it doesn't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS config_documents (
		app TEXT NOT NULL,
		kind TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (app, kind)
	);

	CREATE TABLE IF NOT EXISTS validation_runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		app TEXT NOT NULL,
		score INTEGER NOT NULL,
		status TEXT NOT NULL,
		ready INTEGER NOT NULL,
		issue_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_validation_runs_app ON validation_runs(app, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveDocument stores a configuration document as JSON, replacing any
// previous version
func (s *SQLiteStore) SaveDocument(app models.App, kind models.DocumentKind, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("document %s/%s is not valid JSON", app, kind)
	}

	query := `
		INSERT OR REPLACE INTO config_documents (app, kind, data, updated_at)
		VALUES (?, ?, ?, ?)
	`

	err := s.retryOnBusy(func() error {
		_, err := s.db.Exec(query, string(app), string(kind), string(data), time.Now().UTC())
		return err
	}, 5)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// GetDocument retrieves a configuration document
func (s *SQLiteStore) GetDocument(app models.App, kind models.DocumentKind) (*DocumentRecord, error) {
	var data string
	var updatedAt time.Time
	query := `SELECT data, updated_at FROM config_documents WHERE app = ? AND kind = ?`

	err := s.db.QueryRow(query, string(app), string(kind)).Scan(&data, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s/%s %w", app, kind, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &DocumentRecord{App: app, Kind: kind, Data: json.RawMessage(data), UpdatedAt: updatedAt}, nil
}

// ListDocuments lists the stored documents of an app
func (s *SQLiteStore) ListDocuments(app models.App) ([]*DocumentRecord, error) {
	query := `SELECT kind, data, updated_at FROM config_documents WHERE app = ? ORDER BY kind`

	rows, err := s.db.Query(query, string(app))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	records := make([]*DocumentRecord, 0)
	for rows.Next() {
		var kind, data string
		var updatedAt time.Time
		if err := rows.Scan(&kind, &data, &updatedAt); err != nil {
			continue
		}
		records = append(records, &DocumentRecord{
			App:       app,
			Kind:      models.DocumentKind(kind),
			Data:      json.RawMessage(data),
			UpdatedAt: updatedAt,
		})
	}

	return records, rows.Err()
}

// DeleteDocument deletes a stored document so the file or built-in default applies again
func (s *SQLiteStore) DeleteDocument(app models.App, kind models.DocumentKind) error {
	query := `DELETE FROM config_documents WHERE app = ? AND kind = ?`
	_, err := s.db.Exec(query, string(app), string(kind))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// SaveValidationRun stores a validation run summary
func (s *SQLiteStore) SaveValidationRun(run *models.ValidationRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal validation run: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO validation_runs (id, session_id, app, score, status, ready, issue_count, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.retryOnBusy(func() error {
		_, err := s.db.Exec(query,
			run.ID,
			run.SessionID,
			string(run.App),
			run.Score,
			run.Status,
			run.Ready,
			run.IssueCount,
			run.CreatedAt,
			string(data),
		)
		return err
	}, 5)
	if err != nil {
		return fmt.Errorf("failed to save validation run: %w", err)
	}

	return nil
}

// GetValidationRun retrieves a validation run by ID
func (s *SQLiteStore) GetValidationRun(id string) (*models.ValidationRun, error) {
	var data string
	query := `SELECT data FROM validation_runs WHERE id = ?`

	err := s.db.QueryRow(query, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("validation run %s %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validation run: %w", err)
	}

	var run models.ValidationRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validation run: %w", err)
	}

	return &run, nil
}

// ListValidationRuns lists the most recent runs of an app, newest first.
// An empty app lists every app; limit <= 0 means no limit.
func (s *SQLiteStore) ListValidationRuns(app models.App, limit int) ([]*models.ValidationRun, error) {
	query := `SELECT data FROM validation_runs WHERE (? = '' OR app = ?) ORDER BY created_at DESC`
	args := []any{string(app), string(app)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.ValidationRun, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			continue
		}

		var run models.ValidationRun
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			continue
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
