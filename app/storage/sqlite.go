package storage

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteAttemptStorage struct {
	db *sql.DB
}

var _ Interface = &SQLiteAttemptStorage{}

func getDBPath() string {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		projectDir, err := os.Getwd()
		if err != nil {
			log.Fatalf("❌ Error getting project directory: %v", err)
		}
		defaultPath := filepath.Join(projectDir, "data", "database.db")
		if err := os.MkdirAll(filepath.Dir(defaultPath), os.ModePerm); err != nil {
			log.Fatalf("❌ Error creating data directory: %v", err)
		}
		log.Printf("📂 DB_PATH not set, using default: %s", defaultPath)
		return defaultPath
	}
	return dbPath
}

func NewSQLiteStorage() *SQLiteAttemptStorage {
	dbPath := getDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("❌ Error opening SQLite DB at %s: %v", dbPath, err)
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS attempts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            attempt INTEGER NOT NULL,
            source TEXT NOT NULL,
            diagnostic TEXT NOT NULL,
            success INTEGER NOT NULL,
            loc INTEGER NOT NULL,
            generate_ms INTEGER NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_run_id ON attempts (run_id);
    `)
	if err != nil {
		log.Fatalf("❌ Error creating table: %v", err)
	}

	return &SQLiteAttemptStorage{db: db}
}

func (s *SQLiteAttemptStorage) SaveAttempt(ctx context.Context, attempt Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, attempt, source, diagnostic, success, loc, generate_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, datetime(?))`,
		attempt.RunID, attempt.Index, attempt.Source, attempt.Diagnostic, attempt.Success,
		attempt.LOC, attempt.GenerateTime.Milliseconds(),
		attempt.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		log.Printf("⚠️ Error saving attempt %d for run %s: %v", attempt.Index, attempt.RunID, err)
		return err
	}
	return nil
}

func (s *SQLiteAttemptStorage) GetAttemptsByRunID(ctx context.Context, runID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, attempt, source, diagnostic, success, loc, generate_ms, created_at
		 FROM attempts
		 WHERE run_id = ?
		 ORDER BY attempt ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var at Attempt
		var generateMs int64
		var createdAt string
		if err = rows.Scan(&at.ID, &at.RunID, &at.Index, &at.Source, &at.Diagnostic,
			&at.Success, &at.LOC, &generateMs, &createdAt); err != nil {
			log.Printf("⚠️ Error scanning row for run %s: %v", runID, err)
			continue
		}

		at.GenerateTime = time.Duration(generateMs) * time.Millisecond
		at.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		attempts = append(attempts, at)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s *SQLiteAttemptStorage) Close() error {
	return s.db.Close()
}
