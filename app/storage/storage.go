package storage

import (
	"context"
	"time"
)

type Interface interface {
	SaveAttempt(ctx context.Context, attempt Attempt) error
	GetAttemptsByRunID(ctx context.Context, runID string) ([]Attempt, error)
}

// Attempt is one persisted generate-then-compile cycle.
type Attempt struct {
	ID           int64         `json:"id" db:"id"`
	RunID        string        `json:"run_id" db:"run_id"`
	Index        int           `json:"attempt" db:"attempt"`
	Source       string        `json:"source" db:"source"`
	Diagnostic   string        `json:"diagnostic" db:"diagnostic"`
	Success      bool          `json:"success" db:"success"`
	LOC          int           `json:"loc" db:"loc"`
	GenerateTime time.Duration `json:"generate_time" db:"generate_time"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}
