package models

import (
	"context"
	"time"
)

type Interface interface {
	Generate(ctx context.Context, messages []Message) (*Generation, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generation is one model reply together with the wall-clock duration of the
// remote call. Duration covers only the backend round trip, never compile
// time.
type Generation struct {
	Content  string
	Duration time.Duration
}
