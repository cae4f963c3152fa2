package loop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"GoForgeAI/app/codegen"
	"GoForgeAI/app/models"
	"GoForgeAI/app/storage"
	"GoForgeAI/app/toolchain"
)

// emptyDiagnostic is the synthetic diagnostic recorded when the backend
// returns no usable text; it consumes an attempt without invoking the
// compiler.
const emptyDiagnostic = "empty generation"

type State string

const (
	StateSuccess   State = "success"
	StateExhausted State = "exhausted"
)

type Reason string

const (
	ReasonAttempts   Reason = "max attempts reached"
	ReasonTimeBudget Reason = "max generation time exceeded"
)

// Toolchain is the compiler surface the loop drives. Satisfied by
// *toolchain.Toolchain.
type Toolchain interface {
	WriteCandidate(source string, attempt int) error
	Compile(ctx context.Context) (*toolchain.CompileResult, error)
	SourcePath() string
	BinaryPath() string
	CommandLine() string
}

// Task is one operator request: a prompt, read once, never mutated.
type Task struct {
	ID         uuid.UUID
	Prompt     string
	PromptFile string
	Model      string
	Language   string
}

func NewTask(prompt, promptFile, model, language string) Task {
	return Task{
		ID:         uuid.New(),
		Prompt:     prompt,
		PromptFile: promptFile,
		Model:      model,
		Language:   language,
	}
}

// exchange is one failed attempt kept for the growing conversation context.
type exchange struct {
	source     string
	diagnostic string
}

// Result is the terminal outcome of a run. GenerateTime sums only the
// model-call durations; CompileTime is tracked separately.
type Result struct {
	RunID          string
	State          State
	Reason         Reason
	Attempts       int
	GenerateTime   time.Duration
	CompileTime    time.Duration
	SourcePath     string
	BinaryPath     string
	Command        string
	LastSource     string
	LastDiagnostic string
	LastLOC        int
}

type Loop struct {
	model           models.Interface
	tc              Toolchain
	db              storage.Interface
	maxAttempts     int
	maxTime         time.Duration
	printDiagnostic bool
}

// New builds a compile-fix loop. maxAttempts must be positive; maxTime of
// zero means no generation-time ceiling.
func New(model models.Interface, tc Toolchain, db storage.Interface, maxAttempts int, maxTime time.Duration, printDiagnostic bool) (*Loop, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	if tc == nil {
		return nil, errors.New("toolchain is required")
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be a positive integer, got %d", maxAttempts)
	}
	if maxTime < 0 {
		return nil, fmt.Errorf("max generation time cannot be negative, got %v", maxTime)
	}
	return &Loop{
		model:           model,
		tc:              tc,
		db:              db,
		maxAttempts:     maxAttempts,
		maxTime:         maxTime,
		printDiagnostic: printDiagnostic,
	}, nil
}

// Run drives attempts until the compiler accepts a candidate or the budget
// runs out. Backend failures abort the run immediately; compiler rejections
// and empty generations consume attempts and feed the next request.
func (l *Loop) Run(ctx context.Context, task Task) (*Result, error) {
	result := &Result{RunID: task.ID.String(), Command: l.tc.CommandLine()}

	var exchanges []exchange
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		result.Attempts = attempt

		gen, err := l.model.Generate(ctx, buildMessages(task, exchanges))
		if err != nil {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}
		result.GenerateTime += gen.Duration

		if codegen.IsEmpty(gen.Content) {
			log.Printf("⚠️ Attempt %d returned an empty generation (generation time: %.3f seconds)",
				attempt, gen.Duration.Seconds())
			exchanges = append(exchanges, exchange{diagnostic: emptyDiagnostic})
			result.LastSource = ""
			result.LastDiagnostic = emptyDiagnostic
			l.saveAttempt(ctx, task, attempt, storage.Attempt{
				Diagnostic: emptyDiagnostic, GenerateTime: gen.Duration,
			})
			if reason, done := l.exhausted(attempt, result.GenerateTime); done {
				return l.exhaust(result, reason), nil
			}
			continue
		}

		candidate := codegen.Build(gen.Content, codegen.Header{
			PromptFile:  task.PromptFile,
			Model:       task.Model,
			GeneratedAt: time.Now(),
			Duration:    gen.Duration,
		})

		if err = l.tc.WriteCandidate(candidate.Source, attempt); err != nil {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		compiled, err := l.tc.Compile(ctx)
		if err != nil {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}
		result.CompileTime += compiled.Duration
		result.LastSource = candidate.Source
		result.LastDiagnostic = compiled.Diagnostic
		result.LastLOC = candidate.LOC

		l.saveAttempt(ctx, task, attempt, storage.Attempt{
			Source: candidate.Source, Diagnostic: compiled.Diagnostic,
			Success: compiled.OK, LOC: candidate.LOC, GenerateTime: gen.Duration,
		})

		if compiled.OK {
			log.Printf("🎉 Code compiled successfully after %d %s (generation time: %.3f seconds, LOC=%d)",
				attempt, pluralize(attempt), gen.Duration.Seconds(), candidate.LOC)
			result.State = StateSuccess
			result.SourcePath = l.tc.SourcePath()
			result.BinaryPath = l.tc.BinaryPath()
			return result, nil
		}

		if l.printDiagnostic {
			log.Printf("⚠️ Attempt %d failed (generation time: %.3f seconds, LOC=%d): %s",
				attempt, gen.Duration.Seconds(), candidate.LOC, compiled.Diagnostic)
		} else {
			log.Printf("⚠️ Attempt %d failed (error details suppressed, generation time: %.3f seconds, LOC=%d)",
				attempt, gen.Duration.Seconds(), candidate.LOC)
		}

		exchanges = append(exchanges, exchange{source: candidate.Source, diagnostic: compiled.Diagnostic})
		if reason, done := l.exhausted(attempt, result.GenerateTime); done {
			return l.exhaust(result, reason), nil
		}
	}

	return l.exhaust(result, ReasonAttempts), nil
}

func (l *Loop) exhausted(attempt int, generateTime time.Duration) (Reason, bool) {
	if attempt >= l.maxAttempts {
		return ReasonAttempts, true
	}
	if l.maxTime > 0 && generateTime >= l.maxTime {
		return ReasonTimeBudget, true
	}
	return "", false
}

func (l *Loop) exhaust(result *Result, reason Reason) *Result {
	result.State = StateExhausted
	result.Reason = reason
	log.Printf("🚧 %s after %d %s (generation time: %.3f seconds)",
		reason, result.Attempts, pluralize(result.Attempts), result.GenerateTime.Seconds())
	return result
}

func (l *Loop) saveAttempt(ctx context.Context, task Task, index int, attempt storage.Attempt) {
	if l.db == nil {
		return
	}
	attempt.RunID = task.ID.String()
	attempt.Index = index
	attempt.CreatedAt = time.Now()
	if err := l.db.SaveAttempt(ctx, attempt); err != nil {
		log.Printf("⚠️ Error saving attempt %d for run %s: %v", index, attempt.RunID, err)
	}
}

func pluralize(n int) string {
	if n == 1 {
		return "attempt"
	}
	return "attempts"
}
