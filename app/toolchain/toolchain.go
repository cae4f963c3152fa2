package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	compileTimeout = 120 * time.Second
	runTimeout     = 60 * time.Second
	maxOutputBytes = 2 << 20
)

// ExecError carries the exit status and captured output of a failed binary
// execution.
type ExecError struct {
	ExitCode int
	Output   string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.ExitCode)
}

// Toolchain drives one native compiler over a fixed source path inside a run
// workspace directory.
type Toolchain struct {
	Compiler   string
	Options    []string
	Dir        string
	SourceFile string
}

func New(compiler string, options []string, dir, sourceFile string) (*Toolchain, error) {
	if _, err := exec.LookPath(compiler); err != nil {
		return nil, fmt.Errorf("compiler %q not found in PATH: %w", compiler, err)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", dir, err)
	}
	return &Toolchain{Compiler: compiler, Options: options, Dir: dir, SourceFile: sourceFile}, nil
}

func (tc *Toolchain) baseName() string {
	return strings.TrimSuffix(tc.SourceFile, filepath.Ext(tc.SourceFile))
}

func (tc *Toolchain) SourcePath() string {
	return filepath.Join(tc.Dir, tc.SourceFile)
}

func (tc *Toolchain) BinaryPath() string {
	name := tc.baseName()
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(tc.Dir, name)
}

// CommandLine renders the compile invocation for reporting.
func (tc *Toolchain) CommandLine() string {
	args := append([]string{tc.Compiler}, tc.Options...)
	args = append(args, "-o", tc.baseName(), tc.SourceFile)
	return strings.Join(args, " ")
}

// WriteCandidate overwrites the fixed source path with a new candidate. On
// attempts after the first, the previous candidate is archived first as
// <base><attempt-1><ext> so every rejected version stays inspectable.
func (tc *Toolchain) WriteCandidate(source string, attempt int) error {
	path := tc.SourcePath()
	if attempt > 1 {
		archive := filepath.Join(tc.Dir,
			fmt.Sprintf("%s%d%s", tc.baseName(), attempt-1, filepath.Ext(tc.SourceFile)))
		if err := copyFile(path, archive); err != nil {
			return fmt.Errorf("archive attempt %d: %w", attempt-1, err)
		}
	}
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		return fmt.Errorf("write candidate %s: %w", path, err)
	}
	return nil
}

// CompileResult is one compiler verdict. Diagnostic holds the raw stderr
// stream on rejection; it is never parsed, only passed back to the model.
type CompileResult struct {
	OK         bool
	Diagnostic string
	Command    string
	Duration   time.Duration
}

// Compile invokes the native compiler on the fixed source path. A non-zero
// compiler exit is not an error here: it is a rejection the loop handles.
// Errors are reserved for failures to launch the compiler at all.
func (tc *Toolchain) Compile(ctx context.Context) (*CompileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	args := append([]string{}, tc.Options...)
	args = append(args, "-o", tc.baseName(), tc.SourceFile)
	cmd := exec.CommandContext(ctx, tc.Compiler, args...)
	cmd.Dir = tc.Dir

	cw := &cappedWriter{max: maxOutputBytes}
	cmd.Stderr = cw

	start := time.Now()
	err := cmd.Run()
	result := &CompileResult{
		Diagnostic: cw.String(),
		Command:    tc.CommandLine(),
		Duration:   time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.Diagnostic += fmt.Sprintf("\ncompiler timed out after %s", compileTimeout)
		return result, nil
	}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return result, nil
		}
		return nil, fmt.Errorf("invoke compiler: %w", err)
	}

	result.OK = true
	return result, nil
}

// RunBinary executes the compiled artifact once, feeding it the configured
// stdin text and capturing stdout. A crashing binary surfaces as *ExecError
// with its stderr attached; it never re-enters the fix loop.
func (tc *Toolchain) RunBinary(ctx context.Context, stdin string) (string, error) {
	binary := tc.BinaryPath()
	if _, err := os.Stat(binary); err != nil {
		return "", fmt.Errorf("executable not found at %s: %w", binary, err)
	}

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary)
	cmd.Dir = tc.Dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	stdout := &cappedWriter{max: maxOutputBytes}
	stderr := &cappedWriter{max: maxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stdout.String(), fmt.Errorf("execution timed out after %s", runTimeout)
	}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return stdout.String(), &ExecError{ExitCode: exitCodeFromError(ee), Output: stderr.String()}
		}
		return stdout.String(), err
	}
	return stdout.String(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

type cappedWriter struct {
	buf bytes.Buffer
	max int64
	n   int64
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	remain := w.max - w.n
	if remain <= 0 {
		return len(p), nil
	}
	if int64(len(p)) > remain {
		p = p[:remain]
	}
	n, _ := w.buf.Write(p)
	w.n += int64(n)
	return len(p), nil
}

func (w *cappedWriter) String() string {
	return w.buf.String()
}

func exitCodeFromError(e *exec.ExitError) int {
	if st, ok := e.Sys().(interface{ ExitStatus() int }); ok {
		return st.ExitStatus()
	}
	return -1
}
