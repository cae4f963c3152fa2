package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

// okCompiler accepts any options and emits an executable that echoes its
// stdin back, mimicking a successful native compile.
func okCompiler(t *testing.T) string {
	return writeScript(t, "cc-ok", `
while [ "$1" != "-o" ]; do shift; done
out=$2
printf '#!/bin/sh\nread line\necho "echoed: $line"\n' > "$out"
chmod +x "$out"
exit 0
`)
}

func failCompiler(t *testing.T) string {
	return writeScript(t, "cc-fail", `
echo "foo.cpp:1:1: error: expected expression" >&2
exit 1
`)
}

func TestNewRejectsMissingCompiler(t *testing.T) {
	_, err := New("definitely-not-a-compiler-xyz", nil, t.TempDir(), "foo.cpp")
	if err == nil || !strings.Contains(err.Error(), "not found in PATH") {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestWriteCandidateArchives(t *testing.T) {
	tc, err := New(okCompiler(t), nil, t.TempDir(), "foo.cpp")
	if err != nil {
		t.Fatalf("new toolchain: %v", err)
	}

	if err := tc.WriteCandidate("int main() { return 1 }", 1); err != nil {
		t.Fatalf("write attempt 1: %v", err)
	}
	if err := tc.WriteCandidate("int main() { return 0; }", 2); err != nil {
		t.Fatalf("write attempt 2: %v", err)
	}

	archived, err := os.ReadFile(filepath.Join(tc.Dir, "foo1.cpp"))
	if err != nil {
		t.Fatalf("archive missing: %v", err)
	}
	if string(archived) != "int main() { return 1 }" {
		t.Fatalf("archive holds wrong version: %q", archived)
	}
	current, _ := os.ReadFile(tc.SourcePath())
	if string(current) != "int main() { return 0; }" {
		t.Fatalf("source not overwritten: %q", current)
	}
}

func TestCompileSuccess(t *testing.T) {
	tc, err := New(okCompiler(t), []string{"-O2", "-Wall"}, t.TempDir(), "foo.cpp")
	if err != nil {
		t.Fatalf("new toolchain: %v", err)
	}
	if err := tc.WriteCandidate("int main() { return 0; }", 1); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := tc.Compile(context.Background())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected success, diagnostic: %q", result.Diagnostic)
	}
	if result.Duration <= 0 {
		t.Fatalf("compile duration not recorded")
	}
	if !strings.Contains(result.Command, "-O2 -Wall -o foo foo.cpp") {
		t.Fatalf("unexpected command line: %q", result.Command)
	}

	out, err := tc.RunBinary(context.Background(), "5\n")
	if err != nil {
		t.Fatalf("run binary: %v", err)
	}
	if strings.TrimSpace(out) != "echoed: 5" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCompileRejection(t *testing.T) {
	tc, err := New(failCompiler(t), nil, t.TempDir(), "foo.cpp")
	if err != nil {
		t.Fatalf("new toolchain: %v", err)
	}
	if err := tc.WriteCandidate("garbage", 1); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := tc.Compile(context.Background())
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if result.OK {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(result.Diagnostic, "error: expected expression") {
		t.Fatalf("diagnostic not captured: %q", result.Diagnostic)
	}
}

func TestRunBinaryMissing(t *testing.T) {
	tc, err := New(okCompiler(t), nil, t.TempDir(), "foo.cpp")
	if err != nil {
		t.Fatalf("new toolchain: %v", err)
	}
	if _, err := tc.RunBinary(context.Background(), ""); err == nil {
		t.Fatalf("expected error for missing executable")
	}
}

func TestRunBinaryCrash(t *testing.T) {
	dir := t.TempDir()
	tc, err := New(okCompiler(t), nil, dir, "foo.cpp")
	if err != nil {
		t.Fatalf("new toolchain: %v", err)
	}
	crash := "#!/bin/sh\necho 'boom' >&2\nexit 3\n"
	if err := os.WriteFile(tc.BinaryPath(), []byte(crash), 0755); err != nil {
		t.Fatalf("write crashing binary: %v", err)
	}

	_, err = tc.RunBinary(context.Background(), "")
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecError, got %v", err)
	}
	if execErr.ExitCode != 3 || !strings.Contains(execErr.Output, "boom") {
		t.Fatalf("unexpected exec error: %+v", execErr)
	}
}
