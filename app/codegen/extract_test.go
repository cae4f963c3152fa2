package codegen

import (
	"strings"
	"testing"
	"time"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			"fenced_with_language",
			"Here is the program:\n```cpp\nint main() {\n    return 0;\n}\n```\nHope it helps!",
			"int main() {\n    return 0;\n}",
		},
		{
			"fenced_without_language",
			"```\nint x = 1;\n```",
			"int x = 1;",
		},
		{
			"unterminated_fence",
			"```cpp\nint main() { return 0; }",
			"int main() { return 0; }",
		},
		{
			"no_fence_comments_everything",
			"Sure!\nUse a for loop.",
			"//Sure!\n//Use a for loop.",
		},
		{
			"no_fence_keeps_existing_comments",
			"// already commented\nplain text",
			"// already commented\n//plain text",
		},
		{
			"backtick_lines_inside_code",
			"```cpp\nint main() { return 0; }\n`some stray line`\n```",
			"int main() { return 0; }\n//`some stray line`",
		},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			got := Extract(cse.raw)
			if got != cse.want {
				t.Fatalf("got %q, want %q", got, cse.want)
			}
		})
	}
}

func TestCountLOC(t *testing.T) {
	if n := CountLOC("int main() {\n\n    return 0;\n}\n"); n != 3 {
		t.Fatalf("unexpected LOC: %d", n)
	}
	if n := CountLOC(""); n != 0 {
		t.Fatalf("unexpected LOC for empty code: %d", n)
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty("") || !IsEmpty("   \n\t\n") {
		t.Fatalf("whitespace should be empty")
	}
	if IsEmpty("int x;") {
		t.Fatalf("code should not be empty")
	}
}

func TestBuild(t *testing.T) {
	header := Header{
		PromptFile:  "prompt.txt",
		Model:       "test-model",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration:    1234 * time.Millisecond,
	}
	candidate := Build("```cpp\nint main() {\n    return 0;\n}\n```", header)

	if !strings.HasPrefix(candidate.Source, "// Generated from prompt file: prompt.txt\n") {
		t.Fatalf("header missing: %q", candidate.Source)
	}
	if !strings.Contains(candidate.Source, "// Model used: test-model\n") {
		t.Fatalf("model line missing")
	}
	if !strings.Contains(candidate.Source, "// Generation time: 1.234 seconds\n") {
		t.Fatalf("generation time line missing")
	}
	if candidate.LOC != 3 {
		t.Fatalf("LOC should exclude header, got %d", candidate.LOC)
	}
}
