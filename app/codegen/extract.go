package codegen

import (
	"fmt"
	"strings"
	"time"
)

// Candidate is one extracted piece of generated source, ready to be written
// to the attempt file.
type Candidate struct {
	Source string
	LOC    int
}

// Header records provenance at the top of every candidate file.
type Header struct {
	PromptFile  string
	Model       string
	GeneratedAt time.Time
	Duration    time.Duration
}

func (h Header) Render() string {
	return fmt.Sprintf(
		"// Generated from prompt file: %s\n"+
			"// Model used: %s\n"+
			"// Time generated: %s\n"+
			"// Generation time: %.3f seconds\n",
		h.PromptFile, h.Model,
		h.GeneratedAt.Format("2006-01-02 15:04:05"),
		h.Duration.Seconds(),
	)
}

// Extract pulls the code out of a fenced markdown reply. Code is taken from
// the first ``` fence up to the closing fence; replies without a fence are
// commented out in full so the compiler reports the prose instead of
// something half-parsed. Stray lines beginning with a backtick are commented
// out as well since they are never valid source.
func Extract(raw string) string {
	lines := strings.Split(raw, "\n")

	fenceIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenceIdx = i
			break
		}
	}

	var codeLines []string
	if fenceIdx >= 0 {
		for _, line := range lines[fenceIdx+1:] {
			if strings.TrimSpace(line) == "```" {
				break
			}
			codeLines = append(codeLines, line)
		}
	} else {
		for _, line := range lines {
			if !strings.HasPrefix(line, "//") {
				line = "//" + line
			}
			codeLines = append(codeLines, line)
		}
	}

	for i, line := range codeLines {
		if strings.HasPrefix(strings.TrimSpace(line), "`") {
			codeLines[i] = "//" + line
		}
	}

	return strings.Join(codeLines, "\n")
}

// CountLOC counts non-blank lines.
func CountLOC(code string) int {
	count := 0
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// IsEmpty reports whether a model reply carries no usable text at all.
func IsEmpty(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

// Build extracts the code from a raw reply and prepends the provenance
// header. LOC excludes the header.
func Build(raw string, header Header) Candidate {
	code := Extract(raw)
	return Candidate{
		Source: header.Render() + code,
		LOC:    CountLOC(code),
	}
}
