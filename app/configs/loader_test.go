package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
model: llama-3.3-70b-versatile
base_url: http://localhost:1234
max_attempts: 5
max_time: 10
prompt_file: prompt.txt
source_file: foo.cpp
run_executable: true
print_code: true
print_compiler_errors: true
compiler: g++
compiler_options: ["-O2", "-Wall"]
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "llama-3.3-70b-versatile" || cfg.MaxAttempts != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MaxTime() != 10*time.Second {
		t.Fatalf("unexpected max time: %v", cfg.MaxTime())
	}
	if len(cfg.CompilerOptions) != 2 || cfg.CompilerOptions[0] != "-O2" {
		t.Fatalf("unexpected compiler options: %v", cfg.CompilerOptions)
	}
	if cfg.Workspace != "generations" {
		t.Fatalf("default workspace not applied: %q", cfg.Workspace)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("TEST_FORGE_MODEL", "qwen2.5-coder-7b-instruct")
	cfg, err := LoadConfig(writeConfig(t, strings.Replace(validYAML,
		"llama-3.3-70b-versatile", "${TEST_FORGE_MODEL}", 1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "qwen2.5-coder-7b-instruct" {
		t.Fatalf("env not expanded: %q", cfg.Model)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		errPart string
	}{
		{"missing_file", nil, "read configs file"},
		{"bad_yaml", func(s string) string { return s + "\n\t: broken" }, "parse YAML"},
		{"zero_attempts", func(s string) string {
			return strings.Replace(s, "max_attempts: 5", "max_attempts: 0", 1)
		}, "max_attempts"},
		{"negative_attempts", func(s string) string {
			return strings.Replace(s, "max_attempts: 5", "max_attempts: -2", 1)
		}, "max_attempts"},
		{"negative_max_time", func(s string) string {
			return strings.Replace(s, "max_time: 10", "max_time: -1", 1)
		}, "max_time"},
		{"no_model", func(s string) string {
			return strings.Replace(s, "model: llama-3.3-70b-versatile\n", "", 1)
		}, "invalid configs"},
		{"no_extension", func(s string) string {
			return strings.Replace(s, "source_file: foo.cpp", "source_file: foo", 1)
		}, "extension"},
		{"source_with_path", func(s string) string {
			return strings.Replace(s, "source_file: foo.cpp", "source_file: sub/foo.cpp", 1)
		}, "bare file name"},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.yaml")
			if cse.mutate != nil {
				path = writeConfig(t, cse.mutate(validYAML))
			}
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), cse.errPart) {
				t.Fatalf("error %q does not mention %q", err, cse.errPart)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := &Config{}
	key, err := cfg.APIKey()
	if err != nil || key != "" {
		t.Fatalf("expected empty key without file, got %q, %v", key, err)
	}

	keyFile := filepath.Join(t.TempDir(), "key.txt")
	if err := os.WriteFile(keyFile, []byte("sk-test\n"), 0600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	cfg.APIKeyFile = keyFile
	key, err = cfg.APIKey()
	if err != nil || key != "sk-test" {
		t.Fatalf("unexpected key %q, %v", key, err)
	}

	cfg.APIKeyFile = filepath.Join(t.TempDir(), "absent.txt")
	if _, err = cfg.APIKey(); err == nil {
		t.Fatalf("expected error for missing key file")
	}
}
