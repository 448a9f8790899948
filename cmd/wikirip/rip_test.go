package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wikirip/internal/config"
)

// newTestWiki serves a tiny wiki: the main page links to A and an image,
// A links back and to a page that returns 404.
func newTestWiki(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/wiki/Main_Page": `<html><body><a href="/wiki/A">A</a><img src="/images/x.jpg"></body></html>`,
		"/wiki/A":         `<html><body><a href="/wiki/Main_Page">home</a> <a href="/wiki/Broken">broken</a> <a href="https://elsewhere.test/">out</a></body></html>`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/images/x.jpg" {
			_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

// executeCmd runs the root command with args and returns stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestNewRipCmd tests the rip command flags.
func TestNewRipCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRipCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"root", "r", ""},
		{"starting-page", "s", ""},
		{"output", "o", "ripped"},
		{"timeout", "t", "30s"},
		{"concurrency", "n", "16"},
		{"max-body-size", "", "52428800"},
		{"config", "c", ""},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"report-file", "", ""},
		{"no-history", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestRipEndToEnd mirrors the test wiki and checks files, report and history.
func TestRipEndToEnd(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "ripped")
	dbDir := filepath.Join(dir, "db")

	stdout, stderr, err := executeCmd(t, "rip",
		"--root", srv.URL,
		"--starting-page", "/wiki/Main_Page",
		"--output", output,
		"--db-dir", dbDir,
		"--concurrency", "4",
	)
	if err != nil {
		t.Fatalf("rip should succeed despite per-page failures: %v\nstderr: %s", err, stderr)
	}

	t.Run("mirror files", func(t *testing.T) {
		for _, rel := range []string{"wiki/Main_Page", "wiki/A", "images/x.jpg"} {
			if _, err := os.Stat(filepath.Join(output, filepath.FromSlash(rel))); err != nil {
				t.Errorf("expected %s in mirror: %v", rel, err)
			}
		}
		if _, err := os.Stat(filepath.Join(output, "wiki", "Broken")); !os.IsNotExist(err) {
			t.Errorf("404 page must not be written, stat err = %v", err)
		}

		img, err := os.ReadFile(filepath.Join(output, "images", "x.jpg")) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read image: %v", err)
		}
		if !bytes.Equal(img, []byte{0xFF, 0xD8, 0xFF, 0xE0}) {
			t.Errorf("image bytes changed: %v", img)
		}
	})

	t.Run("report and summary", func(t *testing.T) {
		if !strings.Contains(stdout, "WIKIRIP REPORT") || !strings.Contains(stdout, "/wiki/Broken") {
			t.Errorf("unexpected report:\n%s", stdout)
		}
		if !strings.Contains(stderr, "2 pages and 1 resources saved") || !strings.Contains(stderr, "1 skipped") {
			t.Errorf("unexpected summary:\n%s", stderr)
		}
		if !strings.Contains(stderr, "skipping page") {
			t.Errorf("expected failure to be logged:\n%s", stderr)
		}
	})

	t.Run("history", func(t *testing.T) {
		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir, "--json")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}

		var rips []map[string]any
		if err := json.Unmarshal([]byte(stdout), &rips); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if len(rips) != 1 {
			t.Fatalf("expected 1 stored rip, got %d", len(rips))
		}
		if rips[0]["status"] != "partial" || rips[0]["failure_count"] != float64(1) {
			t.Errorf("unexpected stored rip: %v", rips[0])
		}
	})
}

// TestRipJSONReport tests the JSON report and credential redaction.
func TestRipJSONReport(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	root := strings.Replace(srv.URL, "http://", "http://alice:hunter2@", 1)
	dir := t.TempDir()

	stdout, stderr, err := executeCmd(t, "rip",
		"-r", root,
		"-s", "/wiki/Main_Page",
		"-o", filepath.Join(dir, "out"),
		"--no-history",
		"--json",
		"-v",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(stdout, "hunter2") || strings.Contains(stderr, "hunter2") {
		t.Errorf("password leaked:\nstdout: %s\nstderr: %s", stdout, stderr)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if decoded["rounds"] != float64(3) {
		t.Errorf("expected 3 rounds, got %v", decoded["rounds"])
	}
	visited, ok := decoded["visited"].([]any)
	if !ok || len(visited) != 3 {
		t.Errorf("expected 3 visited pages, got %v", decoded["visited"])
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "wiki", "A")); err != nil {
		t.Errorf("expected mirrored page: %v", err)
	}
}

// TestRipJSONLogs tests the --log-json flag.
func TestRipJSONLogs(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	root := strings.Replace(srv.URL, "http://", "http://alice:hunter2@", 1)

	_, stderr, err := executeCmd(t, "rip",
		"-r", root,
		"-s", "/wiki/Main_Page",
		"-o", filepath.Join(t.TempDir(), "out"),
		"--no-history",
		"--log-json",
		"-v",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stderr, `"msg":"starting rip"`) {
		t.Errorf("expected JSON log lines, got:\n%s", stderr)
	}
	if strings.Contains(stderr, "hunter2") {
		t.Errorf("password leaked:\n%s", stderr)
	}
}

// TestRipReportFile tests writing the report to a file.
func TestRipReportFile(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "reports", "rip.md")

	stdout, _, err := executeCmd(t, "rip",
		"-r", srv.URL,
		"-s", "/wiki/Main_Page",
		"-o", filepath.Join(dir, "out"),
		"--no-history",
		"--markdown",
		"--report-file", reportPath,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected nothing on stdout, got %q", stdout)
	}

	content, err := os.ReadFile(reportPath) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(content), "# wikirip Report") {
		t.Errorf("unexpected report:\n%s", content)
	}
}

// TestRipResetsOutput tests that stale files are removed before a rip.
func TestRipResetsOutput(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	output := filepath.Join(t.TempDir(), "out")
	stale := filepath.Join(output, "stale.txt")
	if err := os.MkdirAll(output, 0750); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, _, err := executeCmd(t, "rip", "-r", srv.URL, "-s", "/wiki/Main_Page", "-o", output, "--no-history"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("expected stale file to be removed, stat err = %v", err)
	}
}

// TestRipErrors tests fatal errors.
func TestRipErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing required flags",
			args:    []string{"rip"},
			wantMsg: "required flag",
		},
		{
			name:    "root without scheme",
			args:    []string{"rip", "-r", "wiki.example.test", "-s", "/wiki/Main_Page", "--no-history"},
			wantMsg: "invalid root URL",
		},
		{
			name:    "unparsable root",
			args:    []string{"rip", "-r", "http://[::1", "-s", "/wiki/Main_Page", "--no-history"},
			wantMsg: "invalid root URL",
		},
		{
			name:    "conflicting formats",
			args:    []string{"rip", "-r", "http://wiki.example.test", "-s", "/", "-j", "-m", "--no-history"},
			wantErr: config.ErrConflictingReportFormats,
		},
		{
			name:    "invalid concurrency",
			args:    []string{"rip", "-r", "http://wiki.example.test", "-s", "/", "-n", "0", "--no-history"},
			wantErr: config.ErrInvalidConcurrency,
		},
		{
			name:    "missing config file",
			args:    []string{"rip", "-r", "http://wiki.example.test", "-s", "/", "-c", "/nonexistent/.wikirip", "--no-history"},
			wantErr: config.ErrConfigNotFound,
		},
		{
			name:    "unsafe output directory",
			args:    []string{"rip", "-r", "http://wiki.example.test", "-s", "/", "-o", ".", "--no-history"},
			wantMsg: "refusing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := executeCmd(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

// TestBuildConfig tests precedence between defaults, the config file and flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), ".wikirip")
	content := `defaults:
  concurrency: 8
sites:
  https://wiki.example.test:
    output: from-file
    timeout: 45s
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name            string
		args            []string
		wantOutput      string
		wantConcurrency int
		wantTimeout     time.Duration
	}{
		{
			name:            "file values over defaults",
			args:            []string{"-r", "https://wiki.example.test", "-s", "/", "-c", configPath},
			wantOutput:      "from-file",
			wantConcurrency: 8,
			wantTimeout:     45 * time.Second,
		},
		{
			name:            "flags over file",
			args:            []string{"-r", "https://wiki.example.test", "-s", "/", "-c", configPath, "-o", "flag-out", "-n", "2", "-t", "5s"},
			wantOutput:      "flag-out",
			wantConcurrency: 2,
			wantTimeout:     5 * time.Second,
		},
		{
			name:            "other root gets file defaults only",
			args:            []string{"-r", "https://other.example.test", "-s", "/", "-c", configPath},
			wantOutput:      config.DefaultOutputDir,
			wantConcurrency: 8,
			wantTimeout:     config.DefaultTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewRipCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}

			cfg, err := buildConfig(cmd)
			if err != nil {
				t.Fatalf("buildConfig failed: %v", err)
			}
			if cfg.OutputDir != tt.wantOutput {
				t.Errorf("expected output %q, got %q", tt.wantOutput, cfg.OutputDir)
			}
			if cfg.Concurrency != tt.wantConcurrency {
				t.Errorf("expected concurrency %d, got %d", tt.wantConcurrency, cfg.Concurrency)
			}
			if cfg.Timeout != tt.wantTimeout {
				t.Errorf("expected timeout %v, got %v", tt.wantTimeout, cfg.Timeout)
			}
			if !cfg.SaveHistory {
				t.Error("expected history to be saved by default")
			}
		})
	}
}
