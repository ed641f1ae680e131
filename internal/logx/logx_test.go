package logx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewJSONWritesToStdoutAndFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	logger, closer, err := New("info", "json", dir, &buf)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	WithJobID(WithComponent(logger, "compose"), "job-7").Info("plan ready", "segments", 3)
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("stdout is not a single JSON record: %v\n%s", err, buf.String())
	}
	if record["component"] != "compose" || record["job_id"] != "job-7" || record["msg"] != "plan ready" {
		t.Fatalf("record = %v", record)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", entries, err)
	}
	data, err := os.ReadFile(dir + "/" + entries[0].Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "plan ready") || strings.Contains(string(data), "hidden") {
		t.Fatalf("unexpected file contents: %s", data)
	}
}

func TestNewTextWithoutLogsDir(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New("debug", "text", "", &buf)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer closer.Close()

	logger.Debug("visible", "k", "v")
	if !strings.Contains(buf.String(), "msg=visible") || !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}
