package paths

import (
	"os"
	"path/filepath"
	"testing"

	"shorts/internal/config"
)

func TestResolveUsesFlag(t *testing.T) {
	root := t.TempDir()
	wp, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if wp.Root != root {
		t.Fatalf("root = %q, want %q", wp.Root, root)
	}
	if wp.ConfigFile != filepath.Join(root, "shorts.yaml") {
		t.Fatalf("config file = %q", wp.ConfigFile)
	}
	if wp.StateFile != filepath.Join(root, ".shorts", "render_state.json") {
		t.Fatalf("state file = %q", wp.StateFile)
	}
}

func TestApplyConfigRelative(t *testing.T) {
	root := t.TempDir()
	wp := newWorkspacePaths(root)

	cfg := config.Default()
	cfg.Outputs.Dir = "renders"

	applied := ApplyConfig(wp, cfg)
	if want := filepath.Join(root, "renders"); applied.OutputDir != want {
		t.Fatalf("output dir = %q, want %q", applied.OutputDir, want)
	}
}

func TestApplyConfigAbsolute(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(t.TempDir(), "out")

	cfg := config.Default()
	cfg.Outputs.Dir = abs

	applied := ApplyConfig(newWorkspacePaths(root), cfg)
	if applied.OutputDir != abs {
		t.Fatalf("output dir = %q, want %q", applied.OutputDir, abs)
	}
}

func TestWorkspaceResolve(t *testing.T) {
	wp := newWorkspacePaths("/work")
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"clips/a.mp4", filepath.Join("/work", "clips/a.mp4")},
		{"/abs/a.mp4", "/abs/a.mp4"},
		{"https://cdn.x/v.mp4", "https://cdn.x/v.mp4"},
		{"  audio/voice.mp3  ", filepath.Join("/work", "audio/voice.mp3")},
	}
	for _, tc := range cases {
		if got := wp.Resolve(tc.in); got != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnsureMetaDirsAndFileExists(t *testing.T) {
	wp := newWorkspacePaths(t.TempDir())
	if err := wp.EnsureMetaDirs(); err != nil {
		t.Fatalf("EnsureMetaDirs error: %v", err)
	}
	for _, dir := range []string{wp.MetaDir, wp.OutputDir, wp.LogsDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}

	file := filepath.Join(wp.OutputDir, "x.mp4")
	if ok, err := FileExists(file); err != nil || ok {
		t.Fatalf("FileExists before write = %v, %v", ok, err)
	}
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := FileExists(file); err != nil || !ok {
		t.Fatalf("FileExists after write = %v, %v", ok, err)
	}
	if ok, _ := FileExists(wp.OutputDir); ok {
		t.Fatal("directory should not count as a file")
	}
}
