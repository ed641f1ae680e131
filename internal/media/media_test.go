package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts/internal/clipcache"
	"shorts/internal/compose"
)

type fakeRunner struct {
	stdout  string
	stderr  string
	err     error
	command string
	args    []string
	calls   int
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, _ RunOptions) (RunResult, error) {
	f.calls++
	f.command = command
	f.args = append([]string(nil), args...)
	return RunResult{Stdout: []byte(f.stdout), Stderr: []byte(f.stderr)}, f.err
}

const landscapeProbe = `{
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.480000"},
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
    {"codec_type": "audio", "codec_name": "aac"}
  ]
}`

func TestProbeParsesGeometryAndDuration(t *testing.T) {
	runner := &fakeRunner{stdout: landscapeProbe}
	p := NewProber(runner, "")

	res, err := p.Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if runner.command != "ffprobe" {
		t.Fatalf("command = %q", runner.command)
	}
	if last := runner.args[len(runner.args)-1]; last != "clip.mp4" {
		t.Fatalf("target arg = %q", last)
	}
	if res.Width != 1920 || res.Height != 1080 {
		t.Fatalf("geometry = %dx%d", res.Width, res.Height)
	}
	if res.DurationSeconds != 12.48 {
		t.Fatalf("duration = %v", res.DurationSeconds)
	}
	if !res.HasVideo || !res.HasAudio {
		t.Fatalf("streams not detected: %+v", res)
	}
}

func TestProbeRotatedStreamSwapsAxes(t *testing.T) {
	runner := &fakeRunner{stdout: `{"format":{"duration":"3"},"streams":[
		{"codec_type":"video","width":1920,"height":1080,"tags":{"rotate":"90"}}]}`}
	res, err := NewProber(runner, "").Probe(context.Background(), "phone.mov")
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 1080 || res.Height != 1920 {
		t.Fatalf("geometry = %dx%d", res.Width, res.Height)
	}
}

func TestProbeStreamDurationFallback(t *testing.T) {
	runner := &fakeRunner{stdout: `{"format":{},"streams":[{"codec_type":"audio","duration":"7.25"}]}`}
	d, err := NewProber(runner, "").Duration(context.Background(), "voice.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if d != 7.25 {
		t.Fatalf("duration = %v", d)
	}
}

func TestProbeErrors(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "No such file"}
	_, err := NewProber(runner, "/opt/ffprobe").Probe(context.Background(), "missing.mp4")
	if err == nil || !strings.Contains(err.Error(), "No such file") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
	if runner.command != "/opt/ffprobe" {
		t.Fatalf("custom path not used: %q", runner.command)
	}

	if _, err := NewProber(&fakeRunner{}, "").Probe(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for empty output")
	}
	if _, err := NewProber(&fakeRunner{stdout: "{"}, "").Probe(context.Background(), "x"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := NewProber(&fakeRunner{stdout: `{"format":{}}`}, "").Duration(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for missing duration")
	}
}

func TestIsRemote(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"https://cdn.example.com/a.mp4", true},
		{"http://cdn.example.com/a.mp4", true},
		{"clips/a.mp4", false},
		{"/abs/a.mp4", false},
		{"file:///abs/a.mp4", false},
		{"https://", false},
	}
	for _, tc := range cases {
		if got := IsRemote(tc.ref); got != tc.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tc.ref, got, tc.want)
		}
	}
}

func TestResolverLocalRelativePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "clips"), 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "clips", "a.mp4")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{stdout: landscapeProbe}
	r := NewResolver(NewProber(runner, ""), nil, dir)
	src, err := r.Resolve(context.Background(), compose.ClipPlacement{SourceRef: "clips/a.mp4", TrimEnd: 2})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src.Path != target {
		t.Fatalf("path = %q, want %q", src.Path, target)
	}
	if src.Width != 1920 || src.Height != 1080 || src.Duration != 12.48 {
		t.Fatalf("unexpected source %+v", src)
	}
}

func TestResolverRemoteUsesCache(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "dl.mp4")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache := clipcache.NewMemory()
	link := "https://cdn.example.com/ocean.mp4"
	if err := cache.Put(context.Background(), "ocean", []clipcache.Clip{{Link: link, Path: local}}); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{stdout: landscapeProbe}
	r := NewResolver(NewProber(runner, ""), cache, dir)

	src, err := r.Resolve(context.Background(), compose.ClipPlacement{SourceRef: link, Keyword: "ocean", TrimEnd: 1})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src.Path != local {
		t.Fatalf("path = %q", src.Path)
	}

	_, err = r.Resolve(context.Background(), compose.ClipPlacement{SourceRef: "https://cdn.example.com/other.mp4", Keyword: "ocean", TrimEnd: 1})
	if !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
	_, err = r.Resolve(context.Background(), compose.ClipPlacement{SourceRef: link, TrimEnd: 1})
	if !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached without keyword, got %v", err)
	}
}

func TestResolverMissingFile(t *testing.T) {
	runner := &fakeRunner{stdout: landscapeProbe}
	r := NewResolver(NewProber(runner, ""), nil, t.TempDir())
	if _, err := r.Resolve(context.Background(), compose.ClipPlacement{SourceRef: "nope.mp4", TrimEnd: 1}); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if runner.calls != 0 {
		t.Fatalf("ffprobe should not run for missing files")
	}
}

func TestResolverRejectsAudioOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{stdout: `{"format":{"duration":"4"},"streams":[{"codec_type":"audio"}]}`}
	r := NewResolver(NewProber(runner, ""), nil, dir)
	if _, err := r.Resolve(context.Background(), compose.ClipPlacement{SourceRef: path, TrimEnd: 1}); err == nil {
		t.Fatalf("expected error for audio-only source")
	}
}

func TestResolverWiresIntoBuilder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(NewProber(&fakeRunner{stdout: landscapeProbe}, ""), nil, dir)
	b := compose.NewBuilder(r, nil)

	plan, err := b.Build(context.Background(), compose.Job{
		ID:     "job-1",
		Layout: compose.LayoutShorts,
		Clips:  []compose.RawClip{{SourceRef: "wide.mp4", TrimStart: 1, TrimEnd: 4}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	seg := plan.Timeline.Segments[0]
	if seg.SourceRef != path {
		t.Fatalf("segment source = %q", seg.SourceRef)
	}
	if seg.ScaledWidth != 720 || seg.ScaledHeight != 405 {
		t.Fatalf("fit = %dx%d", seg.ScaledWidth, seg.ScaledHeight)
	}

	_, err = b.Build(context.Background(), compose.Job{
		Clips: []compose.RawClip{{SourceRef: "https://cdn.example.com/x.mp4", Keyword: "k", TrimEnd: 1}},
	})
	if !errors.Is(err, compose.ErrClipUnavailable) {
		t.Fatalf("expected ErrClipUnavailable, got %v", err)
	}
}
