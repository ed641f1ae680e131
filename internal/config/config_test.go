package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.FPS != 24 || cfg.Audio.ACodec != "aac" || cfg.Cache.Backend != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadMergesPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shorts.yaml")
	contents := `video:
  fps: 30
captions:
  font_size: 48
  outline_width: 0
cache:
  backend: redis
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.FPS != 30 || cfg.Video.Codec != "libx264" {
		t.Fatalf("video = %+v", cfg.Video)
	}
	if cfg.Captions.FontSize != 48 || cfg.Captions.OutlineWidthValue() != 0 {
		t.Fatalf("captions = %+v", cfg.Captions)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Video.FPS = 0
	cfg.Cache.Backend = "memcached"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"video.fps", "cache.backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SHORTS_ADDR", ":9999")
	t.Setenv("SHORTS_CACHE_TTL_S", "120")
	t.Setenv("SHORTS_REDIS_DB", "not-a-number")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.TTLSeconds != 120 {
		t.Fatalf("ttl = %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Cache.RedisDB != 0 {
		t.Fatalf("invalid int should keep fallback, got %d", cfg.Cache.RedisDB)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SHORTS_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SHORTS_TEST_DOTENV") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	if got := os.Getenv("SHORTS_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("env = %q", got)
	}
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), "font_size: 60") {
		t.Fatalf("unexpected YAML:\n%s", data)
	}
}
