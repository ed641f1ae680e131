package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures encoding, caption and service settings for a workspace.
type Config struct {
	Version  int            `yaml:"version"`
	Video    VideoConfig    `yaml:"video"`
	Audio    AudioConfig    `yaml:"audio"`
	Captions CaptionsConfig `yaml:"captions"`
	Outputs  OutputsConfig  `yaml:"outputs"`
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// VideoConfig contains encoder settings. Geometry is not configurable; it
// comes from the job's layout.
type VideoConfig struct {
	FPS    int    `yaml:"fps"`
	Codec  string `yaml:"codec"`
	Preset string `yaml:"preset"`
	CRF    int    `yaml:"crf"`
}

// AudioConfig describes audio encoding parameters.
type AudioConfig struct {
	ACodec      string `yaml:"acodec"`
	BitrateKbps int    `yaml:"bitrate_kbps"`
	SampleRate  int    `yaml:"sample_rate"`
}

// CaptionsConfig styles burned-in caption blocks.
type CaptionsConfig struct {
	FontFile     string `yaml:"font_file"`
	FontSize     int    `yaml:"font_size"`
	Color        string `yaml:"color"`
	OutlineColor string `yaml:"outline_color"`
	OutlineWidth *int   `yaml:"outline_width,omitempty"`
	MarginBottom int    `yaml:"margin_bottom"`
	WriteSRT     *bool  `yaml:"write_srt,omitempty"`
}

// OutlineWidthValue returns the effective outline width applying defaults.
func (c CaptionsConfig) OutlineWidthValue() int {
	if c.OutlineWidth == nil {
		return 3
	}
	return *c.OutlineWidth
}

// WriteSRTValue returns whether an .srt sidecar should be written.
func (c CaptionsConfig) WriteSRTValue() bool {
	if c.WriteSRT == nil {
		return true
	}
	return *c.WriteSRT
}

// OutputsConfig controls where rendered artifacts land.
type OutputsConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	RenderOnMerge *bool  `yaml:"render_on_merge,omitempty"`
}

// RenderOnMergeValue reports whether POST /merge_clips encodes the plan.
func (s ServerConfig) RenderOnMergeValue() bool {
	if s.RenderOnMerge == nil {
		return true
	}
	return *s.RenderOnMerge
}

// CacheConfig selects the keyword clip cache backend.
type CacheConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "redis"
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	KeyPrefix  string `yaml:"key_prefix"`
	TTLSeconds int    `yaml:"ttl_s"`
}

// LogConfig selects level and handler format for structured logs.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Video: VideoConfig{
			FPS:    24,
			Codec:  "libx264",
			Preset: "veryfast",
			CRF:    23,
		},
		Audio: AudioConfig{
			ACodec:      "aac",
			BitrateKbps: 192,
			SampleRate:  44100,
		},
		Captions: CaptionsConfig{
			FontSize:     60,
			Color:        "white",
			OutlineColor: "black",
			OutlineWidth: intPtr(3),
			MarginBottom: 150,
			WriteSRT:     boolPtr(true),
		},
		Outputs: OutputsConfig{
			Dir: "shorts/videos",
		},
		Server: ServerConfig{
			Addr:          ":8000",
			RenderOnMerge: boolPtr(true),
		},
		Cache: CacheConfig{
			Backend:    "memory",
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "shorts:clips:",
			TTLSeconds: 0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if strings.TrimSpace(c.Video.Codec) == "" {
		c.Video.Codec = defaults.Video.Codec
	}
	if strings.TrimSpace(c.Video.Preset) == "" {
		c.Video.Preset = defaults.Video.Preset
	}
	if c.Audio.ACodec == "" {
		c.Audio.ACodec = defaults.Audio.ACodec
	}
	if c.Audio.BitrateKbps == 0 {
		c.Audio.BitrateKbps = defaults.Audio.BitrateKbps
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Captions.FontSize == 0 {
		c.Captions.FontSize = defaults.Captions.FontSize
	}
	if c.Captions.Color == "" {
		c.Captions.Color = defaults.Captions.Color
	}
	if c.Captions.OutlineColor == "" {
		c.Captions.OutlineColor = defaults.Captions.OutlineColor
	}
	if c.Captions.OutlineWidth == nil {
		c.Captions.OutlineWidth = intPtr(defaults.Captions.OutlineWidthValue())
	}
	if c.Captions.MarginBottom == 0 {
		c.Captions.MarginBottom = defaults.Captions.MarginBottom
	}
	if c.Captions.WriteSRT == nil {
		c.Captions.WriteSRT = boolPtr(true)
	}
	if strings.TrimSpace(c.Outputs.Dir) == "" {
		c.Outputs.Dir = defaults.Outputs.Dir
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.RenderOnMerge == nil {
		c.Server.RenderOnMerge = boolPtr(true)
	}
	if strings.TrimSpace(c.Cache.Backend) == "" {
		c.Cache.Backend = defaults.Cache.Backend
	}
	if strings.TrimSpace(c.Cache.RedisAddr) == "" {
		c.Cache.RedisAddr = defaults.Cache.RedisAddr
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = defaults.Cache.KeyPrefix
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Validate reports settings that cannot produce a working render.
func (c Config) Validate() error {
	var problems []string
	if c.Video.FPS <= 0 {
		problems = append(problems, "video.fps must be positive")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		problems = append(problems, "video.crf must be between 0 and 51")
	}
	if c.Captions.FontSize < 8 {
		problems = append(problems, "captions.font_size must be at least 8")
	}
	if c.Captions.OutlineWidthValue() < 0 {
		problems = append(problems, "captions.outline_width must not be negative")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "memory", "redis":
	default:
		problems = append(problems, fmt.Sprintf("cache.backend %q must be memory or redis", c.Cache.Backend))
	}
	if c.Cache.TTLSeconds < 0 {
		problems = append(problems, "cache.ttl_s must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}

func intPtr(v int) *int {
	return &v
}
