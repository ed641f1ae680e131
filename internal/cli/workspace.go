package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"shorts/internal/clipcache"
	"shorts/internal/compose"
	"shorts/internal/config"
	"shorts/internal/logx"
	"shorts/internal/media"
	"shorts/internal/metrics"
	"shorts/internal/paths"
	"shorts/internal/pipeline"
	"shorts/internal/render"
	"shorts/internal/tools"
	"shorts/internal/tui"
)

// workspace bundles the configuration and logger shared by every command.
type workspace struct {
	paths  paths.WorkspacePaths
	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
}

// loadWorkspace resolves the workspace, reads .env and shorts.yaml, applies
// SHORTS_* overrides, and opens the run log. Console log lines go to console.
func loadWorkspace(console io.Writer) (*workspace, error) {
	pp, err := paths.Resolve(workspaceDir)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(pp.EnvFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", pp.EnvFile, err)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pp = paths.ApplyConfig(pp, cfg)
	if err := pp.EnsureMetaDirs(); err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(cfg.Log.Level, cfg.Log.Format, pp.LogsDir, console)
	if err != nil {
		return nil, err
	}
	return &workspace{paths: pp, cfg: cfg, logger: logger, closer: closer}, nil
}

func (w *workspace) Close() error {
	if w == nil || w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (w *workspace) cacheOptions() clipcache.Options {
	return clipcache.Options{
		Backend:   w.cfg.Cache.Backend,
		RedisAddr: w.cfg.Cache.RedisAddr,
		RedisDB:   w.cfg.Cache.RedisDB,
		KeyPrefix: w.cfg.Cache.KeyPrefix,
		TTL:       time.Duration(w.cfg.Cache.TTLSeconds) * time.Second,
	}
}

func (w *workspace) openCache() (clipcache.Cache, error) {
	cache, err := clipcache.New(w.cacheOptions())
	if err != nil {
		return nil, fmt.Errorf("open clip cache: %w", err)
	}
	return cache, nil
}

// newPipeline wires the builder, prober, and optionally the encoder.
func (w *workspace) newPipeline(cache clipcache.Cache, m *metrics.Metrics, withEncoder bool) (*pipeline.Pipeline, error) {
	ffprobe, err := tools.Find(tools.FFprobe)
	if err != nil {
		return nil, fmt.Errorf("locate ffprobe: %w", err)
	}
	prober := media.NewProber(media.CmdRunner{}, ffprobe)
	resolver := media.NewResolver(prober, cache, w.paths.Root)

	p := &pipeline.Pipeline{
		Paths:   w.paths,
		Builder: compose.NewBuilder(resolver, logx.WithComponent(w.logger, "compose")),
		Prober:  prober,
		Metrics: m,
		Logger:  logx.WithComponent(w.logger, "pipeline"),
	}
	if !withEncoder {
		return p, nil
	}

	svc, err := render.NewService(w.paths, w.cfg, media.CmdRunner{}, logx.WithComponent(w.logger, "render"), "")
	if err != nil {
		return nil, err
	}
	if m != nil {
		svc.Observer = m
	}
	p.Encoder = svc
	return p, nil
}

// consoleFor returns where console log lines go for the given mode. The
// interactive table owns the terminal, so logs only reach the run log file.
func consoleFor(cmd *cobra.Command, mode tui.OutputMode) io.Writer {
	if mode == tui.ModeTUI {
		return io.Discard
	}
	return cmd.ErrOrStderr()
}

func closeCache(cache clipcache.Cache) {
	if c, ok := cache.(io.Closer); ok {
		_ = c.Close()
	}
}
