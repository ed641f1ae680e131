package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shorts/internal/compose"
	"shorts/internal/config"
	"shorts/internal/media"
	"shorts/internal/paths"
	"shorts/internal/render/state"
	"shorts/internal/tools"
)

// Service encodes render plans with ffmpeg.
type Service struct {
	Paths    paths.WorkspacePaths
	Config   config.Config
	Runner   media.Runner
	Logger   *slog.Logger
	Observer Observer
	stderr   io.Writer

	ffmpegPath string
	stateMu    sync.Mutex
}

// Options controls encode behaviour.
type Options struct {
	Force bool
	// OutputPath overrides the default final_<id>.mp4 location.
	OutputPath string
}

// Result captures the outcome of an encode.
type Result struct {
	PlanID       string  `json:"plan_id"`
	OutputPath   string  `json:"output_path"`
	PlanPath     string  `json:"plan_path"`
	SubtitlePath string  `json:"subtitle_path,omitempty"`
	LogPath      string  `json:"log_path,omitempty"`
	DurationS    float64 `json:"duration_s"`
	Skipped      bool    `json:"skipped"`
	Reason       string  `json:"reason"`
}

// Observer receives encode outcomes, e.g. for metrics.
type Observer interface {
	EncodeFinished(outcome string, elapsed time.Duration)
}

// Encode outcomes reported to the Observer.
const (
	OutcomeEncoded = "encoded"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// NewService prepares an encoder bound to a workspace. An empty ffmpegPath is
// resolved with tools.Find.
func NewService(pp paths.WorkspacePaths, cfg config.Config, runner media.Runner, logger *slog.Logger, ffmpegPath string) (*Service, error) {
	if runner == nil {
		runner = media.CmdRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ffmpegPath) == "" {
		found, err := tools.Find(tools.FFmpeg)
		if err != nil {
			return nil, fmt.Errorf("locate ffmpeg: %w", err)
		}
		ffmpegPath = found
	}

	return &Service{
		Paths:      pp,
		Config:     cfg,
		Runner:     runner,
		Logger:     logger,
		ffmpegPath: ffmpegPath,
	}, nil
}

// SetStderr mirrors ffmpeg's stderr to w in addition to the per-encode log.
func (s *Service) SetStderr(w io.Writer) {
	if s == nil {
		return
	}
	s.stderr = w
}

// Encode renders plan to its output file. The plan JSON and, when captions
// exist, an .srt sidecar are written next to the video. An unchanged plan
// whose output still exists is skipped unless opts.Force is set. ffmpeg
// failures are reported as compose.ErrEncodingFailed.
func (s *Service) Encode(ctx context.Context, plan compose.RenderPlan, opts Options) (Result, error) {
	if s == nil {
		return Result{}, errors.New("render service is nil")
	}
	started := time.Now()
	logger := s.Logger.With("job_id", plan.ID)

	local := s.localize(plan)
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = s.Paths.OutputFile(outputSlug(plan.ID))
	}
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	result := Result{
		PlanID:     plan.ID,
		OutputPath: outputPath,
		PlanPath:   base + ".plan.json",
		LogPath:    filepath.Join(s.Paths.LogsDir, filepath.Base(base)+".ffmpeg.log"),
		DurationS:  plan.Duration(),
	}

	planHash := state.PlanHash(local)
	configHash := state.ConfigHash(s.Config)

	s.stateMu.Lock()
	rs, _ := state.Load(s.Paths.StateFile)
	decision := state.Detect(rs, outputPath, planHash, configHash, opts.Force)
	s.stateMu.Unlock()

	result.Reason = decision.Reason
	if decision.Skip() {
		result.Skipped = true
		if len(plan.Captions) > 0 && s.Config.Captions.WriteSRTValue() {
			result.SubtitlePath = base + ".srt"
		}
		logger.Info("output up to date, skipping encode", "output", outputPath)
		s.observe(OutcomeSkipped, started)
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return s.fail(result, started, fmt.Errorf("ensure output directory: %w", err))
	}
	if err := writePlanJSON(result.PlanPath, plan); err != nil {
		return s.fail(result, started, err)
	}
	if len(plan.Captions) > 0 && s.Config.Captions.WriteSRTValue() {
		result.SubtitlePath = base + ".srt"
		if err := writeSRTFile(result.SubtitlePath, plan.Captions); err != nil {
			return s.fail(result, started, err)
		}
	}

	graph, err := BuildFilterGraph(local, s.Config)
	if err != nil {
		return s.fail(result, started, fmt.Errorf("%w: build filter graph: %v", compose.ErrEncodingFailed, err))
	}
	args, err := BuildFFmpegArgs(local, graph, outputPath, s.Config)
	if err != nil {
		return s.fail(result, started, fmt.Errorf("%w: %v", compose.ErrEncodingFailed, err))
	}

	if err := os.MkdirAll(s.Paths.LogsDir, 0o755); err != nil {
		return s.fail(result, started, fmt.Errorf("ensure logs directory: %w", err))
	}
	logFile, err := os.Create(result.LogPath)
	if err != nil {
		return s.fail(result, started, fmt.Errorf("open log file: %w", err))
	}
	defer logFile.Close()

	logger.Info("encoding",
		"output", outputPath,
		"reason", decision.Reason,
		"segments", len(local.Timeline.Segments),
		"loops", local.Audio.Loops,
		"duration_s", local.Duration(),
	)
	logger.Debug("ffmpeg filter graph", "filter", graph.Filter)

	runOpts := media.RunOptions{
		Dir:    s.Paths.Root,
		Stderr: logFile,
	}
	if s.stderr != nil {
		runOpts.Stderr = io.MultiWriter(logFile, s.stderr)
	}

	if _, err := s.Runner.Run(ctx, s.ffmpegPath, args, runOpts); err != nil {
		_ = os.Remove(outputPath)
		return s.fail(result, started, fmt.Errorf("%w: ffmpeg: %v (see %s)", compose.ErrEncodingFailed, err, result.LogPath))
	}

	s.stateMu.Lock()
	rs, _ = state.Load(s.Paths.StateFile)
	rs.PruneMissing()
	rs.Record(outputPath, state.OutputState{
		PlanID:     plan.ID,
		PlanHash:   planHash,
		ConfigHash: configHash,
		RenderedAt: time.Now().UTC(),
		DurationS:  plan.Duration(),
		Segments:   len(plan.Timeline.Segments),
	})
	saveErr := rs.Save(s.Paths.StateFile)
	s.stateMu.Unlock()
	if saveErr != nil {
		logger.Warn("render state not saved", "error", saveErr)
	}

	logger.Info("encode finished", "output", outputPath, "elapsed", time.Since(started).Round(time.Millisecond))
	s.observe(OutcomeEncoded, started)
	return result, nil
}

func (s *Service) fail(result Result, started time.Time, err error) (Result, error) {
	s.Logger.Error("encode failed", "job_id", result.PlanID, "error", err)
	s.observe(OutcomeFailed, started)
	return result, err
}

func (s *Service) observe(outcome string, started time.Time) {
	if s.Observer != nil {
		s.Observer.EncodeFinished(outcome, time.Since(started))
	}
}

// localize returns a copy of plan whose media references are workspace
// absolute paths.
func (s *Service) localize(plan compose.RenderPlan) compose.RenderPlan {
	out := compose.Emit(plan.ID, plan.Layout, plan.Timeline, plan.Audio, plan.Captions, plan.Warnings)
	for i := range out.Timeline.Segments {
		out.Timeline.Segments[i].SourceRef = s.Paths.Resolve(out.Timeline.Segments[i].SourceRef)
	}
	if out.Audio.Narration != nil {
		out.Audio.Narration.AudioRef = s.Paths.Resolve(out.Audio.Narration.AudioRef)
	}
	return out
}

// outputSlug reduces a plan ID to a file-name-safe token: lowercase ASCII
// letters and digits with single dashes, at most 64 bytes, "plan" when empty.
func outputSlug(id string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(id)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case strings.ContainsRune(" -_.", r) && !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 64 {
		slug = strings.TrimRight(slug[:64], "-")
	}
	if slug == "" {
		return "plan"
	}
	return slug
}

func writePlanJSON(path string, plan compose.RenderPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

func writeSRTFile(path string, blocks []compose.CaptionBlock) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitles: %w", err)
	}
	if err := WriteSRT(f, blocks); err != nil {
		f.Close()
		return fmt.Errorf("write subtitles: %w", err)
	}
	return f.Close()
}
