package compose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// trimTolerance absorbs container duration rounding when checking a trim end
// against the probed source length.
const trimTolerance = 0.05

// Job is a fully parsed composition request.
type Job struct {
	ID          string
	Layout      Layout
	Clips       []RawClip
	Narration   *NarrationTrack
	Transcript  string
	WordTimings []WordTiming
}

// Source is the resolved, locally available media behind a clip.
type Source struct {
	Path     string
	Width    int
	Height   int
	Duration float64
}

// SourceResolver turns a clip's SourceRef into local media with known
// geometry. Implementations return an error when the reference cannot be
// resolved; the builder reports it as ErrClipUnavailable.
type SourceResolver interface {
	Resolve(ctx context.Context, clip ClipPlacement) (Source, error)
}

// Reporter receives per-clip notifications while sources are resolved.
type Reporter interface {
	ResolveStart(index int, clip ClipPlacement)
	ResolveDone(index int, src Source, err error)
}

// Builder runs the composition stages for a job in dependency order.
type Builder struct {
	Resolver SourceResolver
	Logger   *slog.Logger
	Reporter Reporter
}

// NewBuilder prepares a builder around the given resolver.
func NewBuilder(resolver SourceResolver, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Resolver: resolver, Logger: logger}
}

// Build validates the job and produces its render plan. Any validation or
// resolution failure aborts the job without a partial plan; degraded caption
// data is logged and carried as plan warnings.
func (b *Builder) Build(ctx context.Context, job Job) (RenderPlan, error) {
	if b == nil || b.Resolver == nil {
		return RenderPlan{}, fmt.Errorf("builder has no source resolver")
	}
	logger := b.logger()

	id := job.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger = logger.With("job_id", id)

	placements, err := NormalizeAll(job.Clips)
	if err != nil {
		logger.Error("clip validation failed", "error", err)
		return RenderPlan{}, err
	}

	layout := ParseLayout(string(job.Layout))
	timeline := BuildTimeline(placements)
	canvas := layout.Canvas()

	timeline, err = timeline.WithLayout(func(i int, seg RenderSegment) (RenderSegment, error) {
		return b.fitSegment(ctx, i, placements[i], seg, canvas)
	})
	if err != nil {
		logger.Error("clip layout failed", "error", err)
		return RenderPlan{}, err
	}
	logger.Debug("timeline built",
		"segments", timeline.Len(),
		"duration_s", timeline.Duration(),
		"layout", string(layout),
	)

	audio, err := Align(timeline.Duration(), job.Narration)
	if err != nil {
		logger.Error("audio alignment failed", "error", err)
		return RenderPlan{}, err
	}
	if audio.Mode == AudioLoopToFill {
		logger.Info("timeline looped to cover narration",
			"loops", audio.Loops,
			"narration_s", audio.Narration.Duration,
			"output_s", audio.OutputDuration,
		)
	}

	var (
		captions []CaptionBlock
		warnings []Warning
	)
	if job.Transcript != "" {
		captions, warnings = ScheduleCaptions(job.Transcript, job.WordTimings)
		for _, w := range warnings {
			logger.Warn("caption data degraded", "kind", string(w.Kind), "detail", w.Message)
		}
	}

	plan := Emit(id, layout, timeline, audio, captions, warnings)
	logger.Info("render plan ready",
		"segments", plan.Timeline.Len(),
		"captions", len(plan.Captions),
		"audio", string(plan.Audio.Mode),
		"duration_s", plan.Duration(),
	)
	return plan, nil
}

func (b *Builder) fitSegment(ctx context.Context, i int, clip ClipPlacement, seg RenderSegment, canvas Canvas) (RenderSegment, error) {
	if b.Reporter != nil {
		b.Reporter.ResolveStart(i, clip)
	}
	src, err := b.Resolver.Resolve(ctx, clip)
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrClipUnavailable, clip.SourceRef, err)
	} else if src.Duration > 0 && clip.TrimEnd > src.Duration+trimTolerance {
		err = fmt.Errorf("%w: end=%s exceeds source duration %s",
			ErrInvalidTrim, formatSeconds(clip.TrimEnd), formatSeconds(src.Duration))
	}
	if b.Reporter != nil {
		b.Reporter.ResolveDone(i, src, err)
	}
	if err != nil {
		return RenderSegment{}, err
	}

	fit, err := FitCanvas(src.Width, src.Height, canvas)
	if err != nil {
		return RenderSegment{}, err
	}

	if src.Path != "" {
		seg.SourceRef = src.Path
	}
	seg.SourceWidth = src.Width
	seg.SourceHeight = src.Height
	seg.Fit = fit
	return seg, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
