// Package pipeline turns job descriptions into render plans and, optionally,
// encoded videos. It is shared by the CLI and the HTTP server.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shorts/internal/compose"
	"shorts/internal/metrics"
	"shorts/internal/paths"
	"shorts/internal/render"
	"shorts/pkg/jobspec"
)

// DurationProber reports the length of a media file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Encoder renders a plan to disk.
type Encoder interface {
	Encode(ctx context.Context, plan compose.RenderPlan, opts render.Options) (render.Result, error)
}

// Pipeline wires the builder to its collaborators.
type Pipeline struct {
	Paths   paths.WorkspacePaths
	Builder *compose.Builder
	Prober  DurationProber
	Encoder Encoder
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Output is the result of running a job.
type Output struct {
	Plan   compose.RenderPlan `json:"plan"`
	Render *render.Result     `json:"render,omitempty"`
}

// Plan validates job, fills in a missing narration duration, and builds the
// render plan.
func (p *Pipeline) Plan(ctx context.Context, job jobspec.Job) (compose.RenderPlan, error) {
	plan, err := p.plan(ctx, job)
	if err != nil {
		p.observeFailure(err)
		return compose.RenderPlan{}, err
	}
	if p.Metrics != nil {
		p.Metrics.ObservePlan(plan)
	}
	return plan, nil
}

// Run plans job and encodes the result.
func (p *Pipeline) Run(ctx context.Context, job jobspec.Job, opts render.Options) (Output, error) {
	plan, err := p.Plan(ctx, job)
	if err != nil {
		return Output{}, err
	}
	if p.Encoder == nil {
		return Output{Plan: plan}, errors.New("pipeline has no encoder")
	}
	res, err := p.Encoder.Encode(ctx, plan, opts)
	if err != nil {
		p.observeFailure(err)
		return Output{Plan: plan}, err
	}
	return Output{Plan: plan, Render: &res}, nil
}

func (p *Pipeline) plan(ctx context.Context, job jobspec.Job) (compose.RenderPlan, error) {
	if p.Builder == nil {
		return compose.RenderPlan{}, errors.New("pipeline has no builder")
	}
	if err := job.Validate(); err != nil {
		return compose.RenderPlan{}, err
	}

	narration, err := p.narrationDuration(ctx, job)
	if err != nil {
		return compose.RenderPlan{}, err
	}

	return p.Builder.Build(ctx, job.ToCompose(narration))
}

func (p *Pipeline) narrationDuration(ctx context.Context, job jobspec.Job) (float64, error) {
	if !job.HasNarration() || job.TTSDuration > 0 {
		return 0, nil
	}
	if p.Prober == nil {
		return 0, fmt.Errorf("%w: tts_duration missing and no prober configured", compose.ErrInvalidNarration)
	}
	path := p.Paths.Resolve(strings.TrimSpace(job.TTSPath))
	d, err := p.Prober.Duration(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: probe %s: %v", compose.ErrInvalidNarration, path, err)
	}
	p.logger().Debug("narration duration probed", "path", path, "duration_s", d)
	return d, nil
}

func (p *Pipeline) observeFailure(err error) {
	if p.Metrics != nil {
		p.Metrics.ObserveFailure(err)
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
