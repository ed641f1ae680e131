package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"shorts/internal/pipeline"
	"shorts/internal/render"
	"shorts/internal/tui"
	"shorts/pkg/jobspec"
)

var (
	renderForce  bool
	renderOutput string
	renderLayout string
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <job-file>",
		Short: "Build the render plan for a job and encode it with ffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}

	cmd.Flags().BoolVar(&renderForce, "force", false, "Re-encode even if the plan is unchanged and the output exists")
	cmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default: <outputs>/final_<id>.mp4)")
	cmd.Flags().StringVar(&renderLayout, "layout", "", "Override the job layout (landscape or shorts)")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	mode := tui.DetectMode(out, noProgress, outputJSON)

	ws, err := loadWorkspace(consoleFor(cmd, mode))
	if err != nil {
		return reportError(out, err)
	}
	defer ws.Close()

	job, err := loadJob(args[0], renderLayout)
	if err != nil {
		return reportError(out, err)
	}

	cache, err := ws.openCache()
	if err != nil {
		return reportError(out, err)
	}
	defer closeCache(cache)

	p, err := ws.newPipeline(cache, nil, true)
	if err != nil {
		return reportError(out, err)
	}

	opts := render.Options{Force: renderForce}
	if renderOutput != "" {
		opts.OutputPath = ws.paths.Resolve(renderOutput)
	}

	if mode == tui.ModeTUI {
		return renderInteractive(ctx, out, p, job, opts, filepath.Base(args[0]))
	}

	result, err := p.Run(ctx, job, opts)
	if err != nil {
		return reportError(out, err)
	}
	if outputJSON {
		return writeJSON(out, result)
	}
	writeRenderSummary(out, result.Render)
	return nil
}

func renderInteractive(ctx context.Context, out io.Writer, p *pipeline.Pipeline, job jobspec.Job, opts render.Options, title string) error {
	model := tui.NewClipTable("Rendering "+title, job.ToCompose(0).Clips)

	var result render.Result
	err := tui.RunWithWork(out, model, func(send func(tea.Msg)) error {
		reporter := tui.NewReporter(send)
		p.Builder.Reporter = reporter

		plan, err := p.Plan(ctx, job)
		if err != nil {
			return err
		}
		reporter.EncodeStart(plan)
		result, err = p.Encoder.Encode(ctx, plan, opts)
		reporter.EncodeDone(result.OutputPath, result.Skipped, err)
		return err
	})
	if err != nil {
		return err
	}
	writeRenderSummary(out, &result)
	return nil
}

func writeRenderSummary(out io.Writer, res *render.Result) {
	if res == nil {
		return
	}
	if res.Skipped {
		fmt.Fprintf(out, "skipped %s → %s (%s)\n", res.PlanID, res.OutputPath, res.Reason)
		return
	}
	fmt.Fprintf(out, "encoded %s → %s (%.2fs, %s)\n", res.PlanID, res.OutputPath, res.DurationS, res.Reason)
	if res.SubtitlePath != "" {
		fmt.Fprintf(out, "subtitles → %s\n", res.SubtitlePath)
	}
}
