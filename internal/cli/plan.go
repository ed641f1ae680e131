package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shorts/internal/tui"
	"shorts/pkg/jobspec"
)

var planLayout string

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <job-file>",
		Short: "Build the render plan for a job and print it as JSON",
		Long:  "Build the render plan for a job file (.yaml, .json, or a .csv/.tsv clip list) and print it as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}
	cmd.Flags().StringVar(&planLayout, "layout", "", "Override the job layout (landscape or shorts)")
	return cmd
}

// loadJob reads a job file and applies a --layout override.
func loadJob(path, layout string) (jobspec.Job, error) {
	job, err := jobspec.Load(path)
	if err != nil {
		return job, err
	}
	if layout != "" {
		job.Layout = layout
	}
	return job, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	mode := tui.DetectMode(cmd.ErrOrStderr(), noProgress, outputJSON)

	ws, err := loadWorkspace(consoleFor(cmd, mode))
	if err != nil {
		return reportError(out, err)
	}
	defer ws.Close()

	job, err := loadJob(args[0], planLayout)
	if err != nil {
		return reportError(out, err)
	}

	cache, err := ws.openCache()
	if err != nil {
		return reportError(out, err)
	}
	defer closeCache(cache)

	p, err := ws.newPipeline(cache, nil, false)
	if err != nil {
		return reportError(out, err)
	}

	var status *tui.StatusWriter
	if mode == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr())
		status.Update("Building plan for " + args[0])
	}
	plan, err := p.Plan(ctx, job)
	if err != nil {
		if status != nil {
			status.Stop()
		}
		return reportError(out, err)
	}
	if status != nil {
		status.Finish(fmt.Sprintf("plan %s: %d segments, %.2fs, %s audio", plan.ID, len(plan.Timeline.Segments), plan.Duration(), plan.Audio.Mode))
	}
	return writeJSON(out, plan)
}
