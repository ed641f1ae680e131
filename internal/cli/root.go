package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shorts/internal/compose"
)

var (
	workspaceDir string
	outputJSON   bool
	noProgress   bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describeError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shorts",
		Short:         "Compose clips, narration, and captions into short-form videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&workspaceDir, "workspace", "", "Path to workspace directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Disable interactive progress output")

	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newTimingsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// describeError prefixes compositor failures with their kind.
func describeError(err error) string {
	kind := compose.Kind(err)
	if kind == compose.KindInternal {
		return err.Error()
	}
	return fmt.Sprintf("[%s] %v", kind, err)
}
