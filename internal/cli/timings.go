package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shorts/internal/narration"
)

var (
	timingsText     string
	timingsDuration float64
)

func newTimingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timings",
		Short: "Generate equal-share word timings for a narration transcript",
		RunE:  runTimings,
	}

	cmd.Flags().StringVar(&timingsText, "text", "", "Narration transcript")
	cmd.Flags().Float64Var(&timingsDuration, "duration", 0, "Narration length in seconds")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

func runTimings(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	timings, err := narration.EqualShare(timingsText, timingsDuration)
	if err != nil {
		return reportError(out, err)
	}

	if outputJSON {
		return writeJSON(out, struct {
			WordTimings [][]float64 `json:"word_timings"`
		}{WordTimings: narration.Pairs(timings)})
	}

	words := strings.Fields(timingsText)
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tSTART\tEND")
	for i, t := range timings {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\n", words[i], t.Start(), t.End())
	}
	return tw.Flush()
}
