package tui

import (
	"fmt"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"shorts/internal/compose"
)

// OutputRowKey is the table row tracking the final encode.
const OutputRowKey = "output"

// Table column headers.
const (
	ColIndex  = "#"
	ColSource = "SOURCE"
	ColTrim   = "TRIM"
	ColSize   = "SIZE"
	ColStatus = "STATUS"
	ColDetail = "DETAIL"
)

// NewClipTable builds a progress model with one row per clip plus an output
// row for the encode.
func NewClipTable(title string, clips []compose.RawClip) ProgressModel {
	m := NewProgressModel(title, []Column{
		{Header: ColIndex, Width: 3},
		{Header: ColSource, Width: 28},
		{Header: ColTrim, Width: 13},
		{Header: ColSize, Width: 9},
		{Header: ColStatus, Width: 9},
		{Header: ColDetail, Width: 36},
	})
	for i, clip := range clips {
		m.AddRow(clipKey(i), []string{
			strconv.Itoa(i + 1),
			displayRef(clip.SourceRef),
			fmt.Sprintf("%s-%s", trimSeconds(clip.TrimStart), trimSeconds(clip.TrimEnd)),
			"-",
			StatusPending,
			"",
		})
	}
	m.AddRow(OutputRowKey, []string{"", "output", "", "", StatusPending, ""})
	return m
}

// Reporter forwards builder and encoder progress to a running program. It
// implements compose.Reporter.
type Reporter struct {
	send func(tea.Msg)
}

// NewReporter wraps a send callback such as tea.Program.Send.
func NewReporter(send func(tea.Msg)) *Reporter {
	return &Reporter{send: send}
}

// ResolveStart implements compose.Reporter.
func (r *Reporter) ResolveStart(index int, _ compose.ClipPlacement) {
	r.send(RowUpdateMsg{
		Key:    clipKey(index),
		Fields: map[string]string{ColStatus: StatusResolving},
	})
}

// ResolveDone implements compose.Reporter.
func (r *Reporter) ResolveDone(index int, src compose.Source, err error) {
	fields := map[string]string{}
	if err != nil {
		fields[ColStatus] = StatusError
		fields[ColDetail] = err.Error()
	} else {
		fields[ColStatus] = StatusResolved
		fields[ColSize] = fmt.Sprintf("%dx%d", src.Width, src.Height)
		fields[ColDetail] = displayRef(src.Path)
	}
	r.send(RowUpdateMsg{Key: clipKey(index), Fields: fields})
}

// EncodeStart marks the output row as encoding.
func (r *Reporter) EncodeStart(plan compose.RenderPlan) {
	r.send(RowUpdateMsg{
		Key: OutputRowKey,
		Fields: map[string]string{
			ColSize:   fmt.Sprintf("%dx%d", plan.Canvas.Width, plan.Canvas.Height),
			ColTrim:   fmt.Sprintf("%ss x%d", trimSeconds(plan.Duration()), plan.Audio.Loops),
			ColStatus: StatusEncoding,
		},
	})
}

// EncodeDone records the encode outcome on the output row.
func (r *Reporter) EncodeDone(outputPath string, skipped bool, err error) {
	fields := map[string]string{ColDetail: displayRef(outputPath)}
	switch {
	case err != nil:
		fields[ColStatus] = StatusError
		fields[ColDetail] = err.Error()
	case skipped:
		fields[ColStatus] = StatusSkipped
	default:
		fields[ColStatus] = StatusEncoded
	}
	r.send(RowUpdateMsg{Key: OutputRowKey, Fields: fields})
}

var _ compose.Reporter = (*Reporter)(nil)

func clipKey(index int) string {
	return "clip:" + strconv.Itoa(index)
}

func displayRef(ref string) string {
	if ref == "" {
		return "-"
	}
	return filepath.Base(ref)
}

func trimSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
