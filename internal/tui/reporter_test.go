package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"shorts/internal/compose"
)

func TestClipTableRows(t *testing.T) {
	m := NewClipTable("render", []compose.RawClip{
		{SourceRef: "/clips/intro.mp4", TrimStart: 0, TrimEnd: 4},
		{SourceRef: "https://cdn.example.com/b.mp4", TrimStart: 1.5, TrimEnd: 3},
	})
	if len(m.rows) != 3 {
		t.Fatalf("rows = %d, want 2 clips plus output", len(m.rows))
	}
	if got := m.rows[0].Fields[1]; got != "intro.mp4" {
		t.Errorf("source = %q, want intro.mp4", got)
	}
	if got := m.rows[1].Fields[2]; got != "1.5-3" {
		t.Errorf("trim = %q, want 1.5-3", got)
	}
	if got := m.rows[2].Key; got != OutputRowKey {
		t.Errorf("last row key = %q, want %q", got, OutputRowKey)
	}
}

func TestReporterUpdatesRows(t *testing.T) {
	m := NewClipTable("render", []compose.RawClip{
		{SourceRef: "a.mp4", TrimEnd: 2},
		{SourceRef: "b.mp4", TrimEnd: 2},
	})
	var msgs []tea.Msg
	r := NewReporter(func(msg tea.Msg) { msgs = append(msgs, msg) })

	r.ResolveStart(0, compose.ClipPlacement{})
	r.ResolveDone(0, compose.Source{Path: "/abs/a.mp4", Width: 1920, Height: 1080}, nil)
	r.ResolveStart(1, compose.ClipPlacement{})
	r.ResolveDone(1, compose.Source{}, errors.New("missing file"))
	r.EncodeStart(compose.RenderPlan{Canvas: compose.Canvas{Width: 720, Height: 1280}})
	r.EncodeDone("/out/final.mp4", true, nil)

	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(ProgressModel)
	}

	if got := m.rows[0].Fields[3]; got != "1920x1080" {
		t.Errorf("size = %q, want 1920x1080", got)
	}
	if got := m.rows[0].Fields[4]; got != StatusResolved {
		t.Errorf("clip 0 status = %q, want %q", got, StatusResolved)
	}
	if got := m.rows[1].Fields[4]; got != StatusError {
		t.Errorf("clip 1 status = %q, want %q", got, StatusError)
	}
	if got := m.rows[1].Fields[5]; !strings.Contains(got, "missing file") {
		t.Errorf("clip 1 detail = %q, want error text", got)
	}
	if got := m.rows[2].Fields[4]; got != StatusSkipped {
		t.Errorf("output status = %q, want %q", got, StatusSkipped)
	}
	if got := m.rows[2].Fields[3]; got != "720x1280" {
		t.Errorf("output size = %q, want 720x1280", got)
	}

	processed, total := m.progressCounts()
	if processed != 3 || total != 3 {
		t.Errorf("progress = %d/%d, want 3/3", processed, total)
	}
}

func TestReporterEncodeFailure(t *testing.T) {
	var last RowUpdateMsg
	r := NewReporter(func(msg tea.Msg) { last = msg.(RowUpdateMsg) })

	r.EncodeDone("/out/final.mp4", false, compose.ErrEncodingFailed)
	if last.Key != OutputRowKey || last.Fields[ColStatus] != StatusError {
		t.Fatalf("unexpected update %+v", last)
	}
}
