package render

import (
	"context"
	"os"
	"sync"

	"shorts/internal/compose"
	"shorts/internal/media"
)

func testPlan(t interface{ Fatalf(string, ...any) }, layout compose.Layout, narration *compose.NarrationTrack, captions []compose.CaptionBlock, sources ...compose.Source) compose.RenderPlan {
	placements := make([]compose.ClipPlacement, len(sources))
	for i, src := range sources {
		placements[i] = compose.ClipPlacement{SourceRef: src.Path, TrimStart: 0, TrimEnd: src.Duration}
	}
	timeline := compose.BuildTimeline(placements)
	canvas := layout.Canvas()
	timeline, err := timeline.WithLayout(func(i int, seg compose.RenderSegment) (compose.RenderSegment, error) {
		fit, err := compose.FitCanvas(sources[i].Width, sources[i].Height, canvas)
		if err != nil {
			return seg, err
		}
		seg.Fit = fit
		seg.SourceWidth, seg.SourceHeight = sources[i].Width, sources[i].Height
		return seg, nil
	})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	audio, err := compose.Align(timeline.Duration(), narration)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	return compose.Emit("job-1", layout, timeline, audio, captions, nil)
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	err     error
	command string
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts media.RunOptions) (media.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.command = command
	f.calls = append(f.calls, append([]string(nil), args...))
	if f.err != nil {
		if opts.Stderr != nil {
			_, _ = opts.Stderr.Write([]byte("Conversion failed!\n"))
		}
		return media.RunResult{}, f.err
	}
	if len(args) > 0 {
		_ = os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
	}
	return media.RunResult{}, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
