package compose

import (
	"errors"
	"testing"
)

func TestBuildTimelinePreservesCallerOrder(t *testing.T) {
	placements := []ClipPlacement{
		{SourceRef: "late.mp4", TrimStart: 0, TrimEnd: 4, TimelineStart: 20},
		{SourceRef: "early.mp4", TrimStart: 2, TrimEnd: 5, TimelineStart: 0},
		{SourceRef: "same.mp4", TrimStart: 1, TrimEnd: 2, TimelineStart: 0},
	}

	timeline := BuildTimeline(placements)
	if timeline.Len() != len(placements) {
		t.Fatalf("expected %d segments, got %d", len(placements), timeline.Len())
	}
	for i, seg := range timeline.Segments {
		if seg.SourceRef != placements[i].SourceRef {
			t.Fatalf("segment %d = %q, want %q", i, seg.SourceRef, placements[i].SourceRef)
		}
		if seg.TimelineStart != placements[i].TimelineStart {
			t.Fatalf("segment %d timelineStart = %v, want %v", i, seg.TimelineStart, placements[i].TimelineStart)
		}
	}
	if got := timeline.Duration(); got != 8 {
		t.Fatalf("Duration() = %v, want 8", got)
	}
}

func TestTimelineWithLayoutDoesNotMutate(t *testing.T) {
	base := BuildTimeline([]ClipPlacement{
		{SourceRef: "a.mp4", TrimStart: 0, TrimEnd: 1},
		{SourceRef: "b.mp4", TrimStart: 0, TrimEnd: 1},
	})

	fitted, err := base.WithLayout(func(i int, seg RenderSegment) (RenderSegment, error) {
		seg.Fit = Fit{Scale: 1, ScaledWidth: 1280, ScaledHeight: 720}
		return seg, nil
	})
	if err != nil {
		t.Fatalf("WithLayout error: %v", err)
	}
	if fitted.Segments[0].ScaledWidth != 1280 {
		t.Fatalf("expected fitted segment, got %+v", fitted.Segments[0])
	}
	if base.Segments[0].ScaledWidth != 0 {
		t.Fatalf("WithLayout mutated its receiver: %+v", base.Segments[0])
	}
}

func TestTimelineWithLayoutReportsIndex(t *testing.T) {
	base := BuildTimeline([]ClipPlacement{
		{SourceRef: "a.mp4", TrimStart: 0, TrimEnd: 1},
		{SourceRef: "b.mp4", TrimStart: 0, TrimEnd: 1},
	})

	_, err := base.WithLayout(func(i int, seg RenderSegment) (RenderSegment, error) {
		if i == 1 {
			return seg, ErrClipUnavailable
		}
		return seg, nil
	})
	var clipErr *ClipError
	if !errors.As(err, &clipErr) || clipErr.Index != 1 {
		t.Fatalf("expected ClipError for index 1, got %v", err)
	}
}
