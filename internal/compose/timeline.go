package compose

// RenderSegment is one clip after layout normalization.
type RenderSegment struct {
	SourceRef     string  `json:"source_ref"`
	TrimStart     float64 `json:"trim_start"`
	TrimEnd       float64 `json:"trim_end"`
	TimelineStart float64 `json:"timeline_start"`
	SourceWidth   int     `json:"source_width,omitempty"`
	SourceHeight  int     `json:"source_height,omitempty"`
	Fit
}

// Duration returns the trimmed length of the segment in seconds.
func (s RenderSegment) Duration() float64 {
	return s.TrimEnd - s.TrimStart
}

// Timeline is the concatenation order of segments. Order is the caller's
// placement order; TimelineStart is carried as metadata only, so overlapping
// or identical start times are accepted as-is.
type Timeline struct {
	Segments []RenderSegment `json:"segments"`
}

// BuildTimeline turns validated placements into a timeline without reordering
// them.
func BuildTimeline(placements []ClipPlacement) Timeline {
	segments := make([]RenderSegment, len(placements))
	for i, p := range placements {
		segments[i] = RenderSegment{
			SourceRef:     p.SourceRef,
			TrimStart:     p.TrimStart,
			TrimEnd:       p.TrimEnd,
			TimelineStart: p.TimelineStart,
		}
	}
	return Timeline{Segments: segments}
}

// Duration is the length of the sequentially concatenated segments.
func (t Timeline) Duration() float64 {
	total := 0.0
	for _, seg := range t.Segments {
		total += seg.Duration()
	}
	return total
}

// Len returns the number of segments.
func (t Timeline) Len() int {
	return len(t.Segments)
}

// WithLayout returns a new timeline whose segments carry the fit produced by
// fitFn. The receiver is left untouched.
func (t Timeline) WithLayout(fitFn func(i int, seg RenderSegment) (RenderSegment, error)) (Timeline, error) {
	out := make([]RenderSegment, len(t.Segments))
	for i, seg := range t.Segments {
		fitted, err := fitFn(i, seg)
		if err != nil {
			return Timeline{}, &ClipError{Index: i, Err: err}
		}
		out[i] = fitted
	}
	return Timeline{Segments: out}, nil
}

func (t Timeline) clone() Timeline {
	segments := make([]RenderSegment, len(t.Segments))
	copy(segments, t.Segments)
	return Timeline{Segments: segments}
}
