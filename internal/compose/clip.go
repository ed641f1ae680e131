package compose

import (
	"fmt"
	"math"
)

// RawClip is an unvalidated clip description as received from a job.
type RawClip struct {
	SourceRef     string
	Keyword       string
	TrimStart     float64
	TrimEnd       float64
	TimelineStart float64
}

// ClipPlacement is a validated source segment positioned on the timeline.
// SourceRef is owned by the caller; the compositor never fetches it.
type ClipPlacement struct {
	SourceRef     string  `json:"source_ref"`
	Keyword       string  `json:"keyword,omitempty"`
	TrimStart     float64 `json:"trim_start"`
	TrimEnd       float64 `json:"trim_end"`
	TimelineStart float64 `json:"timeline_start"`
}

// Duration returns the trimmed length of the clip in seconds.
func (c ClipPlacement) Duration() float64 {
	return c.TrimEnd - c.TrimStart
}

// Normalize validates one clip and returns its placement.
func Normalize(raw RawClip) (ClipPlacement, error) {
	if !finite(raw.TrimStart) || !finite(raw.TrimEnd) {
		return ClipPlacement{}, fmt.Errorf("%w: trim values must be finite", ErrInvalidTrim)
	}
	if raw.TrimStart < 0 || raw.TrimEnd < 0 {
		return ClipPlacement{}, fmt.Errorf("%w: start=%s end=%s must not be negative",
			ErrInvalidTrim, formatSeconds(raw.TrimStart), formatSeconds(raw.TrimEnd))
	}
	if raw.TrimStart >= raw.TrimEnd {
		return ClipPlacement{}, fmt.Errorf("%w: start=%s must be before end=%s",
			ErrInvalidTrim, formatSeconds(raw.TrimStart), formatSeconds(raw.TrimEnd))
	}
	if !finite(raw.TimelineStart) || raw.TimelineStart < 0 {
		return ClipPlacement{}, fmt.Errorf("%w: timelineStart=%s must be a non-negative number",
			ErrInvalidPlacement, formatSeconds(raw.TimelineStart))
	}

	return ClipPlacement{
		SourceRef:     raw.SourceRef,
		Keyword:       raw.Keyword,
		TrimStart:     raw.TrimStart,
		TrimEnd:       raw.TrimEnd,
		TimelineStart: raw.TimelineStart,
	}, nil
}

// NormalizeAll validates every clip, failing on the first invalid one.
func NormalizeAll(raws []RawClip) ([]ClipPlacement, error) {
	if len(raws) == 0 {
		return nil, ErrNoClips
	}
	out := make([]ClipPlacement, 0, len(raws))
	for i, raw := range raws {
		placement, err := Normalize(raw)
		if err != nil {
			return nil, &ClipError{Index: i, Err: err}
		}
		out = append(out, placement)
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%gs", v)
}
