// Package narration derives word timings for a narration track when the
// speech service does not report them.
package narration

import (
	"errors"
	"math"
	"strings"

	"shorts/internal/compose"
)

// ErrInvalidDuration is returned for non-positive or non-finite durations.
var ErrInvalidDuration = errors.New("narration duration must be a positive number")

// EqualShare splits duration evenly across the whitespace-separated words of
// text. Word i spans [i*d, (i+1)*d) with d = duration/len(words). A blank text
// yields no timings.
func EqualShare(text string, duration float64) ([]compose.WordTiming, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, ErrInvalidDuration
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	per := duration / float64(len(words))
	timings := make([]compose.WordTiming, len(words))
	for i := range words {
		start := float64(i) * per
		end := start + per
		if i == len(words)-1 {
			end = duration
		}
		timings[i] = compose.WordTiming{start, end}
	}
	return timings, nil
}

// Pairs converts timings into the [[start, end], ...] shape used on the wire.
func Pairs(timings []compose.WordTiming) [][]float64 {
	out := make([][]float64, len(timings))
	for i, t := range timings {
		out[i] = []float64{t.Start(), t.End()}
	}
	return out
}
