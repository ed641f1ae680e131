package compose

import (
	"fmt"
	"strings"
)

const (
	// BlockWords is the maximum number of words shown in one caption block.
	BlockWords = 9
	// FallbackCaptionDuration is used when a block's end has no timing entry.
	FallbackCaptionDuration = 2.0
	captionTerminator       = "."
)

// WordTiming is the [start, end] pair, in seconds, for one transcript word.
type WordTiming [2]float64

// Start returns the first element of the pair.
func (w WordTiming) Start() float64 { return w[0] }

// End returns the second element of the pair.
func (w WordTiming) End() float64 { return w[1] }

// CaptionBlock is a group of consecutive transcript words shown together.
type CaptionBlock struct {
	Text     string  `json:"text"`
	StartSec float64 `json:"start"`
	EndSec   float64 `json:"end"`
}

// ScheduleCaptions splits transcript into blocks of up to BlockWords words and
// times each block from timings, which is index-aligned to the words. A block
// whose first word has no timing starts where the last timed word ends, not at
// 0; with no timings at all it starts at 0. A block whose last word has no
// timing ends FallbackCaptionDuration after its start. Either fallback yields a caption_data_degraded warning alongside the
// blocks, as does any block whose timings give it no visible duration.
func ScheduleCaptions(transcript string, timings []WordTiming) ([]CaptionBlock, []Warning) {
	words := strings.Fields(transcript)
	if len(words) == 0 {
		return nil, nil
	}

	blocks := make([]CaptionBlock, 0, (len(words)+BlockWords-1)/BlockWords)
	for lo := 0; lo < len(words); lo += BlockWords {
		hi := lo + BlockWords - 1
		if hi >= len(words) {
			hi = len(words) - 1
		}

		start := 0.0
		switch {
		case lo < len(timings):
			start = timings[lo].Start()
		case len(timings) > 0:
			start = timings[len(timings)-1].End()
		}
		end := start + FallbackCaptionDuration
		if hi < len(timings) {
			end = timings[hi].End()
		}

		text := strings.Join(words[lo:hi+1], " ")
		if !strings.HasSuffix(text, captionTerminator) {
			text += captionTerminator
		}

		blocks = append(blocks, CaptionBlock{Text: text, StartSec: start, EndSec: end})
	}

	var warnings []Warning
	if len(timings) < len(words) {
		warnings = append(warnings, Warning{
			Kind:    WarnCaptionDataDegraded,
			Message: fmt.Sprintf("%d word timings for %d words; fallback caption times used", len(timings), len(words)),
		})
	}

	var empty []int
	for i, b := range blocks {
		if b.EndSec <= b.StartSec {
			empty = append(empty, i+1)
		}
	}
	if len(empty) > 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnCaptionDataDegraded,
			Message: fmt.Sprintf("caption blocks %v end at or before their start and will not be drawn", empty),
		})
	}
	return blocks, warnings
}
