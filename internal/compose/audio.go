package compose

import (
	"fmt"
	"math"
)

// MaxLoops bounds how many times the timeline may repeat to cover narration.
const MaxLoops = 1000

// NarrationTrack is the synthesized voice-over attached to a job.
type NarrationTrack struct {
	AudioRef string  `json:"audio_ref"`
	Duration float64 `json:"duration"`
}

// AudioMode describes how narration is combined with the composed video.
type AudioMode string

const (
	// AudioNone leaves the output silent.
	AudioNone AudioMode = "none"
	// AudioReplace plays narration once from t=0; any video past its end is
	// silent.
	AudioReplace AudioMode = "replace"
	// AudioLoopToFill repeats the timeline in order until it covers the
	// narration, which then plays once as the only audio track.
	AudioLoopToFill AudioMode = "loop_to_fill"
)

// AudioDirective is the reconciled audio/video duration decision for a job.
type AudioDirective struct {
	Mode           AudioMode       `json:"mode"`
	Narration      *NarrationTrack `json:"narration,omitempty"`
	VideoDuration  float64         `json:"video_duration"`
	Loops          int             `json:"loops"`
	OutputDuration float64         `json:"output_duration"`
}

// Align reconciles the timeline duration against the narration. The video is
// never trimmed and the narration is never truncated.
func Align(videoDuration float64, narration *NarrationTrack) (AudioDirective, error) {
	directive := AudioDirective{
		Mode:           AudioNone,
		VideoDuration:  videoDuration,
		Loops:          1,
		OutputDuration: videoDuration,
	}
	if narration == nil {
		return directive, nil
	}
	if !finite(narration.Duration) || narration.Duration < 0 {
		return AudioDirective{}, fmt.Errorf("%w: %v", ErrInvalidNarration, narration.Duration)
	}
	if !finite(videoDuration) || videoDuration <= 0 {
		return AudioDirective{}, fmt.Errorf("%w: video duration %v", ErrEmptyTimeline, videoDuration)
	}

	track := *narration
	directive.Narration = &track

	if track.Duration <= videoDuration {
		directive.Mode = AudioReplace
		return directive, nil
	}

	loops, ok := loopCount(videoDuration, track.Duration)
	if !ok {
		return AudioDirective{}, fmt.Errorf("%w: %vs of narration needs more than %d loops of a %vs timeline",
			ErrInvalidNarration, track.Duration, MaxLoops, videoDuration)
	}
	directive.Mode = AudioLoopToFill
	directive.Loops = loops
	directive.OutputDuration = float64(loops) * videoDuration
	return directive, nil
}

// loopCount returns the smallest n with n*video >= narration. It reports
// false when n would exceed MaxLoops.
func loopCount(video, narration float64) (int, bool) {
	ratio := math.Ceil(narration / video)
	if !finite(ratio) || ratio > MaxLoops+1 {
		return 0, false
	}
	n := int(ratio)
	if n < 1 {
		n = 1
	}
	for n > 1 && float64(n-1)*video >= narration {
		n--
	}
	for float64(n)*video < narration {
		n++
	}
	if n > MaxLoops {
		return 0, false
	}
	return n, true
}
