// Package jobspec defines the wire shape of a composition request and turns
// it into a compose.Job.
package jobspec

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"shorts/internal/compose"
)

// ClipRecord is one clip as described by a request.
type ClipRecord struct {
	Link          string  `json:"link,omitempty" yaml:"link,omitempty"`
	SourceRef     string  `json:"sourceRef,omitempty" yaml:"sourceRef,omitempty"`
	Keyword       string  `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	TrimStart     float64 `json:"trimStart" yaml:"trimStart"`
	TrimEnd       float64 `json:"trimEnd" yaml:"trimEnd"`
	TimelineStart float64 `json:"timelineStart" yaml:"timelineStart"`
}

// Ref returns the media reference for the clip, preferring SourceRef.
func (c ClipRecord) Ref() string {
	if ref := strings.TrimSpace(c.SourceRef); ref != "" {
		return ref
	}
	return strings.TrimSpace(c.Link)
}

// UnmarshalJSON accepts "start"/"end" as aliases for trimStart/trimEnd.
func (c *ClipRecord) UnmarshalJSON(data []byte) error {
	type plain ClipRecord
	var aux struct {
		plain
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = ClipRecord(aux.plain)
	if aux.Start != nil {
		c.TrimStart = *aux.Start
	}
	if aux.End != nil {
		c.TrimEnd = *aux.End
	}
	return nil
}

// Job is a complete composition request. Layout is free text; anything other
// than "shorts" renders landscape.
type Job struct {
	ID          string       `json:"id,omitempty" yaml:"id,omitempty"`
	Clips       []ClipRecord `json:"clips" yaml:"clips"`
	Layout      string       `json:"layout,omitempty" yaml:"layout,omitempty"`
	TTSPath     string       `json:"tts_path,omitempty" yaml:"tts_path,omitempty"`
	TTSDuration float64      `json:"tts_duration,omitempty" yaml:"tts_duration,omitempty"`
	Subtitles   string       `json:"subtitles,omitempty" yaml:"subtitles,omitempty"`
	WordTimings [][]float64  `json:"word_timings,omitempty" yaml:"word_timings,omitempty"`
}

// Validate checks the structural shape of the request. Trim and placement
// rules belong to the compositor and are not repeated here.
func (j Job) Validate() error {
	var errs ValidationErrors

	if len(j.Clips) == 0 {
		errs = append(errs, ValidationError{Field: "clips", Message: "at least one clip is required"})
	}
	for i, clip := range j.Clips {
		if clip.Ref() == "" {
			errs = append(errs, ValidationError{Clip: i + 1, Field: "link", Message: "link or sourceRef is required"})
		}
	}

	if j.TTSDuration < 0 || math.IsNaN(j.TTSDuration) || math.IsInf(j.TTSDuration, 0) {
		errs = append(errs, ValidationError{Field: "tts_duration", Message: "must be a non-negative number"})
	}
	if j.TTSDuration > 0 && strings.TrimSpace(j.TTSPath) == "" {
		errs = append(errs, ValidationError{Field: "tts_duration", Message: "set without tts_path"})
	}

	for i, entry := range j.WordTimings {
		if len(entry) != 2 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("word_timings[%d]", i),
				Message: fmt.Sprintf("expected [start, end], got %d values", len(entry)),
			})
			continue
		}
		finiteValues := true
		for _, v := range entry {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("word_timings[%d]", i),
					Message: "values must be finite",
				})
				finiteValues = false
				break
			}
		}
		if finiteValues && entry[1] < entry[0] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("word_timings[%d]", i),
				Message: fmt.Sprintf("end %v is before start %v", entry[1], entry[0]),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// HasNarration reports whether the request carries a narration track.
func (j Job) HasNarration() bool {
	return strings.TrimSpace(j.TTSPath) != ""
}

// ToCompose converts a validated request into the compositor's job type.
// narrationDuration overrides TTSDuration when positive, which lets callers
// fill in a probed length.
func (j Job) ToCompose(narrationDuration float64) compose.Job {
	job := compose.Job{
		ID:         strings.TrimSpace(j.ID),
		Layout:     compose.ParseLayout(j.Layout),
		Transcript: j.Subtitles,
	}

	job.Clips = make([]compose.RawClip, len(j.Clips))
	for i, clip := range j.Clips {
		job.Clips[i] = compose.RawClip{
			SourceRef:     clip.Ref(),
			Keyword:       strings.TrimSpace(clip.Keyword),
			TrimStart:     clip.TrimStart,
			TrimEnd:       clip.TrimEnd,
			TimelineStart: clip.TimelineStart,
		}
	}

	if j.HasNarration() {
		duration := j.TTSDuration
		if narrationDuration > 0 {
			duration = narrationDuration
		}
		job.Narration = &compose.NarrationTrack{
			AudioRef: strings.TrimSpace(j.TTSPath),
			Duration: duration,
		}
	}

	if len(j.WordTimings) > 0 {
		job.WordTimings = make([]compose.WordTiming, 0, len(j.WordTimings))
		for _, entry := range j.WordTimings {
			if len(entry) != 2 {
				continue
			}
			job.WordTimings = append(job.WordTimings, compose.WordTiming{entry[0], entry[1]})
		}
	}

	return job
}
