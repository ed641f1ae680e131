package compose

import (
	"errors"
	"fmt"
)

// Job-terminal errors. Any of these aborts plan construction; no partial plan
// is ever emitted.
var (
	ErrInvalidTrim      = errors.New("invalid trim interval")
	ErrInvalidPlacement = errors.New("invalid timeline placement")
	ErrClipUnavailable  = errors.New("clip unavailable")
	ErrEncodingFailed   = errors.New("encoding failed")

	ErrInvalidJob       = errors.New("invalid job")
	ErrNoClips          = errors.New("no clips provided")
	ErrInvalidSource    = errors.New("invalid source dimensions")
	ErrEmptyTimeline    = errors.New("timeline has no duration")
	ErrInvalidNarration = errors.New("invalid narration duration")
)

// ErrorKind is the stable, machine-readable classification of a job failure.
type ErrorKind string

const (
	KindInvalidTrim      ErrorKind = "invalid_trim"
	KindInvalidPlacement ErrorKind = "invalid_placement"
	KindClipUnavailable  ErrorKind = "clip_unavailable"
	KindEncodingFailed   ErrorKind = "encoding_failed"
	KindInvalidJob       ErrorKind = "invalid_job"
	KindInternal         ErrorKind = "internal"
)

// Kind classifies err by walking its wrap chain.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTrim):
		return KindInvalidTrim
	case errors.Is(err, ErrInvalidPlacement):
		return KindInvalidPlacement
	case errors.Is(err, ErrClipUnavailable):
		return KindClipUnavailable
	case errors.Is(err, ErrEncodingFailed):
		return KindEncodingFailed
	case errors.Is(err, ErrInvalidJob),
		errors.Is(err, ErrNoClips),
		errors.Is(err, ErrInvalidSource),
		errors.Is(err, ErrEmptyTimeline),
		errors.Is(err, ErrInvalidNarration):
		return KindInvalidJob
	default:
		return KindInternal
	}
}

// ClipError ties a failure to the 0-based position of the clip in the job.
type ClipError struct {
	Index int
	Err   error
}

func (e *ClipError) Error() string {
	return fmt.Sprintf("clip %d: %v", e.Index+1, e.Err)
}

func (e *ClipError) Unwrap() error {
	return e.Err
}

// WarningKind names a degraded-but-successful condition.
type WarningKind string

// WarnCaptionDataDegraded is raised when word timings are missing or shorter
// than the transcript and caption times fell back to defaults.
const WarnCaptionDataDegraded WarningKind = "caption_data_degraded"

// Warning is a non-fatal signal carried alongside a plan.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}
