package jobspec

import (
	"strconv"
	"strings"

	"shorts/internal/compose"
)

// ValidationError captures a single field-level problem in a job description.
type ValidationError struct {
	Clip    int    `json:"clip,omitempty"` // 1-based clip position; 0 for job-level fields
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	parts := []string{formatClip(e.Clip)}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ValidationErrors aggregates multiple validation issues.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Is lets callers classify validation failures as compose.ErrInvalidJob.
func (errs ValidationErrors) Is(target error) bool {
	return target == compose.ErrInvalidJob
}

// Issues returns a copy of the underlying validation errors.
func (errs ValidationErrors) Issues() []ValidationError {
	return append([]ValidationError(nil), errs...)
}

func formatClip(clip int) string {
	if clip <= 0 {
		return "job"
	}
	return "clip " + strconv.Itoa(clip)
}
