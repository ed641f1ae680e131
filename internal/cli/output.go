package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"shorts/internal/compose"
	"shorts/pkg/jobspec"
)

type errorJSON struct {
	Error errorJSONDetail `json:"error"`
}

type errorJSONDetail struct {
	Kind    compose.ErrorKind         `json:"kind"`
	Message string                    `json:"message"`
	Issues  []jobspec.ValidationError `json:"issues,omitempty"`
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// reportError writes a machine-readable error body when --json is set and
// returns err unchanged so the exit status still reflects the failure.
func reportError(out io.Writer, err error) error {
	if err == nil || !outputJSON {
		return err
	}
	body := errorJSON{Error: errorJSONDetail{Kind: compose.Kind(err), Message: err.Error()}}
	var verrs jobspec.ValidationErrors
	if errors.As(err, &verrs) {
		body.Error.Issues = verrs.Issues()
	}
	_ = writeJSON(out, body)
	return err
}
