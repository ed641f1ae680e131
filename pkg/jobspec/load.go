package jobspec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"shorts/internal/compose"
)

// UnmarshalYAML accepts "start"/"end" as aliases for trimStart/trimEnd.
func (c *ClipRecord) UnmarshalYAML(node *yaml.Node) error {
	type plain ClipRecord
	var aux struct {
		Record plain    `yaml:",inline"`
		Start  *float64 `yaml:"start"`
		End    *float64 `yaml:"end"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*c = ClipRecord(aux.Record)
	if aux.Start != nil {
		c.TrimStart = *aux.Start
	}
	if aux.End != nil {
		c.TrimEnd = *aux.End
	}
	return nil
}

// Load reads a job description from disk. Files ending in .json are decoded
// as JSON, .csv and .tsv files as a bare clip list (landscape, no narration),
// and everything else as YAML.
func Load(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Job{}, fmt.Errorf("%w: job file is empty", compose.ErrInvalidJob)
	}

	var job Job
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &job); err != nil {
			return Job{}, fmt.Errorf("%w: parse JSON job: %v", compose.ErrInvalidJob, err)
		}
	case ".csv", ".tsv":
		clips, err := DecodeClipList(data)
		if err != nil {
			return Job{Clips: clips}, err
		}
		job.Clips = clips
	default:
		if err := yaml.Unmarshal(data, &job); err != nil {
			return Job{}, fmt.Errorf("%w: parse YAML job: %v", compose.ErrInvalidJob, err)
		}
	}

	if err := job.Validate(); err != nil {
		return job, err
	}
	return job, nil
}

// Decode reads a JSON job description from r and validates it.
func Decode(r io.Reader) (Job, error) {
	dec := json.NewDecoder(r)
	var job Job
	if err := dec.Decode(&job); err != nil {
		return Job{}, fmt.Errorf("%w: decode job: %v", compose.ErrInvalidJob, err)
	}
	if err := job.Validate(); err != nil {
		return job, err
	}
	return job, nil
}
