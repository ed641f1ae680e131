package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// OutputState tracks the inputs that produced one encoded output.
type OutputState struct {
	PlanID     string    `json:"plan_id"`
	PlanHash   string    `json:"plan_hash"`
	ConfigHash string    `json:"config_hash"`
	RenderedAt time.Time `json:"rendered_at"`
	DurationS  float64   `json:"duration_s"`
	Segments   int       `json:"segments"`
}

// RenderState tracks encoded outputs for change detection, keyed by output
// path.
type RenderState struct {
	Outputs map[string]OutputState `json:"outputs"`
}

// Load reads render state from the given path. A missing or corrupt file
// returns an empty state without error.
func Load(path string) (*RenderState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return emptyState(), nil
	}

	var rs RenderState
	if err := json.Unmarshal(data, &rs); err != nil {
		return emptyState(), nil
	}

	if rs.Outputs == nil {
		rs.Outputs = map[string]OutputState{}
	}
	return &rs, nil
}

// Save writes the render state atomically to the given path.
func (rs *RenderState) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Record stores the state for outputPath.
func (rs *RenderState) Record(outputPath string, st OutputState) {
	if rs.Outputs == nil {
		rs.Outputs = map[string]OutputState{}
	}
	rs.Outputs[outputPath] = st
}

// PruneMissing drops entries whose output file no longer exists.
func (rs *RenderState) PruneMissing() int {
	removed := 0
	for key := range rs.Outputs {
		if _, err := os.Stat(key); os.IsNotExist(err) {
			delete(rs.Outputs, key)
			removed++
		}
	}
	return removed
}

func emptyState() *RenderState {
	return &RenderState{
		Outputs: map[string]OutputState{},
	}
}
