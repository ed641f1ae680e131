package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"shorts/internal/compose"
	"shorts/internal/config"
)

// encodingInput is the canonical structure hashed for config changes that
// affect encoded output.
type encodingInput struct {
	Video    config.VideoConfig    `json:"video"`
	Audio    config.AudioConfig    `json:"audio"`
	Captions config.CaptionsConfig `json:"captions"`
}

// planInput is the canonical structure hashed for plan changes. The plan ID
// is left out since it already names the output.
type planInput struct {
	Layout   compose.Layout         `json:"layout"`
	Canvas   compose.Canvas         `json:"canvas"`
	Timeline compose.Timeline       `json:"timeline"`
	Audio    compose.AudioDirective `json:"audio"`
	Captions []compose.CaptionBlock `json:"captions"`
}

// ConfigHash returns a deterministic hash of the video, audio, and caption
// configuration sections.
func ConfigHash(cfg config.Config) string {
	return hashJSON(encodingInput{
		Video:    cfg.Video,
		Audio:    cfg.Audio,
		Captions: cfg.Captions,
	})
}

// PlanHash returns a deterministic hash of everything in a plan that shapes
// the encoded video.
func PlanHash(plan compose.RenderPlan) string {
	return hashJSON(planInput{
		Layout:   plan.Layout,
		Canvas:   plan.Canvas,
		Timeline: plan.Timeline,
		Audio:    plan.Audio,
		Captions: plan.Captions,
	})
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Should never happen with known struct types.
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}
