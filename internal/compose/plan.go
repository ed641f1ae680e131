package compose

// RenderPlan is the immutable description of a composition job handed to the
// encoder. It is the only artifact the compositor produces.
type RenderPlan struct {
	ID       string         `json:"id"`
	Layout   Layout         `json:"layout"`
	Canvas   Canvas         `json:"canvas"`
	Timeline Timeline       `json:"timeline"`
	Audio    AudioDirective `json:"audio"`
	Captions []CaptionBlock `json:"captions,omitempty"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

// Emit assembles a plan from the outputs of the earlier stages. Slices are
// copied so later changes to the inputs cannot leak into the plan.
func Emit(id string, layout Layout, timeline Timeline, audio AudioDirective, captions []CaptionBlock, warnings []Warning) RenderPlan {
	plan := RenderPlan{
		ID:       id,
		Layout:   layout,
		Canvas:   layout.Canvas(),
		Timeline: timeline.clone(),
		Audio:    audio,
	}
	if audio.Narration != nil {
		track := *audio.Narration
		plan.Audio.Narration = &track
	}
	if len(captions) > 0 {
		plan.Captions = append([]CaptionBlock(nil), captions...)
	}
	if len(warnings) > 0 {
		plan.Warnings = append([]Warning(nil), warnings...)
	}
	return plan
}

// Duration returns the length of the encoded output, loops included.
func (p RenderPlan) Duration() float64 {
	return p.Audio.OutputDuration
}

// Degraded reports whether any warning was raised while building the plan.
func (p RenderPlan) Degraded() bool {
	return len(p.Warnings) > 0
}
