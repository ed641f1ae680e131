package state

import "os"

const (
	ActionRender = "render"
	ActionSkip   = "skip"

	ReasonForced        = "forced"
	ReasonNew           = "new output"
	ReasonConfigChanged = "config changed"
	ReasonPlanChanged   = "plan changed"
	ReasonOutputMissing = "output missing"
	ReasonUpToDate      = "up to date"
)

// Decision is the action to take for one output.
type Decision struct {
	Action string
	Reason string
}

// Skip reports whether the encode can be skipped.
func (d Decision) Skip() bool {
	return d.Action == ActionSkip
}

// Detect decides whether outputPath must be re-encoded by comparing the
// current hashes against the stored render state.
func Detect(rs *RenderState, outputPath, planHash, configHash string, force bool) Decision {
	if force {
		return Decision{Action: ActionRender, Reason: ReasonForced}
	}
	if rs == nil {
		return Decision{Action: ActionRender, Reason: ReasonNew}
	}

	prior, exists := rs.Outputs[outputPath]
	if !exists {
		return Decision{Action: ActionRender, Reason: ReasonNew}
	}
	if prior.ConfigHash != configHash {
		return Decision{Action: ActionRender, Reason: ReasonConfigChanged}
	}
	if prior.PlanHash != planHash {
		return Decision{Action: ActionRender, Reason: ReasonPlanChanged}
	}
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return Decision{Action: ActionRender, Reason: ReasonOutputMissing}
	}
	return Decision{Action: ActionSkip, Reason: ReasonUpToDate}
}
