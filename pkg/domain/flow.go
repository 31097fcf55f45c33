package domain

import (
	"encoding/json"
	"fmt"
)

// Mode is the top-level dialogue flow.
type Mode string

const (
	ModeInitial   Mode = "initial"
	ModeApply     Mode = "apply"
	ModeEstimate  Mode = "estimate"
	ModeDocuments Mode = "documents"
)

// ApplyStep is the cursor inside the apply flow. It only has meaning while
// the mode is ModeApply.
type ApplyStep int

const (
	ApplyNone         ApplyStep = 0
	ApplyAwardYear    ApplyStep = 1
	ApplyIndependence ApplyStep = 2
	ApplyHousehold    ApplyStep = 3
	ApplyTaxInfo      ApplyStep = 4
	ApplyBankInfo     ApplyStep = 5
	ApplyDone         ApplyStep = 6
)

// Next returns the following step, saturating at ApplyDone.
func (s ApplyStep) Next() ApplyStep {
	if s >= ApplyDone {
		return ApplyDone
	}
	return s + 1
}

// Flow couples the dialogue mode with its step cursor. The zero value is the
// initial flow. Fields are unexported so that a Flow can only be built through
// the constructors below, which rules out (mode, step) pairs such as an
// estimate flow carrying an apply step.
type Flow struct {
	mode Mode
	step ApplyStep
}

// FlowInitial is the flow of a fresh session.
func FlowInitial() Flow { return Flow{mode: ModeInitial} }

// FlowEstimate is the estimate form flow.
func FlowEstimate() Flow { return Flow{mode: ModeEstimate} }

// FlowDocuments is the stateless documents flow.
func FlowDocuments() Flow { return Flow{mode: ModeDocuments} }

// FlowApply is the apply flow positioned at step. Steps below ApplyAwardYear
// are raised to it and steps above ApplyDone are lowered to it.
func FlowApply(step ApplyStep) Flow {
	if step < ApplyAwardYear {
		step = ApplyAwardYear
	}
	if step > ApplyDone {
		step = ApplyDone
	}
	return Flow{mode: ModeApply, step: step}
}

// Mode returns the flow mode, treating the zero value as initial.
func (f Flow) Mode() Mode {
	if f.mode == "" {
		return ModeInitial
	}
	return f.mode
}

// Step returns the apply step, or ApplyNone outside of the apply flow.
func (f Flow) Step() ApplyStep {
	return f.step
}

// Is reports whether the flow is in mode m.
func (f Flow) Is(m Mode) bool {
	return f.Mode() == m
}

func (f Flow) String() string {
	if f.Mode() == ModeApply {
		return fmt.Sprintf("%s/%d", f.mode, f.step)
	}
	return string(f.Mode())
}

// ParseFlow rebuilds a flow from its persisted parts.
func ParseFlow(mode Mode, step ApplyStep) (Flow, error) {
	switch mode {
	case "", ModeInitial, ModeEstimate, ModeDocuments:
		if step != ApplyNone {
			return Flow{}, fmt.Errorf("%w: mode %q cannot carry step %d", ErrInvalidFlow, mode, step)
		}
		if mode == "" {
			mode = ModeInitial
		}
		return Flow{mode: mode}, nil
	case ModeApply:
		if step < ApplyAwardYear || step > ApplyDone {
			return Flow{}, fmt.Errorf("%w: apply step %d out of range", ErrInvalidFlow, step)
		}
		return Flow{mode: ModeApply, step: step}, nil
	default:
		return Flow{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidFlow, mode)
	}
}

type flowJSON struct {
	Mode Mode      `json:"mode"`
	Step ApplyStep `json:"step,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f Flow) MarshalJSON() ([]byte, error) {
	return json.Marshal(flowJSON{Mode: f.Mode(), Step: f.step})
}

// UnmarshalJSON implements json.Unmarshaler, rejecting invalid pairs.
func (f *Flow) UnmarshalJSON(data []byte) error {
	var raw flowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseFlow(raw.Mode, raw.Step)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Validate reports whether the (mode, step) pair is one the router can reach.
func (f Flow) Validate() error {
	_, err := ParseFlow(f.mode, f.step)
	return err
}
