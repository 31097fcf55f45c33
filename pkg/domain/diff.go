package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Flow is set when the mode or apply step moved.
	Flow *Flow `json:"flow,omitempty"`

	// Fields contains only changed answers keyed by snapshot field name.
	// Cleared answers are present with a nil value.
	Fields map[string]any `json:"fields,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Flow != newState.Flow {
		flow := newState.Flow
		diff.Flow = &flow
	}

	diff.Fields = diffFields(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Flow == nil && len(d.Fields) == 0
}

func diffFields(old *State, new *State) map[string]any {
	newFields := answerFields(new)
	delta := make(map[string]any)

	if old == nil {
		for k, v := range newFields {
			if v != nil {
				delta[k] = v
			}
		}
	} else {
		oldFields := answerFields(old)
		for k, newVal := range newFields {
			if !reflect.DeepEqual(oldFields[k], newVal) {
				delta[k] = newVal
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// answerFields flattens the answers into comparable values, dereferencing
// pointers so that a nil entry means "unset".
func answerFields(s *State) map[string]any {
	return map[string]any{
		FieldIndependent:   deref(s.Independent),
		FieldHouseholdSize: deref(s.HouseholdSize),
		FieldIncomeRange:   deref(s.IncomeRange),
		FieldAssetRange:    deref(s.AssetRange),
		FieldHasTaxInfo:    deref(s.HasTaxInfo),
		FieldHasBankInfo:   deref(s.HasBankInfo),
		FieldAwardYear:     s.AwardYear,
		FieldEnrollment:    string(s.Enrollment),
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
