package domain

import "time"

// State is the record owned by one conversation. It is mutated only by the
// dialogue router, one turn at a time.
type State struct {
	SessionID string `json:"session_id"`

	// Flow is the current dialogue position.
	Flow Flow `json:"flow"`

	Independent   *bool   `json:"independent,omitempty"`
	HouseholdSize *int    `json:"household_size,omitempty"`
	IncomeRange   *string `json:"income_range,omitempty"`
	AssetRange    *string `json:"asset_range,omitempty"`
	HasTaxInfo    *bool   `json:"has_tax_info,omitempty"`
	HasBankInfo   *bool   `json:"has_bank_info,omitempty"`

	AwardYear  string     `json:"award_year"`
	Enrollment Enrollment `json:"enrollment"`

	// Sealed carries the encrypted answers when the store encrypts at rest.
	// It is empty on every state handed to the dialogue.
	Sealed string `json:"sealed,omitempty"`

	// Turns counts handled turns, including re-prompts.
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a session with every optional answer unset.
func NewState(sessionID string) *State {
	now := time.Now().UTC()
	return &State{
		SessionID:  sessionID,
		Flow:       FlowInitial(),
		AwardYear:  DefaultAwardYear,
		Enrollment: DefaultEnrollment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Mode is a shortcut for s.Flow.Mode().
func (s *State) Mode() Mode {
	return s.Flow.Mode()
}

// ClearEstimate unsets the four answers the estimator depends on.
func (s *State) ClearEstimate() {
	s.Independent = nil
	s.HouseholdSize = nil
	s.IncomeRange = nil
	s.AssetRange = nil
}

// EstimateReady reports whether every estimate answer has been collected.
func (s *State) EstimateReady() bool {
	return len(s.MissingEstimateFields()) == 0
}

// MissingEstimateFields lists the estimate answers still unset, in the order
// they are asked.
func (s *State) MissingEstimateFields() []string {
	var missing []string
	if s.Independent == nil {
		missing = append(missing, FieldIndependent)
	}
	if s.HouseholdSize == nil {
		missing = append(missing, FieldHouseholdSize)
	}
	if s.IncomeRange == nil {
		missing = append(missing, FieldIncomeRange)
	}
	if s.AssetRange == nil {
		missing = append(missing, FieldAssetRange)
	}
	return missing
}

// Clone returns a deep copy so that stores and callers never share pointers.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Independent = cloneBool(s.Independent)
	c.HasTaxInfo = cloneBool(s.HasTaxInfo)
	c.HasBankInfo = cloneBool(s.HasBankInfo)
	if s.HouseholdSize != nil {
		v := *s.HouseholdSize
		c.HouseholdSize = &v
	}
	c.IncomeRange = cloneString(s.IncomeRange)
	c.AssetRange = cloneString(s.AssetRange)
	return &c
}

// Snapshot is the flat structured view returned to hosts after each turn.
type Snapshot struct {
	Mode          Mode       `json:"mode"`
	ApplyStep     ApplyStep  `json:"apply_step"`
	Independent   *bool      `json:"independent"`
	HouseholdSize *int       `json:"household_size"`
	IncomeRange   *string    `json:"income_range"`
	AssetRange    *string    `json:"asset_range"`
	HasTaxInfo    *bool      `json:"has_tax_info"`
	HasBankInfo   *bool      `json:"has_bank_info"`
	AwardYear     string     `json:"award_year"`
	Enrollment    Enrollment `json:"enrollment"`
}

// Snapshot copies the state into its flat host representation.
func (s *State) Snapshot() Snapshot {
	c := s.Clone()
	return Snapshot{
		Mode:          c.Flow.Mode(),
		ApplyStep:     c.Flow.Step(),
		Independent:   c.Independent,
		HouseholdSize: c.HouseholdSize,
		IncomeRange:   c.IncomeRange,
		AssetRange:    c.AssetRange,
		HasTaxInfo:    c.HasTaxInfo,
		HasBankInfo:   c.HasBankInfo,
		AwardYear:     c.AwardYear,
		Enrollment:    c.Enrollment,
	}
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
