package domain

// School is the shape of a tuition lookup result. Tuition values are nil when
// the upstream source has no figure.
type School struct {
	ID                int    `json:"id,omitempty"`
	Name              string `json:"name"`
	City              string `json:"city"`
	State             string `json:"state"`
	TuitionInState    *int   `json:"tuition_in_state"`
	TuitionOutOfState *int   `json:"tuition_out_of_state"`
	TuitionBestGuess  *int   `json:"tuition_best_guess"`
}

// BestGuessTuition prefers in-state tuition and falls back to out-of-state.
func BestGuessTuition(inState, outOfState *int) *int {
	if inState != nil {
		return inState
	}
	return outOfState
}
