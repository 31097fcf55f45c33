package dialogue

import "github.com/aretw0/aidbuddy/pkg/domain"

// Progress is the share of estimate answers collected, in [0, 1].
func Progress(s *domain.State) float64 {
	filled := 4 - len(s.MissingEstimateFields())
	return float64(filled) / 4
}

// Chapter maps the state onto the six-chapter progress bar shown by hosts.
// No state maps to chapter 5: the apply flow jumps from 4 to 6 on its last
// step.
func Chapter(s *domain.State) int {
	switch s.Mode() {
	case domain.ModeApply:
		switch step := s.Flow.Step(); {
		case step <= domain.ApplyAwardYear:
			return 1
		case step <= domain.ApplyHousehold:
			return 2
		case step == domain.ApplyTaxInfo:
			return 3
		case step == domain.ApplyBankInfo:
			return 4
		default:
			return 6
		}
	case domain.ModeEstimate:
		return 4
	case domain.ModeDocuments:
		return 6
	}
	return 1
}
