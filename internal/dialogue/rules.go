package dialogue

import (
	"github.com/aretw0/aidbuddy/pkg/domain"
)

// Keyword sets, matched as lower-cased substrings. Note that "pin" also
// matches words such as "spinning"; the guard errs on the side of caution.
var (
	sensitiveKeywords = []string{
		"ssn", "social security", "routing number", "account number",
		"debit card", "credit card", "pin", "password",
	}
	estimateKeywords  = []string{"estimate", "how much", "pell", "project", "range"}
	documentsKeywords = []string{"bank", "statement", "statements", "call", "documents", "docs"}
	applyKeywords     = []string{"apply", "start fafsa", "fill out", "submit", "walk me through"}
)

// quickStartPhrases are the opening menu buttons, matched exactly.
var quickStartPhrases = map[string]bool{
	"need help paying for college": true,
	"not sure what i qualify for":  true,
	"school told me to apply":      true,
	"i don't know":                 true,
}

// rule is one row of the routing table. Rules are evaluated in order and the
// first match handles the turn.
type rule struct {
	name  string
	match func(s *domain.State, t turn) bool
	apply func(r *Router, s *domain.State, t turn) (Reply, error)
}

func defaultRules() []rule {
	return []rule{
		{
			name:  IntentEmpty,
			match: func(_ *domain.State, t turn) bool { return t.blank() },
			apply: reply(OpeningMessage),
		},
		{
			name:  IntentSensitive,
			match: func(_ *domain.State, t turn) bool { return t.containsAny(sensitiveKeywords) },
			apply: reply(SafetyMessage),
		},
		{
			name:  IntentQuick,
			match: func(_ *domain.State, t turn) bool { return quickStartPhrases[t.low] },
			apply: func(_ *Router, s *domain.State, _ turn) (Reply, error) {
				s.Flow = domain.FlowApply(domain.ApplyAwardYear)
				return Reply{Text: quickStartReply}, nil
			},
		},
		{
			name:  IntentEstimate,
			match: func(_ *domain.State, t turn) bool { return t.containsAny(estimateKeywords) },
			apply: func(_ *Router, s *domain.State, _ turn) (Reply, error) {
				s.Flow = domain.FlowEstimate()
				s.ClearEstimate()
				return Reply{Text: estimateStart}, nil
			},
		},
		{
			name:  IntentDocuments,
			match: func(_ *domain.State, t turn) bool { return t.containsAny(documentsKeywords) },
			apply: func(_ *Router, s *domain.State, _ turn) (Reply, error) {
				s.Flow = domain.FlowDocuments()
				return Reply{Text: documentsReply}, nil
			},
		},
		{
			name:  IntentApply,
			match: func(_ *domain.State, t turn) bool { return t.containsAny(applyKeywords) },
			apply: func(_ *Router, s *domain.State, _ turn) (Reply, error) {
				s.Flow = domain.FlowApply(domain.ApplyAwardYear)
				return Reply{Text: applyStartReply}, nil
			},
		},
		{
			name:  string(domain.ModeEstimate) + "_flow",
			match: inMode(domain.ModeEstimate),
			apply: (*Router).continueEstimate,
		},
		{
			name:  string(domain.ModeApply) + "_flow",
			match: inMode(domain.ModeApply),
			apply: (*Router).continueApply,
		},
		{
			name:  string(domain.ModeDocuments) + "_flow",
			match: inMode(domain.ModeDocuments),
			apply: reply(documentsReply),
		},
		{
			name:  IntentMenu,
			match: func(*domain.State, turn) bool { return true },
			apply: reply(MenuMessage),
		},
	}
}

func reply(text string) func(*Router, *domain.State, turn) (Reply, error) {
	return func(*Router, *domain.State, turn) (Reply, error) {
		return Reply{Text: text}, nil
	}
}

func inMode(m domain.Mode) func(*domain.State, turn) bool {
	return func(s *domain.State, _ turn) bool { return s.Flow.Is(m) }
}
