package dialogue

import (
	"github.com/aretw0/aidbuddy/pkg/bands"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
)

// continueEstimate fills the first unset estimate answer, then summarises.
func (r *Router) continueEstimate(s *domain.State, t turn) (Reply, error) {
	const prefix = string(domain.ModeEstimate) + "."

	switch {
	case s.Independent == nil:
		v, ok := parseYesNo(t)
		if !ok {
			return Reply{Text: estimateIndependentRetry, Intent: prefix + domain.FieldIndependent}, nil
		}
		s.Independent = domain.Bool(v)
		return Reply{Text: estimateHousehold, Intent: prefix + domain.FieldIndependent}, nil

	case s.HouseholdSize == nil:
		n, res := parseHousehold(t)
		switch res {
		case householdMissing:
			return Reply{Text: estimateHouseholdRetry, Intent: prefix + domain.FieldHouseholdSize}, nil
		case householdOutOfRange:
			return Reply{Text: estimateHouseholdRange, Intent: prefix + domain.FieldHouseholdSize}, nil
		}
		s.HouseholdSize = domain.Int(n)
		return Reply{Text: incomePrompt(), Intent: prefix + domain.FieldHouseholdSize}, nil

	case s.IncomeRange == nil:
		key, ok := bands.Match(bands.Income, t.low)
		if !ok {
			return Reply{Text: incomeRetry(), Intent: prefix + domain.FieldIncomeRange}, nil
		}
		s.IncomeRange = domain.String(key)
		return Reply{Text: assetPrompt(), Intent: prefix + domain.FieldIncomeRange}, nil

	case s.AssetRange == nil:
		key, ok := bands.Match(bands.Assets, t.low)
		if !ok {
			return Reply{Text: assetRetry(), Intent: prefix + domain.FieldAssetRange}, nil
		}
		s.AssetRange = domain.String(key)
		res, err := estimate.FromState(r.table, s)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: estimateSummary(s, res), Intent: prefix + "summary", Estimate: res}, nil
	}

	return Reply{Text: estimateComplete, Intent: prefix + "complete"}, nil
}

// continueApply answers the question for the current apply step.
func (r *Router) continueApply(s *domain.State, t turn) (Reply, error) {
	step := s.Flow.Step()
	intent := string(domain.ModeApply) + "." + applyStepNames[step]

	switch step {
	case domain.ApplyAwardYear:
		year, ok := estimate.NormalizeAwardYear(t.text)
		if !ok {
			return Reply{Text: applyAwardYearRetry, Intent: intent}, nil
		}
		if _, err := r.table.Lookup(year); err != nil {
			return Reply{Text: applyAwardYearUnsupported(r.table.Years()), Intent: intent}, nil
		}
		s.AwardYear = year
		s.Flow = domain.FlowApply(step.Next())
		return Reply{Text: applyIndependence, Intent: intent}, nil

	case domain.ApplyIndependence:
		v, ok := parseYesNo(t)
		if !ok {
			return Reply{Text: applyIndependentRetry, Intent: intent}, nil
		}
		s.Independent = domain.Bool(v)
		s.Flow = domain.FlowApply(step.Next())
		return Reply{Text: applyHousehold, Intent: intent}, nil

	case domain.ApplyHousehold:
		n, res := parseHousehold(t)
		switch res {
		case householdMissing:
			return Reply{Text: applyHouseholdRetry, Intent: intent}, nil
		case householdOutOfRange:
			return Reply{Text: applyHouseholdRange, Intent: intent}, nil
		}
		s.HouseholdSize = domain.Int(n)
		s.Flow = domain.FlowApply(step.Next())
		return Reply{Text: applyTaxQuestion, Intent: intent}, nil

	case domain.ApplyTaxInfo:
		v, ok := parseYesNo(t)
		if !ok {
			return Reply{Text: applyTaxRetry, Intent: intent}, nil
		}
		s.HasTaxInfo = domain.Bool(v)
		s.Flow = domain.FlowApply(step.Next())
		if v {
			return Reply{Text: applyTaxYes, Intent: intent}, nil
		}
		return Reply{Text: applyTaxNo, Intent: intent}, nil

	case domain.ApplyBankInfo:
		v, ok := parseYesNo(t)
		if !ok {
			return Reply{Text: applyBankRetry, Intent: intent}, nil
		}
		s.HasBankInfo = domain.Bool(v)
		s.Flow = domain.FlowApply(step.Next())
		if v {
			return Reply{Text: applyBankYes, Intent: intent}, nil
		}
		return Reply{Text: applyBankNo, Intent: intent}, nil
	}

	return Reply{Text: applyDone, Intent: intent}, nil
}

var applyStepNames = map[domain.ApplyStep]string{
	domain.ApplyAwardYear:    domain.FieldAwardYear,
	domain.ApplyIndependence: domain.FieldIndependent,
	domain.ApplyHousehold:    domain.FieldHouseholdSize,
	domain.ApplyTaxInfo:      domain.FieldHasTaxInfo,
	domain.ApplyBankInfo:     domain.FieldHasBankInfo,
	domain.ApplyDone:         "done",
}

// ApplyOverviewReply is the single-turn apply answer: the step overview
// followed by the first two questions. Sessions use the step-by-step apply
// flow instead; this text serves stateless callers.
func ApplyOverviewReply() string {
	return StepsOverview + "\n\n" +
		"Quick questions to tailor this:\n" +
		"1) Are you independent for FAFSA purposes? (yes/no)\n" +
		"2) What’s your household size? (number)"
}
