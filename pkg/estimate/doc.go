/*
Package estimate implements the banded Pell Grant range estimator.

The estimator is a pure pipeline: categorical answers are turned into a need
score, the score selects a synthetic need-index (SAI) band, the band selects a
percent-of-maximum-grant range, and the range is scaled by enrollment intensity
and converted to dollars using the award-year configuration. The result is a
rough range, never an official figure.

# Usage

	res, err := estimate.Estimate(estimate.DefaultTable(), estimate.Input{
		AwardYear:     "2026-27",
		Independent:   true,
		HouseholdSize: 3,
		IncomeBand:    "20_40k",
		AssetBand:     "1_5k",
		Enrollment:    domain.FullTime,
	})
*/
package estimate
