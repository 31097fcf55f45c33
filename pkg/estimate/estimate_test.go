package estimate

import (
	"testing"

	"github.com/aretw0/aidbuddy/pkg/bands"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_KnownRanges(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantSAI    string
		wantRange  [2]int
		likelihood string
	}{
		{
			name:       "Independent Low Income",
			in:         Input{AwardYear: "2026-27", Independent: true, HouseholdSize: 3, IncomeBand: "20_40k", AssetBand: "1_5k"},
			wantSAI:    "very_high_need",
			wantRange:  [2]int{5920, 7390},
			likelihood: VeryLikely,
		},
		{
			name:       "High Need",
			in:         Input{AwardYear: "2026-27", HouseholdSize: 2, IncomeBand: "40_60k", AssetBand: "under_1k"},
			wantSAI:    "high_need",
			wantRange:  [2]int{4070, 5920},
			likelihood: Likely,
		},
		{
			name:       "Moderate Need With Household Bonus",
			in:         Input{AwardYear: "2026-27", HouseholdSize: 4, IncomeBand: "60_80k", AssetBand: "5_20k"},
			wantSAI:    "moderate_need",
			wantRange:  [2]int{2590, 4070},
			likelihood: Possible,
		},
		{
			name:       "Low Need",
			in:         Input{AwardYear: "2025-26", HouseholdSize: 1, IncomeBand: "100_150k", AssetBand: "under_1k"},
			wantSAI:    "low_need",
			wantRange:  [2]int{1110, 2590},
			likelihood: Unlikely,
		},
		{
			name:       "Very Low Need Keeps Zero Minimum",
			in:         Input{AwardYear: "2026-27", HouseholdSize: 2, IncomeBand: "over_200k", AssetBand: "over_100k"},
			wantSAI:    "very_low_need",
			wantRange:  [2]int{0, 740},
			likelihood: Unlikely,
		},
		{
			name:       "Half Time Scales And Stays Under Ceiling",
			in:         Input{AwardYear: "2026-27", Independent: true, HouseholdSize: 3, IncomeBand: "20_40k", AssetBand: "1_5k", Enrollment: domain.HalfTime},
			wantSAI:    "very_high_need",
			wantRange:  [2]int{2960, 3690},
			likelihood: VeryLikely,
		},
		{
			name:       "Less Than Half Floor",
			in:         Input{AwardYear: "2026-27", HouseholdSize: 2, IncomeBand: "over_200k", AssetBand: "over_100k", Enrollment: domain.LessThanHalf},
			wantSAI:    "very_low_need",
			wantRange:  [2]int{0, 190},
			likelihood: Unlikely,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Estimate(DefaultTable(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSAI, res.SAIBand)
			assert.Equal(t, tt.wantRange, res.PellRange)
			assert.Equal(t, tt.likelihood, res.Likelihood)
			assert.Equal(t, Disclaimer, res.Disclaimer)
			assert.Equal(t, tt.in.AwardYear, res.AwardYear)
		})
	}
}

func TestEstimate_DefaultsEnrollment(t *testing.T) {
	res, err := Estimate(DefaultTable(), Input{AwardYear: "2026-27", HouseholdSize: 1, IncomeBand: "under_20k", AssetBand: "under_1k"})
	require.NoError(t, err)
	assert.Equal(t, domain.FullTime, res.Enrollment)
}

// Every valid combination yields an ordered range of multiples of ten inside
// [0, max_grant × factor].
func TestEstimate_RangeInvariants(t *testing.T) {
	table := DefaultTable()
	for _, year := range table.Years() {
		cfg, _ := table.Lookup(year)
		for _, enrollment := range domain.Enrollments {
			ceiling := float64(cfg.MaxGrant) * EnrollmentFactor(enrollment)
			for _, independent := range []bool{false, true} {
				for size := domain.MinHouseholdSize; size <= domain.MaxHouseholdSize; size++ {
					for _, income := range bands.Income {
						for _, asset := range bands.Assets {
							in := Input{year, independent, size, income.Key, asset.Key, enrollment}
							res, err := Estimate(table, in)
							require.NoError(t, err)

							lo, hi := res.PellRange[0], res.PellRange[1]
							if lo < 0 || lo > hi || float64(hi) > ceiling || lo%10 != 0 || hi%10 != 0 {
								t.Fatalf("bad range %v for %+v (ceiling %.2f)", res.PellRange, in, ceiling)
							}
						}
					}
				}
			}
		}
	}
}

func TestEstimate_MonotonicInIncome(t *testing.T) {
	tier := map[string]int{"very_high_need": 4, "high_need": 3, "moderate_need": 2, "low_need": 1, "very_low_need": 0}

	for _, asset := range bands.Assets {
		for _, size := range []int{1, 4, 6} {
			prevTier, prevMax := 1<<30, 1<<30
			for _, income := range bands.Income {
				res, err := Estimate(DefaultTable(), Input{
					AwardYear: "2026-27", HouseholdSize: size, IncomeBand: income.Key, AssetBand: asset.Key,
				})
				require.NoError(t, err)
				assert.LessOrEqual(t, tier[res.SAIBand], prevTier, "need tier rose at %s", income.Key)
				assert.LessOrEqual(t, res.PellRange[1], prevMax, "upper bound rose at %s", income.Key)
				prevTier, prevMax = tier[res.SAIBand], res.PellRange[1]
			}
		}
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	in := Input{AwardYear: "2026-27", Independent: true, HouseholdSize: 6, IncomeBand: "80_100k", AssetBand: "20_50k", Enrollment: domain.ThreeQuarter}
	a, err := Estimate(DefaultTable(), in)
	require.NoError(t, err)
	b, err := Estimate(DefaultTable(), in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEstimate_Errors(t *testing.T) {
	valid := Input{AwardYear: "2026-27", HouseholdSize: 3, IncomeBand: "20_40k", AssetBand: "1_5k"}

	t.Run("Unknown Award Year", func(t *testing.T) {
		in := valid
		in.AwardYear = "2030-31"
		_, err := Estimate(DefaultTable(), in)
		var ce *domain.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "2030-31", ce.AwardYear)
	})

	invalid := map[string]func(*Input){
		"Household Zero":      func(in *Input) { in.HouseholdSize = 0 },
		"Household 21":        func(in *Input) { in.HouseholdSize = 21 },
		"Unknown Income":      func(in *Input) { in.IncomeBand = "lots" },
		"Asset Key As Income": func(in *Input) { in.IncomeBand = "1_5k" },
		"Unknown Asset":       func(in *Input) { in.AssetBand = "" },
		"Unknown Enrollment":  func(in *Input) { in.Enrollment = "part_time" },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := Estimate(DefaultTable(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestFromState(t *testing.T) {
	s := domain.NewState("s1")
	s.Independent = domain.Bool(true)
	s.HouseholdSize = domain.Int(3)

	_, err := FromState(DefaultTable(), s)
	var pe *domain.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{domain.FieldIncomeRange, domain.FieldAssetRange}, pe.Missing)

	s.IncomeRange = domain.String("20_40k")
	s.AssetRange = domain.String("1_5k")
	res, err := FromState(DefaultTable(), s)
	require.NoError(t, err)
	assert.Equal(t, "$5,920–$7,390", res.FormatRange())
}

func TestSAIBandFor_Thresholds(t *testing.T) {
	tests := map[int]string{
		9: "very_high_need", 6: "very_high_need",
		5: "high_need", 4: "high_need",
		3: "moderate_need", 2: "moderate_need",
		1: "low_need",
		0: "very_low_need", -2: "very_low_need",
	}
	for score, want := range tests {
		assert.Equal(t, want, SAIBandFor(score).Label, "score %d", score)
	}
}

func TestPercentRange(t *testing.T) {
	tests := []struct {
		band     SAIBand
		min, max float64
	}{
		{SAIBand{Min: -1500, Max: 0}, 0.80, 1.00},
		{SAIBand{Min: 1, Max: 1500}, 0.55, 0.80},
		{SAIBand{Min: 1501, Max: 3000}, 0.35, 0.55},
		{SAIBand{Min: 3001, Max: 4500}, 0.15, 0.35},
		{SAIBand{Min: 4501, Max: 6000}, 0.10, 0.20},
		{SAIBand{Min: 4501, Max: 999999}, 0.00, 0.10},
	}
	for _, tt := range tests {
		lo, hi := PercentRange(tt.band)
		assert.Equal(t, tt.min, lo)
		assert.Equal(t, tt.max, hi)
	}
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "0", formatDollars(0))
	assert.Equal(t, "740", formatDollars(740))
	assert.Equal(t, "7,390", formatDollars(7390))
	assert.Equal(t, "1,234,560", formatDollars(1234560))
}

// A cap that is not a multiple of ten wins over round-half-up.
func TestRoundToTen_NeverCrossesCeiling(t *testing.T) {
	assert.Equal(t, 7390, roundToTen(7395, 7395))
	assert.Equal(t, 7390, roundToTen(7394, 7395))
	assert.Equal(t, 5550, roundToTen(5546.25, 7395))
	assert.Equal(t, 1840, roundToTen(1848.75, 1848.75))
	assert.Equal(t, 0, roundToTen(0, 7395))
}
