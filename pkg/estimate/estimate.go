package estimate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/aidbuddy/pkg/bands"
	"github.com/aretw0/aidbuddy/pkg/domain"
)

// Disclaimer accompanies every result.
const Disclaimer = "Range estimate only (not official). Final Pell depends on FAFSA SAI + school calculation and enrollment intensity."

// Likelihood labels.
const (
	VeryLikely = "Very likely"
	Likely     = "Likely"
	Possible   = "Possible"
	Unlikely   = "Unlikely/Low"
)

// Input carries the categorical answers the estimator works from.
type Input struct {
	AwardYear     string            `json:"award_year" mapstructure:"award_year"`
	Independent   bool              `json:"independent" mapstructure:"independent"`
	HouseholdSize int               `json:"household_size" mapstructure:"household_size"`
	IncomeBand    string            `json:"income_range" mapstructure:"income_range"`
	AssetBand     string            `json:"asset_range" mapstructure:"asset_range"`
	Enrollment    domain.Enrollment `json:"enrollment" mapstructure:"enrollment"`
}

// Validate rejects values no conversation could have produced.
func (in Input) Validate() error {
	if in.HouseholdSize < domain.MinHouseholdSize || in.HouseholdSize > domain.MaxHouseholdSize {
		return fmt.Errorf("%w: household_size %d outside [%d,%d]",
			domain.ErrInvalidInput, in.HouseholdSize, domain.MinHouseholdSize, domain.MaxHouseholdSize)
	}
	if !bands.Valid(bands.Income, in.IncomeBand) {
		return fmt.Errorf("%w: unknown income_range %q", domain.ErrInvalidInput, in.IncomeBand)
	}
	if !bands.Valid(bands.Assets, in.AssetBand) {
		return fmt.Errorf("%w: unknown asset_range %q", domain.ErrInvalidInput, in.AssetBand)
	}
	if in.Enrollment != "" && !in.Enrollment.Valid() {
		return fmt.Errorf("%w: unknown enrollment %q", domain.ErrInvalidInput, in.Enrollment)
	}
	return nil
}

// Result is the outcome of one estimate.
type Result struct {
	AwardYear  string            `json:"award_year"`
	Enrollment domain.Enrollment `json:"enrollment"`
	SAIRange   [2]int            `json:"estimated_sai_band"`
	SAIBand    string            `json:"sai_band_label"`
	Likelihood string            `json:"pell_likelihood"`
	PellRange  [2]int            `json:"pell_range"`
	Disclaimer string            `json:"disclaimer"`
}

// FormatRange renders the dollar range as "$1,234–$5,678".
func (r *Result) FormatRange() string {
	return "$" + formatDollars(r.PellRange[0]) + "–$" + formatDollars(r.PellRange[1])
}

// Estimate runs the full pipeline for in against the award years in table.
func Estimate(table Table, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	enrollment := in.Enrollment
	if enrollment == "" {
		enrollment = domain.DefaultEnrollment
	}

	cfg, err := table.Lookup(in.AwardYear)
	if err != nil {
		return nil, err
	}

	band := SAIBandFor(NeedScore(in))
	pmin, pmax := PercentRange(band)
	factor := EnrollmentFactor(enrollment)

	ceiling := float64(cfg.MaxGrant) * factor
	floor := float64(cfg.MinGrant) * factor

	rawMin := float64(cfg.MaxGrant) * pmin * factor
	rawMax := float64(cfg.MaxGrant) * pmax * factor

	// The floor never lifts a zero range: no eligibility stays at zero.
	if rawMin > 0 {
		rawMin = math.Max(rawMin, floor)
	}
	if rawMax > 0 {
		rawMax = math.Max(rawMax, floor)
	}

	rawMin = clamp(rawMin, 0, ceiling)
	rawMax = clamp(rawMax, 0, ceiling)

	return &Result{
		AwardYear:  in.AwardYear,
		Enrollment: enrollment,
		SAIRange:   [2]int{band.Min, band.Max},
		SAIBand:    band.Label,
		Likelihood: LikelihoodFor(band),
		PellRange:  [2]int{roundToTen(rawMin, ceiling), roundToTen(rawMax, ceiling)},
		Disclaimer: Disclaimer,
	}, nil
}

// FromState estimates from a session, failing with a PreconditionError when
// an answer is still missing.
func FromState(table Table, s *domain.State) (*Result, error) {
	if missing := s.MissingEstimateFields(); len(missing) > 0 {
		return nil, &domain.PreconditionError{Missing: missing}
	}
	return Estimate(table, Input{
		AwardYear:     s.AwardYear,
		Independent:   *s.Independent,
		HouseholdSize: *s.HouseholdSize,
		IncomeBand:    *s.IncomeRange,
		AssetBand:     *s.AssetRange,
		Enrollment:    s.Enrollment,
	})
}

var incomeScores = map[string]int{
	"under_20k": 6,
	"20_40k":    5,
	"40_60k":    4,
	"60_80k":    3,
	"80_100k":   2,
	"100_150k":  1,
	"150_200k":  0,
	"over_200k": 0,
}

var assetPenalties = map[string]int{
	"under_1k":  0,
	"1_5k":      0,
	"5_20k":     1,
	"20_50k":    1,
	"50_100k":   2,
	"over_100k": 2,
}

// NeedScore combines the answers into a single integer; higher means more need.
func NeedScore(in Input) int {
	household := 0
	if in.HouseholdSize >= 4 {
		household = 1
	}
	if in.HouseholdSize >= 6 {
		household = 2
	}
	independence := 0
	if in.Independent {
		independence = 1
	}
	return incomeScores[in.IncomeBand] + household + independence - assetPenalties[in.AssetBand]
}

// SAIBand is a need-index range. Lower index values mean higher need.
type SAIBand struct {
	Label string
	Min   int
	Max   int
}

// saiBands is ordered from highest need to lowest; the first band whose
// threshold the score reaches wins.
var saiBands = []struct {
	threshold int
	band      SAIBand
}{
	{6, SAIBand{"very_high_need", -1500, 0}},
	{4, SAIBand{"high_need", 1, 1500}},
	{2, SAIBand{"moderate_need", 1501, 3000}},
	{1, SAIBand{"low_need", 3001, 4500}},
}

var veryLowNeed = SAIBand{"very_low_need", 4501, 999999}

// SAIBandFor maps a need score to its need-index band.
func SAIBandFor(score int) SAIBand {
	for _, b := range saiBands {
		if score >= b.threshold {
			return b.band
		}
	}
	return veryLowNeed
}

// percentTiers is keyed by the ceiling of the need-index range.
var percentTiers = []struct {
	ceiling  int
	min, max float64
}{
	{1500, 0.55, 0.80},
	{3000, 0.35, 0.55},
	{4500, 0.15, 0.35},
	{6000, 0.10, 0.20},
}

// PercentRange returns the share of the maximum grant a band qualifies for.
func PercentRange(b SAIBand) (float64, float64) {
	if b.Min <= 0 {
		return 0.80, 1.00
	}
	for _, tier := range percentTiers {
		if b.Max <= tier.ceiling {
			return tier.min, tier.max
		}
	}
	return 0.00, 0.10
}

// LikelihoodFor collapses the need-index tiers into four labels.
func LikelihoodFor(b SAIBand) string {
	switch {
	case b.Min <= 0:
		return VeryLikely
	case b.Max <= 1500:
		return Likely
	case b.Max <= 3000:
		return Possible
	default:
		return Unlikely
	}
}

// EnrollmentFactor returns the share of full-time study for e. Unknown values
// count as full time.
func EnrollmentFactor(e domain.Enrollment) float64 {
	switch e {
	case domain.ThreeQuarter:
		return 0.75
	case domain.HalfTime:
		return 0.5
	case domain.LessThanHalf:
		return 0.25
	default:
		return 1.0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// roundToTen rounds half away from zero to a multiple of ten. When rounding up
// would cross ceiling, the nearest multiple of ten below it is used instead.
func roundToTen(v, ceiling float64) int {
	r := int(math.Round(v/10.0) * 10)
	if float64(r) > ceiling {
		r = int(math.Floor(ceiling/10.0) * 10)
	}
	return r
}

func formatDollars(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
