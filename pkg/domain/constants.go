package domain

// Defaults applied to freshly created sessions.
const (
	// DefaultAwardYear is the award year used until the user picks another one.
	DefaultAwardYear = "2026-27"

	// DefaultEnrollment is the intensity assumed when none is collected.
	DefaultEnrollment = FullTime
)

// Field names used in snapshots, precondition errors and diffs.
const (
	FieldMode          = "mode"
	FieldApplyStep     = "apply_step"
	FieldIndependent   = "independent"
	FieldHouseholdSize = "household_size"
	FieldIncomeRange   = "income_range"
	FieldAssetRange    = "asset_range"
	FieldHasTaxInfo    = "has_tax_info"
	FieldHasBankInfo   = "has_bank_info"
	FieldAwardYear     = "award_year"
	FieldEnrollment    = "enrollment"
)

// Household size bounds accepted by every flow.
const (
	MinHouseholdSize = 1
	MaxHouseholdSize = 20
)

// Enrollment is the enrollment intensity selector.
type Enrollment string

const (
	FullTime     Enrollment = "full_time"
	ThreeQuarter Enrollment = "three_quarter"
	HalfTime     Enrollment = "half_time"
	LessThanHalf Enrollment = "less_than_half"
)

// Enrollments lists every supported intensity, most intense first.
var Enrollments = []Enrollment{FullTime, ThreeQuarter, HalfTime, LessThanHalf}

// Valid reports whether e is a known enrollment intensity.
func (e Enrollment) Valid() bool {
	switch e {
	case FullTime, ThreeQuarter, HalfTime, LessThanHalf:
		return true
	}
	return false
}

func (e Enrollment) String() string {
	return string(e)
}
