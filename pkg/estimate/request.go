package estimate

import "github.com/aretw0/aidbuddy/pkg/domain"

// Request is the wire shape of a direct estimate call. The four answers are
// pointers so that an omitted field is told apart from false or zero.
type Request struct {
	AwardYear     string            `json:"award_year" mapstructure:"award_year"`
	Independent   *bool             `json:"independent" mapstructure:"independent"`
	HouseholdSize *int              `json:"household_size" mapstructure:"household_size"`
	IncomeBand    *string           `json:"income_range" mapstructure:"income_range"`
	AssetBand     *string           `json:"asset_range" mapstructure:"asset_range"`
	Enrollment    domain.Enrollment `json:"enrollment" mapstructure:"enrollment"`
}

// Input returns the estimator input, or a *domain.PreconditionError naming
// every required answer the request left out.
func (r Request) Input() (Input, error) {
	var missing []string
	if r.Independent == nil {
		missing = append(missing, domain.FieldIndependent)
	}
	if r.HouseholdSize == nil {
		missing = append(missing, domain.FieldHouseholdSize)
	}
	if r.IncomeBand == nil {
		missing = append(missing, domain.FieldIncomeRange)
	}
	if r.AssetBand == nil {
		missing = append(missing, domain.FieldAssetRange)
	}
	if len(missing) > 0 {
		return Input{}, &domain.PreconditionError{Missing: missing}
	}
	return Input{
		AwardYear:     r.AwardYear,
		Independent:   *r.Independent,
		HouseholdSize: *r.HouseholdSize,
		IncomeBand:    *r.IncomeBand,
		AssetBand:     *r.AssetBand,
		Enrollment:    r.Enrollment,
	}, nil
}
