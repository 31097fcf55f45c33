package estimate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

func TestRequest_Input(t *testing.T) {
	req := Request{
		Independent:   domain.Bool(false),
		HouseholdSize: domain.Int(2),
		IncomeBand:    domain.String("under_20k"),
		AssetBand:     domain.String("under_1k"),
		Enrollment:    domain.HalfTime,
	}
	in, err := req.Input()
	require.NoError(t, err)
	assert.Equal(t, Input{
		Independent:   false,
		HouseholdSize: 2,
		IncomeBand:    "under_20k",
		AssetBand:     "under_1k",
		Enrollment:    domain.HalfTime,
	}, in)
}

func TestRequest_MissingAnswers(t *testing.T) {
	_, err := Request{
		HouseholdSize: domain.Int(3),
		IncomeBand:    domain.String("20_40k"),
	}.Input()

	var pe *domain.PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []string{domain.FieldIndependent, domain.FieldAssetRange}, pe.Missing)

	_, err = Request{}.Input()
	require.True(t, errors.As(err, &pe))
	assert.Len(t, pe.Missing, 4)
}
