package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

func TestProgress(t *testing.T) {
	s := domain.NewState("s1")
	assert.Equal(t, 0.0, Progress(s))

	s.Independent = domain.Bool(false)
	assert.Equal(t, 0.25, Progress(s))

	s.HouseholdSize = domain.Int(2)
	s.IncomeRange = domain.String("under_20k")
	assert.Equal(t, 0.75, Progress(s))

	s.AssetRange = domain.String("under_1k")
	assert.Equal(t, 1.0, Progress(s))

	s.ClearEstimate()
	assert.Equal(t, 0.0, Progress(s))
}

func TestChapter(t *testing.T) {
	tests := []struct {
		name string
		flow domain.Flow
		want int
	}{
		{"Initial", domain.FlowInitial(), 1},
		{"Apply Award Year", domain.FlowApply(domain.ApplyAwardYear), 1},
		{"Apply Independence", domain.FlowApply(domain.ApplyIndependence), 2},
		{"Apply Household", domain.FlowApply(domain.ApplyHousehold), 2},
		{"Apply Tax", domain.FlowApply(domain.ApplyTaxInfo), 3},
		{"Apply Bank", domain.FlowApply(domain.ApplyBankInfo), 4},
		{"Apply Done", domain.FlowApply(domain.ApplyDone), 6},
		{"Estimate", domain.FlowEstimate(), 4},
		{"Documents", domain.FlowDocuments(), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NewState("s1")
			s.Flow = tt.flow
			assert.Equal(t, tt.want, Chapter(s))
		})
	}
}

func TestChapter_CompletedEstimateStaysAtFour(t *testing.T) {
	s := domain.NewState("s1")
	s.Flow = domain.FlowEstimate()
	s.Independent = domain.Bool(true)
	s.HouseholdSize = domain.Int(1)
	s.IncomeRange = domain.String("under_20k")
	s.AssetRange = domain.String("under_1k")
	assert.Equal(t, 4, Chapter(s))
}

// Chapter 5 has no state mapped to it. Keep it that way until the progress
// bar gets a real fifth stage.
func TestChapter_FiveIsUnreachable(t *testing.T) {
	flows := []domain.Flow{domain.FlowInitial(), domain.FlowEstimate(), domain.FlowDocuments()}
	for step := domain.ApplyAwardYear; step <= domain.ApplyDone; step++ {
		flows = append(flows, domain.FlowApply(step))
	}
	for _, f := range flows {
		s := domain.NewState("s1")
		s.Flow = f
		c := Chapter(s)
		assert.NotEqual(t, 5, c, f.String())
		assert.GreaterOrEqual(t, c, 1)
		assert.LessOrEqual(t, c, 6)
	}
}
