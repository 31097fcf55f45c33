package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		s := NewState("sess-1")
		d := Diff(nil, s)
		require.NotNil(t, d)
		require.NotNil(t, d.Flow)
		assert.Equal(t, ModeInitial, d.Flow.Mode())
		assert.Equal(t, DefaultAwardYear, d.Fields[FieldAwardYear])
		assert.NotContains(t, d.Fields, FieldIndependent)
	})

	t.Run("No Changes", func(t *testing.T) {
		s := NewState("sess-1")
		assert.Nil(t, Diff(s, s.Clone()))
	})

	t.Run("Answer Set", func(t *testing.T) {
		old := NewState("sess-1")
		old.Flow = FlowEstimate()
		next := old.Clone()
		next.Independent = Bool(true)

		d := Diff(old, next)
		require.NotNil(t, d)
		assert.Nil(t, d.Flow)
		assert.Equal(t, map[string]any{FieldIndependent: true}, d.Fields)
	})

	t.Run("Answers Cleared On Flow Change", func(t *testing.T) {
		old := NewState("sess-1")
		old.Flow = FlowApply(ApplyTaxInfo)
		old.Independent = Bool(false)
		old.HouseholdSize = Int(3)
		next := old.Clone()
		next.Flow = FlowEstimate()
		next.ClearEstimate()

		d := Diff(old, next)
		require.NotNil(t, d)
		require.NotNil(t, d.Flow)
		assert.Equal(t, ModeEstimate, d.Flow.Mode())
		assert.Contains(t, d.Fields, FieldIndependent)
		assert.Nil(t, d.Fields[FieldIndependent])
		assert.Nil(t, d.Fields[FieldHouseholdSize])
	})
}

func TestDiff_JSON(t *testing.T) {
	old := NewState("sess-1")
	next := old.Clone()
	next.Flow = FlowApply(ApplyIndependence)
	next.AwardYear = "2025-26"

	data, err := json.Marshal(Diff(old, next))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"session_id": "sess-1",
		"flow": {"mode": "apply", "step": 2},
		"fields": {"award_year": "2025-26"}
	}`, string(data))
}
