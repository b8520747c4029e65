package points_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubenbolivar/llevateloexpress.com/points"
)

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestClassify_InclusiveBoundaries(t *testing.T) {
	// A balance exactly on a cutoff takes the higher tier.
	thresholds := points.DefaultThresholds()

	cases := map[int]points.Standing{
		150: points.StandingExcellent,
		100: points.StandingExcellent,
		99:  points.StandingGood,
		80:  points.StandingGood,
		79:  points.StandingAverage,
		60:  points.StandingAverage,
		59:  points.StandingPoor,
		40:  points.StandingPoor,
		39:  points.StandingBad,
		0:   points.StandingBad,
		-20: points.StandingBad,
	}
	for balance, want := range cases {
		assert.Equal(t, want, points.Classify(balance, thresholds), "balance=%d", balance)
	}
}

func TestClassify_Totality(t *testing.T) {
	// Every integer balance maps to exactly one tier, and the tier never
	// improves as the balance drops.
	thresholds := points.DefaultThresholds()
	waiting := points.DefaultWaitingDays()

	previousDays := -1
	for balance := 200; balance >= -100; balance-- {
		standing := points.Classify(balance, thresholds)
		days := waiting.Days(standing)
		assert.GreaterOrEqual(t, days, previousDays,
			"waiting days must not shrink as balance drops (balance=%d)", balance)
		previousDays = days
	}
}

// =============================================================================
// RESOLUTION TESTS
// =============================================================================

func TestResolve_ReturnsFullTable(t *testing.T) {
	// GIVEN: A borrower with 85 points
	// WHEN: Resolving standing
	// THEN: good tier, 7 waiting days, and the full 5-row display table

	info := points.Resolve(85, points.DefaultThresholds(), points.DefaultWaitingDays())

	assert.Equal(t, 85, info.CurrentPoints)
	assert.Equal(t, points.StandingGood, info.Standing)
	assert.Equal(t, 7, info.WaitingDays)

	require.Len(t, info.Table, 5)
	assert.Equal(t, points.StandingExcellent, info.Table[0].Standing)
	require.NotNil(t, info.Table[0].MinPoints)
	assert.Equal(t, 100, *info.Table[0].MinPoints)
	assert.Equal(t, 0, info.Table[0].WaitingDays)

	// The bottom tier has no floor.
	assert.Equal(t, points.StandingBad, info.Table[4].Standing)
	assert.Nil(t, info.Table[4].MinPoints)
	assert.Equal(t, 45, info.Table[4].WaitingDays)
}

func TestResolve_DefaultWaitingDaysPerTier(t *testing.T) {
	thresholds := points.DefaultThresholds()
	waiting := points.DefaultWaitingDays()

	cases := map[int]int{
		120: 0,
		85:  7,
		65:  15,
		45:  30,
		10:  45,
	}
	for balance, wantDays := range cases {
		info := points.Resolve(balance, thresholds, waiting)
		assert.Equal(t, wantDays, info.WaitingDays, "balance=%d", balance)
	}
}

// =============================================================================
// THRESHOLD VALIDATION TESTS
// =============================================================================

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, points.DefaultThresholds().Validate())

	bad := points.Thresholds{Excellent: 80, Good: 80, Average: 60, Poor: 40}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, points.ErrThresholdOrder)

	inverted := points.Thresholds{Excellent: 40, Good: 60, Average: 80, Poor: 100}
	assert.Error(t, inverted.Validate())
}
