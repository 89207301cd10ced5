package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStatusTransitions(t *testing.T) {
	assert.True(t, ReportStatusNew.CanTransitionTo(ReportStatusAssigned))
	assert.True(t, ReportStatusNew.CanTransitionTo(ReportStatusCancelled))
	assert.True(t, ReportStatusAssigned.CanTransitionTo(ReportStatusPicked))
	assert.True(t, ReportStatusAssigned.CanTransitionTo(ReportStatusCancelled))
	assert.True(t, ReportStatusPicked.CanTransitionTo(ReportStatusDelivered))

	assert.False(t, ReportStatusNew.CanTransitionTo(ReportStatusPicked))
	assert.False(t, ReportStatusPicked.CanTransitionTo(ReportStatusCancelled))
	for _, terminal := range []ReportStatus{ReportStatusDelivered, ReportStatusCancelled} {
		assert.True(t, terminal.IsTerminal())
		for status := range reportTransitions {
			assert.False(t, terminal.CanTransitionTo(status), "%s -> %s", terminal, status)
		}
	}
}

func TestHoldsAgent(t *testing.T) {
	assert.False(t, ReportStatusNew.HoldsAgent())
	assert.True(t, ReportStatusAssigned.HoldsAgent())
	assert.True(t, ReportStatusPicked.HoldsAgent())
	assert.True(t, ReportStatusDelivered.HoldsAgent())
	assert.False(t, ReportStatusCancelled.HoldsAgent())
}

func TestParseReportStatuses(t *testing.T) {
	statuses, err := ParseReportStatuses([]string{"assigned", "", "picked"})
	require.NoError(t, err)
	assert.Equal(t, []ReportStatus{ReportStatusAssigned, ReportStatusPicked}, statuses)

	_, err = ParseReportStatuses([]string{"lost"})
	assert.Error(t, err)
}

func TestNewFoodCategory(t *testing.T) {
	c, err := NewFoodCategory("non-vegetarian")
	require.NoError(t, err)
	assert.Equal(t, FoodCategoryNonVegetarian, c)

	_, err = NewFoodCategory("desserts")
	assert.Error(t, err)
}

func TestNewGeoPoint(t *testing.T) {
	_, err := NewGeoPoint(91, 0)
	assert.Error(t, err)

	p, err := NewGeoPoint(55.75, 37.61)
	require.NoError(t, err)
	assert.Equal(t, "55.75000,37.61000", p.String())
	assert.Nil(t, PointFromNullable(nil, &p.Lng))
}
