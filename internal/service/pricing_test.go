package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestTotal_DiscountPricePrecedence(t *testing.T) {
	items := []CartItemView{
		{ProductID: "p1", Quantity: 2, Price: 20, DiscountPrice: floatPtr(15), UnitPrice: 15},
		{ProductID: "p2", Quantity: 3, Price: 10, UnitPrice: 10},
	}

	total, err := Total(items, SkipUnresolved)

	require.NoError(t, err)
	assert.Equal(t, 60.0, total)
}

func TestTotal_EmptyCart(t *testing.T) {
	total, err := Total(nil, SkipUnresolved)

	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestTotal_SkipModeExcludesUnresolved(t *testing.T) {
	items := []CartItemView{
		{ProductID: "p1", Quantity: 2, UnitPrice: 15},
		{ProductID: "gone", Quantity: 5, Unresolved: true},
	}

	total, err := Total(items, SkipUnresolved)

	require.NoError(t, err)
	assert.Equal(t, 30.0, total)
}

func TestTotal_RejectModeFailsOnUnresolved(t *testing.T) {
	items := []CartItemView{
		{ProductID: "p1", Quantity: 2, UnitPrice: 15},
		{ProductID: "gone", Quantity: 5, Unresolved: true},
	}

	_, err := Total(items, RejectUnresolved)

	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestTotal_RejectModeWithAllResolved(t *testing.T) {
	items := []CartItemView{
		{ProductID: "p1", Quantity: 1, UnitPrice: 9.99},
	}

	total, err := Total(items, RejectUnresolved)

	require.NoError(t, err)
	assert.Equal(t, 9.99, total)
}
