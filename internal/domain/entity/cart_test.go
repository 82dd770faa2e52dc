package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"physical", "digital", "audiobook"} {
		f, err := ParseFormat(valid)
		assert.NoError(t, err)
		assert.Equal(t, Format(valid), f)
	}

	_, err := ParseFormat("vinyl")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseFormat("Physical")
	assert.ErrorIs(t, err, ErrInvalidFormat, "formats are case sensitive")
}

func TestFormat_StockLimited(t *testing.T) {
	assert.True(t, FormatPhysical.StockLimited())
	assert.False(t, FormatDigital.StockLimited())
	assert.False(t, FormatAudiobook.StockLimited())
}

func TestCart_AddItem_AccumulatesOnProductAndFormat(t *testing.T) {
	cart := NewCart("user1")

	require.NoError(t, cart.AddItem("book1", 2, FormatPhysical))
	require.NoError(t, cart.AddItem("book1", 3, FormatPhysical))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCart_AddItem_SameProductDifferentFormat(t *testing.T) {
	cart := NewCart("user1")

	require.NoError(t, cart.AddItem("book1", 1, FormatPhysical))
	require.NoError(t, cart.AddItem("book1", 1, FormatDigital))

	require.Len(t, cart.Items, 2)

	item, _ := cart.GetItem("book1", FormatPhysical)
	require.NotNil(t, item)
	assert.Equal(t, 1, item.Quantity)
}

func TestCart_AddItem_InvalidQuantity(t *testing.T) {
	cart := NewCart("user1")

	assert.ErrorIs(t, cart.AddItem("book1", 0, FormatPhysical), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddItem("book1", -3, FormatPhysical), ErrInvalidQuantity)
	assert.Empty(t, cart.Items)
}

func TestCart_AddItem_InvalidFormat(t *testing.T) {
	cart := NewCart("user1")

	assert.ErrorIs(t, cart.AddItem("book1", 1, Format("hardcover")), ErrInvalidFormat)
	assert.Empty(t, cart.Items)
}

func TestCart_UpdateItemQuantity_SetsDirectly(t *testing.T) {
	cart := NewCart("user1")
	require.NoError(t, cart.AddItem("book1", 2, FormatPhysical))

	require.NoError(t, cart.UpdateItemQuantity("book1", FormatPhysical, 7))

	item, _ := cart.GetItem("book1", FormatPhysical)
	require.NotNil(t, item)
	assert.Equal(t, 7, item.Quantity)
}

func TestCart_UpdateItemQuantity_ZeroRemovesItem(t *testing.T) {
	cart := NewCart("user1")
	require.NoError(t, cart.AddItem("book1", 2, FormatPhysical))

	require.NoError(t, cart.UpdateItemQuantity("book1", FormatPhysical, 0))

	assert.Empty(t, cart.Items)
	assert.True(t, cart.IsEmpty())
}

func TestCart_UpdateItemQuantity_MissingItem(t *testing.T) {
	cart := NewCart("user1")

	assert.Error(t, cart.UpdateItemQuantity("book1", FormatPhysical, 2))
}

func TestCart_RemoveItem_RoundTrip(t *testing.T) {
	cart := NewCart("user1")
	require.NoError(t, cart.AddItem("book1", 1, FormatAudiobook))

	require.NoError(t, cart.AddItem("book2", 1, FormatPhysical))
	cart.RemoveItem("book2", FormatPhysical)

	require.Len(t, cart.Items, 1)
	item, _ := cart.GetItem("book2", FormatPhysical)
	assert.Nil(t, item)
}

func TestCart_RemoveItem_AbsentIsNoOp(t *testing.T) {
	cart := NewCart("user1")
	require.NoError(t, cart.AddItem("book1", 1, FormatPhysical))

	cart.RemoveItem("book2", FormatDigital)

	assert.Len(t, cart.Items, 1)
}

func TestNewCart_StartsActiveAndEmpty(t *testing.T) {
	cart := NewCart("user1")

	assert.True(t, cart.Active)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 1, cart.Version)
}

func TestCart_Deactivate(t *testing.T) {
	cart := NewCart("user1")
	cart.Deactivate()
	assert.False(t, cart.Active)
}
