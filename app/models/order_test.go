package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"PENDING", StatusPending, true},
		{"pending", StatusPending, true},
		{" Confirmed ", StatusConfirmed, true},
		{"DELIVERED", StatusDelivered, true},
		{"cancelled", StatusCancelled, true},
		{"", "", false},
		{"SHIPPED", "", false},
		{"DELIVERED!", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseStatusFilter(t *testing.T) {
	got, ok := ParseStatusFilter("delivered")
	assert.True(t, ok)
	assert.Equal(t, StatusDelivered, got)

	// Unknown and empty values mean "no filter", not an error.
	_, ok = ParseStatusFilter("whatever")
	assert.False(t, ok)
	_, ok = ParseStatusFilter("  ")
	assert.False(t, ok)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestCloneItems(t *testing.T) {
	order := &Order{
		ID: "o1",
		Items: []OrderLine{
			{ID: 7, OrderID: "o1", Position: 0, ProductID: "p1", ProductName: "Mug", SellerID: "s1", Price: 12.5, Quantity: 2},
			{ID: 8, OrderID: "o1", Position: 1, ProductID: "p2", ProductName: "Kettle", SellerID: "s2", Price: 49.5, Quantity: 1},
		},
	}

	clones := order.CloneItems()
	for i, line := range clones {
		assert.Zero(t, line.ID)
		assert.Empty(t, line.OrderID)
		assert.Equal(t, i, line.Position)
		assert.Equal(t, order.Items[i].ProductID, line.ProductID)
		assert.Equal(t, order.Items[i].Price, line.Price)
		assert.Equal(t, order.Items[i].Quantity, line.Quantity)
	}
}
