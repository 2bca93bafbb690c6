package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type line struct {
	ProductID string  `json:"productId" validate:"required"`
	Price     float64 `json:"price" validate:"numeric,gte=0"`
	Quantity  int     `json:"quantity" validate:"required,integer,gte=1"`
}

type createReq struct {
	Items   []line `json:"items" validate:"required"`
	Payment string `json:"payment" validate:"nullable,max=10"`
	Kind    string `json:"kind" validate:"nullable,in=standard,express"`
}

func TestStructValid(t *testing.T) {
	errs := Struct(&createReq{
		Items: []line{{ProductID: "p1", Price: 9.99, Quantity: 1}},
	})
	assert.False(t, HasErrors(errs))
}

func TestStructRequired(t *testing.T) {
	errs := Struct(&createReq{})
	assert.Contains(t, errs, "items")
}

func TestStructNestedSliceErrors(t *testing.T) {
	errs := Struct(&createReq{
		Items: []line{
			{ProductID: "p1", Price: 5, Quantity: 1},
			{Price: 5, Quantity: 0},
		},
	})

	assert.Contains(t, errs, "items.1.productId")
	assert.Contains(t, errs, "items.1.quantity")
	assert.NotContains(t, errs, "items.0.productId")
}

func TestNullableSkipsWhenEmpty(t *testing.T) {
	errs := Struct(&createReq{
		Items: []line{{ProductID: "p1", Price: 1, Quantity: 1}},
	})
	assert.NotContains(t, errs, "payment")
	assert.NotContains(t, errs, "kind")
}

func TestMaxOnString(t *testing.T) {
	errs := Struct(&createReq{
		Items:   []line{{ProductID: "p1", Price: 1, Quantity: 1}},
		Payment: "a-very-long-payment-method",
	})
	assert.Contains(t, errs, "payment")
}

func TestInRule(t *testing.T) {
	errs := Struct(&createReq{
		Items: []line{{ProductID: "p1", Price: 1, Quantity: 1}},
		Kind:  "teleport",
	})
	assert.Contains(t, errs, "kind")

	errs = Struct(&createReq{
		Items: []line{{ProductID: "p1", Price: 1, Quantity: 1}},
		Kind:  "express",
	})
	assert.NotContains(t, errs, "kind")
}

func TestGteOnNumbers(t *testing.T) {
	errs := Struct(&createReq{
		Items: []line{{ProductID: "p1", Price: -0.01, Quantity: 1}},
	})
	assert.Contains(t, errs, "items.0.price")
}
