// Package dto holds the request and response shapes of the orders API.
package dto

// OrderLineRequest is one product entry in an order being placed.
type OrderLineRequest struct {
	ProductID   string  `json:"productId" validate:"required,max=64"`
	ProductName string  `json:"productName" validate:"required,max=255"`
	SellerID    string  `json:"sellerId" validate:"required,max=64"`
	Price       float64 `json:"price" validate:"numeric,gte=0"`
	Quantity    int     `json:"quantity" validate:"required,integer,gte=1"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	Items         []OrderLineRequest `json:"items" validate:"required"`
	PaymentMethod string             `json:"paymentMethod" validate:"nullable,max=50"`
}

// UpdateStatusRequest is the body of PUT /api/v1/orders/{orderId}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=16"`
}

// TopProduct is one entry of a seller's best-selling products.
type TopProduct struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// SellerStats aggregates a seller's earnings and order counts over every
// order that contains at least one of their products.
type SellerStats struct {
	TotalEarned     float64      `json:"totalEarned"`
	TotalOrders     int          `json:"totalOrders"`
	PendingOrders   int          `json:"pendingOrders"`
	ConfirmedOrders int          `json:"confirmedOrders"`
	DeliveredOrders int          `json:"deliveredOrders"`
	CancelledOrders int          `json:"cancelledOrders"`
	TopProducts     []TopProduct `json:"topProducts"`
}

// TotalSpent is the response of GET /api/v1/orders/stats/spent.
type TotalSpent struct {
	TotalSpent float64 `json:"totalSpent"`
}
