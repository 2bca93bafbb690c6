package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/buy01/order-service/app/dto"
	"github.com/buy01/order-service/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockCall struct {
	productID string
	delta     int
}

// stockRecorder captures AdjustQuantity calls; set fail to simulate an
// unreachable product service.
type stockRecorder struct {
	mu    sync.Mutex
	calls []stockCall
	fail  bool
}

func (s *stockRecorder) AdjustQuantity(_ context.Context, productID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stockCall{productID: productID, delta: delta})
	if s.fail {
		return errors.New("product service unreachable")
	}
	return nil
}

func (s *stockRecorder) snapshot() []stockCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stockCall(nil), s.calls...)
}

func newTestService() (*OrderService, *MemoryStore, *stockRecorder) {
	store := NewMemoryStore()
	stock := &stockRecorder{}
	return NewOrderService(store, stock), store, stock
}

func twoLineRequest() *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		Items: []dto.OrderLineRequest{
			{ProductID: "p1", ProductName: "Ceramic Mug", SellerID: "seller-1", Price: 12.50, Quantity: 2},
			{ProductID: "p2", ProductName: "Kettle", SellerID: "seller-2", Price: 49.50, Quantity: 1},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	svc, _, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), "user-1", twoLineRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "pay_on_delivery", order.PaymentMethod)
	assert.InDelta(t, 74.50, order.TotalAmount, 1e-9)

	require.Len(t, order.Items, 2)
	assert.Equal(t, 0, order.Items[0].Position)
	assert.Equal(t, 1, order.Items[1].Position)
	assert.Equal(t, "p1", order.Items[0].ProductID)
}

func TestCreateOrderKeepsExplicitPaymentMethod(t *testing.T) {
	svc, _, _ := newTestService()

	req := twoLineRequest()
	req.PaymentMethod = "card"
	order, err := svc.CreateOrder(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, "card", order.PaymentMethod)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		req   *dto.CreateOrderRequest
		field string
	}{
		{
			name:  "no items",
			req:   &dto.CreateOrderRequest{},
			field: "items",
		},
		{
			name: "negative price",
			req: &dto.CreateOrderRequest{Items: []dto.OrderLineRequest{
				{ProductID: "p1", ProductName: "Mug", SellerID: "s1", Price: -1, Quantity: 1},
			}},
			field: "items.0.price",
		},
		{
			name: "zero quantity",
			req: &dto.CreateOrderRequest{Items: []dto.OrderLineRequest{
				{ProductID: "p1", ProductName: "Mug", SellerID: "s1", Price: 5, Quantity: 0},
			}},
			field: "items.0.quantity",
		},
		{
			name: "missing product id",
			req: &dto.CreateOrderRequest{Items: []dto.OrderLineRequest{
				{ProductName: "Mug", SellerID: "s1", Price: 5, Quantity: 1},
			}},
			field: "items.0.productId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, "user-1", tt.req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCancelOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.UpdatedAt.After(order.UpdatedAt) || cancelled.UpdatedAt.Equal(order.UpdatedAt))

	// Cancelling again keeps the status and refreshes updatedAt.
	time.Sleep(time.Millisecond)
	again, err := svc.CancelOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, again.Status)
	assert.True(t, again.UpdatedAt.After(cancelled.UpdatedAt))
}

func TestCancelOrderNotOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, "user-2", order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelDeliveredOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, "DELIVERED")
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, "user-1", order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := svc.GetOrderByID(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)
}

func TestCancelMissingOrder(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CancelOrder(context.Background(), "user-1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	original, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, "user-1", original.ID)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	redo, err := svc.ReOrder(ctx, "user-1", original.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, redo.ID)
	assert.Equal(t, models.StatusPending, redo.Status)
	// Fresh timestamps, not the source order's.
	assert.False(t, redo.CreatedAt.IsZero())
	assert.True(t, redo.CreatedAt.After(original.CreatedAt))
	assert.Equal(t, original.TotalAmount, redo.TotalAmount)
	assert.Equal(t, original.PaymentMethod, redo.PaymentMethod)

	require.Len(t, redo.Items, len(original.Items))
	for i, line := range redo.Items {
		assert.Equal(t, original.Items[i].ProductID, line.ProductID)
		assert.Equal(t, original.Items[i].Price, line.Price)
		assert.Equal(t, original.Items[i].Quantity, line.Quantity)
		assert.Equal(t, original.Items[i].SellerID, line.SellerID)
	}

	// The source order keeps its own state.
	src, err := svc.GetOrderByID(ctx, "user-1", original.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, src.Status)
}

func TestReOrderNotOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	_, err = svc.ReOrder(ctx, "user-2", order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, "user-1", order.ID))

	_, err = svc.GetOrderByID(ctx, "user-1", order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteOrder(ctx, "user-1", order.ID), ErrNotFound)
}

func TestDeleteOrderNotOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteOrder(ctx, "user-2", order.ID), ErrForbidden)
}

func TestUpdateStatusDeliveredSyncsStock(t *testing.T) {
	svc, _, stock := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	calls := stock.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, stockCall{productID: "p1", delta: -2}, calls[0])
	assert.Equal(t, stockCall{productID: "p2", delta: -1}, calls[1])

	// A repeated DELIVERED write must not sync stock again.
	_, err = svc.UpdateStatus(ctx, order.ID, "DELIVERED")
	require.NoError(t, err)
	assert.Len(t, stock.snapshot(), 2)
}

func TestUpdateStatusStockFailureDoesNotFailDelivery(t *testing.T) {
	svc, _, stock := newTestService()
	stock.fail = true
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	// Every line was still attempted.
	assert.Len(t, stock.snapshot(), 2)
}

func TestUpdateStatusOnCancelledOrderStillApplies(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, "CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
}

func TestUpdateStatusInvalid(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, "SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, "nope", "CONFIRMED")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTotalSpentExcludesCancelled(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	second, err := svc.CreateOrder(ctx, "user-1", &dto.CreateOrderRequest{
		Items: []dto.OrderLineRequest{
			{ProductID: "p3", ProductName: "Beans", SellerID: "seller-1", Price: 20, Quantity: 1},
		},
	})
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, "user-1", second.ID)
	require.NoError(t, err)

	total, err := svc.GetTotalSpentByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, first.TotalAmount, total, 1e-9)
}

func TestGetOrdersByUserFilters(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, "user-1", &dto.CreateOrderRequest{
		Items: []dto.OrderLineRequest{
			{ProductID: "p3", ProductName: "Coffee Beans", SellerID: "seller-1", Price: 20, Quantity: 1},
		},
	})
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, "user-1", second.ID)
	require.NoError(t, err)

	all, err := svc.GetOrdersByUser(ctx, "user-1", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Lenient filter: unknown values mean no filter.
	unknown, err := svc.GetOrdersByUser(ctx, "user-1", "whatever", "")
	require.NoError(t, err)
	assert.Len(t, unknown, 2)

	cancelled, err := svc.GetOrdersByUser(ctx, "user-1", "cancelled", "")
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, second.ID, cancelled[0].ID)

	// Case-insensitive search over product names.
	mugs, err := svc.GetOrdersByUser(ctx, "user-1", "", "MUG")
	require.NoError(t, err)
	require.Len(t, mugs, 1)
	assert.Equal(t, first.ID, mugs[0].ID)
}

func TestGetOrdersBySellerSearchOnlyOwnLines(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// seller-2 only sells the kettle in this order.
	order, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)

	kettles, err := svc.GetOrdersBySeller(ctx, "seller-2", "", "kettle")
	require.NoError(t, err)
	require.Len(t, kettles, 1)
	assert.Equal(t, order.ID, kettles[0].ID)

	// The mug line belongs to seller-1, so seller-2 cannot match on it.
	mugs, err := svc.GetOrdersBySeller(ctx, "seller-2", "", "mug")
	require.NoError(t, err)
	assert.Empty(t, mugs)
}

func TestGetSellerStats(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Delivered order: mug x2 (25.00) + kettle x1 for the other seller.
	first, err := svc.CreateOrder(ctx, "user-1", twoLineRequest())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, "DELIVERED")
	require.NoError(t, err)

	// Confirmed order: mug x1 (12.50).
	second, err := svc.CreateOrder(ctx, "user-2", &dto.CreateOrderRequest{
		Items: []dto.OrderLineRequest{
			{ProductID: "p1", ProductName: "Ceramic Mug", SellerID: "seller-1", Price: 12.50, Quantity: 1},
		},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, second.ID, "CONFIRMED")
	require.NoError(t, err)

	// Pending orders never count toward earnings, but their products still
	// rank in the top-product list.
	_, err = svc.CreateOrder(ctx, "user-3", &dto.CreateOrderRequest{
		Items: []dto.OrderLineRequest{
			{ProductID: "p4", ProductName: "Grinder", SellerID: "seller-1", Price: 99, Quantity: 1},
		},
	})
	require.NoError(t, err)

	stats, err := svc.GetSellerStats(ctx, "seller-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.ConfirmedOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.Equal(t, 0, stats.CancelledOrders)
	assert.InDelta(t, 37.50, stats.TotalEarned, 1e-9)

	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "Ceramic Mug", stats.TopProducts[0].Name)
	assert.Equal(t, 3, stats.TopProducts[0].Quantity)
	assert.InDelta(t, 37.50, stats.TopProducts[0].Revenue, 1e-9)
	assert.Equal(t, "Grinder", stats.TopProducts[1].Name)
	assert.Equal(t, 1, stats.TopProducts[1].Quantity)
}

func TestGetSellerStatsRanksPendingOrderProducts(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "user-1", &dto.CreateOrderRequest{
		Items: []dto.OrderLineRequest{
			{ProductID: "p9", ProductName: "French Press", SellerID: "seller-9", Price: 30, Quantity: 3},
		},
	})
	require.NoError(t, err)

	stats, err := svc.GetSellerStats(ctx, "seller-9")
	require.NoError(t, err)

	assert.Zero(t, stats.TotalEarned)
	require.Len(t, stats.TopProducts, 1)
	assert.Equal(t, "French Press", stats.TopProducts[0].Name)
	assert.Equal(t, 3, stats.TopProducts[0].Quantity)
}

func TestGetSellerStatsTopProductsCappedAtFive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	var items []dto.OrderLineRequest
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, name := range names {
		items = append(items, dto.OrderLineRequest{
			ProductID:   name,
			ProductName: name,
			SellerID:    "seller-1",
			Price:       1,
			Quantity:    len(names) - i, // A sells most, G least
		})
	}

	order, err := svc.CreateOrder(ctx, "user-1", &dto.CreateOrderRequest{Items: items})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, "CONFIRMED")
	require.NoError(t, err)

	stats, err := svc.GetSellerStats(ctx, "seller-1")
	require.NoError(t, err)

	require.Len(t, stats.TopProducts, 5)
	assert.Equal(t, "A", stats.TopProducts[0].Name)
	assert.Equal(t, "E", stats.TopProducts[4].Name)
}
