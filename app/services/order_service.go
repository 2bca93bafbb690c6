// Package services holds the order lifecycle engine and its collaborator
// ports.
package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buy01/order-service/app/dto"
	"github.com/buy01/order-service/app/models"
	"github.com/buy01/order-service/pkg/cache"
	"github.com/buy01/order-service/pkg/logger"
	"github.com/buy01/order-service/pkg/metrics"
)

const (
	defaultPaymentMethod = "pay_on_delivery"
	sellerStatsCacheKey  = "orders:seller_stats:"
	sellerStatsCacheTTL  = 30 * time.Second
)

// OrderStore is the persistence port of the order engine.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindBySeller(ctx context.Context, sellerID string) ([]models.Order, error)
	Delete(ctx context.Context, id string) (bool, error)
	SwapStatus(ctx context.Context, id string, next models.Status) (*models.Order, models.Status, error)
}

// StockAdjuster applies inventory deltas on the product service.
type StockAdjuster interface {
	AdjustQuantity(ctx context.Context, productID string, delta int) error
}

// OrderService implements the order lifecycle.
type OrderService struct {
	store OrderStore
	stock StockAdjuster
}

func NewOrderService(store OrderStore, stock StockAdjuster) *OrderService {
	return &OrderService{store: store, stock: stock}
}

// CreateOrder places a new PENDING order for userID. The total amount and
// the per-line price/name snapshot are frozen at placement time.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*models.Order, error) {
	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	payment := strings.TrimSpace(req.PaymentMethod)
	if payment == "" {
		payment = defaultPaymentMethod
	}

	order := &models.Order{
		ID:            models.NewID(),
		UserID:        userID,
		Status:        models.StatusPending,
		PaymentMethod: payment,
	}
	for i, item := range req.Items {
		order.Items = append(order.Items, models.OrderLine{
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SellerID:    item.SellerID,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
		order.TotalAmount += item.Price * float64(item.Quantity)
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.invalidateSellerStats(order)
	logger.WithCtx(ctx).Info("order created",
		"order_id", order.ID, "user_id", userID, "total", order.TotalAmount)
	return order, nil
}

// ReOrder places a fresh PENDING order with the same line snapshot as a
// previous order of the same user. Prices are the ones recorded at the
// original placement, not current catalog prices.
func (s *OrderService) ReOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	prev, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            models.NewID(),
		UserID:        userID,
		Items:         prev.CloneItems(),
		Status:        models.StatusPending,
		TotalAmount:   prev.TotalAmount,
		PaymentMethod: prev.PaymentMethod,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.invalidateSellerStats(order)
	logger.WithCtx(ctx).Info("order re-placed",
		"order_id", order.ID, "source_order_id", orderID, "user_id", userID)
	return order, nil
}

// CancelOrder moves an owned order to CANCELLED. Delivered orders cannot be
// cancelled; cancelling an already cancelled order re-applies the status
// and refreshes updatedAt.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusDelivered {
		return nil, ErrInvalidTransition
	}

	updated, prevStatus, err := s.store.SwapStatus(ctx, orderID, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if prevStatus == models.StatusDelivered {
		// A concurrent delivery won the race; put the order back.
		if _, _, err := s.store.SwapStatus(ctx, orderID, models.StatusDelivered); err != nil {
			logger.WithCtx(ctx).Error("failed to restore delivered status after cancel race",
				"order_id", orderID, "error", err)
		}
		return nil, ErrInvalidTransition
	}

	metrics.StatusTransitions.WithLabelValues(string(models.StatusCancelled)).Inc()
	s.invalidateSellerStats(updated)
	logger.WithCtx(ctx).Info("order cancelled", "order_id", orderID, "user_id", userID)
	return updated, nil
}

// DeleteOrder removes an owned order and its lines permanently.
func (s *OrderService) DeleteOrder(ctx context.Context, userID, orderID string) error {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	existed, err := s.store.Delete(ctx, orderID)
	if err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}

	s.invalidateSellerStats(order)
	logger.WithCtx(ctx).Info("order deleted", "order_id", orderID, "user_id", userID)
	return nil
}

// UpdateStatus applies an explicit status to an order. On the first
// transition into DELIVERED the sold quantities are pushed to the product
// service; a repeated DELIVERED write never re-syncs stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, rawStatus string) (*models.Order, error) {
	next, ok := models.ParseStatus(rawStatus)
	if !ok {
		return nil, ErrInvalidStatus
	}

	order, prevStatus, err := s.store.SwapStatus(ctx, orderID, next)
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(next)).Inc()
	if next == models.StatusDelivered && prevStatus != models.StatusDelivered {
		s.syncStock(ctx, order)
	}

	s.invalidateSellerStats(order)
	logger.WithCtx(ctx).Info("order status updated",
		"order_id", orderID, "from", prevStatus, "to", next)
	return order, nil
}

// syncStock decrements product quantities for every line of a delivered
// order. Failures are logged and counted but never fail the delivery: the
// status change has already been committed.
func (s *OrderService) syncStock(ctx context.Context, order *models.Order) {
	for _, line := range order.Items {
		if err := s.stock.AdjustQuantity(ctx, line.ProductID, -line.Quantity); err != nil {
			metrics.StockSync.WithLabelValues("failure").Inc()
			logger.WithCtx(ctx).Error("stock sync failed",
				"order_id", order.ID, "product_id", line.ProductID,
				"delta", -line.Quantity, "error", err)
			continue
		}
		metrics.StockSync.WithLabelValues("success").Inc()
	}
}

// GetOrderByID returns an order the user owns.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.ownedOrder(ctx, userID, orderID)
}

// GetOrdersByUser lists the user's orders, optionally narrowed by status
// and by a case-insensitive product name search.
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID, rawStatus, search string) ([]models.Order, error) {
	orders, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterOrders(orders, rawStatus, search, ""), nil
}

// GetOrdersBySeller lists every order containing the seller's products.
// The search only matches lines sold by this seller.
func (s *OrderService) GetOrdersBySeller(ctx context.Context, sellerID, rawStatus, search string) ([]models.Order, error) {
	orders, err := s.store.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return filterOrders(orders, rawStatus, search, sellerID), nil
}

// GetTotalSpentByUser sums the totals of the user's non-cancelled orders.
func (s *OrderService) GetTotalSpentByUser(ctx context.Context, userID string) (float64, error) {
	orders, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, o := range orders {
		if o.Status != models.StatusCancelled {
			total += o.TotalAmount
		}
	}
	return total, nil
}

// GetSellerStats aggregates earnings, order counts and best sellers for the
// seller. Results are cached briefly since the aggregation walks every order
// the seller appears in.
func (s *OrderService) GetSellerStats(ctx context.Context, sellerID string) (*dto.SellerStats, error) {
	key := sellerStatsCacheKey + sellerID

	var cached dto.SellerStats
	if cache.Get(key, &cached) {
		return &cached, nil
	}

	orders, err := s.store.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	stats := &dto.SellerStats{TopProducts: []dto.TopProduct{}}
	type productAgg struct {
		quantity int
		revenue  float64
		first    int // submission order, for deterministic ties
	}
	products := make(map[string]*productAgg)
	seen := 0

	for _, o := range orders {
		stats.TotalOrders++
		switch o.Status {
		case models.StatusPending:
			stats.PendingOrders++
		case models.StatusConfirmed:
			stats.ConfirmedOrders++
		case models.StatusDelivered:
			stats.DeliveredOrders++
		case models.StatusCancelled:
			stats.CancelledOrders++
		}

		// Only confirmed and delivered orders count toward earnings; the
		// top-product ranking covers every order the seller appears in.
		earning := o.Status == models.StatusConfirmed || o.Status == models.StatusDelivered
		for _, line := range o.Items {
			if line.SellerID != sellerID {
				continue
			}
			revenue := line.Price * float64(line.Quantity)
			if earning {
				stats.TotalEarned += revenue
			}

			agg, ok := products[line.ProductName]
			if !ok {
				agg = &productAgg{first: seen}
				seen++
				products[line.ProductName] = agg
			}
			agg.quantity += line.Quantity
			agg.revenue += revenue
		}
	}

	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := products[names[i]], products[names[j]]
		if a.quantity != b.quantity {
			return a.quantity > b.quantity
		}
		return a.first < b.first
	})
	if len(names) > 5 {
		names = names[:5]
	}
	for _, name := range names {
		agg := products[name]
		stats.TopProducts = append(stats.TopProducts, dto.TopProduct{
			Name:     name,
			Quantity: agg.quantity,
			Revenue:  agg.revenue,
		})
	}

	if err := cache.Set(key, stats, sellerStatsCacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("seller stats cache write failed", "seller_id", sellerID, "error", err)
	}
	return stats, nil
}

func (s *OrderService) ownedOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) invalidateSellerStats(order *models.Order) {
	seen := make(map[string]struct{}, len(order.Items))
	for _, line := range order.Items {
		if _, ok := seen[line.SellerID]; ok {
			continue
		}
		seen[line.SellerID] = struct{}{}
		if err := cache.Del(sellerStatsCacheKey + line.SellerID); err != nil {
			logger.Warn("seller stats cache invalidation failed",
				"seller_id", line.SellerID, "error", err)
		}
	}
}

func validateLines(items []dto.OrderLineRequest) error {
	if len(items) == 0 {
		return &ValidationError{Field: "items", Reason: "an order needs at least one item"}
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return &ValidationError{Field: lineField(i, "productId"), Reason: "product id is required"}
		}
		if item.Price < 0 {
			return &ValidationError{Field: lineField(i, "price"), Reason: "price must not be negative"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: lineField(i, "quantity"), Reason: "quantity must be at least 1"}
		}
	}
	return nil
}

func lineField(i int, name string) string {
	return "items." + strconv.Itoa(i) + "." + name
}

// filterOrders narrows orders by an optional lenient status filter and a
// case-insensitive product name search. When sellerID is set, only lines
// belonging to that seller are searched.
func filterOrders(orders []models.Order, rawStatus, search, sellerID string) []models.Order {
	status, hasStatus := models.ParseStatusFilter(rawStatus)
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if hasStatus && o.Status != status {
			continue
		}
		if needle != "" && !matchesSearch(o, needle, sellerID) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchesSearch(o models.Order, needle, sellerID string) bool {
	for _, line := range o.Items {
		if sellerID != "" && line.SellerID != sellerID {
			continue
		}
		if strings.Contains(strings.ToLower(line.ProductName), needle) {
			return true
		}
	}
	return false
}
