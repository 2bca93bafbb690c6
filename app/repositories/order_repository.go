// Package repositories implements persistence for orders on top of GORM.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/buy01/order-service/app/models"
	"github.com/buy01/order-service/app/services"
	"github.com/buy01/order-service/pkg/orm"
	"gorm.io/gorm"
)

// swapAttempts bounds the optimistic retry loop in SwapStatus.
const swapAttempts = 3

// linesByPosition preloads Items in submission order.
func linesByPosition(db *gorm.DB) *gorm.DB { return db.Order("position asc") }

// OrderRepository is the GORM-backed services.OrderStore.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return orm.DB().WithContext(ctx).Create(order)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := orm.DB().WithContext(ctx).
		Preload("Items", linesByPosition).
		Where("id = ?", id).
		First(&order)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := orm.DB().WithContext(ctx).
		Preload("Items", linesByPosition).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders)
	return orders, err
}

// FindBySeller returns every order containing at least one line sold by the
// seller. The join can match multiple lines per order, hence the DISTINCT.
func (r *OrderRepository) FindBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	var orders []models.Order
	err := orm.DB().WithContext(ctx).
		Preload("Items", linesByPosition).
		Distinct("orders.*").
		Joins("JOIN order_lines ON order_lines.order_id = orders.id").
		Where("order_lines.seller_id = ?", sellerID).
		Order("orders.created_at desc").
		Find(&orders)
	return orders, err
}

// Delete removes the order and, via the FK cascade, its lines. Returns
// whether a row existed.
func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	// SQLite needs the lines removed explicitly when foreign_keys is off.
	q := orm.DB().WithContext(ctx)
	if err := q.Delete(&models.OrderLine{}, "order_id = ?", id); err != nil {
		return false, err
	}

	res := q.Gorm().Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SwapStatus atomically moves the order to next and reports the status it
// held immediately before. A conditional UPDATE guarded by the observed
// status is retried when a concurrent writer got there first, so two racing
// transitions serialize and each sees a distinct previous status.
func (r *OrderRepository) SwapStatus(ctx context.Context, id string, next models.Status) (*models.Order, models.Status, error) {
	db := orm.DB().WithContext(ctx).Gorm()

	for attempt := 0; attempt < swapAttempts; attempt++ {
		var order models.Order
		err := db.First(&order, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", services.ErrNotFound
		}
		if err != nil {
			return nil, "", err
		}

		prev := order.Status
		res := db.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, prev).
			Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
		if res.Error != nil {
			return nil, "", res.Error
		}
		if res.RowsAffected == 0 {
			continue // lost the race, re-read and retry
		}

		updated, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		return updated, prev, nil
	}

	return nil, "", services.ErrStatusConflict
}
