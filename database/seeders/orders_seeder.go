package seeders

import (
	"github.com/buy01/order-service/app/models"
	"gorm.io/gorm"
)

func init() {
	Register("demo_orders", SeedDemoOrders)
}

// SeedDemoOrders inserts a few orders for local development. It is a no-op
// when the orders table already has rows.
func SeedDemoOrders(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	orders := []models.Order{
		{
			ID:            models.NewID(),
			UserID:        "demo-client-1",
			Status:        models.StatusPending,
			TotalAmount:   74.50,
			PaymentMethod: "pay_on_delivery",
			Items: []models.OrderLine{
				{Position: 0, ProductID: "demo-product-1", ProductName: "Ceramic Mug", SellerID: "demo-seller-1", Price: 12.50, Quantity: 2},
				{Position: 1, ProductID: "demo-product-2", ProductName: "Pour-Over Kettle", SellerID: "demo-seller-1", Price: 49.50, Quantity: 1},
			},
		},
		{
			ID:            models.NewID(),
			UserID:        "demo-client-1",
			Status:        models.StatusDelivered,
			TotalAmount:   19.90,
			PaymentMethod: "card",
			Items: []models.OrderLine{
				{Position: 0, ProductID: "demo-product-3", ProductName: "Coffee Beans 1kg", SellerID: "demo-seller-2", Price: 19.90, Quantity: 1},
			},
		},
	}

	for i := range orders {
		if err := db.Create(&orders[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
