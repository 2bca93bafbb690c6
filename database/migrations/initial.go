package migrations

import (
	"github.com/buy01/order-service/app/models"
	"github.com/buy01/order-service/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260115000000_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260115000001_create_order_lines_table", &CreateOrderLinesTable{})
}

// -------- 0001: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

// -------- 0002: order lines --------

type CreateOrderLinesTable struct{}

func (m *CreateOrderLinesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.OrderLine{})
}

func (m *CreateOrderLinesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_lines")
}
