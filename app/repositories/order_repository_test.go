package repositories

import (
	"context"
	"testing"

	"github.com/buy01/order-service/app/models"
	"github.com/buy01/order-service/app/services"
	"github.com/buy01/order-service/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderLine{}))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func sampleOrder(userID string) *models.Order {
	return &models.Order{
		ID:            models.NewID(),
		UserID:        userID,
		Status:        models.StatusPending,
		TotalAmount:   74.50,
		PaymentMethod: "pay_on_delivery",
		Items: []models.OrderLine{
			{Position: 0, ProductID: "p1", ProductName: "Ceramic Mug", SellerID: "seller-1", Price: 12.50, Quantity: 2},
			{Position: 1, ProductID: "p2", ProductName: "Kettle", SellerID: "seller-2", Price: 49.50, Quantity: 1},
		},
	}
}

func TestCreateAndFindByID(t *testing.T) {
	setupDB(t)
	repo := NewOrderRepository()
	ctx := context.Background()

	order := sampleOrder("user-1")
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, models.StatusPending, got.Status)

	// Lines come back in submission order.
	require.Len(t, got.Items, 2)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, "p2", got.Items[1].ProductID)
}

func TestFindByIDMissing(t *testing.T) {
	setupDB(t)
	repo := NewOrderRepository()

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestFindByUser(t *testing.T) {
	setupDB(t)
	repo := NewOrderRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleOrder("user-1")))
	require.NoError(t, repo.Create(ctx, sampleOrder("user-1")))
	require.NoError(t, repo.Create(ctx, sampleOrder("user-2")))

	orders, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, "user-1", o.UserID)
		assert.Len(t, o.Items, 2)
	}
}

func TestFindBySellerDeduplicates(t *testing.T) {
	setupDB(t)
	repo := NewOrderRepository()
	ctx := context.Background()

	// Two lines for the same seller in one order must yield one result.
	order := &models.Order{
		ID:     models.NewID(),
		UserID: "user-1",
		Status: models.StatusPending,
		Items: []models.OrderLine{
			{Position: 0, ProductID: "p1", ProductName: "Mug", SellerID: "seller-1", Price: 10, Quantity: 1},
			{Position: 1, ProductID: "p2", ProductName: "Plate", SellerID: "seller-1", Price: 15, Quantity: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, repo.Create(ctx, sampleOrder("user-2")))

	orders, err := repo.FindBySeller(ctx, "seller-1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	none, err := repo.FindBySeller(ctx, "seller-9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	setupDB(t)
	repo := NewOrderRepository()
	ctx := context.Background()

	order := sampleOrder("user-1")
	require.NoError(t, repo.Create(ctx, order))

	existed, err := repo.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	// Lines are gone with the order.
	var lines int64
	require.NoError(t, database.DB.Model(&models.OrderLine{}).Where("order_id = ?", order.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	existed, err = repo.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestSwapStatus(t *testing.T) {
	setupDB(t)
	repo := NewOrderRepository()
	ctx := context.Background()

	order := sampleOrder("user-1")
	require.NoError(t, repo.Create(ctx, order))

	updated, prev, err := repo.SwapStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, prev)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.Len(t, updated.Items, 2)

	// Repeating the swap reports the current status as previous.
	_, prev, err = repo.SwapStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, prev)

	_, _, err = repo.SwapStatus(ctx, "nope", models.StatusConfirmed)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
