// Package routes mounts the order API onto the router.
package routes

import (
	"github.com/buy01/order-service/app/controllers"
	"github.com/buy01/order-service/pkg/middleware"
	"github.com/buy01/order-service/pkg/rbac"
	"github.com/buy01/order-service/pkg/router"
)

// RegisterAPI wires the order endpoints. All routes require a valid bearer
// token; the seller surface additionally requires the SELLER or ADMIN role.
func RegisterAPI(r *router.Router, orders *controllers.OrderController) {
	api := r.Group("/api/v1/orders", middleware.Auth)

	api.Post("/", "orders.create", orders.Create)
	api.Get("/my", "orders.my", orders.MyOrders)
	api.Get("/stats/spent", "orders.spent", orders.TotalSpent)
	api.Get("/{orderId}", "orders.show", orders.GetByID)
	api.Patch("/{orderId}/cancel", "orders.cancel", orders.Cancel)
	api.Post("/{orderId}/redo", "orders.redo", orders.ReOrder)
	api.Delete("/{orderId}", "orders.delete", orders.Delete)

	seller := api.Group("/seller", rbac.HasRole("SELLER", "ADMIN"))
	seller.Get("/my", "orders.seller.my", orders.SellerOrders)
	seller.Get("/stats", "orders.seller.stats", orders.SellerStats)

	api.Put("/{orderId}/status", "orders.status", orders.UpdateStatus,
		rbac.HasRole("SELLER", "ADMIN"))
}
