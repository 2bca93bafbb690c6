// Package controllers exposes the order engine over HTTP.
package controllers

import (
	"errors"
	"net/http"

	"github.com/buy01/order-service/app/dto"
	"github.com/buy01/order-service/app/services"
	"github.com/buy01/order-service/pkg/bind"
	"github.com/buy01/order-service/pkg/logger"
	"github.com/buy01/order-service/pkg/middleware"
	"github.com/buy01/order-service/pkg/response"
	"github.com/go-chi/chi/v5"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Create handles POST /api/v1/orders.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var req dto.CreateOrderRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.CreateOrder(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Created(w, order)
}

// MyOrders handles GET /api/v1/orders/my?status=&search=.
func (c *OrderController) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	q := r.URL.Query()
	orders, err := c.orders.GetOrdersByUser(r.Context(), userID, q.Get("status"), q.Get("search"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, orders)
}

// GetByID handles GET /api/v1/orders/{orderId}.
func (c *OrderController) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	order, err := c.orders.GetOrderByID(r.Context(), userID, chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, order)
}

// Cancel handles PATCH /api/v1/orders/{orderId}/cancel.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	order, err := c.orders.CancelOrder(r.Context(), userID, chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, order)
}

// ReOrder handles POST /api/v1/orders/{orderId}/redo.
func (c *OrderController) ReOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	order, err := c.orders.ReOrder(r.Context(), userID, chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Created(w, order)
}

// Delete handles DELETE /api/v1/orders/{orderId}.
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	if err := c.orders.DeleteOrder(r.Context(), userID, chi.URLParam(r, "orderId")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}

// TotalSpent handles GET /api/v1/orders/stats/spent.
func (c *OrderController) TotalSpent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	total, err := c.orders.GetTotalSpentByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, dto.TotalSpent{TotalSpent: total})
}

// SellerOrders handles GET /api/v1/orders/seller/my?status=&search=.
func (c *OrderController) SellerOrders(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	q := r.URL.Query()
	orders, err := c.orders.GetOrdersBySeller(r.Context(), sellerID, q.Get("status"), q.Get("search"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, orders)
}

// SellerStats handles GET /api/v1/orders/seller/stats.
func (c *OrderController) SellerStats(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	stats, err := c.orders.GetSellerStats(r.Context(), sellerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, stats)
}

// UpdateStatus handles PUT /api/v1/orders/{orderId}/status.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, order)
}

// writeServiceError maps engine errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(w, "Order not found")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "You do not have access to this order")
	case errors.Is(err, services.ErrInvalidTransition):
		response.BadRequest(w, err.Error())
	case errors.Is(err, services.ErrInvalidStatus):
		response.BadRequest(w, err.Error())
	case errors.Is(err, services.ErrStatusConflict):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &vErr):
		response.ValidationError(w, map[string]string{vErr.Field: vErr.Reason})
	default:
		logger.WithCtx(r.Context()).Error("unhandled service error", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
