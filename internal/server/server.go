// Package server boots the order service: config, logging, database, cache,
// routes and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/buy01/order-service/app/controllers"
	"github.com/buy01/order-service/app/models"
	"github.com/buy01/order-service/app/repositories"
	"github.com/buy01/order-service/app/routes"
	"github.com/buy01/order-service/app/services"
	"github.com/buy01/order-service/config"
	"github.com/buy01/order-service/internal/catalog"
	"github.com/buy01/order-service/pkg/cache"
	"github.com/buy01/order-service/pkg/database"
	"github.com/buy01/order-service/pkg/logger"
	"github.com/buy01/order-service/pkg/metrics"
	"github.com/buy01/order-service/pkg/middleware"
	"github.com/buy01/order-service/pkg/reqid"
	"github.com/buy01/order-service/pkg/router"
)

// Start boots every subsystem and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if uri := config.MongoLogURI(); uri != "" {
		sink, err := logger.EnableMongoSink(uri, config.MongoLogDB(), config.MongoLogCollection())
		if err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		} else {
			defer sink.Close()
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}
	if err := database.DB.AutoMigrate(&models.Order{}, &models.OrderLine{}); err != nil {
		return err
	}

	if err := cache.Connect(); err != nil {
		// Stats caching degrades to a no-op, the service stays up.
		logger.Warn("redis unavailable, seller stats caching disabled", "error", err)
	}

	r := BuildRouter()

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("order service listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// BuildRouter assembles the middleware stack and the full route table.
// Exposed separately so the CLI can print routes without binding a port.
func BuildRouter() *router.Router {
	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
	)

	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})

	store := repositories.NewOrderRepository()
	stock := catalog.NewClient(config.ProductServiceURL())
	orderService := services.NewOrderService(store, stock)
	orderController := controllers.NewOrderController(orderService)

	routes.RegisterAPI(r, orderController)
	return r
}
