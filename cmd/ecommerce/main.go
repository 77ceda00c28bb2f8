package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/WebUp-555/ecommerce-api/config"
	"github.com/WebUp-555/ecommerce-api/internal/auth"
	handler "github.com/WebUp-555/ecommerce-api/internal/handler/http"
	"github.com/WebUp-555/ecommerce-api/internal/logger"
	"github.com/WebUp-555/ecommerce-api/internal/metrics"
	"github.com/WebUp-555/ecommerce-api/internal/middleware"
	"github.com/WebUp-555/ecommerce-api/internal/razorpay"
	"github.com/WebUp-555/ecommerce-api/internal/repository"
	"github.com/WebUp-555/ecommerce-api/internal/repository/postgres"
	"github.com/WebUp-555/ecommerce-api/internal/service"
	"github.com/WebUp-555/ecommerce-api/internal/worker"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultAuthTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	authTokenKey := cfg.AuthTokenKey
	if authTokenKey == "" {
		authTokenKey = defaultAuthTokenKey
	}
	tokenKey, err := hex.DecodeString(authTokenKey)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// payment gateway
	gateway := razorpay.NewClient(cfg.RazorpayAPIURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// dependency injection
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)

	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, gateway,
		cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	orderHandler := handler.NewOrderHandler(orderService)
	adminHandler := handler.NewAdminOrderHandler(orderService)

	// expire abandoned unpaid orders
	expirer := worker.NewOrderExpirer(orderService, cfg.PendingOrderTTL)
	go expirer.Run(ctx)

	srvMetrics := metrics.NewServerMetrics("api")

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))
	router.Use(srvMetrics.Middleware)

	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// routes that require authentication
	router.Route("/api/orders", func(group chi.Router) {
		group.Use(middleware.Auth(token))

		group.Post("/paynow", orderHandler.Checkout())
		group.Post("/verify", orderHandler.VerifyPayment())
		group.Get("/my", orderHandler.ListMyOrders())
		group.Get("/my/{id}", orderHandler.GetMyOrder())
		group.Post("/cancel/my/{id}", orderHandler.CancelMyOrder())

		// routes that require admin role
		group.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminOnly)

			admin.Get("/", adminHandler.ListOrders())
			admin.Get("/{id}", adminHandler.GetOrder())
			admin.Put("/{id}", adminHandler.UpdateOrderStatus())
			admin.Post("/cancel/{id}", adminHandler.CancelOrder())
			admin.Delete("/{id}", adminHandler.DeleteOrder())
		})
	})

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
