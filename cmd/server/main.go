package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	catalogrepository "sanita/internal/catalog/repository"
	catalogservice "sanita/internal/catalog/service"
	cataloghttp "sanita/internal/catalog/transport/http"
	categoryrepository "sanita/internal/category/repository"
	categoryservice "sanita/internal/category/service"
	categoryhttp "sanita/internal/category/transport/http"
	"sanita/internal/config"
	"sanita/internal/logger"
	"sanita/internal/metrics"
	orderrepository "sanita/internal/order/repository"
	orderservice "sanita/internal/order/service"
	orderhttp "sanita/internal/order/transport/http"
	paymentrepository "sanita/internal/payment/repository"
	paymentservice "sanita/internal/payment/service"
	paymenthttp "sanita/internal/payment/transport/http"
	promotionrepository "sanita/internal/promotion/repository"
	promotionservice "sanita/internal/promotion/service"
	promotionhttp "sanita/internal/promotion/transport/http"
	reviewrepository "sanita/internal/review/repository"
	reviewservice "sanita/internal/review/service"
	reviewhttp "sanita/internal/review/transport/http"
	tokenrepository "sanita/internal/token/repository"
	userrepository "sanita/internal/user/repository"
	userservice "sanita/internal/user/service"
	userhttp "sanita/internal/user/transport/http"
	"sanita/pkg/db"
	"sanita/pkg/middleware"
)

var server *http.Server

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Log.Sync()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		logger.Log.Fatal("migrations failed", zap.Error(err))
	}
	logger.Log.Info("database ready")

	metrics.InitMetrics()

	// Repositories.
	userRepo := userrepository.NewPostgresUserRepository(database)
	refreshTokenRepo := tokenrepository.NewRefreshTokenRepository(database)
	productRepo := catalogrepository.NewPostgresProductRepository(database)
	categoryRepo := categoryrepository.NewPostgresCategoryRepository(database)
	saleRepo := promotionrepository.NewPostgresSaleRepository(database)
	orderRepo := orderrepository.NewPostgresOrderRepository(database)
	eventRepo := paymentrepository.NewPostgresEventRepository(database)
	reviewRepo := reviewrepository.NewPostgresReviewRepository(database)

	// Services.
	userSvc := userservice.NewUserService(userRepo, refreshTokenRepo)
	catalogSvc := catalogservice.NewService(productRepo)
	categorySvc := categoryservice.NewService(categoryRepo)
	saleSvc := promotionservice.NewService(saleRepo)
	orderSvc := orderservice.NewService(orderRepo, catalogSvc, saleSvc, cfg.Bank.MemoPrefix)
	paymentSvc := paymentservice.NewService(orderSvc, eventRepo, cfg.Bank)
	reviewSvc := reviewservice.NewService(reviewRepo, orderRepo)

	// Handlers.
	userHandler := userhttp.NewHandler(userSvc, cfg.JWTSecret, orderSvc)
	catalogHandler := cataloghttp.NewHandler(catalogSvc)
	categoryHandler := categoryhttp.NewHandler(categorySvc)
	saleHandler := promotionhttp.NewHandler(saleSvc)
	orderHandler := orderhttp.NewHandler(orderSvc)
	paymentHandler := paymenthttp.NewHandler(paymentSvc)
	reviewHandler := reviewhttp.NewHandler(reviewSvc)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Logging(logger.Log))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.ValidateRequest)

	limiter := middleware.NewRateLimiter(100, time.Minute)

	// Public routes.
	r.Group(func(pub chi.Router) {
		pub.Use(limiter.Middleware)

		pub.Post("/auth/register", userHandler.Register)
		pub.Post("/auth/login", userHandler.Login)
		pub.Post("/auth/refresh", userHandler.Refresh)
		pub.Post("/auth/logout", userHandler.Logout)

		pub.Get("/api/products", catalogHandler.List)
		pub.Get("/api/products/{id}", catalogHandler.Get)
		pub.Get("/api/products/slug/{slug}", catalogHandler.GetBySlug)
		pub.Get("/api/categories", categoryHandler.List)

		pub.Post("/api/sales/apply", saleHandler.Apply)

		// Guest checkout: auth optional, order keeps a null user id.
		pub.Group(func(g chi.Router) {
			g.Use(middleware.OptionalJWTAuth(cfg.JWTSecret))
			g.Post("/api/orders", orderHandler.Create)
		})
		pub.Get("/api/orders/{id}", orderHandler.Get)

		pub.Post("/api/sepay/webhook", paymentHandler.Webhook)
		pub.Get("/api/sepay/status/{orderId}", paymentHandler.Status)
		pub.Post("/api/sepay/create-qr", paymentHandler.CreateQR)

		pub.Get("/api/reviews/product/{productId}", reviewHandler.ListByProduct)
		pub.Get("/api/reviews/product/{productId}/stats", reviewHandler.ProductStats)
	})

	// Authenticated routes.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(cfg.JWTSecret))

		pr.Get("/auth/me", userHandler.Me)
		pr.Put("/auth/profile", userHandler.UpdateProfile)
		pr.Put("/auth/password", userHandler.ChangePassword)

		pr.Get("/api/orders/my", orderHandler.ListMine)

		pr.Post("/api/reviews", reviewHandler.Submit)
		pr.Get("/api/reviews/can-review/{productId}", reviewHandler.CanReview)
		pr.Delete("/api/reviews/{id}", reviewHandler.Delete)
	})

	// Admin routes.
	r.Group(func(ar chi.Router) {
		ar.Use(middleware.JWTAuth(cfg.JWTSecret))
		ar.Use(middleware.RequireAdmin)

		ar.Post("/api/admin/sales", saleHandler.Create)
		ar.Get("/api/admin/sales", saleHandler.List)
		ar.Put("/api/admin/sales/{id}", saleHandler.Update)
		ar.Patch("/api/admin/sales/{id}/deactivate", saleHandler.Deactivate)
		ar.Delete("/api/admin/sales/{id}", saleHandler.Delete)

		ar.Get("/api/admin/orders", orderHandler.ListAll)
		ar.Patch("/api/admin/orders/{id}/status", orderHandler.UpdateStatus)
		ar.Post("/api/sepay/confirm-payment/{orderId}", paymentHandler.ConfirmManual)
		ar.Get("/api/sepay/events/{orderId}", paymentHandler.ListEvents)

		ar.Get("/api/admin/reviews", reviewHandler.ListAll)

		ar.Post("/api/admin/products", catalogHandler.Create)
		ar.Put("/api/admin/products/{id}", catalogHandler.Update)
		ar.Delete("/api/admin/products/{id}", catalogHandler.Delete)

		ar.Post("/api/admin/categories", categoryHandler.CreateCategory)
		ar.Put("/api/admin/categories/{id}", categoryHandler.UpdateCategory)
		ar.Delete("/api/admin/categories/{id}", categoryHandler.DeleteCategory)
		ar.Post("/api/admin/subcategories", categoryHandler.CreateSubcategory)
		ar.Put("/api/admin/subcategories/{id}", categoryHandler.UpdateSubcategory)
		ar.Delete("/api/admin/subcategories/{id}", categoryHandler.DeleteSubcategory)
	})

	if cfg.MetricsPass != "" {
		r.Group(func(mr chi.Router) {
			mr.Use(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass))
			mr.Handle("/metrics", promhttp.Handler())
		})
	} else {
		logger.Log.Warn("METRICS_PASS not set, /metrics disabled")
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	server = &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logger.Log.Info("shutdown signal received")
		shutdownServer()
	}()

	logger.Log.Info("server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatal("server failed", zap.Error(err))
	}
}

func shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Error("server shutdown failed", zap.Error(err))
	}

	logger.Log.Info("server stopped")
}
