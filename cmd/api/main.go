package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/domain"
	"orderdesk/internal/middleware"
	"orderdesk/internal/modules/auth"
	"orderdesk/internal/modules/bookings"
	"orderdesk/internal/modules/cart"
	"orderdesk/internal/modules/catalog"
	"orderdesk/internal/modules/orders"
	jwtsvc "orderdesk/internal/pkg/jwt"
	pkglogger "orderdesk/internal/pkg/logger"
	"orderdesk/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := pkglogger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Event{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Booking{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	eventRepo := repository.NewEventRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	catalogHandler := catalog.NewHandler(catalog.NewService(db, productRepo, eventRepo))
	cartHandler := cart.NewHandler(cart.NewService(cartRepo, productRepo))
	orderHandler := orders.NewHandler(orders.NewService(db, orderRepo, cartRepo))
	bookingHandler := bookings.NewHandler(bookings.NewService(db, bookingRepo))

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			cartHandler.RegisterRoutes(protected)
			orderHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}

		// admin
		admin := v1.Group("/")
		admin.Use(middleware.Auth(j), middleware.AdminOnly())
		{
			catalogHandler.RegisterAdminRoutes(admin)
			orderHandler.RegisterAdminRoutes(admin)
			bookingHandler.RegisterAdminRoutes(admin)
		}
	}

	logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
