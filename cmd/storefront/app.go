package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/config"
	"github.com/agamariel/storefront/internal/events"
	"github.com/agamariel/storefront/internal/handlers"
	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/migrations"
	"github.com/agamariel/storefront/internal/payments"
	"github.com/agamariel/storefront/internal/services"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg       *config.Config
	dbPool    *pgxpool.Pool
	echo      *echo.Echo
	monitor   *services.PendingMonitor
	publisher events.Publisher

	// Handlers
	userHandler     *handlers.UserHandler
	orderHandler    *handlers.OrderHandler
	checkoutHandler *handlers.CheckoutHandler
	catalogHandler  *handlers.CatalogHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg: cfg,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	log.Println("Running database migrations...")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(ctx, sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	log.Println("Successfully connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения (storage, services, handlers).
func (app *App) initDependencies() error {
	// Storage layer
	userStorage := storage.NewPostgresUserStorage(app.dbPool)
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	productStorage := storage.NewPostgresProductStorage(app.dbPool)
	cartStorage := storage.NewPostgresCartStorage(app.dbPool)

	// Интеграции
	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)
	gateway := payments.NewHTTPGateway(app.cfg.PaymentsAPIURL, app.cfg.PaymentsSecretKey, app.cfg.PaymentsTimeout)
	app.publisher = events.NewKafkaPublisher(app.cfg.KafkaBrokers, log.Default())
	if app.cfg.KafkaBrokers == "" {
		log.Println("KAFKA_BROKERS is not configured, order events are disabled")
	}

	// Service layer
	userService := services.NewUserService(userStorage, app.cfg.JWTSecret, app.cfg.TokenExpiration)
	orderService := services.NewOrderService(orderStorage, app.publisher, log.Default())
	catalogService := services.NewCatalogService(productStorage, cartStorage)
	checkoutService := services.NewCheckoutService(orderStorage, cartStorage, gateway, paymentMetrics, app.publisher, services.CheckoutOptions{
		ClientKey:             app.cfg.PaymentsClientKey,
		PublicBaseURL:         app.cfg.PublicBaseURL,
		FreeShippingThreshold: decimal.NewFromInt(app.cfg.FreeShippingThreshold),
		ShippingFee:           decimal.NewFromInt(app.cfg.ShippingFee),
	}, log.Default())

	// Handler layer
	app.userHandler = handlers.NewUserHandler(userService)
	app.orderHandler = handlers.NewOrderHandler(orderService)
	app.checkoutHandler = handlers.NewCheckoutHandler(checkoutService)
	app.catalogHandler = handlers.NewCatalogHandler(catalogService)

	// Монитор неоплаченных заказов
	app.monitor = services.NewPendingMonitor(orderStorage, paymentMetrics, app.cfg.StalePendingAfter, app.cfg.MonitorInterval, log.Default())

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	e.GET("/healthz", app.healthz)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Публичные маршруты (не требуют аутентификации)
	e.POST("/api/user/register", app.userHandler.Register)
	e.POST("/api/user/login", app.userHandler.Login)
	e.GET("/api/products", app.catalogHandler.ListProducts)
	e.GET("/api/products/:id", app.catalogHandler.GetProduct)

	// Возвраты от платёжного провайдера
	e.GET("/api/payments/success", app.checkoutHandler.PaymentSuccess)
	e.GET("/api/payments/fail", app.checkoutHandler.PaymentFail)

	// Защищённые маршруты (требуют аутентификации)
	protected := e.Group("/api")
	protected.Use(auth.JWTMiddleware(app.cfg.JWTSecret))
	protected.GET("/cart", app.catalogHandler.GetCart)
	protected.POST("/cart/items", app.catalogHandler.AddToCart)
	protected.DELETE("/cart", app.catalogHandler.ClearCart)
	protected.POST("/checkout", app.checkoutHandler.Checkout)
	protected.POST("/payments/request", app.checkoutHandler.RequestPayment)
	protected.POST("/payments/confirm", app.checkoutHandler.ConfirmPayment)
	protected.GET("/orders", app.orderHandler.GetOrders)
	protected.GET("/orders/:id", app.orderHandler.GetOrder)

	// Администрирование
	admin := e.Group("/api/admin")
	admin.Use(auth.JWTMiddleware(app.cfg.JWTSecret), auth.AdminMiddleware())
	admin.GET("/orders", app.orderHandler.ListAllOrders)
	admin.PUT("/orders/:id/status", app.orderHandler.UpdateStatus)
	admin.POST("/products", app.catalogHandler.CreateProduct)

	app.echo = e
}

func (app *App) healthz(c echo.Context) error {
	if err := app.dbPool.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "ok")
}

// Start запускает приложение.
func (app *App) Start(ctx context.Context) error {
	log.Println("Starting pending order monitor...")
	app.monitor.Start(ctx)

	log.Printf("Starting server on %s", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			log.Printf("failed to close event publisher: %v", err)
		}
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	log.Println("Server gracefully stopped")
	return nil
}
