package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"edpharma/config"
	"edpharma/controllers"
	"edpharma/database"
	"edpharma/events"
	"edpharma/logger"
	"edpharma/middleware"
	"edpharma/notify"
	"edpharma/routes"
	"edpharma/services"
	"edpharma/store"
	"edpharma/store/memstore"
	"edpharma/store/mongostore"
	"edpharma/store/redisstore"
)

type App struct {
	cfg    *config.Config
	logger *logger.Logger
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &App{cfg: cfg, logger: log}, nil
}

func (a *App) Run() error {
	defer a.logger.Sync()
	a.logger.Info("Starting edpharma", "env", a.cfg.App.Env)

	mongoDB, err := a.initMongoDB()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoDB.Close(ctx); err != nil {
			a.logger.Warn("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	carts, closeCarts, err := a.initCartRepository(mongoDB)
	if err != nil {
		return err
	}
	defer closeCarts()

	hub := notify.NewHub(a.logger, a.cfg.App.CORSAllowedOrigins...)
	notifier := services.MultiNotifier{hub}
	if publisher := a.initNATS(); publisher != nil {
		defer publisher.Close()
		notifier = append(notifier, publisher)
	}

	products := mongostore.NewProductRepository(mongoDB.Collection(database.ProductCollection))
	orderRepo := mongostore.NewOrderRepository(mongoDB.Collection(database.OrderCollection), a.logger)

	pricing := services.NewPricing(a.cfg.Pricing.TaxRate, a.cfg.Pricing.FreeShippingThreshold, a.cfg.Pricing.FlatShippingFee)
	identity := services.NewIdentity(
		mongostore.NewUserRepository(mongoDB.Collection(database.UserCollection)),
		mongostore.NewTokenRevocationRepository(mongoDB.Collection(database.RevokedTokenCollection)),
		a.cfg.Auth.JWTSecret,
		a.cfg.Auth.TokenTTL,
		a.cfg.Auth.AdminEmails,
		a.logger,
	)
	cart := services.NewCart(carts, products, pricing, a.logger)
	orders := services.NewOrders(orderRepo, notifier, a.logger)
	checkout := services.NewCheckout(cart, orders, pricing, a.logger)

	policy := services.ExcludeCancelled
	if a.cfg.Admin.RevenueIncludeCancelled {
		policy = services.IncludeCancelled
	}
	admin := services.NewAdmin(identity, orders, orderRepo, policy, a.logger)
	a.logger.Info("Services ready", "cart_backend", a.cfg.Cart.Backend, "revenue_policy", policy.String())

	handlers := routes.Handlers{
		Auth:     controllers.NewAuthController(identity, a.logger),
		Products: controllers.NewProductController(products, a.logger),
		Cart:     controllers.NewCartController(cart, a.logger),
		Checkout: controllers.NewCheckoutController(checkout, a.logger),
		Orders:   controllers.NewOrderController(orders, hub, a.logger),
		Admin:    controllers.NewAdminController(admin, orders, a.logger),
	}

	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(a.logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to configure trusted proxies: %w", err)
	}
	routes.RegisterRoutes(r, handlers, identity, middleware.NewRateLimiter(a.cfg.Auth.RatePerMinute))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.App.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a.runServerWithGracefulShutdown(srv)
}

func (a *App) initMongoDB() (*database.Mongo, error) {
	a.logger.Info("Connecting to MongoDB", "db", a.cfg.Mongo.DB)

	m, err := database.ConnectMongo(context.Background(), a.cfg.Mongo.URI, a.cfg.Mongo.DB, a.logger)
	if err != nil {
		a.logger.Error("Failed to connect to MongoDB", "error", err)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := m.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	a.logger.Info("Connected to MongoDB successfully")
	return m, nil
}

func (a *App) initCartRepository(m *database.Mongo) (store.CartRepository, func(), error) {
	switch a.cfg.Cart.Backend {
	case config.CartBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.logger.Info("Carts stored in Redis", "addr", a.cfg.Redis.Addr)
		return redisstore.NewCartRepository(client, a.cfg.Cart.TTL), func() { _ = client.Close() }, nil
	case config.CartBackendMemory:
		a.logger.Warn("Carts stored in memory, they will not survive a restart")
		return memstore.NewCartRepository(), func() {}, nil
	default:
		return mongostore.NewCartRepository(m.Collection(database.CartCollection)), func() {}, nil
	}
}

func (a *App) initNATS() *events.NatsPublisher {
	if a.cfg.NATS.URL == "" {
		a.logger.Info("NATS URL not set, event publishing disabled")
		return nil
	}

	publisher, err := connectToNATSWithRetry(a.cfg.NATS.URL, a.logger, 3, 2*time.Second)
	if err != nil {
		a.logger.Warn("Failed to connect to NATS, continuing without event publishing",
			"error", err,
			"url", a.cfg.NATS.URL)
		return nil
	}

	a.logger.Info("Connected to NATS successfully")
	return publisher
}

func (a *App) runServerWithGracefulShutdown(srv *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.logger.Info("Starting HTTP server", "port", a.cfg.App.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		a.logger.Info("Received shutdown signal, starting graceful shutdown", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Warn("Graceful shutdown timeout, forcing stop", "error", err)
			return srv.Close()
		}
		a.logger.Info("Graceful shutdown completed")
		return nil
	}
}

func connectToNATSWithRetry(url string, log *logger.Logger, maxRetries int, delay time.Duration) (*events.NatsPublisher, error) {
	for i := 0; i < maxRetries; i++ {
		publisher, err := events.NewNatsPublisher(url, log)
		if err == nil {
			return publisher, nil
		}

		log.Warn("Failed to connect to NATS, retrying...",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err)

		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to NATS after %d attempts", maxRetries)
}
