package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/cache"
	"storefront/config"
	"storefront/controllers"
	"storefront/middleware"
	"storefront/realtime"
	"storefront/routes"
	"storefront/services"
	"storefront/store"
	"storefront/utils"
	"storefront/views"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var (
		products store.ProductStore
		carts    store.CartStore
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		products = store.NewMemoryProductStore()
		carts = store.NewMemoryCartStore()
	default:
		client, err := utils.ConnectDB(ctx, cfg.Mongo, logger)
		if err != nil {
			return err
		}
		defer disconnect(client, logger)

		db := client.Database(cfg.Mongo.Database)
		productStore := store.NewMongoProductStore(db, cfg.Store.Timeout)
		if err := productStore.EnsureIndexes(ctx); err != nil {
			return err
		}
		products = productStore
		carts = store.NewMongoCartStore(db, cfg.Store.Timeout)
	}

	// Product cache
	var productCache cache.ProductCache
	if cfg.Redis.Addr != "" {
		rdb, err := utils.ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("product cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			productCache = cache.NewRedisProductCache(rdb, cfg.Redis.TTL)
		}
	}

	// Initialize services and controllers
	catalog := services.NewCatalogService(products, productCache, logger)
	cartService := services.NewCartService(carts, products, logger)

	productController := controllers.NewProductController(catalog, cartService, logger)
	cartController := controllers.NewCartController(cartService, logger)
	viewController, err := views.NewViewController(catalog, cartService, logger)
	if err != nil {
		return err
	}
	socket := realtime.NewHandler(catalog, logger)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, productController, cartController, viewController, socket)

	var handler http.Handler = router
	handler = middleware.Recover(logger)(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.RequestID(handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func disconnect(client *mongo.Client, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("disconnect from MongoDB", zap.Error(err))
	}
}
