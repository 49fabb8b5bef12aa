package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/khan1-ui/go-storefront/internal/cart"
	"github.com/khan1-ui/go-storefront/internal/cartstore"
	"github.com/khan1-ui/go-storefront/internal/checkout"
	"github.com/khan1-ui/go-storefront/internal/confirm"
	"github.com/khan1-ui/go-storefront/internal/httpapi"
	"github.com/khan1-ui/go-storefront/internal/notify"
	"github.com/khan1-ui/go-storefront/internal/platform"
	"github.com/khan1-ui/go-storefront/internal/session"
)

type Config struct {
	HTTPPort        string
	PlatformAPIURL  string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	JWTSecret       string
	CartSyncMode    string // "local" or "remote"
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PlatformAPIURL:  getEnv("PLATFORM_API_URL", "http://localhost:9000/api"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CartSyncMode:    getEnv("CART_SYNC_MODE", "remote"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	store := cartstore.NewRedisStore(redisClient)
	apiClient := platform.NewClient(cfg.PlatformAPIURL, cfg.RequestTimeout)
	// Warnings raised while serving a request ride back in its response;
	// everything else lands in the process log.
	notifier := notify.ContextNotifier{Fallback: notify.LogNotifier{}}

	// One syncer per deployment, not both at once. Remote adopts the
	// server's snapshots; local writes full carts to Redis.
	var syncer cart.Syncer
	if cfg.CartSyncMode == "local" {
		syncer = cart.NewLocalSyncer(store)
	} else {
		syncer = cart.NewRemoteSyncer(apiClient)
	}
	log.Printf("cart sync mode: %s", cfg.CartSyncMode)

	factory := func(ownerID string) (*cart.Container, *checkout.Orchestrator) {
		container := cart.NewContainer(ownerID, syncer, notifier)
		orchestrator := checkout.NewOrchestrator(container, apiClient, notifier)
		return container, orchestrator
	}
	registry := session.NewRegistry([]byte(cfg.JWTSecret), factory, store)

	consumer := confirm.NewConsumer(registry, cfg.KafkaBrokers...)
	go consumer.Run(ctx)
	log.Printf("payment confirmation consumer started on %v", cfg.KafkaBrokers)

	cartHandler := httpapi.NewCartHandler(cfg.RequestTimeout)
	checkoutHandler := httpapi.NewCheckoutHandler(cfg.RequestTimeout)
	sessionHandler := httpapi.NewSessionHandler(registry)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httpapi.AuthMiddleware(registry))
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout", checkoutHandler.PlaceOrder)
		r.Post("/session/logout", sessionHandler.Logout)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront engine starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	cancel()
	consumer.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("storefront engine stopped")
}
