package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/example/storefront-cart/internal/cache"
	api "github.com/example/storefront-cart/internal/http"
	"github.com/example/storefront-cart/internal/payment"
	"github.com/example/storefront-cart/internal/publisher"
	"github.com/example/storefront-cart/internal/repository"
	"github.com/example/storefront-cart/internal/service"
)

type Config struct {
	HTTPPort          string
	PostgresHost      string
	PostgresPort      int
	PostgresUser      string
	PostgresPassword  string
	PostgresDB        string
	MigrationsDirPath string
	RedisAddr         string
	KafkaBrokers      []string
	PaymentAPIURL     string
	PaymentAPIKey     string
	RequestTimeout    time.Duration
	GatewayTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:      getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:        getEnv("POSTGRES_DB", "storefront"),
		MigrationsDirPath: getEnv("MIGRATIONS_DIR", "internal/repository/migrations"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		PaymentAPIURL:     getEnv("PAYMENT_API_URL", "https://api.payments.example.com"),
		PaymentAPIKey:     getEnv("PAYMENT_API_KEY", ""),
		RequestTimeout:    30 * time.Second,
		GatewayTimeout:    20 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func main() {
	cfg := loadConfig()

	creds := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsDirPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Printf("connected to postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	cartCache := cache.NewRedisCache(redisClient)

	gateway := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey, cfg.GatewayTimeout)

	cartService := service.NewCartService(repo, cartCache)
	checkoutService := service.NewCheckoutService(repo, repo, gateway)

	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	cartHandler := api.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := api.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	router := api.NewRouter(cartHandler, checkoutHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront-cart"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront-cart API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
