/**
 * @description
 * This is the main entry point for the payout service. It is responsible for
 * initializing all components: configuration, the storage backend (JSON
 * snapshot file or PostgreSQL), the RabbitMQ event producer, the optional
 * Redis rate limiter, the payout/collaborator services, the lifecycle ticker,
 * and the HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver (when DATABASE_URL is set).
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 * - pkg/rabbitmq: Payout event producer.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/creatorstream/payout-service/internal/api"
	"github.com/creatorstream/payout-service/internal/app"
	"github.com/creatorstream/payout-service/internal/config"
	"github.com/creatorstream/payout-service/internal/store"
	"github.com/creatorstream/payout-service/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting payout-service\" port=%s", cfg.ServerPort)

	// Choose the storage backend: PostgreSQL when configured, otherwise the
	// JSON snapshot file that mirrors the dashboard's original db.json.
	var repository store.Repository
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		dbpool, poolErr := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if poolErr != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", poolErr)
		}
		defer dbpool.Close()

		pgRepo := store.NewPostgresRepository(dbpool)
		if err := pgRepo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"schema setup failed\" err=%v", err)
		}
		repository = pgRepo
		log.Println("level=info component=bootstrap msg=\"using postgres store\"")
	} else {
		fileRepo, fileErr := store.NewFileRepository(cfg.DataFile)
		if fileErr != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"file store init failed\" path=%s err=%v", cfg.DataFile, fileErr)
		}
		repository = fileRepo
		log.Printf("level=info component=bootstrap msg=\"using file store\" path=%s", cfg.DataFile)
	}

	// Initialize the RabbitMQ producer for payout status events. A missing
	// broker degrades to a no-op publisher; lifecycle processing continues.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) != "" {
		eventProducer, rmqErr := rabbitmq.NewEventProducer(cfg.RabbitMQURL, cfg.PayoutEventExchange)
		if rmqErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", rmqErr)
			producer = &rabbitmq.NopPublisher{}
		} else {
			defer eventProducer.Close()
			producer = eventProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	} else {
		producer = &rabbitmq.NopPublisher{}
	}

	// Optional Redis-backed rate limiting on payout creation.
	var rateLimiter api.RateLimiter
	if cfg.PayoutCreateRateLimitPerMinute > 0 {
		if cfg.RedisURL == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; payout rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; payout rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; payout rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					rateLimiter = app.NewRedisPayoutRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the core application services with their dependencies.
	payoutService := app.NewPayoutService(repository, producer, app.PayoutLifecycleConfig{
		QueueDelay:   time.Duration(cfg.PayoutQueueDelayMs) * time.Millisecond,
		ProcessDelay: time.Duration(cfg.PayoutProcessDelayMs) * time.Millisecond,
		ListLimit:    cfg.PayoutListLimit,
	})
	collaboratorService := app.NewCollaboratorService(repository, func() int64 {
		return time.Now().UnixMilli()
	})

	// Start the background lifecycle ticker.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ticker := app.NewLifecycleTicker(payoutService, time.Duration(cfg.PayoutTickIntervalMs)*time.Millisecond, logger)
	ticker.Start()
	defer ticker.Stop()

	// Initialize the API handlers and router.
	handlers := api.NewHandlers(payoutService, collaboratorService, rateLimiter, api.PayoutRateLimit{
		PerMinute: cfg.PayoutCreateRateLimitPerMinute,
		Window:    time.Minute,
	})
	router := api.Routes(handlers)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
