/**
 * @description
 * This is the main entry point for the transfer-service. It is responsible for
 * initializing all components of the service, including configuration, database connection,
 * external API clients, message brokers, repositories, the core application service,
 * and the HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client backing the pending transaction store.
 * - internal/api, internal/app, internal/banks, internal/config, internal/pending, internal/store.
 * - pkg/intentclient, pkg/verifyclient, pkg/rabbitmq: External collaborators.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/swiftsend/transfer-service/internal/api"
	"github.com/swiftsend/transfer-service/internal/app"
	"github.com/swiftsend/transfer-service/internal/banks"
	"github.com/swiftsend/transfer-service/internal/config"
	"github.com/swiftsend/transfer-service/internal/pending"
	"github.com/swiftsend/transfer-service/internal/store"
	"github.com/swiftsend/transfer-service/pkg/intentclient"
	rmrabbit "github.com/swiftsend/transfer-service/pkg/rabbitmq"
	"github.com/swiftsend/transfer-service/pkg/verifyclient"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.InternalAPIKey) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"internal api key must be configured\" env=INTERNAL_API_KEY")
	}

	log.Printf("level=info component=bootstrap msg=\"starting transfer-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	// Configure connection pool for high-traffic scenarios
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish transfer events. The service
	// can run without it; events are then skipped with a warning.
	var producer rmrabbit.Publisher = &rmrabbit.EventProducerFallback{}
	if rabbitProducer, prodErr := rmrabbit.NewEventProducer(cfg.RabbitMQURL); prodErr != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", prodErr)
	} else {
		producer = rabbitProducer
		defer rabbitProducer.Close()
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	pendingTTL := time.Duration(cfg.PendingTTLMinutes) * time.Minute

	// The pending transaction store prefers Redis (server-side expiry); an
	// in-memory store with a periodic sweep is the fallback for local dev.
	var pendingStore pending.Store
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; using in-memory pending store\" env=REDIS_URL")
		memStore := pending.NewMemoryStore(pendingTTL)
		memStore.StartSweeper(context.Background(), time.Minute)
		pendingStore = memStore
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"redis url parse failed\" err=%v", parseErr)
		}
		redisClient := redis.NewClient(redisOptions)
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelPing()
		if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"redis ping failed\" err=%v", pingErr)
		}
		defer redisClient.Close()
		log.Println("level=info component=bootstrap msg=\"redis connected\"")
		pendingStore = pending.NewRedisStore(redisClient, cfg.RedisPendingPrefix, pendingTTL)
	}

	// Initialize the bank verification client and the account resolver over
	// the static bank catalog.
	verifyClient := verifyclient.NewClient(cfg.VerifyServiceURL, cfg.VerifyServiceAPIKey)
	resolver := banks.NewResolver(verifyClient)

	// The intent client turns raw customer messages into parsed requests.
	var intentClient *intentclient.Client
	if strings.TrimSpace(cfg.IntentServiceURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"intent service not configured; falling back to local text parsing\" env=INTENT_SERVICE_URL")
	} else {
		intentClient = intentclient.NewClient(cfg.IntentServiceURL, cfg.IntentServiceAPIKey)
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	transferService := app.NewService(
		repository,
		pendingStore,
		resolver,
		producer,
		cfg.PINMaxAttempts,
		cfg.PINLockoutSeconds,
	)

	// Initialize the API handlers.
	transferHandlers := api.NewTransferHandlers(transferService, intentClient)

	// Set up the HTTP router and define the API routes.
	router := chi.NewRouter()
	router.Mount("/", api.TransferRoutes(transferHandlers, cfg.JWKSURL, cfg.InternalAPIKey))

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
