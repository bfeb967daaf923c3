package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forex-signal-engine/internal/bot"
	"forex-signal-engine/internal/cache"
	"forex-signal-engine/internal/config"
	"forex-signal-engine/internal/db"
	"forex-signal-engine/internal/handler"
	"forex-signal-engine/internal/job"
	"forex-signal-engine/internal/provider"
	"forex-signal-engine/internal/repository"
	"forex-signal-engine/internal/service"
	"forex-signal-engine/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "forex-signal-engine/docs"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	newPoolFunc    = func(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
		return db.NewPool(ctx, databaseURL, db.PoolConfigFromEnv())
	}
	newRedisFunc           = cache.NewClient
	initTracerFunc         = tracing.InitTracer
	newNotifierFunc        = bot.NewNotifier
	newTriggerJobFunc      = job.NewTriggerJob
	startJobFunc           = func(j *job.TriggerJob, ctx context.Context) { go j.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Forex Signal Engine API
// @version         1.0
// @description     Price fetching, technical indicators, and trading-signal lifecycle evaluation.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres
	pool, err := newPoolFunc(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("failed to connect to Postgres, persistence disabled: %v", err)
	}

	// Init Redis
	redisClient, err := newRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("failed to connect to Redis, price cache disabled: %v", err)
	}

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	signalRepo := repository.NewSignalRepository(pool, tracer)
	priceRepo := repository.NewPriceRepository(pool, tracer)
	indicatorRepo := repository.NewIndicatorRepository(pool, tracer)
	configRepo := repository.NewConfigRepository(pool, tracer)

	if pool != nil {
		for _, migrate := range []func(context.Context) error{
			signalRepo.RunMigrations,
			priceRepo.RunMigrations,
			indicatorRepo.RunMigrations,
			configRepo.RunMigrations,
		} {
			if err := migrate(ctx); err != nil {
				log.Fatalf("failed to run migrations: %v", err)
			}
		}
		if rc, err := configRepo.GetRuntimeConfig(ctx); err != nil {
			log.Printf("failed to load runtime config: %v", err)
		} else if len(rc.SupportedPairs) > 0 {
			if err := indicatorRepo.SeedPairs(ctx, rc.SupportedPairs); err != nil {
				log.Printf("failed to seed indicator rows: %v", err)
			}
		}
	}

	// Create provider and price cache
	tdClient := provider.NewTwelveDataClient(tracer, cfg.TwelveDataBaseURL)
	var priceCache *cache.PriceCache
	if redisClient != nil {
		priceCache = cache.NewPriceCache(redisClient)
	}

	// Start Telegram bot
	notifier, err := newNotifierFunc(cfg.TelegramBotToken, cfg.TelegramChatID, priceRepo, signalRepo)
	if err != nil {
		log.Printf("failed to start Telegram bot: %v", err)
	}
	var closureNotifier service.ClosureNotifier
	if notifier != nil {
		notifier.Start()
		closureNotifier = notifier
	}

	// Create services
	signalService := service.NewSignalService(tracer, tdClient, signalRepo, priceRepo, configRepo, priceCache, closureNotifier)
	indicatorService := service.NewIndicatorService(tracer, tdClient, indicatorRepo, priceRepo, configRepo)
	triggerService := service.NewTriggerService(tracer, signalService, indicatorService)

	// Start background polling (stopped by ctx cancel)
	if cfg.PollEnabled {
		triggerJob := newTriggerJobFunc(tracer, signalService, indicatorService, cfg.PollSecs)
		startJobFunc(triggerJob, ctx)
	}

	// Create handlers and routes
	h := handler.New(tracer, cfg.TriggerSecret, signalService, indicatorService, triggerService, signalRepo, priceRepo, priceCache, indicatorRepo)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("forex-signal-engine"))
	r.Use(handler.CORS())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()
	if notifier != nil {
		notifier.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
