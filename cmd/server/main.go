package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/kiwikodes/Four-In-A-Row/internal/analytics"
	"github.com/kiwikodes/Four-In-A-Row/internal/cache"
	"github.com/kiwikodes/Four-In-A-Row/internal/config"
	"github.com/kiwikodes/Four-In-A-Row/internal/database"
	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
	"github.com/kiwikodes/Four-In-A-Row/internal/middleware"
	"github.com/kiwikodes/Four-In-A-Row/internal/stats"
	"github.com/kiwikodes/Four-In-A-Row/internal/utils"
	"github.com/kiwikodes/Four-In-A-Row/internal/ws"
)

func main() {
	// Load .env.local for local development
	if err := godotenv.Load(".env.local"); err != nil {
		logger.Info("Note: .env.local not found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Invalid configuration", err)
		os.Exit(1)
	}
	logger.SetDebug(cfg.Debug)
	logger.Info("Starting Four In A Row server", logger.Fields{
		"port": cfg.Server.Port, "defaultBoardSize": cfg.Game.DefaultBoardSize, "maxBoardSize": cfg.Game.MaxBoardSize,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rm := utils.NewResourceManager()

	// Database (optional)
	db := openDatabase(ctx, cfg.Database)
	if db != nil {
		rm.AddCleanupFunc("database", db.Close)
	}

	// Stats cache: Redis when reachable, in-process otherwise
	statsCache := openCache(ctx, cfg.Redis)
	rm.AddCleanupFunc("cache", statsCache.Close)

	var store stats.Store
	if db != nil {
		store = db
	}
	statsService := stats.NewService(store, statsCache, cfg.Redis.StatsTTL)

	hub := ws.NewHub(ws.Options{
		DefaultBoardSize: cfg.Game.DefaultBoardSize,
		MaxBoardSize:     cfg.Game.MaxBoardSize,
		BotMoveDelay:     cfg.Game.BotMoveDelay,
		BotName:          cfg.Game.BotName,
		CheckOrigin:      middleware.CheckOrigin(cfg.Security.AllowedOrigins),
	})
	hub.SetResultStore(statsService)

	// Kafka analytics (optional)
	if len(cfg.Kafka.Brokers) > 0 {
		startAnalytics(ctx, cfg.Kafka, db, hub, rm)
	}

	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()
	rm.AddCleanupFunc("hub", func() error {
		cancel()
		<-hubDone
		hub.Wait()
		return nil
	})

	limit := middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})
	mux.Handle("/stats", limit(statsService))
	mux.Handle("/active-sessions", limit(http.HandlerFunc(hub.HandleActiveSessions)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           middleware.CORSMiddleware(cfg.Security.AllowedOrigins)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	rm.AddCleanupFunc("http server", func() error {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})

	go func() {
		logger.Info("Server running", logger.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ListenAndServe failed", err)
			cancel()
		}
	}()

	rm.WaitForShutdown(ctx)
	logger.Info("Server stopped")
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) *database.DB {
	if !cfg.Enabled() {
		logger.Warn("No database configuration found. Running without DB.")
		return nil
	}
	db, err := database.NewDB(cfg.DSN())
	if err != nil {
		logger.Warn("Database unavailable, results will not be stored", err)
		return nil
	}
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Warn("Failed to initialize schema", err)
	}
	return db
}

func openCache(ctx context.Context, cfg config.RedisConfig) cache.Store {
	if cfg.Addr == "" {
		return cache.NewCache()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(pingCtx, cfg.Addr, cfg.Password)
	if err != nil {
		logger.Warn("Could not connect to Redis, falling back to in-memory cache", err)
		return cache.NewCache()
	}
	logger.Info("Redis connected", logger.Fields{"addr": cfg.Addr})
	return rc
}

func startAnalytics(ctx context.Context, cfg config.KafkaConfig, db *database.DB, hub *ws.Hub, rm *utils.ResourceManager) {
	producer, err := analytics.NewProducer(cfg.Brokers, cfg.Topic)
	if err != nil {
		logger.Warn("Kafka producer init failed", err)
	} else {
		hub.SetPublisher(producer)
		rm.AddCleanupFunc("kafka producer", producer.Close)
		logger.Info("Kafka producer initialized", logger.Fields{"topic": cfg.Topic})
	}

	if db == nil {
		return
	}
	if err := analytics.EnsureSchema(ctx, db); err != nil {
		logger.Warn("Failed to create analytics tables", err)
	}
	consumer, err := analytics.NewConsumer(cfg.Brokers, cfg.GroupID, db)
	if err != nil {
		logger.Warn("Kafka consumer init failed", err)
		return
	}
	rm.AddCleanupFunc("kafka consumer", consumer.Close)
	go func() {
		if err := consumer.Start(ctx, []string{cfg.Topic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Error in consumer", err)
		}
	}()
	logger.Info("Kafka consumer initialized", logger.Fields{"group": cfg.GroupID})
}
