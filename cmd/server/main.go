package main // Entry point package

import (
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/azulmar/beach-map-service/internal/config"
	"github.com/azulmar/beach-map-service/internal/conflict"
	"github.com/azulmar/beach-map-service/internal/database"
	"github.com/azulmar/beach-map-service/internal/events"
	"github.com/azulmar/beach-map-service/internal/gateway"
	"github.com/azulmar/beach-map-service/internal/handler"
	"github.com/azulmar/beach-map-service/internal/middleware"
	"github.com/azulmar/beach-map-service/internal/movemode"
	"github.com/azulmar/beach-map-service/internal/queue"
	"github.com/azulmar/beach-map-service/internal/repository"
	"github.com/azulmar/beach-map-service/internal/router"
	"github.com/azulmar/beach-map-service/internal/safeguard"
)

func main() {
	// Load .env if present; real deployments set the environment
	// directly and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	// Redis backs the rate limiter, the response cache and the
	// gateway's offline fallback.  All three degrade gracefully when
	// the client is nil.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache, offline fallback and rate limiting disabled")
	}

	// The journal database is optional; a nil repo disables it.
	var db *sql.DB
	if cfg.JournalEnabled {
		var err error
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("journal database: %v", err)
		}
	}
	journal := repository.NewJournalRepo(db)

	// Gateway toward the reservation store, with offline caching of
	// GET lookups.
	offCfg := config.LoadOfflineCacheConfig()
	var offline *gateway.Cache
	if offCfg.Enabled {
		offline = gateway.NewCache(rdb, offCfg.Prefix, offCfg.TTL)
	}
	gw := gateway.NewClient(cfg.StoreBaseURL, cfg.StoreCSRFToken,
		time.Duration(cfg.StoreTimeoutSec)*time.Second, offline)

	// Engine wiring: emitter and notifier are shared by all three
	// coordinators so presentation consumers see one event stream.
	emitter := events.NewEmitter()
	notifier := events.LogNotifier{}
	coordinator := movemode.NewCoordinator(gw, emitter, notifier, cfg.UndoCapacity)
	orchestrator := safeguard.NewOrchestrator(gw, notifier)
	sessions := conflict.NewRegistry(time.Duration(cfg.SessionTTLMin) * time.Minute)

	moveHandler := handler.NewMoveModeHandler(coordinator, journal)
	resHandler := handler.NewReservationHandler(orchestrator, gw, sessions, emitter, notifier, journal)
	authHandler := handler.NewAuthHandler(cfg.JWTSecret, cfg.AccessTTLMin, cfg.OperatorName, cfg.OperatorPassHash)

	// Audit consumer runs for the lifetime of the process.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterMap(e, moveHandler, resHandler, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreBaseURL)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
