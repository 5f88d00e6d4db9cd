package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/groomer-scheduler/internal/db"
	"github.com/BruksfildServices01/groomer-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/metrics"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/routes"
	"github.com/BruksfildServices01/groomer-scheduler/internal/storage/logo"
)

func main() {

	cfg := config.Load()

	log := logger.Init(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	metrics.Init(cfg.MetricsPrefix)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := dbpkg.NewDB(cfg)
	if err := dbpkg.Migrate(db, cfg.DefaultTimezone); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	occupied, err := repository.NewKennelGormRepository(db).CountOccupied(context.Background())
	if err != nil {
		log.Fatal("failed to count occupied kennels", zap.Error(err))
	}
	metrics.SetKennelsOccupied(occupied)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------------------------------------
	// Change feed
	// --------------------------------------------------
	bus := realtime.NewBus()
	var publisher realtime.Publisher = bus

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, change feed stays local", zap.Error(err))
		} else {
			bridge := realtime.NewRedisBridge(rdb, bus)
			go bridge.Run(ctx)
			publisher = bridge
			log.Info("change feed shared through redis")
		}
	}

	// --------------------------------------------------
	// Audit + logo storage
	// --------------------------------------------------
	auditDispatcher := audit.NewDispatcher(audit.New(db))

	var logos *logo.Store
	if cfg.S3.Enabled() {
		logos = logo.New(logo.NewS3Client(cfg.S3), cfg.S3.Bucket, cfg.S3.PublicURL)
	}

	deps := routes.Deps{
		Bus:       bus,
		Publisher: publisher,
		Audit:     auditDispatcher,
	}
	if logos != nil {
		deps.Logos = logos
	}

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, db, cfg, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// event streams end when the process is asked to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	auditDispatcher.Close()
}
