// Command server runs the cargotrace tracking service: shipment lifecycle,
// scan verification, progress aggregation, and the scan audit trail.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"cargotrace/internal/actor"
	actorhandler "cargotrace/internal/actor/handler"
	"cargotrace/internal/audit"
	audithandler "cargotrace/internal/audit/handler"
	"cargotrace/internal/platform/config"
	"cargotrace/internal/platform/httpserver"
	"cargotrace/internal/platform/logger"
	"cargotrace/internal/platform/metrics"
	platformredis "cargotrace/internal/platform/redis"
	"cargotrace/internal/progress"
	progresshandler "cargotrace/internal/progress/handler"
	"cargotrace/internal/scan"
	scanhandler "cargotrace/internal/scan/handler"
	"cargotrace/internal/shipment"
	shipmenthandler "cargotrace/internal/shipment/handler"
	transporthttp "cargotrace/internal/transport/http"
)

const auditInboxSize = 256

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		shipmentStore shipment.Store
		actorStore    actor.Store
		auditStore    audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		for _, schema := range []string{shipment.Schema, actor.Schema, audit.Schema} {
			if _, err := db.ExecContext(ctx, schema); err != nil {
				return err
			}
		}
		shipmentStore = shipment.NewPostgres(db)
		actorStore = actor.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		shipmentStore = shipment.NewInMemory()
		actorStore = actor.NewInMemory()
		auditStore = audit.NewInMemory()
		log.Info("using in-memory stores")
	}

	// Audit pipeline: store + optional Kafka sink behind a worker.
	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit kafka sink enabled", "topic", cfg.KafkaTopic)
	}
	auditInbox := make(chan audit.Event, auditInboxSize)
	auditor := audit.NewPublisher(auditInbox, log)
	auditWorker := audit.NewWorker(auditStore, sink, auditInbox, log)

	// Optional Redis cache for progress snapshots.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	progressOpts := []progress.Option{progress.WithLogger(log)}
	shipmentOpts := []shipment.Option{shipment.WithLogger(log)}
	scanOpts := []scan.Option{scan.WithLogger(log)}
	if redisClient != nil {
		defer redisClient.Close()
		// Accepted scans and manual advances drop the cached snapshots so
		// the progress endpoint reflects them immediately, not after TTL.
		progressCache := progress.NewCache(redisClient.Client, cfg.ProgressCacheTTL)
		progressOpts = append(progressOpts, progress.WithCache(progressCache))
		shipmentOpts = append(shipmentOpts, shipment.WithProgressInvalidator(progressCache))
		scanOpts = append(scanOpts, scan.WithProgressInvalidator(progressCache))
		log.Info("progress redis cache enabled")
	}

	shipmentSvc := shipment.NewService(shipmentStore, auditor, shipmentOpts...)
	scanSvc := scan.NewService(shipmentStore, auditor, scanOpts...)
	progressSvc := progress.NewService(progress.NewStoreSource(shipmentStore), progressOpts...)
	actorSvc := actor.NewService(actorStore, []byte(cfg.JWTSigningKey), actor.WithLogger(log))

	router := transporthttp.New(transporthttp.Deps{
		Metrics:   metrics.New(),
		Validator: actorSvc,
		Actor:     actorhandler.New(actorSvc, log),
		Shipment:  shipmenthandler.New(shipmentSvc, log),
		Scan:      scanhandler.New(scanSvc, log),
		Progress:  progresshandler.New(progressSvc, log),
		Audit:     audithandler.New(auditStore, log),
		Health: func(r *http.Request) error {
			if redisClient != nil {
				return redisClient.Health(r.Context())
			}
			return nil
		},
	})
	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := auditWorker.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}
