package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/fixtures"
	"github.com/BruksfildServices01/barber-booking/internal/infra/broker"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barber-booking/internal/infra/memstore"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		storage      string
		fixturesPath string
		port         string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if storage != "" {
				cfg.Storage = storage
			}
			if port != "" {
				cfg.ServerPort = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, fixturesPath, log)
		},
	}

	cmd.Flags().StringVar(&storage, "storage", "", "override STORAGE (postgres|memory)")
	cmd.Flags().StringVar(&fixturesPath, "fixtures", "", "YAML catalog fixture to load at startup")
	cmd.Flags().StringVar(&port, "port", "", "override SERVER_PORT")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, fixturesPath string, log *zap.Logger) error {
	var (
		store   domain.Store
		catalog domain.Catalog
		sinks   []audit.Sink
	)

	// --------------------------------------------------
	// Storage
	// --------------------------------------------------
	switch cfg.Storage {
	case config.StorageMemory:
		ms := memstore.New()
		if fixturesPath != "" {
			fx, err := fixtures.Load(fixturesPath)
			if err != nil {
				return err
			}
			if err := fx.ApplyMemory(ms); err != nil {
				return err
			}
		}
		store, catalog = ms, ms
		sinks = append(sinks, audit.NewLogSink(log))
		log.Warn("using in-memory storage; data is lost on restart")

	case config.StoragePostgres:
		gdb, err := dbpkg.NewDB(cfg.DBUrl, log)
		if err != nil {
			return err
		}
		if fixturesPath != "" {
			fx, err := fixtures.Load(fixturesPath)
			if err != nil {
				return err
			}
			if err := fx.ApplyDB(ctx, gdb); err != nil {
				return err
			}
		}
		store = infraRepo.NewReservationGormRepository(gdb, cfg.LockTimeout)
		catalog = infraRepo.NewCatalogGormRepository(gdb)
		sinks = append(sinks, audit.NewDBSink(gdb))
	}

	// --------------------------------------------------
	// Catalog cache
	// --------------------------------------------------
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, catalog cache will fall back", zap.Error(err))
		}
		catalog = cache.NewCatalog(catalog, client, cfg.CatalogCacheTTL, log)
	}

	// --------------------------------------------------
	// Events
	// --------------------------------------------------
	if cfg.RabbitURL != "" {
		pub, err := broker.Dial(cfg.RabbitURL, cfg.RabbitExchange, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events will not be published", zap.Error(err))
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}

	dispatcher := audit.NewDispatcher(log, sinks...)

	// --------------------------------------------------
	// HTTP
	// --------------------------------------------------
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		Store:   store,
		Catalog: catalog,
		Audit:   dispatcher,
		Config:  cfg,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running",
			zap.String("addr", cfg.Addr()),
			zap.String("storage", cfg.Storage),
			zap.String("timezone", cfg.Timezone),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn("audit queue not drained", zap.Error(err))
	}
	return nil
}
