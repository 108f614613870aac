package main

import (
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/fixtures"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a YAML catalog fixture into postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errors.New("--file is required")
			}

			cfg := config.Load()
			cfg.Storage = config.StoragePostgres
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			fx, err := fixtures.Load(file)
			if err != nil {
				return err
			}

			gdb, err := dbpkg.NewDB(cfg.DBUrl, log)
			if err != nil {
				return err
			}
			if err := fx.ApplyDB(cmd.Context(), gdb); err != nil {
				return err
			}

			// cached offerings may now be stale
			if cfg.RedisAddr != "" {
				client := redis.NewClient(&redis.Options{
					Addr:     cfg.RedisAddr,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				})
				defer client.Close()

				c := cache.NewCatalog(infraRepo.NewCatalogGormRepository(gdb), client, cfg.CatalogCacheTTL, log)
				if err := c.Invalidate(cmd.Context(), fx.OfferingIDs()...); err != nil {
					log.Warn("catalog cache not invalidated", zap.Error(err))
				}
			}

			log.Info("fixtures imported",
				zap.String("file", file),
				zap.Int("barbers", len(fx.Barbers)),
				zap.Int("services", len(fx.Services)),
				zap.Int("offerings", len(fx.Offerings)),
				zap.Int("clients", len(fx.Clients)),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")
	return cmd
}
