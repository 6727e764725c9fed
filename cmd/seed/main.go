// Command seed loads a small beauty-shop catalog in WordPress/WooCommerce
// table layout into PostgreSQL, for running the storefront locally with
// CATALOG_SOURCE=postgres. It reads the same environment as the server.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	prefix := cfg.WPTablePrefix
	if prefix == "" {
		prefix = postgres.DefaultTablePrefix
	}

	// Validates the table prefix before it is interpolated into DDL.
	repo, err := postgres.NewCatalogRepository(pool, prefix)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := NewSeeder(tx, prefix, log).Seed(ctx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	for _, taxonomy := range []string{categoryTaxonomy, brandTaxonomy} {
		terms, err := repo.ListTerms(ctx, taxonomy)
		if err != nil {
			return err
		}
		log.Info("taxonomy ready", slog.String("taxonomy", taxonomy), slog.Int("terms", len(terms)))
	}
	return nil
}
