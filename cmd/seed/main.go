// Package main seeds the database with the demo contributions and products.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/domain"
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/product"
	"infinito/internal/infrastructure/storage/memory"
	"infinito/internal/infrastructure/storage/postgres"
	"infinito/internal/infrastructure/storage/postgres/record_repo"
	"infinito/pkg/logger"
	"infinito/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Format:  "console",
		Service: "infinito-seed",
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	contribRepo := record_repo.NewContributionRepo(txm)
	productRepo := record_repo.NewProductRepo(txm)

	contribs, err := memory.LoadContributions()
	if err != nil {
		log.Fatalw("failed to load contribution fixtures", "error", err)
	}
	products, err := memory.LoadProducts()
	if err != nil {
		log.Fatalw("failed to load product fixtures", "error", err)
	}

	var created, skipped int
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		c, s, err := seedAll[*contribution.Contribution](ctx, contribRepo, contribs, func(c *contribution.Contribution) string { return c.TrackingCode })
		if err != nil {
			return err
		}
		created, skipped = created+c, skipped+s

		c, s, err = seedAll[*product.Product](ctx, productRepo, products, func(p *product.Product) string { return p.SKU })
		if err != nil {
			return err
		}
		created, skipped = created+c, skipped+s
		return nil
	})
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	num := numerator.New(numerator.NewPGStore(pool))
	codes := make([]string, 0, len(contribs))
	for _, c := range contribs {
		codes = append(codes, c.TrackingCode)
	}
	skus := make([]string, 0, len(products))
	for _, p := range products {
		skus = append(skus, p.SKU)
	}
	if err := num.Sync(ctx, numerator.DefaultConfig(contribution.DefaultTrackingPrefix), codes); err != nil {
		log.Fatalw("failed to sync tracking sequence", "error", err)
	}
	if err := num.Sync(ctx, numerator.DefaultConfig(product.DefaultSKUPrefix), skus); err != nil {
		log.Fatalw("failed to sync sku sequence", "error", err)
	}

	log.Infow("seed completed", "created", created, "skipped", skipped)
}

// seedAll inserts the records whose code is not stored yet.
func seedAll[T entity.Versioned](ctx context.Context, repo domain.Repository[T], records []T, codeOf func(T) string) (created, skipped int, err error) {
	for _, rec := range records {
		_, err := repo.GetByCode(ctx, codeOf(rec))
		switch {
		case err == nil:
			skipped++
			continue
		case !apperror.IsNotFound(err):
			return created, skipped, err
		}
		if err := repo.Create(ctx, rec); err != nil {
			return created, skipped, fmt.Errorf("seed %s: %w", codeOf(rec), err)
		}
		created++
	}
	return created, skipped, nil
}
