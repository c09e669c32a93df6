package main

import (
	"context"
	"fmt"

	"infinito/internal/core/tx"
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/product"
	"infinito/internal/infrastructure/http/v1/handlers"
	"infinito/internal/infrastructure/storage/memory"
	"infinito/internal/infrastructure/storage/postgres"
	"infinito/internal/infrastructure/storage/postgres/record_repo"
	"infinito/pkg/logger"
	"infinito/pkg/numerator"
)

// backend is the storage selected at startup.
type backend struct {
	contributions contribution.Repository
	products      product.Repository
	txManager     tx.Manager
	sequences     numerator.Store
	database      handlers.Database // nil for memory
	close         func()
}

// openBackend connects to Postgres when poolCfg has a DSN, otherwise builds
// the in-memory store seeded from the embedded fixtures.
func openBackend(ctx context.Context, log *logger.Logger, poolCfg postgres.PoolConfig) (*backend, error) {
	if poolCfg.DSN == "" {
		store, err := memory.NewSeededStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		log.Infow("using in-memory store",
			"contributions", store.Contributions.Len(),
			"products", store.Products.Len(),
		)
		return &backend{
			contributions: store.Contributions,
			products:      store.Products,
			txManager:     tx.Noop{},
			sequences:     numerator.NewMemoryStore(),
			close:         func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Infow("database connection established",
		"max_conns", poolCfg.MaxConns,
		"slow_query_ms", poolCfg.SlowQuery.Milliseconds(),
	)

	txm := postgres.NewTxManager(pool)
	return &backend{
		contributions: record_repo.NewContributionRepo(txm),
		products:      record_repo.NewProductRepo(txm),
		txManager:     txm,
		sequences:     numerator.NewPGStore(pool),
		database:      pool,
		close:         pool.Close,
	}, nil
}

// syncSequences makes sure codes already stored are never issued again.
func syncSequences(ctx context.Context, b *backend, num *numerator.Service, trackingPrefix, skuPrefix string) error {
	contribs, err := b.contributions.List(ctx)
	if err != nil {
		return err
	}
	codes := make([]string, 0, len(contribs))
	for _, c := range contribs {
		codes = append(codes, c.TrackingCode)
	}
	if err := num.Sync(ctx, numerator.DefaultConfig(trackingPrefix), codes); err != nil {
		return err
	}

	products, err := b.products.List(ctx)
	if err != nil {
		return err
	}
	skus := make([]string, 0, len(products))
	for _, p := range products {
		skus = append(skus, p.SKU)
	}
	return num.Sync(ctx, numerator.DefaultConfig(skuPrefix), skus)
}
