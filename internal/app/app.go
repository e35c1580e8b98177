// Package app wires the numbering service to its storage backends.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"numbering/internal/core/tx"
	"numbering/internal/domain/numbering"
	"numbering/internal/infrastructure/cache"
	"numbering/internal/infrastructure/config"
	"numbering/internal/infrastructure/http/v1/handlers"
	infranumerator "numbering/internal/infrastructure/numerator"
	"numbering/internal/infrastructure/storage/memory"
	"numbering/internal/infrastructure/storage/postgres"
	"numbering/internal/infrastructure/storage/postgres/numbering_repo"
	"numbering/pkg/logger"
)

// Version is reported by /health/info.
var Version = "0.1.0"

// App holds the wired service and the resources to release on shutdown.
type App struct {
	Service *numbering.Service
	Health  *handlers.HealthHandler

	// Organizations is the org catalog; nil for memory apps
	Organizations *numbering_repo.OrganizationRepo

	closers []func()
}

// Close releases pools and clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewPostgres wires the service to PostgreSQL and, when enabled, to the
// Redis org-code cache.
func NewPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolCfg.ApplicationName = cfg.App.Name

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	a := &App{closers: []func(){pool.Close}}

	txm := postgres.NewTxManagerWithOptions(pool.Pool, postgres.TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: cfg.Database.StatementTimeout,
	})

	a.Organizations = numbering_repo.NewOrganizationRepo(txm)
	var orgs numbering.OrgDirectory = a.Organizations
	checks := map[string]handlers.Pinger{"database": pool}

	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		orgs = cache.NewOrgCodeCache(client, orgs, cache.WithTTL(cfg.Redis.OrgCodeTTL))
		checks["redis"] = redisPinger{client}
		log.Infow("org code cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.OrgCodeTTL)
	}

	a.Service = numbering.NewService(numbering.ServiceConfig{
		Formats:              numbering_repo.NewFormatRepo(txm),
		Displays:             numbering_repo.NewListDisplayRepo(txm),
		Orgs:                 orgs,
		Allocator:            infranumerator.NewPostgresAllocator(txm),
		TxManager:            txm,
		Location:             cfg.Numbering.Location,
		FiscalYearStartMonth: cfg.Numbering.DefaultFiscalYearStartMonth,
	})
	a.Health = handlers.NewHealthHandler(Version, checks, func() map[string]any {
		return map[string]any{"database": pool.Stats()}
	})
	return a, nil
}

// Memory holds the in-process backends of a memory App so callers can seed
// them.
type Memory struct {
	Formats   *memory.FormatRepo
	Displays  *memory.ListDisplayRepo
	Orgs      *memory.OrgDirectory
	Allocator *infranumerator.MemoryAllocator
}

// NewMemory wires the service to in-process storage. Nothing survives the
// process; it backs tests and offline previews.
func NewMemory(cfg *config.Config) (*App, *Memory) {
	m := &Memory{
		Formats:   memory.NewFormatRepo(),
		Displays:  memory.NewListDisplayRepo(),
		Orgs:      memory.NewOrgDirectory(nil),
		Allocator: infranumerator.NewMemoryAllocator(),
	}

	var loc *time.Location
	fyStart := numbering.DefaultFiscalYearStartMonth
	if cfg != nil {
		loc = cfg.Numbering.Location
		fyStart = cfg.Numbering.DefaultFiscalYearStartMonth
	}

	a := &App{
		Service: numbering.NewService(numbering.ServiceConfig{
			Formats:              m.Formats,
			Displays:             m.Displays,
			Orgs:                 m.Orgs,
			Allocator:            m.Allocator,
			TxManager:            tx.NewMemoryManager(),
			Location:             loc,
			FiscalYearStartMonth: fyStart,
		}),
		Health: handlers.NewHealthHandler(Version, nil, nil),
	}
	return a, m
}

// redisPinger adapts a Redis client to handlers.Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
