package cli

import (
	"context"
	"database/sql"
	"fmt"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/daypulse/daypulse/core"
	"github.com/daypulse/daypulse/garmin"
	"github.com/daypulse/daypulse/notion"
	"github.com/daypulse/daypulse/providers/activity"
	"github.com/daypulse/daypulse/providers/sleep"
	"github.com/daypulse/daypulse/providers/steps"
	sqlstore "github.com/daypulse/daypulse/store/sql"
	"github.com/daypulse/daypulse/sync"
)

// runtime bundles everything a command needs to execute syncs.
type runtime struct {
	config core.Config
	engine *sync.Engine
	ledger core.RunLedger
	close  func()
}

func buildRuntime(ctx context.Context, opts *RootOptions) (*runtime, error) {
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	tracker, err := buildTracker(cfg)
	if err != nil {
		return nil, err
	}
	store, err := notion.NewClient(cfg.Destination)
	if err != nil {
		return nil, err
	}

	ledger, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engineOptions := []sync.Option{
		sync.WithTracker(tracker),
		sync.WithStore(store),
	}
	if ledger != nil {
		engineOptions = append(engineOptions, sync.WithRunLedger(ledger))
	}

	engine, err := sync.NewEngine(cfg, engineOptions...)
	if err != nil {
		if closeLedger != nil {
			closeLedger()
		}
		return nil, err
	}
	if err := registerAdapters(engine.Registry()); err != nil {
		if closeLedger != nil {
			closeLedger()
		}
		return nil, err
	}

	return &runtime{
		config: cfg,
		engine: engine,
		ledger: ledger,
		close: func() {
			if closeLedger != nil {
				closeLedger()
			}
		},
	}, nil
}

func buildTracker(cfg core.Config) (core.TrackerClient, error) {
	client, err := garmin.NewClient(cfg.Tracker)
	if err != nil {
		return nil, err
	}
	if cfg.CacheTTL() <= 0 {
		return client, nil
	}

	cacheConfig := repositorycache.DefaultConfig()
	cacheConfig.TTL = cfg.CacheTTL()
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("cli: build fetch cache: %w", err)
	}
	return garmin.NewCachedClient(client, cacheService)
}

func registerAdapters(registry core.AdapterRegistry) error {
	if registry == nil {
		return fmt.Errorf("cli: adapter registry is required")
	}
	for _, adapter := range []core.MetricAdapter{
		sleep.New(),
		steps.New(),
		activity.New(),
	} {
		if err := registry.Register(adapter); err != nil {
			return err
		}
	}
	return nil
}

// openLedger opens the optional run ledger. A blank DSN disables it.
func openLedger(ctx context.Context, cfg core.Config) (core.RunLedger, func(), error) {
	dsn := cfg.Storage.DSN
	if dsn == "" {
		return nil, nil, nil
	}

	sqlDB, err := sql.Open(cfg.Storage.Driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("cli: open run ledger db: %w", err)
	}

	var db *bun.DB
	switch cfg.Storage.Driver {
	case "sqlite3":
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case "postgres":
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("cli: unsupported storage driver %q", cfg.Storage.Driver)
	}

	if err := sqlstore.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	store, err := sqlstore.NewRunLedgerStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, func() { _ = db.Close() }, nil
}
