package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/carbonix/carbonix-indexer/internal/adapter"
	"github.com/carbonix/carbonix-indexer/internal/cache"
	"github.com/carbonix/carbonix-indexer/internal/config"
	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/explorer"
	"github.com/carbonix/carbonix-indexer/internal/logger"
	"github.com/carbonix/carbonix-indexer/internal/project"
	"github.com/carbonix/carbonix-indexer/internal/providers/jetstream"
	"github.com/carbonix/carbonix-indexer/internal/providers/tendermint"
	"github.com/carbonix/carbonix-indexer/internal/registry"
	"github.com/carbonix/carbonix-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	force      = flag.Bool("force", false, "Rebuild snapshots even when the cache is fresh")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadRefresherConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "refresher",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Carbonix Indexer refresher")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}

	// Run migrations; the refresher owns the schema
	if err := store.Migrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to run migrations", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	fs := adapter.NewFileSystem()
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(30 * time.Second)

	// Resolve the tracked contract set from the registry file and the
	// configured list
	var contractRegistry registry.ContractRegistry
	if cfg.Chain.RegistryPath != "" {
		contractRegistry, err = registry.LoadContracts(cfg.Chain.RegistryPath, fs, jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load contract registry", zap.Error(err), zap.String("path", cfg.Chain.RegistryPath))
		}
	}
	contracts := registry.Merge(contractRegistry, cfg.Chain.Contracts)
	if len(contracts) == 0 {
		logger.FatalCtx(ctx, "No contracts configured")
	}

	// Open the response cache
	responseCache, err := cache.Open(cfg.Cache.Path, fs)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open response cache", zap.Error(err), zap.String("path", cfg.Cache.Path))
	}
	logger.InfoCtx(ctx, "Opened response cache",
		zap.String("path", cfg.Cache.Path),
		zap.Int("entries", responseCache.Len()),
	)

	// Connect to NATS
	natsPublisher, err := jetstream.NewPublisher(
		jetstream.Config{
			URL:            cfg.NATS.URL,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: "carbonix-refresher",
		},
		adapter.NewNatsJetStream(),
		jsonAdapter,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer natsPublisher.Close()

	// Wire the refresh pipeline
	rpcClient := tendermint.NewClient(cfg.Chain.RPCURL, cfg.Chain.PerPage)
	ledger := explorer.New(rpcClient, httpClient, responseCache)
	refresher := project.NewRefresher(ledger, responseCache, dataStore, natsPublisher, clock, project.RefresherConfig{
		WorkerPoolSize: cfg.Worker.WorkerPoolSize,
		QueueSize:      cfg.Worker.WorkerQueueSize,
	})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	runCycle := func() error {
		start := clock.Now()
		err := refresher.RefreshAll(ctx, contracts, *force)
		logger.InfoCtx(ctx, "Refresh cycle finished",
			zap.Int("contracts", len(contracts)),
			zap.Duration("duration", clock.Since(start)),
		)
		return err
	}

	// A zero interval runs a single cycle and exits
	if cfg.Interval == 0 {
		if err := runCycle(); err != nil {
			logger.FatalCtx(ctx, "Refresh cycle failed", zap.Error(err))
		}
		logger.Info("Refresher finished")
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		if err := runCycle(); err != nil {
			// a cache rotation conflict means the on-disk state cannot
			// be trusted anymore; stop instead of looping on it
			if errors.Is(err, domain.ErrStaleCache) {
				logger.FatalCtx(ctx, "Cache rotation failed", zap.Error(err))
			}
			logger.ErrorCtx(ctx, err)
		}

		select {
		case <-ctx.Done():
			logger.Info("Refresher stopped")
			return
		case <-ticker.C:
		}
	}
}
