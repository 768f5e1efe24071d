package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/bookmarker/internal/codec"
	"github.com/MrSnakeDoc/bookmarker/internal/config"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarker/internal/httpserver/mw"
	"github.com/MrSnakeDoc/bookmarker/internal/logger"
	"github.com/MrSnakeDoc/bookmarker/internal/pageinfo"
	"github.com/MrSnakeDoc/bookmarker/internal/redis"
	"github.com/MrSnakeDoc/bookmarker/internal/scheduler"
	"github.com/MrSnakeDoc/bookmarker/internal/service"
	"github.com/MrSnakeDoc/bookmarker/internal/store"
	redisstore "github.com/MrSnakeDoc/bookmarker/internal/store/redis"
	"github.com/MrSnakeDoc/bookmarker/internal/utils"
	"github.com/MrSnakeDoc/bookmarker/internal/version"
)

// Core is the collection service and the resources behind it.
type Core struct {
	Service     *service.Service
	redisClient *goredis.Client
	logger      logger.Logger
}

// Open connects the configured backend and builds the service.
// Redis is connected eagerly: Open fails fast when it is unavailable.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Core, error) {
	core := &Core{logger: log}

	var backend store.Backend
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using the in-memory store, bookmarks are lost on exit")
		backend = store.NewMemoryBackend()
	default:
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		core.redisClient = client
		backend = redisstore.NewStore(client, cfg.KeyPrefix)
	}

	var hints pageinfo.HintProvider
	if cfg.FetchTimeout > 0 {
		hints = pageinfo.NewFetcher(cfg.FetchTimeout, pageinfo.DefaultMaxBodyBytes, cfg.FetchAllowPrivate)
	}

	repo := store.New(backend, log, cfg.CheckRevision)
	core.Service = service.New(repo, hints, codec.Options{Strict: cfg.StrictFormats}, log)
	return core, nil
}

// Close releases the backend connection.
func (c *Core) Close() {
	if c.redisClient != nil {
		utils.MustClose(c.redisClient, c.logger, "redis")
	}
}

// App is the HTTP server with its background jobs.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	core   *Core
	server *httpserver.Server
	backup *scheduler.BackupWriter
}

func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	core, err := Open(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Service:      core.Service,
		StoreKind:    cfg.Store,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		RateLimit: mw.RateLimitConfig{
			Burst:             cfg.RateBurst,
			RefillPerIPPerMin: cfg.RatePerMin,
			MaxEntries:        10000,
			TrustProxy:        cfg.TrustProxy,
		},
		MaxImportBytes: cfg.MaxImportBytes,
	}

	var backup *scheduler.BackupWriter
	if cfg.BackupFile != "" {
		loggerClient.Info("backup file configured, initializing backup writer",
			logger.String("file", cfg.BackupFile),
			logger.String("format", cfg.BackupFormat))
		trigger := make(chan struct{}, 1)
		backup = scheduler.NewBackupWriter(
			core.Service,
			cfg.BackupFile,
			codec.Format(cfg.BackupFormat),
			loggerClient,
			cfg.BackupInterval,
			trigger,
		)
		d.BackupTrigger = trigger
		d.BackupStatus = backup.Status
	} else {
		loggerClient.Info("backup file not configured, backups disabled")
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		core:   core,
		server: httpserver.New(cfg, loggerClient, d),
		backup: backup,
	}, nil
}

// Run serves until ctx is cancelled or the server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting bookmarker %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bookmarker %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	defer a.core.Close()

	if a.backup != nil {
		a.backup.Start(ctx)
		a.logger.Info("backup writer started",
			logger.Duration("interval", a.cfg.BackupInterval))
		defer a.backup.Stop()
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return errors.New("http server stopped")
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	a.logger.Info("✅ bookmarker stopped cleanly")
	return nil
}
