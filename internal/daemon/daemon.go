package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mentor-ia/mentor/internal/api"
	"github.com/mentor-ia/mentor/internal/app/library"
	"github.com/mentor-ia/mentor/internal/app/progress"
	"github.com/mentor-ia/mentor/internal/domain"
	"github.com/mentor-ia/mentor/internal/health"
	"github.com/mentor-ia/mentor/internal/infra/redis"
	"github.com/mentor-ia/mentor/internal/infra/sqlite"
)

// kvStore is a KV backend the daemon owns and must close.
type kvStore interface {
	domain.KVStore
	io.Closer
}

// Daemon is the core Mentor runtime. It wires together all services.
type Daemon struct {
	Config   Config
	Log      *zap.Logger
	Store    domain.KVStore
	Progress *progress.Service
	Library  *library.Library
	Server   *api.Server
	Health   *health.Checker

	closer io.Closer
}

// New creates and initializes a Daemon from the on-disk config.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	kv, err := openStore(context.Background(), cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", zap.String("driver", cfg.Store.Driver))

	prog := progress.NewService(
		progress.NewStore(kv, logger.Named("store")),
		progress.WithLogger(logger.Named("progress")),
	)
	lib := library.New(kv,
		library.WithLogger(logger.Named("library")),
		library.WithDailyLimit(cfg.Quota.DailyFreeLimit),
	)

	checker := health.NewChecker(kv, progress.ProfileKey, logger.Named("health"))

	srv := api.NewServer(prog, lib,
		api.WithLogger(logger.Named("api")),
		api.WithHealth(checker),
		api.WithCORSOrigins(cfg.API.CORSOrigins),
	)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:   cfg,
		Log:      logger,
		Store:    kv,
		Progress: prog,
		Library:  lib,
		Server:   srv,
		Health:   checker,
		closer:   kv,
	}, nil
}

func openStore(ctx context.Context, cfg StoreConfig) (kvStore, error) {
	switch cfg.Driver {
	case DriverRedis:
		return redis.Open(ctx, redisConfig(cfg))
	case DriverSQLite, "":
		dir := cfg.Dir
		if dir == "" {
			dir = mentorHome()
		}
		return sqlite.Open(dir)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func redisConfig(cfg StoreConfig) redis.Config {
	return redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisPrefix,
	}
}

// NewLogger builds a zap logger from the logging section.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = lvl
	}
	return zc.Build()
}

// ResetAll wipes the profile and the study library. Both are attempted; the
// first failure is returned.
func (d *Daemon) ResetAll(ctx context.Context) error {
	perr := d.Progress.ResetProgress(ctx)
	lerr := d.Library.Reset(ctx)
	if perr != nil {
		return perr
	}
	return lerr
}

// Addr is the host:port the HTTP server listens on.
func (d *Daemon) Addr() string {
	return net.JoinHostPort(d.Config.API.Host, strconv.Itoa(d.Config.API.Port))
}

// Serve starts the HTTP server and blocks until ctx is done or a signal
// arrives, then shuts down gracefully.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := d.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Health.Run(gctx)
		return nil
	})
	g.Go(func() error {
		d.Log.Info("serving", zap.String("addr", "http://"+addr), zap.Bool("metrics", d.Config.Telemetry.Prometheus))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d.Log.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			d.Log.Warn("close store", zap.Error(err))
		}
	}
	_ = d.Log.Sync()
}
