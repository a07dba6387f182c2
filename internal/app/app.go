package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/userbrowser/internal/aggregator"
	"github.com/MrSnakeDoc/userbrowser/internal/bookmark"
	"github.com/MrSnakeDoc/userbrowser/internal/config"
	"github.com/MrSnakeDoc/userbrowser/internal/connector"
	"github.com/MrSnakeDoc/userbrowser/internal/feed/fixture"
	"github.com/MrSnakeDoc/userbrowser/internal/feed/randomuser"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
	"github.com/MrSnakeDoc/userbrowser/internal/logger"
	"github.com/MrSnakeDoc/userbrowser/internal/scheduler"
	"github.com/MrSnakeDoc/userbrowser/internal/session"
	"github.com/MrSnakeDoc/userbrowser/internal/store/memory"
	"github.com/MrSnakeDoc/userbrowser/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/userbrowser/internal/store/redis"
	"github.com/MrSnakeDoc/userbrowser/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	backend  *backend
	sessions *session.Manager
	reaper   *scheduler.SessionReaper
}

// backend is an opened bookmark store with its probe and closer.
type backend struct {
	name  string
	store bookmark.Store
	ready func(ctx context.Context) error
	close func() error
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	feed, err := newFeed(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to initialize feed: %v", err)
		os.Exit(1)
	}

	// Open the bookmark backend early - fail fast if unavailable
	be, err := openBackend(context.Background(), cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s bookmark backend: %v", cfg.BookmarkBackend, err)
		os.Exit(1)
	}
	loggerClient.Info("bookmark backend initialized", logger.String("backend", be.name))

	// A failed read here is not fatal: views fall back to an empty set
	syncer := scheduler.NewBookmarkSyncer(be.store, loggerClient)
	if _, err := syncer.Sync(context.Background()); err != nil {
		loggerClient.Warn("failed to read bookmarks on startup", logger.Error(err))
	}

	sessions := session.NewManager(feed, be.store, loggerClient)

	reaper := scheduler.NewSessionReaper(
		sessions,
		loggerClient,
		cfg.SessionReapInterval,
		cfg.SessionIdleTTL,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		Sessions:       sessions,
		FeedMode:       cfg.FeedMode,
		Backend:        be.name,
		Ready:          be.ready,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RequestTimeout: cfg.RequestTimeout,
		RateBurst:      cfg.RateBurst,
		RatePerMin:     cfg.RatePerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		backend:  be,
		sessions: sessions,
		reaper:   reaper,
	}
}

// newFeed builds the user feed selected by cfg.FeedMode.
func newFeed(cfg *config.Config, log logger.Logger) (aggregator.Feed, error) {
	switch cfg.FeedMode {
	case config.FeedFixture:
		src, err := fixture.Load(cfg.FeedFixtureFile)
		if err != nil {
			return nil, err
		}
		log.Info("using fixture feed",
			logger.String("file", cfg.FeedFixtureFile),
			logger.Int("pages", src.Pages()))
		return src, nil
	case config.FeedRemote:
		log.Info("using remote feed", logger.String("url", cfg.FeedURL))
		return randomuser.NewClient(randomuser.Options{
			BaseURL:    cfg.FeedURL,
			PageSize:   cfg.FeedPageSize,
			Seed:       cfg.FeedSeed,
			Timeout:    cfg.FeedTimeout,
			MaxRetries: cfg.FeedMaxRetries,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown feed mode %q", cfg.FeedMode)
	}
}

func retryPolicy(cfg *config.Config) connector.RetryPolicy {
	return connector.RetryPolicy{
		ConnectTimeout: cfg.ConnectTimeout,
		RetryInterval:  cfg.RetryInterval,
		MaxWait:        cfg.MaxWait,
		PingTimeout:    cfg.PingTimeout,
		WarnThreshold:  cfg.WarnThreshold,
	}
}

// openBackend connects the bookmark store selected by cfg.BookmarkBackend.
func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*backend, error) {
	switch cfg.BookmarkBackend {
	case config.BackendMemory:
		log.Warn("bookmarks are kept in memory and will not survive a restart")
		return &backend{
			name:  config.BackendMemory,
			store: memory.NewStore(),
			close: func() error { return nil },
		}, nil

	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := connector.NewRedis(ctx, connector.RedisOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry:        retryPolicy(cfg),
		}, log)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:  config.BackendRedis,
			store: redisstore.NewStore(client),
			ready: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: client.Close,
		}, nil

	case config.BackendPostgres:
		conn, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Infof("Connecting to Postgres at %s", conn.Addr())
		if err := connector.WaitReady(ctx, "postgres", conn.Addr(), conn.Ping, retryPolicy(cfg), log); err != nil {
			_ = conn.Close()
			return nil, err
		}
		if err := conn.Migrate(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return &backend{
			name:  config.BackendPostgres,
			store: postgres.NewBookmarkRepository(conn),
			ready: conn.Ping,
			close: conn.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown bookmark backend %q", cfg.BookmarkBackend)
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting userbrowser v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	err := multierr.Append(runErr, a.shutdown())
	if err == nil {
		a.logger.Info("✅ userbrowser stopped cleanly")
	}
	_ = a.logger.Sync()
	return err
}

// shutdown stops the reaper, ends every session, drains the server and
// closes the backend, in that order. All failures are reported.
func (a *App) shutdown() error {
	a.reaper.Stop()

	// Ending sessions first closes their event streams, which would
	// otherwise hold Shutdown until the deadline.
	a.sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var err error
	if stopErr := a.server.Stop(shutdownCtx); stopErr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to stop server: %w", stopErr))
	}

	if closeErr := a.backend.close(); closeErr != nil {
		a.logger.Warnf("failed to close %s: %v", a.backend.name, closeErr)
		err = multierr.Append(err, fmt.Errorf("failed to close %s: %w", a.backend.name, closeErr))
	} else {
		a.logger.Info("✅ bookmark backend closed cleanly", logger.String("backend", a.backend.name))
	}
	return err
}
