// Package server initializes and runs the vidtube auth server: storage and
// session backends, token issuing, media storage, the gRPC endpoint and the
// metrics endpoint, with graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/dmitrijs2005/vidtube/internal/server/sessions"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/vidtube/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	redis      *redis.Client
	metrics    *metrics.AuthMetrics
	auth       *services.AuthService
	profiles   *services.ProfileService
	stagingDir string
}

// NewApp wires every component from c. Configuration errors are returned
// before anything is opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(c.LogLevel)
	logger := logging.NewJSONLogger(os.Stdout, level)
	app := &App{config: c, logger: logger, metrics: metrics.NewAuthMetrics()}

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}
	app.repos = repos

	if err := repos.Migrate(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	store, err := app.sessionStore(ctx)
	if err != nil {
		return fmt.Errorf("session store init error: %w", err)
	}

	secrets := auth.Secrets{
		AccessSecret:  []byte(c.AccessTokenSecret),
		RefreshSecret: []byte(c.RefreshTokenSecret),
		AccessTTL:     c.AccessTokenValidityDuration,
		RefreshTTL:    c.RefreshTokenValidityDuration,
	}
	issuer, err := auth.NewTokenIssuer(secrets, auth.SystemClock)
	if err != nil {
		return err
	}
	verifier, err := auth.NewTokenVerifier(secrets, auth.SystemClock)
	if err != nil {
		return err
	}

	uploader, err := media.NewS3Uploader(ctx, media.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return err
	}

	app.stagingDir, err = ensureStagingDir(c.UploadDir)
	if err != nil {
		return fmt.Errorf("staging dir init error: %w", err)
	}

	app.auth = services.NewAuthService(services.AuthServiceConfig{
		Users:              repos.Users(),
		Sessions:           store,
		Hasher:             auth.NewBcryptHasher(c.PasswordHashCost),
		Issuer:             issuer,
		Verifier:           verifier,
		MinPasswordEntropy: c.PasswordMinEntropy,
		Metrics:            app.metrics,
		Logger:             app.logger,
	})
	app.profiles = services.NewProfileService(app.auth, repos.Users(), uploader, app.metrics, app.logger)

	return nil
}

func (app *App) sessionStore(ctx context.Context) (sessions.Store, error) {
	if app.config.SessionBackend != config.SessionRedis {
		return sessions.NewRecordStore(app.repos.Users()), nil
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return sessions.NewRedisStore(app.redis, "", app.config.RefreshTokenValidityDuration), nil
}

func ensureStagingDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filex.EnsureSubDir(dir, "")
	}
	return filex.EnsureSubDir("", dir)
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth, app.profiles, app.stagingDir)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases storage connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	app.close(closeCtx)

	app.logger.Info(closeCtx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err)
		}
		app.redis = nil
	}
	if app.repos != nil {
		if err := app.repos.Close(ctx); err != nil {
			app.logger.Warn(ctx, "storage close error", "error", err)
		}
		app.repos = nil
	}
}
