package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/config"
	httpapi "github.com/tbourn/go-groupbuy-backend/internal/http"
	"github.com/tbourn/go-groupbuy-backend/internal/observability"
	"github.com/tbourn/go-groupbuy-backend/internal/repo"
	"github.com/tbourn/go-groupbuy-backend/internal/services"
	"github.com/tbourn/go-groupbuy-backend/internal/sysutil"
)

const shutdownTimeout = 10 * time.Second

// app holds what every subcommand needs: validated config and one pooled DB.
type app struct {
	cfg config.Config
	db  *gorm.DB
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	db, err := repo.Open(cfg.DBDriver, cfg.DataSource())
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return &app{cfg: cfg, db: db}, nil
}

func (a *app) close() {
	sqlDB, err := a.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}

func (a *app) migrate() error {
	if err := repo.AutoMigrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("driver", a.cfg.DBDriver).Msg("schema migrated")
	return nil
}

// sweep runs one retention pass. grace <= 0 keeps the configured grace.
func (a *app) sweep(ctx context.Context, grace time.Duration) (int, error) {
	if grace <= 0 {
		grace = a.cfg.RetentionGrace
	}
	return services.NewRetentionSweeper(a.db, grace).Sweep(ctx)
}

// serve runs the HTTP server until ctx is cancelled, then drains connections.
func (a *app) serve(ctx context.Context, migrate bool) error {
	shutdownOTel, err := observability.SetupOTel(ctx, a.cfg.OTEL, versionString())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	if migrate {
		if err := a.migrate(); err != nil {
			return err
		}
	}

	srv := newServer(a.cfg, a.handler())
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", a.cfg.APIBasePath).
			Str("version", versionString()).
			Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *app) handler() http.Handler {
	gin.SetMode(a.cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, a.db, a.cfg)
	return r
}

func newServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// autoMigrateDefault reads AUTO_MIGRATE; unset means migrate on startup.
func autoMigrateDefault() bool {
	return sysutil.IsTruthy(sysutil.FirstNonEmpty(os.Getenv("AUTO_MIGRATE"), "true"))
}

func versionString() string {
	v := version
	if info, ok := debug.ReadBuildInfo(); ok && v == "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	v = sysutil.FirstNonEmpty(v, "dev")
	if commit != "" {
		return v + " (" + commit + ")"
	}
	return v
}
