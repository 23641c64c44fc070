package chessbuilder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/msgcat"
	svcchess "github.com/park285/cheese-chess/internal/service/chess"
)

const pingTimeout = 5 * time.Second

type Deps struct {
	Service   *svcchess.Service
	Engine    *corechess.Engine
	Prefs     svcchess.PreferenceStore
	Catalog   *msgcat.Catalog
	Presenter *chesspresenter.Presenter

	// Backend names the preference store in use: postgres, redis or memory.
	Backend string

	db  *sql.DB
	rdb *redis.Client
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	deps := &Deps{Catalog: catalog, Presenter: chesspresenter.NewPresenter(catalog)}
	if err := deps.openPrefs(cfg, logger); err != nil {
		deps.Close()
		return nil, err
	}

	deps.Engine = corechess.NewEngine(cfg.ChessRandomSeed, logger.Named("engine"))
	deps.Service, err = svcchess.NewService(deps.Engine, deps.Prefs, svcchess.Config{
		DefaultLevel: cfg.ChessDefaultLevel,
		EngineDelay:  cfg.ChessEngineDelay,
		SessionTTL:   cfg.ChessSessionTTL,
		MaxSessions:  cfg.ChessMaxSessions,
		HistoryLimit: cfg.ChessHistoryLimit,
	}, logger.Named("service"))
	if err != nil {
		deps.Close()
		return nil, err
	}
	logger.Info("chess dependencies ready", zap.String("preferences", deps.Backend))
	return deps, nil
}

func (d *Deps) openPrefs(cfg *config.AppConfig, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
		d.db = db
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := svcchess.EnsureSchema(ctx, db); err != nil {
			return err
		}
		d.Prefs, d.Backend = svcchess.NewRepository(db), "postgres"

	case strings.TrimSpace(cfg.RedisURL) != "":
		opts, err := parseRedisURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		d.rdb = redis.NewClient(opts)
		if err := d.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		d.Prefs, d.Backend = svcchess.NewRedisStore(d.rdb, cfg.ChessPreferenceTTL), "redis"

	default:
		logger.Warn("no DATABASE_URL or REDIS_URL; chess preferences kept in memory")
		d.Prefs, d.Backend = svcchess.NewMemoryRepository(), "memory"
	}
	return nil
}

// Close stops every session and releases store connections.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	if d.Service != nil {
		d.Service.Shutdown()
	}
	var errs []error
	if d.rdb != nil {
		errs = append(errs, d.rdb.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	return errors.Join(errs...)
}

// parseRedisURL accepts redis:// and rediss:// URLs; rediss enables TLS.
func parseRedisURL(raw string) (*redis.Options, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}
