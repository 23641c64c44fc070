package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/cheese-chess/internal/api"
	"github.com/park285/cheese-chess/internal/chessbuilder"
	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/obslog"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger, err := obslog.Init(cfg.Log)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("chess server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *appcfg.AppConfig, logger *zap.Logger) error {
	deps, err := chessbuilder.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("chess deps close", zap.Error(err))
		}
	}()

	httpLn, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	wsLn, err := net.Listen("tcp", cfg.WSAddr)
	if err != nil {
		_ = httpLn.Close()
		return err
	}

	srv := api.NewServer(deps.Service, deps.Presenter, logger.Named("api"))
	srv.OriginPatterns = cfg.WSOrigins

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("chess server listening",
		zap.String("http_addr", httpLn.Addr().String()),
		zap.String("ws_addr", wsLn.Addr().String()),
		zap.String("preferences", deps.Backend),
		zap.Int("default_level", cfg.ChessDefaultLevel),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ServeHTTP(gctx, httpLn) })
	g.Go(func() error { return srv.ServeEvents(gctx, wsLn) })
	g.Go(func() error { return deps.Service.RunJanitor(gctx, cfg.ChessJanitorInterval) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("chess server shutting down", zap.Int("sessions", deps.Service.SessionCount()))
	return err
}
