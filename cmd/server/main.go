package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xtding233/dropcalc/internal/api/grpcapi"
	"github.com/xtding233/dropcalc/internal/api/httpapi"
	"github.com/xtding233/dropcalc/internal/calc"
	"github.com/xtding233/dropcalc/internal/config"
	"github.com/xtding233/dropcalc/internal/game"
	"github.com/xtding233/dropcalc/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	// ---- Game data ----
	loader := game.NewLoader(cfg.DataDir)
	raw, err := loader.LoadMerged(cfg.Mod)
	if err != nil {
		return fmt.Errorf("load game data: %w", err)
	}
	cat, err := game.Build(raw)
	if err != nil {
		return fmt.Errorf("build game data: %w", err)
	}
	svc := calc.NewService(cat, calc.Options{
		CacheSize:   cfg.CacheSize,
		CacheTTL:    cfg.CacheTTL,
		MaxParallel: cfg.MaxParallel,
	}, zl)

	// ---- Reload on edit ----
	if cfg.WatchInterval > 0 {
		w, err := loader.Watch(cfg.Mod, cfg.WatchInterval, func(next game.RawConfig, err error) {
			if err != nil {
				zl.Warn("reload skipped", zap.Error(err))
				return
			}
			_ = svc.Reload(next)
		})
		if err != nil {
			return fmt.Errorf("watch game data: %w", err)
		}
		go w.Run(ctx)
		zl.Info("watching game data", zap.Strings("files", w.Paths()), zap.Duration("interval", cfg.WatchInterval))
	}

	// ---- Servers ----
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(svc, zl),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv, health := grpcapi.NewGRPCServer(svc, zl)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		zl.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		zl.Info("shutting down")
		health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		return err
	})
	return g.Wait()
}
