package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-jobform/internal/config"
	"github.com/goliatone/go-jobform/internal/logging"
	"github.com/goliatone/go-jobform/internal/server"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
	"github.com/goliatone/go-jobform/pkg/renderers/jsonview"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	addrFlag := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if addr := strings.TrimSpace(*addrFlag); addr != "" {
		cfg.Addr = addr
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	htmlRenderer, err := html.New(
		html.WithTemplatesDir(cfg.TemplatesDir),
		html.WithStylesheet(server.AssetsPath+html.DefaultStylesheet),
	)
	if err != nil {
		log.Fatalf("templates: %v", err)
	}
	registry := render.NewRegistry()
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(jsonview.New())

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithRegistry(registry),
		server.WithTitle(cfg.Title),
		server.WithSessionTTL(cfg.SessionTTL),
		server.WithMaxSessions(cfg.MaxSessions),
		server.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		server.WithSecureCookies(cfg.SecureCookies),
	}
	if manifest := cfg.Theme.Manifest(); manifest != nil {
		opts = append(opts, server.WithTheme(html.ThemeFromManifest(manifest, cfg.Theme.Variant)))
	}
	srv, err := server.New(opts...)
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, srv, cfg.SessionTTL)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	logger.Info("listening", slog.String("addr", cfg.Addr), slog.String("renderers", strings.Join(registry.List(), ",")))

	select {
	case err := <-errChan:
		log.Fatalf("listen: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.String("error", err.Error()))
	}
}

func sweepSessions(ctx context.Context, srv *server.Server, ttl time.Duration) {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := srv.SweepSessions(); n > 0 {
				slog.Debug("sessions swept", slog.Int("count", n))
			}
		}
	}
}
