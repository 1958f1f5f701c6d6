package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/la2go/internal/config"
	"github.com/udisondev/la2go/internal/metrics"
	"github.com/udisondev/la2go/internal/netserver"
	"github.com/udisondev/la2go/internal/pk2"
)

const ConfigPath = "config/pk2agent.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("LA2GO_PK2AGENT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadAgent(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("pk2agent starting",
		"archive", cfg.ArchivePath,
		"bind", fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port))

	// PK2 indexing is synchronous, blocking local file I/O — it runs to
	// completion before the session engine accepts a single connection.
	archive, err := pk2.Open(cfg.ArchivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", cfg.ArchivePath, err)
	}
	defer archive.Close()

	slog.Info("archive indexed", "archive", cfg.ArchivePath)

	if cfg.ExtractOnStart {
		slog.Info("extracting archive", "target", cfg.ExtractDir)
		if err := archive.ExtractAll(cfg.ExtractDir); err != nil {
			return fmt.Errorf("extracting archive to %s: %w", cfg.ExtractDir, err)
		}
		slog.Info("extraction complete", "target", cfg.ExtractDir)
	}

	reg := metrics.NewRegistry()

	metricsAddr := fmt.Sprintf("%s:%d", cfg.MetricsBindAddress, cfg.MetricsPort)
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsHandler(reg)}

	engine := netserver.NewEngine(netserver.Options{Host: cfg.BindAddress, Port: cfg.Port}, reg)
	control, inbound, err := engine.Start()
	if err != nil {
		return fmt.Errorf("starting session engine: %w", err)
	}
	defer engine.Close()

	slog.Info("session engine started", "addr", engine.Addr())

	// Run the metrics endpoint and the control/inbound loop side by side,
	// cancelling both the moment either fails or ctx is done, the same
	// shape cmd/gameserver/main.go uses for its parallel servers.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("metrics server starting", "addr", metricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return metricsSrv.Close()
	})

	g.Go(func() error {
		return runEngineLoop(gctx, control, inbound)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// runEngineLoop logs control-stream signals and inbound frames until ctx is
// cancelled or the engine's channels close (supervisor exit).
func runEngineLoop(ctx context.Context, control <-chan netserver.Signal, inbound <-chan netserver.InboundFrame) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case sig, ok := <-control:
			if !ok {
				return nil
			}
			slog.Info("engine signal", "signal", sig.String())

		case frame, ok := <-inbound:
			if !ok {
				return nil
			}
			// The engine never interprets frame contents; a protocol built
			// on top of this agent would dispatch on frame.SessionID here.
			slog.Debug("inbound frame", "session", frame.SessionID, "bytes", frame.N)
		}
	}
}

func metricsHandler(reg *metrics.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	return mux
}

// parseLogLevel converts a string log level to slog.Level, defaulting to
// Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
