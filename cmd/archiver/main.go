// Command archiver captures Honkai: Star Rail network traffic, decodes
// the command stream, and serves the derived player-inventory snapshot
// over a WebSocket endpoint (spec.md §1). Wiring follows spec.md §2's
// dependency order: reference database -> decoder -> sniffer ->
// capture -> exporter -> event bus -> WebSocket endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IceDynamix/reliquary-archiver-go/internal/bus"
	"github.com/IceDynamix/reliquary-archiver-go/internal/capture"
	"github.com/IceDynamix/reliquary-archiver-go/internal/config"
	"github.com/IceDynamix/reliquary-archiver-go/internal/exporter"
	"github.com/IceDynamix/reliquary-archiver-go/internal/reference"
	"github.com/IceDynamix/reliquary-archiver-go/internal/sniffer"
	"github.com/IceDynamix/reliquary-archiver-go/internal/wsserver"
)

// DefaultConfigPath is where cmd/archiver looks for its YAML config
// when -config is not given. ARCHIVER_CONFIG overrides it, the same
// env-var-over-flag precedence cmd/gameserver uses for its own config
// path.
const DefaultConfigPath = "config/archiver.yaml"

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
	f := parseFlags()

	cfgPath := f.configPath
	if p := os.Getenv("ARCHIVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadArchiver(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("reliquary archiver starting", "port", cfg.Port)

	db, err := reference.Load(cfg.ReferenceDir)
	if err != nil {
		return fmt.Errorf("loading reference database: %w", err)
	}
	slog.Info("reference database loaded")

	exp := exporter.New(db)
	p := &pipeline{
		sniffer:  sniffer.NewSniffer(db),
		exporter: exp,
	}
	p.bus = bus.New(func() (exporter.Event, bool) {
		if !exp.Initialized() {
			return nil, false
		}
		return exporter.InitialScan{Export: exp.Export()}, true
	})

	if f.replay != "" {
		packets, err := capture.ReplayFile(f.replay)
		if err != nil {
			return fmt.Errorf("replaying %s: %w", f.replay, err)
		}
		slog.Info("replaying captured packets", "file", f.replay, "count", len(packets))
		for _, pkt := range packets {
			p.feed(pkt)
		}
	}

	if f.once != "" {
		return runOnce(ctx, cfg, p, f.once)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runCapture(gctx, cfg, p)
	})

	ws := wsserver.New(p.bus)
	if err := ws.Reconfigure(cfg.Port); err != nil {
		return fmt.Errorf("starting websocket endpoint: %w", err)
	}
	g.Go(func() error {
		<-gctx.Done()
		return ws.Close()
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("archiver: %w", err)
	}
	return nil
}

type flags struct {
	configPath string
	replay     string
	once       string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", DefaultConfigPath, "path to archiver config YAML")
	flag.StringVar(&f.replay, "replay", "", "replay a previously captured .pcap file instead of live capture")
	flag.StringVar(&f.once, "once", "", "capture until the first InitialScan, write the export document to this file, and exit")
	flag.Parse()
	return f
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
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

// captureRetryDelay parses cfg.CaptureRetryDelay, falling back to 1s
// per spec.md §5's "retried indefinitely with backoff" if the
// configured value is malformed.
func captureRetryDelay(cfg config.Archiver) time.Duration {
	d, err := time.ParseDuration(cfg.CaptureRetryDelay)
	if err != nil {
		return time.Second
	}
	return d
}
