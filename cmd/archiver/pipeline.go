package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IceDynamix/reliquary-archiver-go/internal/bus"
	"github.com/IceDynamix/reliquary-archiver-go/internal/capture"
	"github.com/IceDynamix/reliquary-archiver-go/internal/config"
	"github.com/IceDynamix/reliquary-archiver-go/internal/decoder"
	"github.com/IceDynamix/reliquary-archiver-go/internal/exporter"
	"github.com/IceDynamix/reliquary-archiver-go/internal/sniffer"
)

// pipeline wires one captured packet through the sniffer, the decoder,
// and the exporter, publishing every resulting event onto the bus.
// feed and tick must only ever be called from a single goroutine:
// spec.md §5 requires both the sniffer's session table and the
// exporter's aggregate to see strictly serial access.
type pipeline struct {
	sniffer  *sniffer.Sniffer
	exporter *exporter.Exporter
	bus      *bus.Bus
}

func (p *pipeline) feed(pkt capture.Packet) {
	for _, ev := range p.sniffer.Feed(pkt.SourceID, pkt.Data) {
		p.handleSnifferEvent(ev)
	}
}

func (p *pipeline) tick() {
	for _, ev := range p.sniffer.Tick() {
		p.handleSnifferEvent(ev)
	}
}

// handleSnifferEvent logs or forwards one sniffer.Event per spec.md
// §7's per-failure-kind log level table.
func (p *pipeline) handleSnifferEvent(ev sniffer.Event) {
	switch e := ev.(type) {
	case sniffer.Command:
		p.handleCommand(e)
	case sniffer.HandshakeEstablished:
		slog.Info("session handshake established", "source_id", e.SourceID)
	case sniffer.Disconnected:
		slog.Info("session disconnected", "source_id", e.SourceID)
	case sniffer.FramingError:
		slog.Warn("framing or decryption error, session continues", "source_id", e.SourceID, "reason", e.Reason)
	case sniffer.DecryptionKeyMissing:
		slog.Warn("unrecognized session key version, session abandoned", "source_id", e.SourceID, "version_id", e.VersionID)
	}
}

func (p *pipeline) handleCommand(cmd sniffer.Command) {
	msg, ok, err := decoder.Decode(cmd.CommandID, cmd.Payload)
	if err != nil {
		slog.Warn("schema decode failed, dropping command", "source_id", cmd.SourceID, "command_id", cmd.CommandID, "err", err)
		return
	}
	if !ok {
		return
	}
	for _, ev := range p.exporter.Dispatch(cmd.CommandID, msg) {
		p.bus.Publish(ev)
	}
}

// runCapture supervises live packet capture: spec.md §5/§7 requires
// total capture failure at startup to be retried indefinitely with a
// backoff, and a mid-session capture-channel close to restart rather
// than terminate the archiver.
func runCapture(ctx context.Context, cfg config.Archiver, p *pipeline) error {
	delay := captureRetryDelay(cfg)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		packets, err := capture.ListenOnAll(ctx, capture.PcapBackend{})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("capture start failed, retrying", "err", err, "retry_in", delay)
			if !sleepOrDone(ctx, delay) {
				return nil
			}
			continue
		}

		drainCapture(ctx, packets, ticker, p)
		if ctx.Err() != nil {
			return nil
		}

		slog.Warn("capture stream ended, restarting", "retry_in", delay)
		if !sleepOrDone(ctx, delay) {
			return nil
		}
	}
}

// drainCapture feeds packets and periodic idle-timeout ticks to p on a
// single goroutine until the packet channel closes or ctx is canceled.
func drainCapture(ctx context.Context, packets <-chan capture.Packet, ticker *time.Ticker, p *pipeline) {
	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-packets:
			if !ok {
				return
			}
			p.feed(pkt)
		case <-ticker.C:
			p.tick()
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

// runOnce captures (or replays, already fed by the caller) until the
// exporter's aggregate satisfies spec.md §4.4.4's initialization gate,
// then writes the full export document to outPath and returns.
func runOnce(ctx context.Context, cfg config.Archiver, p *pipeline, outPath string) error {
	if p.exporter.Initialized() {
		return writeExport(p.exporter, outPath)
	}

	delay := captureRetryDelay(cfg)

	for {
		packets, err := capture.ListenOnAll(ctx, capture.PcapBackend{})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("capture start failed, retrying", "err", err, "retry_in", delay)
			if !sleepOrDone(ctx, delay) {
				return ctx.Err()
			}
			continue
		}

		for pkt := range packets {
			p.feed(pkt)
			if p.exporter.Initialized() {
				return writeExport(p.exporter, outPath)
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("capture stream ended before initial scan completed, restarting", "retry_in", delay)
		if !sleepOrDone(ctx, delay) {
			return ctx.Err()
		}
	}
}

func writeExport(exp *exporter.Exporter, outPath string) error {
	doc := exp.Export().Document()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export document: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing export document to %s: %w", outPath, err)
	}
	slog.Info("export document written", "path", outPath)
	return nil
}
