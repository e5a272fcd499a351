// Package capture turns live network interfaces (or a recorded pcap
// file) into a stream of UDP datagrams tagged with a stable source_id,
// per spec.md §4.1. It owns enumeration, per-interface worker
// lifecycle, and the bounded merge queue; it does not parse anything
// above the UDP payload — that is the sniffer's job.
package capture

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"sync/atomic"
)

// queueCapacity is the merge queue's bound. Packets arriving once it
// is full are dropped and counted, never buffered unboundedly.
const queueCapacity = 16

// Packet is a single captured UDP datagram.
type Packet struct {
	SourceID uint64
	Data     []byte
}

// Device is one capturable network interface or replay source.
type Device interface {
	Name() string
	Open() (Capturer, error)
}

// Capturer reads successive UDP payloads from an opened device.
type Capturer interface {
	Next(ctx context.Context) ([]byte, error)
	Close()
}

// Backend enumerates the devices available on this host.
type Backend interface {
	ListDevices() ([]Device, error)
}

var droppedPackets atomic.Int64

// DroppedPackets reports how many captured packets were discarded
// because the merge queue was full when they arrived.
func DroppedPackets() int64 {
	return droppedPackets.Load()
}

// SourceID hashes a device name into a stable id. Must stay consistent
// across the process lifetime so sniffer session state survives
// transient device re-enumeration (spec.md §4.1).
func SourceID(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// ListenOnAll opens every device the backend reports, runs one worker
// goroutine per opened device, and merges their output into a single
// bounded channel. If not one device could be opened, it returns a
// start-up error so the caller can retry (spec.md §4.1 failure policy).
func ListenOnAll(ctx context.Context, backend Backend) (<-chan Packet, error) {
	devices, err := backend.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("listing capture devices: %w", err)
	}

	out := make(chan Packet, queueCapacity)

	var (
		wg     sync.WaitGroup
		opened int
	)

	for _, device := range devices {
		capturer, err := device.Open()
		if err != nil {
			slog.Debug("failed to open capture device", "device", device.Name(), "error", err)
			continue
		}
		opened++

		wg.Add(1)
		go func(device Device, capturer Capturer) {
			defer wg.Done()
			defer capturer.Close()
			runWorker(ctx, device, capturer, out)
		}(device, capturer)
	}

	if opened == 0 {
		return nil, fmt.Errorf("no capture device could be opened (tried %d)", len(devices))
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

func runWorker(ctx context.Context, device Device, capturer Capturer, out chan<- Packet) {
	sourceID := SourceID(device.Name())
	hasCaptured := false

	for {
		data, err := capturer.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Debug("capture worker stopping", "device", device.Name())
				return
			}
			if hasCaptured {
				slog.Warn("capture worker failed", "device", device.Name(), "error", err)
			} else {
				slog.Debug("capture worker failed before capturing anything", "device", device.Name(), "error", err)
			}
			return
		}

		hasCaptured = true

		select {
		case out <- Packet{SourceID: sourceID, Data: data}:
		case <-ctx.Done():
			return
		default:
			droppedPackets.Add(1)
		}
	}
}
