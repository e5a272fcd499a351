package capture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/pcapgo"
)

// ReplayFile reads every UDP datagram out of a previously recorded
// pcap file and returns them as a single batch, all tagged with one
// source_id derived from the file path. This backs the supplemented
// `-replay` CLI flag (SPEC_FULL.md), grounded on
// original_source/src/worker.rs's capture_from_pcap and the
// WorkerCommand::ProcessRecorded path: a recording is processed
// through the same pipeline as live traffic, just front-loaded instead
// of arriving over time.
//
// pcapgo (a pure-Go reader) is used here instead of the libpcap-backed
// pcap.OpenOffline, since reading a file needs no libpcap handle at
// all.
func ReplayFile(path string) ([]Packet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pcap file %s: %w", path, err)
	}
	defer f.Close()

	reader, err := pcapgo.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading pcap header from %s: %w", path, err)
	}

	sourceID := SourceID(path)
	var packets []Packet

	for {
		data, _, err := reader.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading packet from %s: %w", path, err)
		}

		payload, ok := extractUDPPayload(data, reader.LinkType())
		if !ok {
			continue
		}

		packets = append(packets, Packet{SourceID: sourceID, Data: payload})
	}

	return packets, nil
}
