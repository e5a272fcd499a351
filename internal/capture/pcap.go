package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

const (
	// bpfFilter restricts capture to the game's UDP port range
	// (spec.md §4.1, §6 "Port range").
	bpfFilter = "udp portrange 23301-23302"

	snapLen     = 65536
	bufferSize  = 16 * 1024 * 1024 // 16 MiB, per spec.md §4.1
	readTimeout = time.Second
)

// PcapBackend enumerates live network interfaces via libpcap. This is
// the raw-socket backend of spec.md §4.1; the kernel packet-monitor
// alternative is host-specific and not implemented here (DESIGN.md
// Open Question #4).
type PcapBackend struct{}

func (PcapBackend) ListDevices() ([]Device, error) {
	ifaces, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("enumerating interfaces: %w", err)
	}

	devices := make([]Device, 0, len(ifaces))
	for _, iface := range ifaces {
		if !isUsable(iface) {
			continue
		}
		devices = append(devices, pcapDevice{iface: iface})
	}
	return devices, nil
}

func isUsable(iface pcap.Interface) bool {
	if len(iface.Addresses) == 0 {
		return false
	}
	if iface.Flags&pcap.PCAP_IF_LOOPBACK != 0 {
		return false
	}
	if iface.Flags&pcap.PCAP_IF_UP == 0 {
		return false
	}
	return true
}

type pcapDevice struct {
	iface pcap.Interface
}

func (d pcapDevice) Name() string { return d.iface.Name }

func (d pcapDevice) Open() (Capturer, error) {
	inactive, err := pcap.NewInactiveHandle(d.iface.Name)
	if err != nil {
		return nil, fmt.Errorf("creating handle for %s: %w", d.iface.Name, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(snapLen); err != nil {
		return nil, fmt.Errorf("setting snap length on %s: %w", d.iface.Name, err)
	}
	if err := inactive.SetPromisc(true); err != nil {
		return nil, fmt.Errorf("enabling promiscuous mode on %s: %w", d.iface.Name, err)
	}
	if err := inactive.SetTimeout(readTimeout); err != nil {
		return nil, fmt.Errorf("setting read timeout on %s: %w", d.iface.Name, err)
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, fmt.Errorf("enabling immediate mode on %s: %w", d.iface.Name, err)
	}
	if err := inactive.SetBufferSize(bufferSize); err != nil {
		return nil, fmt.Errorf("setting buffer size on %s: %w", d.iface.Name, err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("activating capture on %s: %w", d.iface.Name, err)
	}

	if err := handle.SetBPFFilter(bpfFilter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("setting filter on %s: %w", d.iface.Name, err)
	}

	return &pcapCapturer{handle: handle, linkType: handle.LinkType()}, nil
}

type pcapCapturer struct {
	handle   *pcap.Handle
	linkType layers.LinkType
}

func (c *pcapCapturer) Next(ctx context.Context) ([]byte, error) {
	for {
		data, _, err := c.handle.ReadPacketData()
		if err != nil {
			if err == pcap.NextErrorTimeoutExpired {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
					continue
				}
			}
			return nil, err
		}

		payload, ok := extractUDPPayload(data, c.linkType)
		if !ok {
			continue
		}
		return payload, nil
	}
}

func (c *pcapCapturer) Close() {
	c.handle.Close()
}

// extractUDPPayload decodes just enough of the link layer to reach the
// UDP payload. The BPF filter already restricts capture to UDP traffic
// in the relevant port range, so deeper validation is left to the
// sniffer.
func extractUDPPayload(data []byte, linkType layers.LinkType) ([]byte, bool) {
	packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	app := packet.ApplicationLayer()
	if app == nil {
		return nil, false
	}
	return app.Payload(), true
}
