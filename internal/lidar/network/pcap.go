package network

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapngMagic is the section header block type that starts a pcapng file.
const pcapngMagic = 0x0A0D0D0A

// PCAPStats summarises a replay.
type PCAPStats struct {
	Packets       int // frames read from the capture
	Routed        int // UDP payloads delivered to a handler
	Unrouted      int // UDP payloads on ports with no handler
	NonUDP        int
	HandlerErrors int
	First, Last   time.Time // capture timestamps of routed packets
}

// PCAPReplay feeds a capture file through the same handlers as the live
// listeners.
type PCAPReplay struct {
	// Routes maps UDP destination ports to handlers.
	Routes map[uint16]PacketHandler
	// Timer, if set, receives each routed packet's capture timestamp before
	// the handler runs. *Dispatcher implements it.
	Timer interface{ SetPacketTime(time.Time) }
}

// ReadPCAPFile replays the pcap or pcapng file at path until it is exhausted
// or ctx is cancelled.
func (r *PCAPReplay) ReadPCAPFile(ctx context.Context, path string) (PCAPStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return PCAPStats{}, fmt.Errorf("failed to open PCAP file %s: %w", path, err)
	}
	defer f.Close()

	source, err := newPacketSource(bufio.NewReader(f))
	if err != nil {
		return PCAPStats{}, fmt.Errorf("failed to read PCAP file %s: %w", path, err)
	}
	return r.Replay(ctx, source)
}

func newPacketSource(r *bufio.Reader) (*gopacket.PacketSource, error) {
	magic, err := r.Peek(4)
	if err != nil {
		return nil, err
	}

	var src *gopacket.PacketSource
	if binary.LittleEndian.Uint32(magic) == pcapngMagic {
		ng, err := pcapgo.NewNgReader(r, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, err
		}
		src = gopacket.NewPacketSource(ng, ng.LinkType())
	} else {
		pr, err := pcapgo.NewReader(r)
		if err != nil {
			return nil, err
		}
		src = gopacket.NewPacketSource(pr, pr.LinkType())
	}
	src.Lazy = true
	src.NoCopy = true
	return src, nil
}

// Replay routes every UDP payload from source.
func (r *PCAPReplay) Replay(ctx context.Context, source *gopacket.PacketSource) (PCAPStats, error) {
	var stats PCAPStats
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			diagf("PCAP replay stopping due to context cancellation (processed %d packets)", stats.Packets)
			return stats, err
		}

		packet, err := source.NextPacket()
		if errors.Is(err, io.EOF) {
			diagf("PCAP replay complete: %d packets, %d routed in %v", stats.Packets, stats.Routed, time.Since(start))
			return stats, nil
		}
		if err != nil {
			// Truncated trailing records are common in captures cut short.
			if errors.Is(err, io.ErrUnexpectedEOF) {
				opsf("PCAP replay: truncated capture after %d packets", stats.Packets)
				return stats, nil
			}
			return stats, fmt.Errorf("reading packet %d: %w", stats.Packets+1, err)
		}
		stats.Packets++

		udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok || len(udp.Payload) == 0 {
			stats.NonUDP++
			continue
		}

		handler, ok := r.Routes[uint16(udp.DstPort)]
		if !ok {
			stats.Unrouted++
			tracef("PCAP packet %d: no handler for UDP port %d", stats.Packets, udp.DstPort)
			continue
		}

		ts := packet.Metadata().Timestamp
		if stats.Routed == 0 {
			stats.First = ts
		}
		stats.Last = ts
		stats.Routed++

		if r.Timer != nil {
			r.Timer.SetPacketTime(ts)
		}
		if err := handler.HandlePacket(udp.Payload); err != nil {
			stats.HandlerErrors++
			opsf("PCAP packet %d: %v", stats.Packets, err)
		}

		if stats.Packets%10000 == 0 {
			elapsed := time.Since(start)
			diagf("PCAP progress: %d packets processed in %v (%.0f pkt/s)",
				stats.Packets, elapsed, float64(stats.Packets)/elapsed.Seconds())
		}
	}
}
