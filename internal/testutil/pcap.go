package testutil

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/require"
)

// UDPFrame is one datagram written by WritePCAP.
type UDPFrame struct {
	Port    uint16 // used as both source and destination port
	Payload []byte
	At      time.Time
}

// WritePCAP writes frames as an Ethernet/IPv4/UDP capture in a temporary
// directory and returns its path.
func WritePCAP(t *testing.T, frames []UDPFrame) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	for _, fr := range frames {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x40, 0x2c, 0x76, 0x08, 0x4a, 0xcc},
			DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IPv4(192, 168, 1, 200),
			DstIP:    net.IPv4(192, 168, 1, 102),
		}
		udp := &layers.UDP{SrcPort: layers.UDPPort(fr.Port), DstPort: layers.UDPPort(fr.Port)}
		require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(fr.Payload)))

		data := buf.Bytes()
		require.NoError(t, w.WritePacket(gopacket.CaptureInfo{
			Timestamp:     fr.At,
			CaptureLength: len(data),
			Length:        len(data),
		}, data))
	}
	return path
}
