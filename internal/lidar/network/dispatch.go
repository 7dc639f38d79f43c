package network

import (
	"time"

	"github.com/banshee-data/bpearl/internal/lidar/l1packets"
)

// PacketHandler consumes one UDP payload. The slice is only valid for the
// duration of the call.
type PacketHandler interface {
	HandlePacket(packet []byte) error
}

// PacketHandlerFunc adapts a function to PacketHandler.
type PacketHandlerFunc func(packet []byte) error

// HandlePacket calls f(packet).
func (f PacketHandlerFunc) HandlePacket(packet []byte) error { return f(packet) }

// Parser decodes MSOP data packets into points.
type Parser interface {
	ParsePacket(packet []byte) ([]l1packets.PointPolar, error)
}

// TelemetryParser decodes DIFOP packets and updates decoder state.
type TelemetryParser interface {
	HandleTelemetry(packet []byte) (*l1packets.TelemetrySnapshot, error)
}

// PointSink receives decoded points.
type PointSink interface {
	AddPoints(points []l1packets.PointPolar)
}

// TelemetrySink receives decoded telemetry snapshots.
type TelemetrySink interface {
	RecordTelemetry(snap *l1packets.TelemetrySnapshot) error
}

// packetTimer is implemented by decoders that accept an external reception
// time, such as a capture timestamp during replay.
type packetTimer interface {
	SetPacketTime(t time.Time)
}

// Dispatcher routes the two sensor streams into a decoder and on to sinks.
// Decode failures are counted and logged but never stop ingestion.
type Dispatcher struct {
	Parser        Parser
	Telemetry     TelemetryParser
	Points        PointSink     // optional
	TelemetrySink TelemetrySink // optional
	Stats         PacketStatsInterface
}

func (d *Dispatcher) stats() PacketStatsInterface {
	if d.Stats == nil {
		return noopStats{}
	}
	return d.Stats
}

// DataHandler returns the handler for the MSOP stream.
func (d *Dispatcher) DataHandler() PacketHandler { return PacketHandlerFunc(d.HandleData) }

// TelemetryHandler returns the handler for the DIFOP stream.
func (d *Dispatcher) TelemetryHandler() PacketHandler {
	return PacketHandlerFunc(d.HandleTelemetry)
}

// HandleData decodes one data packet.
func (d *Dispatcher) HandleData(packet []byte) error {
	stats := d.stats()
	stats.AddPacket(PacketKindData, len(packet))
	if d.Parser == nil {
		return nil
	}

	points, err := d.Parser.ParsePacket(packet)
	if err != nil {
		stats.AddParseError(PacketKindData)
		tracef("data packet rejected: %v", err)
		return nil
	}
	stats.AddPoints(len(points))

	if d.Points != nil && len(points) > 0 {
		d.Points.AddPoints(points)
	}
	return nil
}

// HandleTelemetry decodes one telemetry packet. Sink errors are returned;
// decode errors are only counted.
func (d *Dispatcher) HandleTelemetry(packet []byte) error {
	stats := d.stats()
	stats.AddPacket(PacketKindTelemetry, len(packet))
	if d.Telemetry == nil {
		return nil
	}

	snap, err := d.Telemetry.HandleTelemetry(packet)
	if err != nil {
		stats.AddParseError(PacketKindTelemetry)
		opsf("telemetry packet rejected: %v", err)
		return nil
	}

	if d.TelemetrySink != nil {
		return d.TelemetrySink.RecordTelemetry(snap)
	}
	return nil
}

// SetPacketTime forwards a reception time to decoders that accept one.
func (d *Dispatcher) SetPacketTime(t time.Time) {
	if pt, ok := d.Parser.(packetTimer); ok {
		pt.SetPacketTime(t)
	}
	if pt, ok := d.Telemetry.(packetTimer); ok {
		pt.SetPacketTime(t)
	}
}
