package l1packets

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/bpearl/internal/lidar/parse"
	"github.com/banshee-data/bpearl/internal/timeutil"
)

// TimestampMode selects the base time that firing offsets are added to.
type TimestampMode int

const (
	TimestampModeDevice TimestampMode = iota // MSOP header clock (PTP/GPS synchronised sensors)
	TimestampModeSystem                      // host reception time, or capture time on replay
)

func (m TimestampMode) String() string {
	switch m {
	case TimestampModeDevice:
		return "device"
	case TimestampModeSystem:
		return "system"
	default:
		return fmt.Sprintf("TimestampMode(%d)", int(m))
	}
}

// ParseTimestampMode accepts "device" or "system".
func ParseTimestampMode(s string) (TimestampMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "device", "":
		return TimestampModeDevice, nil
	case "system":
		return TimestampModeSystem, nil
	}
	return 0, fmt.Errorf("unknown timestamp mode %q (want device or system)", s)
}

// debugPackets is the number of initial data packets traced in detail.
const debugPackets = 10

// DecoderConfig configures a Decoder. Zero values select defaults.
type DecoderConfig struct {
	// FallbackReturnMode is used until a telemetry packet reports a known
	// mode. Defaults to single strongest.
	FallbackReturnMode parse.ReturnMode

	TimestampMode TimestampMode

	// MinRange and MaxRange bound accepted distances in meters. Zero uses
	// the sensor format's limits.
	MinRange float64
	MaxRange float64

	// CalibrationDecoder defaults to parse.AngleCorrectionDecoder.
	CalibrationDecoder parse.CalibrationDecoder

	Clock timeutil.Clock
}

// Decoder builds timestamped points from data packets using the sensor state
// learned from telemetry packets. It is safe for concurrent use: the data and
// telemetry streams are normally fed from separate goroutines.
type Decoder struct {
	format        parse.SensorFormat
	fallback      parse.ReturnMode
	timestampMode TimestampMode
	minRange      float64
	maxRange      float64
	calDecoder    parse.CalibrationDecoder
	clock         timeutil.Clock

	returnMode       atomic.Uint32 // parse.ReturnMode from the latest telemetry
	packetTime       atomic.Int64  // capture time override in unix nanos, 0 when unset
	motorSpeed       atomic.Uint32
	dataPackets      atomic.Uint64
	telemetryPackets atomic.Uint64
	zeroClockWarned  atomic.Bool
	rangeWarned      atomic.Bool

	mu          sync.RWMutex
	calibration *parse.Calibration
	latest      *TelemetrySnapshot
}

// NewDecoder creates a decoder for the given sensor format.
func NewDecoder(format parse.SensorFormat, cfg DecoderConfig) *Decoder {
	d := &Decoder{
		format:        format,
		fallback:      cfg.FallbackReturnMode,
		timestampMode: cfg.TimestampMode,
		minRange:      cfg.MinRange,
		maxRange:      cfg.MaxRange,
		calDecoder:    cfg.CalibrationDecoder,
		clock:         cfg.Clock,
	}
	if d.fallback == parse.ReturnModeUnknown {
		d.fallback = parse.ReturnModeSingleStrongest
	}
	if d.minRange <= 0 {
		d.minRange = format.MinRange()
	}
	if d.maxRange <= 0 {
		d.maxRange = format.MaxRange()
	}
	if d.calDecoder == nil {
		d.calDecoder = parse.AngleCorrectionDecoder{}
	}
	if d.clock == nil {
		d.clock = timeutil.RealClock{}
	}
	return d
}

// CurrentReturnMode returns the mode reported by the latest telemetry packet,
// or the configured fallback when none has been seen or the sensor reported
// an unmapped mode byte.
func (d *Decoder) CurrentReturnMode() parse.ReturnMode {
	if m := parse.ReturnMode(d.returnMode.Load()); m != parse.ReturnModeUnknown {
		return m
	}
	return d.fallback
}

// SetPacketTime overrides the reception time used for the next packets.
// PCAP replay calls this with each packet's capture timestamp.
func (d *Decoder) SetPacketTime(t time.Time) {
	d.packetTime.Store(t.UnixNano())
}

// LastMotorSpeed returns the motor speed setting (RPM) from the latest
// telemetry packet, or 0 before any has been seen.
func (d *Decoder) LastMotorSpeed() uint16 {
	return uint16(d.motorSpeed.Load())
}

// Calibration returns the latest decoded angle calibration, or nil.
func (d *Decoder) Calibration() *parse.Calibration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.calibration
}

// LatestTelemetry returns the most recent telemetry snapshot, or nil.
func (d *Decoder) LatestTelemetry() *TelemetrySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest
}

// Counts returns the number of data and telemetry packets decoded.
func (d *Decoder) Counts() (data, telemetry uint64) {
	return d.dataPackets.Load(), d.telemetryPackets.Load()
}

func (d *Decoder) receiveTime() int64 {
	if t := d.packetTime.Load(); t != 0 {
		return t
	}
	return d.clock.Now().UnixNano()
}

func (d *Decoder) baseTime(p *parse.DataPacket) int64 {
	if d.timestampMode == TimestampModeSystem {
		return d.receiveTime()
	}
	ts := p.Header.Timestamp
	if ts.Seconds == 0 && ts.Microseconds == 0 {
		if d.zeroClockWarned.CompareAndSwap(false, true) {
			opsf("device timestamp is zero (sensor clock not set); using reception time")
		}
		return d.receiveTime()
	}
	if !ts.Representable() {
		if d.rangeWarned.CompareAndSwap(false, true) {
			opsf("device timestamp %ds is out of range; using reception time", ts.Seconds)
		}
		return d.receiveTime()
	}
	return ts.UnixNanos()
}

// ParsePacket decodes a data packet into points. Zero-distance returns and
// distances outside the configured range are dropped.
func (d *Decoder) ParsePacket(packet []byte) ([]PointPolar, error) {
	p, err := parse.ParseDataPacket(packet)
	if err != nil {
		return nil, err
	}
	n := d.dataPackets.Add(1)

	base := d.baseTime(p)
	mode := d.CurrentReturnMode()
	cal := d.Calibration()
	unit := d.format.DistanceUnitMeters()

	points := make([]PointPolar, 0, d.format.Blocks()*d.format.Channels())
	for blockIdx := range p.Blocks {
		block := &p.Blocks[blockIdx]
		azimuth := block.AzimuthDegrees()

		for ch, u := range block.Units {
			if u.Distance == 0 {
				continue
			}
			distance := float64(u.Distance) * unit
			if distance < d.minRange || distance > d.maxRange {
				continue
			}

			offset, err := d.format.OffsetNs(blockIdx, ch, mode)
			if err != nil {
				return nil, fmt.Errorf("block %d channel %d: %w", blockIdx, ch, err)
			}

			var corr parse.ChannelCorrection
			if cal != nil {
				corr = cal.Channels[ch]
			}

			points = append(points, PointPolar{
				Channel:     ch + 1,
				Azimuth:     normalizeAzimuth(azimuth + corr.Azimuth),
				Elevation:   corr.Elevation,
				Distance:    distance,
				Intensity:   u.Reflectivity,
				Timestamp:   base + offset,
				BlockID:     blockIdx,
				PacketCount: p.Header.PacketCount,
			})
		}
	}

	if n <= debugPackets {
		tracef("data packet %d: counter=%d mode=%s base=%d points=%d",
			n, p.Header.PacketCount, mode, base, len(points))
	}

	return points, nil
}

// HandleTelemetry decodes a telemetry packet and updates the decoder state
// used for subsequent data packets.
func (d *Decoder) HandleTelemetry(packet []byte) (*TelemetrySnapshot, error) {
	p, err := parse.ParseTelemetryPacket(packet)
	if err != nil {
		return nil, err
	}
	d.telemetryPackets.Add(1)

	mode := d.format.ResolveReturnMode(p.ReturnMode)
	if mode == parse.ReturnModeUnknown {
		opsf("telemetry reported unmapped return mode 0x%02x; using %s", p.ReturnMode, d.CurrentReturnMode())
	} else if prev := parse.ReturnMode(d.returnMode.Swap(uint32(mode))); prev != mode {
		diagf("return mode %s -> %s", prev, mode)
	}
	d.motorSpeed.Store(uint32(p.MotorSpeed))

	blob := parse.ExtractCalibrationBlob(p)
	cal, err := d.calDecoder.DecodeCalibration(blob)
	if err != nil {
		opsf("calibration decode failed, keeping previous calibration: %v", err)
		cal = nil
	}

	snap := &TelemetrySnapshot{
		SerialNumber:    p.SerialNumber.String(),
		ReturnMode:      mode,
		Info:            parse.ExtractSensorInfo(p),
		CalibrationBlob: blob.Data,
		Calibration:     cal,
		GPRMC:           p.GPRMCSentence(),
		ReceivedAt:      time.Unix(0, d.receiveTime()).UTC(),
	}

	d.mu.Lock()
	if cal != nil {
		d.calibration = cal
	}
	d.latest = snap
	d.mu.Unlock()

	return snap, nil
}
