package network

import (
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/bpearl/internal/timeutil"
)

// PacketKind distinguishes the two sensor streams.
type PacketKind int

const (
	PacketKindData PacketKind = iota
	PacketKindTelemetry
)

func (k PacketKind) String() string {
	if k == PacketKindTelemetry {
		return "telemetry"
	}
	return "data"
}

// PacketStatsInterface records ingestion counters.
type PacketStatsInterface interface {
	AddPacket(kind PacketKind, bytes int)
	AddPoints(count int)
	AddParseError(kind PacketKind)
	LogStats()
}

// StatsSnapshot holds the rates computed by the most recent LogStats call.
type StatsSnapshot struct {
	DataPacketsPerSec      float64
	TelemetryPacketsPerSec float64
	MBPerSec               float64
	PointsPerSec           float64
	ParseErrors            int64
	Timestamp              time.Time
}

// PacketStats tracks packet statistics with thread-safe operations.
type PacketStats struct {
	mu               sync.Mutex
	clock            timeutil.Clock
	dataPackets      int64
	telemetryPackets int64
	byteCount        int64
	pointCount       int64
	parseErrors      int64
	lastReset        time.Time
	latestSnapshot   *StatsSnapshot
}

// NewPacketStats creates a PacketStats. A nil clock uses the real clock.
func NewPacketStats(clock timeutil.Clock) *PacketStats {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &PacketStats{clock: clock, lastReset: clock.Now()}
}

// AddPacket counts one received packet.
func (ps *PacketStats) AddPacket(kind PacketKind, bytes int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if kind == PacketKindTelemetry {
		ps.telemetryPackets++
	} else {
		ps.dataPackets++
	}
	ps.byteCount += int64(bytes)
}

// AddPoints increments the decoded point count.
func (ps *PacketStats) AddPoints(count int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.pointCount += int64(count)
}

// AddParseError counts a packet that failed to decode.
func (ps *PacketStats) AddParseError(PacketKind) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.parseErrors++
}

// Snapshot computes rates since the last reset and resets the counters.
func (ps *PacketStats) Snapshot() StatsSnapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := ps.clock.Now()
	secs := now.Sub(ps.lastReset).Seconds()
	if secs <= 0 {
		secs = 1
	}
	snap := StatsSnapshot{
		DataPacketsPerSec:      float64(ps.dataPackets) / secs,
		TelemetryPacketsPerSec: float64(ps.telemetryPackets) / secs,
		MBPerSec:               float64(ps.byteCount) / secs / (1024 * 1024),
		PointsPerSec:           float64(ps.pointCount) / secs,
		ParseErrors:            ps.parseErrors,
		Timestamp:              now,
	}

	ps.dataPackets = 0
	ps.telemetryPackets = 0
	ps.byteCount = 0
	ps.pointCount = 0
	ps.parseErrors = 0
	ps.lastReset = now
	ps.latestSnapshot = &snap

	return snap
}

// LogStats logs the current rates to the diag stream, and parse errors to
// the ops stream.
func (ps *PacketStats) LogStats() {
	s := ps.Snapshot()
	if s.DataPacketsPerSec == 0 && s.TelemetryPacketsPerSec == 0 && s.ParseErrors == 0 {
		return
	}
	diagf("bpearl stats (/sec): %.2f MB, %.1f data packets, %.2f telemetry packets, %s points",
		s.MBPerSec, s.DataPacketsPerSec, s.TelemetryPacketsPerSec, FormatWithCommas(int64(s.PointsPerSec)))
	if s.ParseErrors > 0 {
		opsf("%d packets failed to decode since last report", s.ParseErrors)
	}
}

// LatestSnapshot returns a copy of the most recent snapshot, or nil.
func (ps *PacketStats) LatestSnapshot() *StatsSnapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.latestSnapshot == nil {
		return nil
	}
	snapshot := *ps.latestSnapshot
	return &snapshot
}

// FormatWithCommas formats a number with thousands separators.
func FormatWithCommas(n int64) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}

// noopStats is used when no stats collector is configured.
type noopStats struct{}

func (noopStats) AddPacket(PacketKind, int) {}
func (noopStats) AddPoints(int)             {}
func (noopStats) AddParseError(PacketKind)  {}
func (noopStats) LogStats()                 {}
