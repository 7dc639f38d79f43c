package network

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/bpearl/internal/timeutil"
)

func TestPacketStatsSnapshot(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Unix(1000, 0))
	ps := NewPacketStats(clock)
	assert.Nil(t, ps.LatestSnapshot())

	for i := 0; i < 20; i++ {
		ps.AddPacket(PacketKindData, 1024*1024/20)
	}
	ps.AddPacket(PacketKindTelemetry, 0)
	ps.AddPoints(7680)
	ps.AddParseError(PacketKindData)
	clock.Advance(2 * time.Second)

	s := ps.Snapshot()
	assert.InDelta(t, 10.0, s.DataPacketsPerSec, 1e-9)
	assert.InDelta(t, 0.5, s.TelemetryPacketsPerSec, 1e-9)
	assert.InDelta(t, 0.5, s.MBPerSec, 1e-3)
	assert.InDelta(t, 3840.0, s.PointsPerSec, 1e-9)
	assert.Equal(t, int64(1), s.ParseErrors)
	assert.Equal(t, clock.Now(), s.Timestamp)

	latest := ps.LatestSnapshot()
	require.NotNil(t, latest)
	assert.Equal(t, s, *latest)

	clock.Advance(time.Second)
	assert.Zero(t, ps.Snapshot().DataPacketsPerSec)
}

func TestPacketStatsLogStats(t *testing.T) {
	var ops, diag bytes.Buffer
	SetLogWriters(&ops, &diag, nil)
	defer SetLogWriters(nil, nil, nil)

	clock := timeutil.NewMockClock(time.Unix(0, 0))
	ps := NewPacketStats(clock)

	ps.LogStats()
	assert.Empty(t, diag.String(), "idle intervals are not logged")

	ps.AddPacket(PacketKindData, 1247)
	ps.AddPoints(1234)
	ps.AddParseError(PacketKindTelemetry)
	clock.Advance(time.Second)
	ps.LogStats()

	assert.Contains(t, diag.String(), "1,234 points")
	assert.Contains(t, ops.String(), "1 packets failed to decode")
	assert.True(t, strings.HasPrefix(diag.String(), "[network] "))
}

func TestFormatWithCommas(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-9876543: "-9,876,543",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatWithCommas(in))
	}
}

func TestPacketKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "data", PacketKindData.String())
	assert.Equal(t, "telemetry", PacketKindTelemetry.String())
}

func TestUDPListenerLogsStatsOnTick(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Unix(0, 0))
	logged := make(chan struct{}, 4)
	stats := &tickStats{logged: logged}

	l := NewUDPListener(UDPListenerConfig{
		Address:       ":6699",
		LogInterval:   time.Minute,
		Stats:         stats,
		SocketFactory: NewMockUDPSocketFactory(NewMockUDPSocket(6699)),
		Clock:         clock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Start(ctx) }()

	// Advance until the ticker registered by the listener fires.
	deadline := time.After(5 * time.Second)
	for {
		clock.Advance(time.Minute)
		select {
		case <-logged:
			return
		case <-deadline:
			t.Fatal("stats were never logged")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

type tickStats struct {
	noopStats
	logged chan struct{}
}

func (s *tickStats) LogStats() {
	select {
	case s.logged <- struct{}{}:
	default:
	}
}
