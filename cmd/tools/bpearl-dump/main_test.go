package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/bpearl/internal/lidar/parse"
	"github.com/banshee-data/bpearl/internal/testutil"
)

func TestDistribution(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Distribution{}, distribution(nil))
	assert.Equal(t, Distribution{N: 1, Mean: 4, Min: 4, Max: 4}, distribution([]float64{4}))

	d := distribution([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, d.N)
	assert.InDelta(t, 5.0, d.Mean, 1e-12)
	assert.InDelta(t, 2.138, d.StdDev, 1e-3) // sample standard deviation
	assert.Equal(t, 2.0, d.Min)
	assert.Equal(t, 9.0, d.Max)
}

func TestDump(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	packet := func(us uint32) []byte {
		return testutil.DataPacket{
			Seconds:      uint64(t0.Unix()),
			Microseconds: us,
			Distance:     func(int, int) uint16 { return 1000 },
		}.Bytes()
	}
	telemetry := testutil.TelemetryPacket{ReturnMode: 0x04}.Bytes()

	path := testutil.WritePCAP(t, []testutil.UDPFrame{
		{Port: 7788, Payload: telemetry, At: t0},
		{Port: 6699, Payload: packet(0), At: t0},
		{Port: 6699, Payload: packet(1000), At: t0.Add(time.Millisecond)},
		{Port: 7788, Payload: telemetry, At: t0.Add(time.Second)},
		{Port: 6699, Payload: packet(2000), At: t0.Add(2 * time.Millisecond)},
	})

	var out bytes.Buffer
	summary, err := dump(context.Background(), path, 6699, 7788, parse.ReturnModeSingleStrongest, false, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.DataPackets)
	assert.Equal(t, 1, summary.TelemetryRecords, "unchanged telemetry is printed once")
	assert.Equal(t, "strongest", summary.ReturnMode)
	assert.Equal(t, 384.0, summary.PointsPerPacket.Mean)
	assert.InDelta(t, 1000.0, summary.PacketIntervalUs.Mean, 1e-9)
	assert.Zero(t, summary.PacketIntervalUs.StdDev)

	single, _ := parse.FiringTables()
	assert.InDelta(t, float64(single[11][31])/1e3, summary.FiringSpanUs.Max, 1e-9)

	assert.Contains(t, out.String(), `"return_mode": "strongest"`)
	assert.Contains(t, out.String(), `"points_per_packet"`)
}

func TestDumpAllRecords(t *testing.T) {
	t.Parallel()

	telemetry := testutil.TelemetryPacket{ReturnMode: 0x00}.Bytes()
	path := testutil.WritePCAP(t, []testutil.UDPFrame{
		{Port: 7788, Payload: telemetry, At: time.Unix(1, 0)},
		{Port: 7788, Payload: telemetry, At: time.Unix(2, 0)},
	})

	var out bytes.Buffer
	summary, err := dump(context.Background(), path, 6699, 7788, parse.ReturnModeSingleStrongest, true, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TelemetryRecords)
	assert.Equal(t, "dual", summary.ReturnMode)
	assert.Zero(t, summary.PointsPerPacket.N)
}
