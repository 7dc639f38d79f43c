package network

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/bpearl/internal/testutil"
)

func TestReadPCAPFileRoutesByPort(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	path := testutil.WritePCAP(t, []testutil.UDPFrame{
		{Port: 7788, Payload: testutil.TelemetryPacket{ReturnMode: 0x00}.Bytes(), At: t0},
		{Port: 6699, Payload: dataPacket(400), At: t0.Add(time.Millisecond)},
		{Port: 9999, Payload: []byte("other"), At: t0.Add(2 * time.Millisecond)},
		{Port: 6699, Payload: dataPacket(400), At: t0.Add(3 * time.Millisecond)},
	})

	d, dec, points, snaps := newTestDispatcher(nil)
	replay := &PCAPReplay{
		Routes: map[uint16]PacketHandler{
			6699: d.DataHandler(),
			7788: d.TelemetryHandler(),
		},
		Timer: d,
	}

	stats, err := replay.ReadPCAPFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Packets)
	assert.Equal(t, 3, stats.Routed)
	assert.Equal(t, 1, stats.Unrouted)
	assert.Zero(t, stats.HandlerErrors)
	assert.Equal(t, t0, stats.First.UTC())
	assert.Equal(t, t0.Add(3*time.Millisecond), stats.Last.UTC())

	assert.Equal(t, 768, points.count())
	require.Len(t, snaps.all(), 1)
	assert.Equal(t, t0, snaps.all()[0].ReceivedAt)
	assert.True(t, dec.CurrentReturnMode().IsDual())
}

func TestReadPCAPFileCancelled(t *testing.T) {
	t.Parallel()

	path := testutil.WritePCAP(t, []testutil.UDPFrame{{Port: 6699, Payload: dataPacket(400), At: time.Unix(1, 0)}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&PCAPReplay{}).ReadPCAPFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadPCAPFileErrors(t *testing.T) {
	t.Parallel()

	_, err := (&PCAPReplay{}).ReadPCAPFile(context.Background(), filepath.Join(t.TempDir(), "missing.pcap"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(t.TempDir(), "garbage.pcap")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a capture file"), 0o644))
	_, err = (&PCAPReplay{}).ReadPCAPFile(context.Background(), garbage)
	assert.Error(t, err)
}

func TestReadPCAPFileHandlerErrors(t *testing.T) {
	t.Parallel()

	path := testutil.WritePCAP(t, []testutil.UDPFrame{{Port: 6699, Payload: []byte{1}, At: time.Unix(1, 0)}})
	handler := newCollector()
	handler.err = assert.AnError

	stats, err := (&PCAPReplay{Routes: map[uint16]PacketHandler{6699: handler}}).ReadPCAPFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.HandlerErrors)
	assert.Equal(t, [][]byte{{1}}, handler.received())
}
