package parse

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDataPacket() []byte {
	b := newPacketBuilder(DataPacketSize).
		put(dataHeaderID, 0x55AA055A00000000).
		put(dataReservedFirst, 0xDEADBEEF).
		put(dataPacketCount, 70000).
		put(dataReservedSecond, 0x01020304).
		put(dataTimestampSec, 1767225600).
		put(dataTimestampUsec, 250000).
		put(dataLidarType, 0x03).
		put(dataLidarModel, 0x04).
		putBytes(dataReservedThird, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}).
		put(dataTail, 0x00FF00FF00FF)

	for blk := 0; blk < BlocksPerPacket; blk++ {
		base := DataHeaderSize + blk*BlockSize
		b.put(blockFlag.at(base), 0xFE01)
		b.put(blockAzimuth.at(base), uint64(blk*1500))
		for c := 0; c < ChannelsPerBlock; c++ {
			unit := base + BlockHeaderSize + c*BytesPerUnit
			b.put(unitDistance.at(unit), uint64(1000+blk*100+c))
			b.put(unitReflectivity.at(unit), uint64(c*7))
		}
	}
	return b.bytes()
}

func TestParseDataPacketRoundTrip(t *testing.T) {
	t.Parallel()

	p, err := ParseDataPacket(buildDataPacket())
	require.NoError(t, err)

	assert.Equal(t, uint64(0x55AA055A00000000), p.Header.HeaderID)
	assert.Equal(t, uint32(0xDEADBEEF), p.Header.ReservedFirst)
	assert.Equal(t, uint32(70000), p.Header.PacketCount)
	assert.Equal(t, uint32(0x01020304), p.Header.ReservedSecond)
	assert.Equal(t, Timestamp{Seconds: 1767225600, Microseconds: 250000}, p.Header.Timestamp)
	assert.Equal(t, uint8(0x03), p.Header.LidarType)
	assert.Equal(t, uint8(0x04), p.Header.LidarModel)
	assert.Equal(t, [9]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, p.Header.ReservedThird)
	assert.Equal(t, uint64(0x00FF00FF00FF), p.Tail)

	for blk := range p.Blocks {
		block := p.Blocks[blk]
		assert.Equal(t, uint16(0xFE01), block.Flag)
		assert.Equal(t, uint16(blk*1500), block.Azimuth)
		for c, unit := range block.Units {
			require.Equalf(t, uint16(1000+blk*100+c), unit.Distance, "block %d channel %d", blk, c)
			require.Equalf(t, uint8(c*7), unit.Reflectivity, "block %d channel %d", blk, c)
		}
	}
}

func TestParseDataPacketSize(t *testing.T) {
	t.Parallel()

	good := buildDataPacket()
	tests := []struct {
		name string
		data []byte
	}{
		{"one byte short", good[:DataPacketSize-1]},
		{"one byte long", append(append([]byte{}, good...), 0)},
		{"empty", nil},
		{"telemetry sized", make([]byte, TelemetryPacketSize)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseDataPacket(tt.data)
			assert.Nil(t, p)
			require.ErrorIs(t, err, ErrFormat)

			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "data", fe.Kind)
			assert.Equal(t, DataPacketSize, fe.Want)
			assert.Equal(t, len(tt.data), fe.Got)
		})
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	ts := Timestamp{Seconds: 1767225600, Microseconds: 250000}
	assert.Equal(t, int64(1767225600250000000), ts.UnixNanos())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 250000000, time.UTC), ts.Time())
	assert.True(t, ts.Representable())
}

func TestTimestampRepresentable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ts   Timestamp
		want bool
	}{
		{"zero", Timestamp{}, true},
		{"limit", Timestamp{Seconds: MaxTimestampSeconds, Microseconds: math.MaxUint32}, true},
		{"past limit", Timestamp{Seconds: MaxTimestampSeconds + 1}, false},
		{"2^40 seconds", Timestamp{Seconds: 1 << 40}, false},
		{"48-bit max", Timestamp{Seconds: 1<<48 - 1}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.ts.Representable())
			if tt.want {
				assert.GreaterOrEqual(t, tt.ts.UnixNanos(), int64(0))
			}
		})
	}
}

func TestBlockAzimuthDegrees(t *testing.T) {
	t.Parallel()

	b := Block{Azimuth: 35999}
	assert.InDelta(t, 359.99, b.AzimuthDegrees(), 1e-9)
}
