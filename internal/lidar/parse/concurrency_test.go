package parse

import (
	"maps"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Decoding shares only read-only tables, so one input may be decoded from
// many goroutines at once. Run with -race.
func TestParseConcurrentUse(t *testing.T) {
	t.Parallel()

	data := buildDataPacket()
	telemetry := sampleTelemetry(t, 0x00, 0xF0)

	wantData, err := ParseDataPacket(data)
	require.NoError(t, err)
	wantTelemetry, err := ParseTelemetryPacket(telemetry)
	require.NoError(t, err)
	wantInfo := ExtractSensorInfo(wantTelemetry)
	single, dual := FiringTables()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			mode := allModes[g%len(allModes)]
			for i := 0; i < 100; i++ {
				p, err := ParseDataPacket(data)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, wantData.Header, p.Header)

				tp, err := ParseTelemetryPacket(telemetry)
				if !assert.NoError(t, err) {
					return
				}
				assert.True(t, maps.Equal(wantInfo, ExtractSensorInfo(tp)))
				assert.Equal(t, ExtractCalibrationBlob(wantTelemetry), ExtractCalibrationBlob(tp))

				block, channel := i%BlocksPerPacket, (i+g)%ChannelsPerBlock
				want := single[block][channel]
				if mode.IsDual() {
					want = dual[block][channel]
				}
				got, err := FiringOffsetNs(block, channel, mode)
				assert.NoError(t, err)
				assert.Equal(t, int64(want), got)
			}
		}(g)
	}
	wg.Wait()
}
