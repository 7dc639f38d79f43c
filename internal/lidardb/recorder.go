package lidardb

import (
	"sync"
	"time"

	"github.com/banshee-data/bpearl/internal/lidar/l1packets"
	"github.com/banshee-data/bpearl/internal/monitoring"
)

// TelemetryRecorder stores telemetry snapshots when the sensor configuration
// changes, and otherwise at most once per MinInterval. The sensor emits
// telemetry about once a second, so storing every packet is wasteful.
type TelemetryRecorder struct {
	DB *LidarDB
	// SensorID labels records; empty uses the reported serial number.
	SensorID string
	// MinInterval forces a record even when nothing changed. Zero disables
	// periodic records.
	MinInterval time.Duration

	mu     sync.Mutex
	last   *l1packets.TelemetrySnapshot
	stored int
}

// RecordTelemetry implements network.TelemetrySink.
func (r *TelemetryRecorder) RecordTelemetry(snap *l1packets.TelemetrySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.due(snap) {
		return nil
	}

	changed := r.last == nil || !snap.ConfigEqual(r.last)
	sensorID := r.SensorID
	if sensorID == "" {
		sensorID = snap.SerialNumber
	}
	if _, err := r.DB.InsertTelemetry(sensorID, snap); err != nil {
		return err
	}
	if changed && r.last != nil {
		monitoring.Logf("sensor %s configuration changed (return mode %s)", snap.SerialNumber, snap.ReturnMode)
	}
	r.last = snap
	r.stored++
	return nil
}

func (r *TelemetryRecorder) due(snap *l1packets.TelemetrySnapshot) bool {
	if r.last == nil || !snap.ConfigEqual(r.last) {
		return true
	}
	return r.MinInterval > 0 && snap.ReceivedAt.Sub(r.last.ReceivedAt) >= r.MinInterval
}

// Stored returns the number of snapshots written.
func (r *TelemetryRecorder) Stored() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored
}
