package l1packets

import (
	"maps"
	"time"

	"github.com/banshee-data/bpearl/internal/lidar/parse"
)

// TelemetrySnapshot is the decoded content of one telemetry packet.
type TelemetrySnapshot struct {
	SerialNumber    string
	ReturnMode      parse.ReturnMode // ReturnModeUnknown for unmapped bytes
	Info            map[string]string
	CalibrationBlob []byte
	Calibration     *parse.Calibration // nil when the blob failed to decode
	GPRMC           string
	ReceivedAt      time.Time
}

// volatileInfoKeys change on every telemetry packet and are ignored when
// deciding whether the sensor configuration changed.
var volatileInfoKeys = map[string]bool{
	"running_time":     true,
	"machine_current":  true,
	"machine_voltage":  true,
	"machine_temp":     true,
	"phase":            true,
	"rotation_speed":   true,
	"sync_status":      true,
	"pps_lock":         true,
	"gprmc_lock":       true,
	"utc_lock":         true,
	"pps_input_status": true,
}

// ConfigEqual reports whether s and other describe the same sensor
// configuration, ignoring health readings that vary packet to packet.
func (s *TelemetrySnapshot) ConfigEqual(other *TelemetrySnapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return maps.Equal(stableInfo(s.Info), stableInfo(other.Info)) &&
		string(s.CalibrationBlob) == string(other.CalibrationBlob)
}

func stableInfo(info map[string]string) map[string]string {
	out := make(map[string]string, len(info))
	for k, v := range info {
		if !volatileInfoKeys[k] {
			out[k] = v
		}
	}
	return out
}
