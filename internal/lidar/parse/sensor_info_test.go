package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSensorInfo(t *testing.T) {
	t.Parallel()

	p, err := ParseTelemetryPacket(sampleTelemetry(t, 0x04, 0b10100000))
	require.NoError(t, err)

	want := map[string]string{
		"motor_speed":                "600",
		"lidar_ip":                   "192.168.1.200",
		"dest_pc_ip":                 "192.168.1.102",
		"mac_addr":                   "40:2c:76:08:4a:cc",
		"lidar_out_msop_port":        "6699",
		"lidar_out_difop_port":       "7788",
		"fov_start":                  "0",
		"fov_end":                    "36000",
		"tcp_msop_port":              "6699",
		"phase_lock":                 "1",
		"mainboard_firmware_version": "0102030405",
		"bottom_firmware_version":    "1112131415",
		"app_software_version":       "2122232425",
		"motor_firmware_version":     "313233340a",
		"baud_rate":                  "3",
		"serial_number":              "001b2c3d4e5f",
		"return_mode":                "strongest",
		"time_sync_mode":             "2",
		"sync_status":                "1",
		"machine_current":            "1234",
		"machine_voltage":            "12050",
		"rotation_direction":         "0",
		"running_time":               "98765",
		"startup_times":              "42",
		"pps_lock":                   "valid",
		"gprmc_lock":                 "invalid",
		"utc_lock":                   "synchronized",
		"pps_input_status":           "no_input",
		"machine_temp":               "4521",
		"phase":                      "180",
		"rotation_speed":             "601",
	}

	if diff := cmp.Diff(want, ExtractSensorInfo(p)); diff != "" {
		t.Errorf("ExtractSensorInfo mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSensorInfoReturnMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  uint8
		want string
	}{
		{0x00, "dual"},
		{0x04, "strongest"},
		{0x05, "last"},
		{0x06, "first"},
	}
	for _, tt := range tests {
		p, err := ParseTelemetryPacket(sampleTelemetry(t, tt.raw, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ExtractSensorInfo(p)["return_mode"])
	}
}

func TestExtractSensorInfoUnmappedReturnModeOmitted(t *testing.T) {
	t.Parallel()

	for _, raw := range []uint8{0x01, 0x03, 0x07, 0xFF} {
		p, err := ParseTelemetryPacket(sampleTelemetry(t, raw, 0xFF))
		require.NoError(t, err)

		info := ExtractSensorInfo(p)
		assert.NotContains(t, info, "return_mode")
		for _, key := range SensorInfoKeys {
			if key == "return_mode" {
				continue
			}
			assert.Containsf(t, info, key, "raw 0x%02x", raw)
		}
		assert.Len(t, info, len(SensorInfoKeys)-1)
	}
}

func TestExtractSensorInfoGPSStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status uint8
		want   map[string]string
	}{
		{
			name:   "pps and utc",
			status: 0b10100000,
			want:   map[string]string{"pps_lock": "valid", "gprmc_lock": "invalid", "utc_lock": "synchronized", "pps_input_status": "no_input"},
		},
		{
			name:   "none",
			status: 0b00000000,
			want:   map[string]string{"pps_lock": "invalid", "gprmc_lock": "invalid", "utc_lock": "not_synchronized", "pps_input_status": "no_input"},
		},
		{
			name:   "all",
			status: 0b11110000,
			want:   map[string]string{"pps_lock": "valid", "gprmc_lock": "valid", "utc_lock": "synchronized", "pps_input_status": "input_present"},
		},
		{
			name:   "low nibble ignored",
			status: 0b01011111,
			want:   map[string]string{"pps_lock": "invalid", "gprmc_lock": "valid", "utc_lock": "not_synchronized", "pps_input_status": "input_present"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseTelemetryPacket(sampleTelemetry(t, 0x04, tt.status))
			require.NoError(t, err)
			info := ExtractSensorInfo(p)
			for k, v := range tt.want {
				assert.Equal(t, v, info[k], k)
			}
		})
	}
}
