package parse

import "strconv"

// GPS status bits in FaultDiagnosis.GPSStatus.
const (
	gpsPPSLock    = 1 << 7
	gpsGPRMCLock  = 1 << 6
	gpsUTCLock    = 1 << 5
	gpsPPSPresent = 1 << 4
)

// ExtractSensorInfo renders a telemetry packet as the diagnostics key/value
// map. Every key is always present except "return_mode", which is omitted
// when the raw byte does not map to a known mode.
func ExtractSensorInfo(p *TelemetryPacket) map[string]string {
	info := map[string]string{
		"motor_speed":                u(p.MotorSpeed),
		"lidar_ip":                   p.Ethernet.LidarIP.String(),
		"dest_pc_ip":                 p.Ethernet.DestPCIP.String(),
		"mac_addr":                   p.Ethernet.MACAddr.String(),
		"lidar_out_msop_port":        u(p.Ethernet.LidarOutMSOPPort),
		"lidar_out_difop_port":       u(p.Ethernet.LidarOutDIFOPPort),
		"fov_start":                  u(p.Fov.Start),
		"fov_end":                    u(p.Fov.End),
		"tcp_msop_port":              u(p.TCPMSOPPort),
		"phase_lock":                 u(p.PhaseLock),
		"mainboard_firmware_version": p.MainboardFirmwareVersion.String(),
		"bottom_firmware_version":    p.BottomFirmwareVersion.String(),
		"app_software_version":       p.AppSoftwareVersion.String(),
		"motor_firmware_version":     p.MotorFirmwareVersion.String(),
		"baud_rate":                  u(p.BaudRate),
		"serial_number":              p.SerialNumber.String(),
		"time_sync_mode":             u(p.TimeSyncMode),
		"sync_status":                u(p.SyncStatus),
		"machine_current":            u(p.OperatingStatus.MachineCurrent),
		"machine_voltage":            u(p.OperatingStatus.MachineVoltage),
		"rotation_direction":         u(p.RotationDirection),
		"running_time":               u(p.RunningTime),
		"startup_times":              u(p.FaultDiagnosis.StartupTimes),
		"machine_temp":               u(p.FaultDiagnosis.MachineTemp),
		"phase":                      u(p.FaultDiagnosis.Phase),
		"rotation_speed":             u(p.FaultDiagnosis.RotationSpeed),
	}

	if mode := ResolveReturnMode(p.ReturnMode); mode != ReturnModeUnknown {
		info["return_mode"] = mode.String()
	}

	gps := p.FaultDiagnosis.GPSStatus
	info["pps_lock"] = flag(gps&gpsPPSLock != 0, "valid", "invalid")
	info["gprmc_lock"] = flag(gps&gpsGPRMCLock != 0, "valid", "invalid")
	info["utc_lock"] = flag(gps&gpsUTCLock != 0, "synchronized", "not_synchronized")
	info["pps_input_status"] = flag(gps&gpsPPSPresent != 0, "input_present", "no_input")

	return info
}

// SensorInfoKeys lists every key ExtractSensorInfo can produce.
var SensorInfoKeys = []string{
	"motor_speed", "lidar_ip", "dest_pc_ip", "mac_addr",
	"lidar_out_msop_port", "lidar_out_difop_port", "fov_start", "fov_end",
	"tcp_msop_port", "phase_lock", "mainboard_firmware_version",
	"bottom_firmware_version", "app_software_version", "motor_firmware_version",
	"baud_rate", "serial_number", "return_mode", "time_sync_mode", "sync_status",
	"machine_current", "machine_voltage", "rotation_direction", "running_time",
	"startup_times", "pps_lock", "gprmc_lock", "utc_lock", "pps_input_status",
	"machine_temp", "phase", "rotation_speed",
}

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func u[T unsigned](v T) string { return strconv.FormatUint(uint64(v), 10) }

func flag(set bool, on, off string) string {
	if set {
		return on
	}
	return off
}
