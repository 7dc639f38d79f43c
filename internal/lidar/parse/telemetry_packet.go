package parse

import (
	"bytes"
	"encoding/hex"
	"net"
	"net/netip"
)

// DIFOP packet structure constants.
const (
	TelemetryPacketSize = 1222
	FirmwareVersionSize = 5
	SerialNumberSize    = 6
	GPRMCSize           = 86
)

// Ethernet holds the network settings reported by the sensor.
type Ethernet struct {
	LidarIP           netip.Addr
	DestPCIP          netip.Addr
	MACAddr           net.HardwareAddr
	LidarOutMSOPPort  uint16
	PCDestMSOPPort    uint16
	LidarOutDIFOPPort uint16
	PCDestDIFOPPort   uint16
}

// FovSetting is the horizontal field of view in 0.01° units.
type FovSetting struct {
	Start uint16
	End   uint16
}

// FirmwareVersion is a 5-octet version record.
type FirmwareVersion [FirmwareVersionSize]byte

// String renders the octets as lowercase hex.
func (v FirmwareVersion) String() string { return hex.EncodeToString(v[:]) }

// SerialNumber is the 6-octet factory serial.
type SerialNumber [SerialNumberSize]byte

// String renders the octets as lowercase hex.
func (s SerialNumber) String() string { return hex.EncodeToString(s[:]) }

// OperatingStatus carries supply measurements.
type OperatingStatus struct {
	ReservedFirst  uint8
	MachineCurrent uint16
	ReservedSecond uint32 // 24-bit
	MachineVoltage uint16
}

// FaultDiagnosis carries health counters and GPS lock state.
type FaultDiagnosis struct {
	StartupTimes  uint16
	Reserved      uint32
	GPSStatus     uint8
	MachineTemp   uint16
	ReservedFirst [11]byte
	Phase         uint16
	RotationSpeed uint16
}

// TelemetryPacket is a decoded DIFOP packet.
type TelemetryPacket struct {
	Header                   uint64
	MotorSpeed               uint16
	Ethernet                 Ethernet
	Fov                      FovSetting
	TCPMSOPPort              uint16
	PhaseLock                uint16
	MainboardFirmwareVersion FirmwareVersion
	BottomFirmwareVersion    FirmwareVersion
	AppSoftwareVersion       FirmwareVersion
	MotorFirmwareVersion     FirmwareVersion
	ReservedFirst            [228]byte
	BaudRate                 uint8
	ReservedSecond           [3]byte
	SerialNumber             SerialNumber
	ReservedThird            [2]byte
	ReturnMode               uint8
	TimeSyncMode             uint8
	SyncStatus               uint8
	OperatingStatus          OperatingStatus
	RotationDirection        uint8
	RunningTime              uint32
	ReservedFourth           [9]byte
	FaultDiagnosis           FaultDiagnosis
	ReservedFifth            [7]byte
	GPRMC                    [GPRMCSize]byte
	SensorCalibration        [CalibrationSize]byte
	ReservedSixth            [586]byte
	Tail                     uint16
}

// GPRMCSentence returns the NMEA sentence with trailing padding removed.
func (p *TelemetryPacket) GPRMCSentence() string {
	return string(bytes.TrimRight(p.GPRMC[:], "\x00 \r\n"))
}

// ParseTelemetryPacket decodes a DIFOP packet. The buffer must be exactly
// TelemetryPacketSize bytes.
func ParseTelemetryPacket(b []byte) (*TelemetryPacket, error) {
	if len(b) != TelemetryPacketSize {
		return nil, &FormatError{Kind: "telemetry", Want: TelemetryPacketSize, Got: len(b)}
	}

	p := &TelemetryPacket{
		Header:     readUint(b, infoHeader),
		MotorSpeed: readU16(b, infoMotorSpeed),
		Ethernet: Ethernet{
			LidarIP:           readIPv4(b, infoLidarIP),
			DestPCIP:          readIPv4(b, infoDestPCIP),
			MACAddr:           net.HardwareAddr(bytes.Clone(b[infoMAC.offset:infoMAC.end()])),
			LidarOutMSOPPort:  readU16(b, infoLidarOutMSOPPort),
			PCDestMSOPPort:    readU16(b, infoPCDestMSOPPort),
			LidarOutDIFOPPort: readU16(b, infoLidarOutDIFOPPort),
			PCDestDIFOPPort:   readU16(b, infoPCDestDIFOPPort),
		},
		Fov: FovSetting{
			Start: readU16(b, infoFovStart),
			End:   readU16(b, infoFovEnd),
		},
		TCPMSOPPort:       readU16(b, infoTCPMSOPPort),
		PhaseLock:         readU16(b, infoPhaseLock),
		BaudRate:          readU8(b, infoBaudRate),
		ReturnMode:        readU8(b, infoReturnMode),
		TimeSyncMode:      readU8(b, infoTimeSyncMode),
		SyncStatus:        readU8(b, infoSyncStatus),
		RotationDirection: readU8(b, infoRotationDirection),
		RunningTime:       readU32(b, infoRunningTime),
		OperatingStatus: OperatingStatus{
			ReservedFirst:  readU8(b, opReservedFirst.at(infoOperatingStatus)),
			MachineCurrent: readU16(b, opMachineCurrent.at(infoOperatingStatus)),
			ReservedSecond: readU32(b, opReservedSecond.at(infoOperatingStatus)),
			MachineVoltage: readU16(b, opMachineVoltage.at(infoOperatingStatus)),
		},
		FaultDiagnosis: FaultDiagnosis{
			StartupTimes:  readU16(b, faultStartupTimes.at(infoFaultDiagnosis)),
			Reserved:      readU32(b, faultReserved.at(infoFaultDiagnosis)),
			GPSStatus:     readU8(b, faultGPSStatus.at(infoFaultDiagnosis)),
			MachineTemp:   readU16(b, faultMachineTemp.at(infoFaultDiagnosis)),
			Phase:         readU16(b, faultPhase.at(infoFaultDiagnosis)),
			RotationSpeed: readU16(b, faultRotationSpeed.at(infoFaultDiagnosis)),
		},
		Tail: readU16(b, infoTail),
	}

	readBytes(p.MainboardFirmwareVersion[:], b, infoMainboardFW)
	readBytes(p.BottomFirmwareVersion[:], b, infoBottomFW)
	readBytes(p.AppSoftwareVersion[:], b, infoAppSW)
	readBytes(p.MotorFirmwareVersion[:], b, infoMotorFW)
	readBytes(p.ReservedFirst[:], b, infoReservedFirst)
	readBytes(p.ReservedSecond[:], b, infoReservedSecond)
	readBytes(p.SerialNumber[:], b, infoSerialNumber)
	readBytes(p.ReservedThird[:], b, infoReservedThird)
	readBytes(p.ReservedFourth[:], b, infoReservedFourth)
	readBytes(p.FaultDiagnosis.ReservedFirst[:], b, faultReservedFirst.at(infoFaultDiagnosis))
	readBytes(p.ReservedFifth[:], b, infoReservedFifth)
	readBytes(p.GPRMC[:], b, infoGPRMC)
	readBytes(p.SensorCalibration[:], b, infoCalibration)
	readBytes(p.ReservedSixth[:], b, infoReservedSixth)

	return p, nil
}

func readIPv4(b []byte, f field) netip.Addr {
	var a [4]byte
	readBytes(a[:], b, f)
	return netip.AddrFrom4(a)
}
