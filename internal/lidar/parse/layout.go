package parse

// field locates one fixed-width value inside a packet.
type field struct {
	offset int
	width  int
}

func (f field) end() int { return f.offset + f.width }

// readUint decodes f from b as a big-endian unsigned integer. Widths of 1 to
// 8 bytes are supported; b must already be length-checked.
func readUint(b []byte, f field) uint64 {
	var v uint64
	for _, x := range b[f.offset:f.end()] {
		v = v<<8 | uint64(x)
	}
	return v
}

func readU8(b []byte, f field) uint8   { return uint8(readUint(b, f)) }
func readU16(b []byte, f field) uint16 { return uint16(readUint(b, f)) }
func readU32(b []byte, f field) uint32 { return uint32(readUint(b, f)) }

// readBytes copies the raw bytes of f into dst and returns the count copied.
func readBytes(dst []byte, b []byte, f field) int {
	return copy(dst, b[f.offset:f.end()])
}

// at shifts a field that is defined relative to a sub-record.
func (f field) at(base int) field {
	return field{offset: base + f.offset, width: f.width}
}

// MSOP header.
var (
	dataHeaderID       = field{0, 8}
	dataReservedFirst  = field{8, 4}
	dataPacketCount    = field{12, 4}
	dataReservedSecond = field{16, 4}
	dataTimestampSec   = field{20, 6}
	dataTimestampUsec  = field{26, 4}
	dataLidarType      = field{30, 1}
	dataLidarModel     = field{31, 1}
	dataReservedThird  = field{32, 9}
)

// MSOP block, relative to the block start.
var (
	blockFlag    = field{0, 2}
	blockAzimuth = field{2, 2}
)

// MSOP unit, relative to the unit start.
var (
	unitDistance     = field{0, 2}
	unitReflectivity = field{2, 1}
)

var dataTail = field{DataHeaderSize + BlocksPerPacket*BlockSize, DataTailSize}

// DIFOP fields.
var (
	infoHeader            = field{0, 8}
	infoMotorSpeed        = field{8, 2}
	infoLidarIP           = field{10, 4}
	infoDestPCIP          = field{14, 4}
	infoMAC               = field{18, 6}
	infoLidarOutMSOPPort  = field{24, 2}
	infoPCDestMSOPPort    = field{26, 2}
	infoLidarOutDIFOPPort = field{28, 2}
	infoPCDestDIFOPPort   = field{30, 2}
	infoFovStart          = field{32, 2}
	infoFovEnd            = field{34, 2}
	infoTCPMSOPPort       = field{36, 2}
	infoPhaseLock         = field{38, 2}
	infoMainboardFW       = field{40, 5}
	infoBottomFW          = field{45, 5}
	infoAppSW             = field{50, 5}
	infoMotorFW           = field{55, 5}
	infoReservedFirst     = field{60, 228}
	infoBaudRate          = field{288, 1}
	infoReservedSecond    = field{289, 3}
	infoSerialNumber      = field{292, 6}
	infoReservedThird     = field{298, 2}
	infoReturnMode        = field{300, 1}
	infoTimeSyncMode      = field{301, 1}
	infoSyncStatus        = field{302, 1}
	infoOperatingStatus   = 303
	infoRotationDirection = field{311, 1}
	infoRunningTime       = field{312, 4}
	infoReservedFourth    = field{316, 9}
	infoFaultDiagnosis    = 325
	infoReservedFifth     = field{349, 7}
	infoGPRMC             = field{356, GPRMCSize}
	infoCalibration       = field{CalibrationOffset, CalibrationSize}
	infoReservedSixth     = field{634, 586}
	infoTail              = field{1220, 2}
)

// OperatingStatus, relative to infoOperatingStatus.
var (
	opReservedFirst  = field{0, 1}
	opMachineCurrent = field{1, 2}
	opReservedSecond = field{3, 3}
	opMachineVoltage = field{6, 2}
)

// FaultDiagnosis, relative to infoFaultDiagnosis.
var (
	faultStartupTimes  = field{0, 2}
	faultReserved      = field{2, 4}
	faultGPSStatus     = field{6, 1}
	faultMachineTemp   = field{7, 2}
	faultReservedFirst = field{9, 11}
	faultPhase         = field{20, 2}
	faultRotationSpeed = field{22, 2}
)
