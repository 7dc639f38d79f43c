package parse

import "testing"

// packetBuilder writes big-endian fields at fixed offsets for test fixtures.
type packetBuilder struct {
	buf []byte
}

func newPacketBuilder(size int) *packetBuilder {
	return &packetBuilder{buf: make([]byte, size)}
}

func (b *packetBuilder) put(f field, v uint64) *packetBuilder {
	for i := f.width - 1; i >= 0; i-- {
		b.buf[f.offset+i] = byte(v)
		v >>= 8
	}
	return b
}

func (b *packetBuilder) putBytes(f field, p []byte) *packetBuilder {
	copy(b.buf[f.offset:f.end()], p)
	return b
}

func (b *packetBuilder) bytes() []byte { return b.buf }

// sampleTelemetry returns a fully populated DIFOP packet.
func sampleTelemetry(t *testing.T, returnMode, gps uint8) []byte {
	t.Helper()

	b := newPacketBuilder(TelemetryPacketSize).
		put(infoHeader, 0xA5FF005A11115555).
		put(infoMotorSpeed, 600).
		putBytes(infoLidarIP, []byte{192, 168, 1, 200}).
		putBytes(infoDestPCIP, []byte{192, 168, 1, 102}).
		putBytes(infoMAC, []byte{0x40, 0x2c, 0x76, 0x08, 0x4a, 0xcc}).
		put(infoLidarOutMSOPPort, 6699).
		put(infoPCDestMSOPPort, 6698).
		put(infoLidarOutDIFOPPort, 7788).
		put(infoPCDestDIFOPPort, 7787).
		put(infoFovStart, 0).
		put(infoFovEnd, 36000).
		put(infoTCPMSOPPort, 6699).
		put(infoPhaseLock, 1).
		putBytes(infoMainboardFW, []byte{0x01, 0x02, 0x03, 0x04, 0x05}).
		putBytes(infoBottomFW, []byte{0x11, 0x12, 0x13, 0x14, 0x15}).
		putBytes(infoAppSW, []byte{0x21, 0x22, 0x23, 0x24, 0x25}).
		putBytes(infoMotorFW, []byte{0x31, 0x32, 0x33, 0x34, 0x0a}).
		put(infoBaudRate, 3).
		putBytes(infoSerialNumber, []byte{0x00, 0x1b, 0x2c, 0x3d, 0x4e, 0x5f}).
		put(infoReturnMode, uint64(returnMode)).
		put(infoTimeSyncMode, 2).
		put(infoSyncStatus, 1).
		put(opMachineCurrent.at(infoOperatingStatus), 1234).
		put(opMachineVoltage.at(infoOperatingStatus), 12050).
		put(infoRotationDirection, 0).
		put(infoRunningTime, 98765).
		put(faultStartupTimes.at(infoFaultDiagnosis), 42).
		put(faultGPSStatus.at(infoFaultDiagnosis), uint64(gps)).
		put(faultMachineTemp.at(infoFaultDiagnosis), 4521).
		put(faultPhase.at(infoFaultDiagnosis), 180).
		put(faultRotationSpeed.at(infoFaultDiagnosis), 601).
		putBytes(infoGPRMC, []byte("$GPRMC,120000.00,A,5130.0000,N,00007.0000,W,0.0,0.0,010126,,,A*6B")).
		put(infoTail, 0x0FF0)

	return b.bytes()
}
