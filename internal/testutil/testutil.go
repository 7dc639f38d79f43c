// Package testutil provides shared test utilities and fixtures.
//
// The packet builders produce wire-format MSOP and DIFOP packets so that
// packages above the parser can be tested without captured traffic.
package testutil

import "encoding/binary"

// Wire sizes and offsets used by the fixtures.
const (
	DataPacketSize      = 1247
	TelemetryPacketSize = 1222

	dataHeaderSize   = 41
	blockSize        = 100
	blockHeaderSize  = 4
	bytesPerUnit     = 3
	blocksPerPacket  = 12
	channelsPerBlock = 32

	offMotorSpeed   = 8
	offLidarIP      = 10
	offDestPCIP     = 14
	offMSOPPort     = 24
	offDIFOPPort    = 28
	offSerialNumber = 292
	offReturnMode   = 300
	offGPSStatus    = 325 + 6
	offGPRMC        = 356
	offCalibration  = 442
	offTail         = 1220
)

// DataPacket describes an MSOP fixture. Distance and Reflectivity are called
// for every block and channel; nil functions leave the unit zeroed.
type DataPacket struct {
	PacketCount  uint32
	Seconds      uint64
	Microseconds uint32
	Azimuth      func(block int) uint16
	Distance     func(block, channel int) uint16
	Reflectivity func(block, channel int) uint8
}

// Bytes encodes the fixture.
func (d DataPacket) Bytes() []byte {
	b := make([]byte, DataPacketSize)
	binary.BigEndian.PutUint64(b[0:8], 0x55AA055A00000000)
	binary.BigEndian.PutUint32(b[12:16], d.PacketCount)
	putUint48(b[20:26], d.Seconds)
	binary.BigEndian.PutUint32(b[26:30], d.Microseconds)

	for blk := 0; blk < blocksPerPacket; blk++ {
		base := dataHeaderSize + blk*blockSize
		binary.BigEndian.PutUint16(b[base:], 0xFFEE)
		if d.Azimuth != nil {
			binary.BigEndian.PutUint16(b[base+2:], d.Azimuth(blk))
		}
		for ch := 0; ch < channelsPerBlock; ch++ {
			unit := base + blockHeaderSize + ch*bytesPerUnit
			if d.Distance != nil {
				binary.BigEndian.PutUint16(b[unit:], d.Distance(blk, ch))
			}
			if d.Reflectivity != nil {
				b[unit+2] = d.Reflectivity(blk, ch)
			}
		}
	}
	return b
}

// TelemetryPacket describes a DIFOP fixture.
type TelemetryPacket struct {
	MotorSpeed   uint16
	ReturnMode   uint8
	GPSStatus    uint8
	SerialNumber [6]byte
	GPRMC        string
	// Calibration is copied to the calibration sub-record when non-nil.
	Calibration []byte
}

// Bytes encodes the fixture.
func (p TelemetryPacket) Bytes() []byte {
	b := make([]byte, TelemetryPacketSize)
	binary.BigEndian.PutUint64(b[0:8], 0xA5FF005A11115555)
	binary.BigEndian.PutUint16(b[offMotorSpeed:], p.MotorSpeed)
	copy(b[offLidarIP:], []byte{192, 168, 1, 200})
	copy(b[offDestPCIP:], []byte{192, 168, 1, 102})
	binary.BigEndian.PutUint16(b[offMSOPPort:], 6699)
	binary.BigEndian.PutUint16(b[offDIFOPPort:], 7788)
	copy(b[offSerialNumber:], p.SerialNumber[:])
	b[offReturnMode] = p.ReturnMode
	b[offGPSStatus] = p.GPSStatus
	copy(b[offGPRMC:offCalibration], p.GPRMC)
	if p.Calibration != nil {
		copy(b[offCalibration:offCalibration+192], p.Calibration)
	}
	binary.BigEndian.PutUint16(b[offTail:], 0x0FF0)
	return b
}

// AngleCorrections encodes per-channel elevation and azimuth corrections in
// hundredths of a degree into a calibration sub-record.
func AngleCorrections(elevation, azimuth [channelsPerBlock]int) []byte {
	out := make([]byte, 2*channelsPerBlock*3)
	put := func(off, v int) {
		if v < 0 {
			out[off] = 1
			v = -v
		}
		binary.BigEndian.PutUint16(out[off+1:], uint16(v))
	}
	for ch := 0; ch < channelsPerBlock; ch++ {
		put(ch*3, elevation[ch])
		put(channelsPerBlock*3+ch*3, azimuth[ch])
	}
	return out
}

func putUint48(b []byte, v uint64) {
	for i := 5; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
