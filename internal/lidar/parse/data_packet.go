package parse

import (
	"math"
	"time"
)

// Bpearl v4 MSOP packet structure constants.
const (
	BlocksPerPacket  = 12 // blocks per MSOP packet
	ChannelsPerBlock = 32 // laser channels per block
	BytesPerUnit     = 3  // 2 bytes distance + 1 byte reflectivity
	BlockHeaderSize  = 4  // 2-byte flag + 2-byte azimuth
	BlockSize        = BlockHeaderSize + ChannelsPerBlock*BytesPerUnit
	DataHeaderSize   = 41
	DataTailSize     = 6
	DataPacketSize   = DataHeaderSize + BlocksPerPacket*BlockSize + DataTailSize

	// MaxReturns is the number of returns reported per firing in dual mode.
	MaxReturns = 2

	// DegreeSubdivisions converts the raw block azimuth to degrees.
	DegreeSubdivisions = 100
)

// Timestamp is the device clock carried in the MSOP header.
type Timestamp struct {
	Seconds      uint64 // 48-bit seconds
	Microseconds uint32
}

// MaxTimestampSeconds is the largest seconds value UnixNanos can represent
// for any microseconds value.
const MaxTimestampSeconds = (math.MaxInt64 - math.MaxUint32*1000) / 1000000000

// Representable reports whether UnixNanos can hold the timestamp. The 48-bit
// seconds field reaches far beyond the int64 nanosecond range.
func (t Timestamp) Representable() bool {
	return t.Seconds <= MaxTimestampSeconds
}

// UnixNanos returns the timestamp as nanoseconds since the Unix epoch. The
// result is only meaningful when Representable is true.
func (t Timestamp) UnixNanos() int64 {
	return int64(t.Seconds)*int64(time.Second) + int64(t.Microseconds)*int64(time.Microsecond)
}

// Time returns the timestamp as a UTC time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, t.UnixNanos()).UTC()
}

// DataPacketHeader is the 41-byte MSOP header.
type DataPacketHeader struct {
	HeaderID       uint64
	ReservedFirst  uint32
	PacketCount    uint32
	ReservedSecond uint32
	Timestamp      Timestamp
	LidarType      uint8
	LidarModel     uint8
	ReservedThird  [9]byte
}

// Unit is one channel measurement.
type Unit struct {
	Distance     uint16 // raw distance, see DistanceUnitMeters
	Reflectivity uint8
}

// Block is one firing group of 32 channels.
type Block struct {
	Flag    uint16
	Azimuth uint16 // 0.01° units
	Units   [ChannelsPerBlock]Unit
}

// AzimuthDegrees returns the block azimuth in degrees.
func (b *Block) AzimuthDegrees() float64 {
	return float64(b.Azimuth) / DegreeSubdivisions
}

// DataPacket is a decoded MSOP packet.
type DataPacket struct {
	Header DataPacketHeader
	Blocks [BlocksPerPacket]Block
	Tail   uint64 // 48-bit
}

// ParseDataPacket decodes an MSOP packet. The buffer must be exactly
// DataPacketSize bytes; the magic id is not checked.
func ParseDataPacket(b []byte) (*DataPacket, error) {
	if len(b) != DataPacketSize {
		return nil, &FormatError{Kind: "data", Want: DataPacketSize, Got: len(b)}
	}

	p := &DataPacket{
		Header: DataPacketHeader{
			HeaderID:       readUint(b, dataHeaderID),
			ReservedFirst:  readU32(b, dataReservedFirst),
			PacketCount:    readU32(b, dataPacketCount),
			ReservedSecond: readU32(b, dataReservedSecond),
			Timestamp: Timestamp{
				Seconds:      readUint(b, dataTimestampSec),
				Microseconds: readU32(b, dataTimestampUsec),
			},
			LidarType:  readU8(b, dataLidarType),
			LidarModel: readU8(b, dataLidarModel),
		},
		Tail: readUint(b, dataTail),
	}
	readBytes(p.Header.ReservedThird[:], b, dataReservedThird)

	for i := range p.Blocks {
		base := DataHeaderSize + i*BlockSize
		blk := &p.Blocks[i]
		blk.Flag = readU16(b, blockFlag.at(base))
		blk.Azimuth = readU16(b, blockAzimuth.at(base))
		for c := range blk.Units {
			unit := base + BlockHeaderSize + c*BytesPerUnit
			blk.Units[c] = Unit{
				Distance:     readU16(b, unitDistance.at(unit)),
				Reflectivity: readU8(b, unitReflectivity.at(unit)),
			}
		}
	}

	return p, nil
}
