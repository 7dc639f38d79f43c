package parse

import "fmt"

// Position of the angle calibration sub-record inside a DIFOP packet.
const (
	CalibrationOffset = 442
	CalibrationSize   = 2 * ChannelsPerBlock * angleCorrectionSize

	angleCorrectionSize = 3 // sign byte + 16-bit angle in 0.01°
)

// CalibrationBlob is the raw calibration sub-record and where it sits in the
// telemetry packet.
type CalibrationBlob struct {
	Offset int
	Length int
	Data   []byte
}

// ExtractCalibrationBlob returns a copy of the calibration sub-record.
func ExtractCalibrationBlob(p *TelemetryPacket) CalibrationBlob {
	data := make([]byte, CalibrationSize)
	copy(data, p.SensorCalibration[:])
	return CalibrationBlob{
		Offset: CalibrationOffset,
		Length: CalibrationSize,
		Data:   data,
	}
}

// ChannelCorrection holds the angle corrections for one channel in degrees.
type ChannelCorrection struct {
	Elevation float64
	Azimuth   float64
}

// Calibration is the decoded per-channel angle correction set.
type Calibration struct {
	Channels [ChannelsPerBlock]ChannelCorrection
}

// CalibrationDecoder turns a raw calibration blob into angle corrections.
type CalibrationDecoder interface {
	DecodeCalibration(blob CalibrationBlob) (*Calibration, error)
}

// AngleCorrectionDecoder decodes the factory layout: 32 vertical corrections
// followed by 32 horizontal corrections, each a sign byte (0 = positive) and a
// big-endian angle in hundredths of a degree.
type AngleCorrectionDecoder struct{}

// DecodeCalibration implements CalibrationDecoder.
func (AngleCorrectionDecoder) DecodeCalibration(blob CalibrationBlob) (*Calibration, error) {
	if len(blob.Data) != CalibrationSize {
		return nil, fmt.Errorf("invalid calibration blob size: expected %d, got %d", CalibrationSize, len(blob.Data))
	}

	cal := &Calibration{}
	horizontal := ChannelsPerBlock * angleCorrectionSize
	for c := range cal.Channels {
		cal.Channels[c] = ChannelCorrection{
			Elevation: readAngle(blob.Data, c*angleCorrectionSize),
			Azimuth:   readAngle(blob.Data, horizontal+c*angleCorrectionSize),
		}
	}
	return cal, nil
}

func readAngle(b []byte, off int) float64 {
	angle := float64(readU16(b, field{off + 1, 2})) / DegreeSubdivisions
	if b[off] != 0 {
		return -angle
	}
	return angle
}
