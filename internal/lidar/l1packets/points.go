package l1packets

import "math"

// PointPolar is one measurement in sensor-frame polar coordinates.
type PointPolar struct {
	Channel     int     // laser channel number (1-32)
	Azimuth     float64 // degrees in [0, 360), calibration applied
	Elevation   float64 // degrees, from the channel's vertical correction
	Distance    float64 // meters
	Intensity   uint8   // reflectivity
	Timestamp   int64   // unix nanoseconds: packet time + firing offset
	BlockID     int     // block index within the packet (0-11)
	PacketCount uint32  // MSOP header packet counter
}

// normalizeAzimuth wraps deg into [0, 360).
func normalizeAzimuth(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
