package parse

import (
	"fmt"
	"sort"
)

// SensorFormat carries the model-specific constants a decoder needs: grid
// size, packet sizes, firing tables and range limits.
type SensorFormat interface {
	Name() string
	Blocks() int
	Channels() int
	DataPacketSize() int
	TelemetryPacketSize() int
	OffsetNs(block, channel int, mode ReturnMode) (int64, error)
	ResolveReturnMode(raw uint8) ReturnMode
	DistanceUnitMeters() float64
	MinRange() float64
	MaxRange() float64
}

// Bpearl v4 range limits and scan buffer sizing.
const (
	BpearlV4MinRange            = 0.1
	BpearlV4MaxRange            = 30.0
	BpearlV4MaxScanBufferPoints = 1152000
)

// DistanceUnitMeters returns the size of one raw distance LSB in meters.
func DistanceUnitMeters() float64 { return 0.0025 }

// BpearlV4 is the SensorFormat of the RoboSense Bpearl v4.
type BpearlV4 struct{}

func (BpearlV4) Name() string                { return "bpearl_v4" }
func (BpearlV4) Blocks() int                 { return BlocksPerPacket }
func (BpearlV4) Channels() int               { return ChannelsPerBlock }
func (BpearlV4) DataPacketSize() int         { return DataPacketSize }
func (BpearlV4) TelemetryPacketSize() int    { return TelemetryPacketSize }
func (BpearlV4) DistanceUnitMeters() float64 { return DistanceUnitMeters() }
func (BpearlV4) MinRange() float64           { return BpearlV4MinRange }
func (BpearlV4) MaxRange() float64           { return BpearlV4MaxRange }

func (BpearlV4) OffsetNs(block, channel int, mode ReturnMode) (int64, error) {
	return FiringOffsetNs(block, channel, mode)
}

func (BpearlV4) ResolveReturnMode(raw uint8) ReturnMode {
	return ResolveReturnMode(raw)
}

var sensorFormats = map[string]SensorFormat{
	BpearlV4{}.Name(): BpearlV4{},
}

// LookupSensorFormat returns the registered format for a model name.
func LookupSensorFormat(name string) (SensorFormat, error) {
	f, ok := sensorFormats[name]
	if !ok {
		return nil, fmt.Errorf("unknown sensor model %q (supported: %v)", name, SensorModels())
	}
	return f, nil
}

// SensorModels lists the registered model names in sorted order.
func SensorModels() []string {
	names := make([]string, 0, len(sensorFormats))
	for name := range sensorFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
