package parse

import (
	"fmt"
	"strings"
)

// ReturnMode describes which reflections the sensor reports per firing.
type ReturnMode uint8

const (
	ReturnModeUnknown ReturnMode = iota
	ReturnModeDual
	ReturnModeSingleStrongest
	ReturnModeSingleLast
	ReturnModeSingleFirst
)

// Raw DIFOP return mode bytes.
const (
	rawReturnDual      = 0x00
	rawReturnStrongest = 0x04
	rawReturnLast      = 0x05
	rawReturnFirst     = 0x06
)

// ResolveReturnMode maps the raw DIFOP byte to a ReturnMode. Unmapped bytes
// resolve to ReturnModeUnknown, which callers treat as "apply fallback".
func ResolveReturnMode(raw uint8) ReturnMode {
	switch raw {
	case rawReturnDual:
		return ReturnModeDual
	case rawReturnStrongest:
		return ReturnModeSingleStrongest
	case rawReturnLast:
		return ReturnModeSingleLast
	case rawReturnFirst:
		return ReturnModeSingleFirst
	default:
		return ReturnModeUnknown
	}
}

// String returns the name used in the telemetry map ("dual", "strongest",
// "last", "first"), or "unknown".
func (m ReturnMode) String() string {
	switch m {
	case ReturnModeDual:
		return "dual"
	case ReturnModeSingleStrongest:
		return "strongest"
	case ReturnModeSingleLast:
		return "last"
	case ReturnModeSingleFirst:
		return "first"
	default:
		return "unknown"
	}
}

// IsDual reports whether m selects the dual-return firing table.
func (m ReturnMode) IsDual() bool { return m == ReturnModeDual }

// ParseReturnMode accepts the names produced by String.
func ParseReturnMode(s string) (ReturnMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dual":
		return ReturnModeDual, nil
	case "strongest":
		return ReturnModeSingleStrongest, nil
	case "last":
		return ReturnModeSingleLast, nil
	case "first":
		return ReturnModeSingleFirst, nil
	}
	return ReturnModeUnknown, fmt.Errorf("unknown return mode %q (want dual, strongest, last or first)", s)
}

// ReturnModeSource supplies the return mode currently configured on the sensor.
type ReturnModeSource interface {
	CurrentReturnMode() ReturnMode
}
