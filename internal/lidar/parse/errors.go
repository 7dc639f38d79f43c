package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat reports a buffer whose length does not match the packet kind.
	ErrFormat = errors.New("parse: packet format error")

	// ErrIndexOutOfRange reports a block or channel outside the firing grid.
	ErrIndexOutOfRange = errors.New("parse: index out of range")
)

// FormatError describes a packet size mismatch.
type FormatError struct {
	Kind string // "data" or "telemetry"
	Want int
	Got  int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s packet size: expected %d, got %d", e.Kind, e.Want, e.Got)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// IndexError describes a firing offset lookup outside the block × channel grid.
type IndexError struct {
	Block   int
	Channel int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("firing offset lookup out of range: block %d (0-%d), channel %d (0-%d)",
		e.Block, BlocksPerPacket-1, e.Channel, ChannelsPerBlock-1)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
