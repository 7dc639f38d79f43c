package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/bpearl/internal/timeutil"
)

// readTimeout bounds each blocking read so cancellation is noticed promptly.
const readTimeout = 100 * time.Millisecond

// maxDatagram is large enough for either sensor packet plus margin.
const maxDatagram = 2048

// UDPListenerConfig contains configuration options for the UDP listener.
type UDPListenerConfig struct {
	Name    string // used in log lines, e.g. "msop"
	Address string
	RcvBuf  int

	// LogInterval enables periodic Stats.LogStats calls when positive.
	LogInterval time.Duration
	Stats       PacketStatsInterface

	Handler       PacketHandler
	SocketFactory UDPSocketFactory
	Clock         timeutil.Clock
}

// UDPListener receives datagrams on one socket and hands each payload to a
// PacketHandler.
type UDPListener struct {
	name          string
	address       string
	rcvBuf        int
	logInterval   time.Duration
	stats         PacketStatsInterface
	handler       PacketHandler
	socketFactory UDPSocketFactory
	clock         timeutil.Clock
}

// NewUDPListener creates a new UDP listener with the provided configuration.
func NewUDPListener(config UDPListenerConfig) *UDPListener {
	l := &UDPListener{
		name:          config.Name,
		address:       config.Address,
		rcvBuf:        config.RcvBuf,
		logInterval:   config.LogInterval,
		stats:         config.Stats,
		handler:       config.Handler,
		socketFactory: config.SocketFactory,
		clock:         config.Clock,
	}
	if l.name == "" {
		l.name = "udp"
	}
	if l.stats == nil {
		l.stats = noopStats{}
	}
	if l.handler == nil {
		l.handler = PacketHandlerFunc(func([]byte) error { return nil })
	}
	if l.socketFactory == nil {
		l.socketFactory = RealUDPSocketFactory{}
	}
	if l.clock == nil {
		l.clock = timeutil.RealClock{}
	}
	return l
}

// Start binds the socket and processes packets until ctx is cancelled. It
// returns ctx.Err() on cancellation and a wrapped error if binding fails.
func (l *UDPListener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("%s: failed to resolve UDP address %q: %w", l.name, l.address, err)
	}

	conn, err := l.socketFactory.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("%s: failed to listen on %s: %w", l.name, l.address, err)
	}
	defer conn.Close()

	if l.rcvBuf > 0 {
		if err := conn.SetReadBuffer(l.rcvBuf); err != nil {
			opsf("%s: failed to set UDP receive buffer size to %d: %v", l.name, l.rcvBuf, err)
		}
	}

	diagf("%s listener started on %s with receive buffer %d bytes", l.name, conn.LocalAddr(), l.rcvBuf)

	if l.logInterval > 0 {
		go l.startStatsLogging(ctx)
	}

	buffer := make([]byte, maxDatagram)
	for {
		if ctx.Err() != nil {
			diagf("%s listener stopping", l.name)
			return ctx.Err()
		}

		_ = conn.SetReadDeadline(l.clock.Now().Add(readTimeout))
		n, from, err := conn.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("%s: socket closed: %w", l.name, err)
			}
			opsf("%s: UDP read error: %v", l.name, err)
			continue
		}

		if err := l.handler.HandlePacket(buffer[:n]); err != nil {
			opsf("%s: error handling packet from %v: %v", l.name, from, err)
		}
	}
}

func (l *UDPListener) startStatsLogging(ctx context.Context) {
	ticker := l.clock.NewTicker(l.logInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			l.stats.LogStats()
		}
	}
}
