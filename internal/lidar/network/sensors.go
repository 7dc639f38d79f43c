package network

import (
	"context"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/bpearl/internal/timeutil"
)

// SensorListenerConfig describes the two sockets a sensor sends to.
type SensorListenerConfig struct {
	Host          string // bind host, empty for all interfaces
	DataPort      int
	TelemetryPort int
	RcvBuf        int
	LogInterval   time.Duration

	Dispatcher    *Dispatcher
	SocketFactory UDPSocketFactory
	Clock         timeutil.Clock
}

// RunSensorListeners receives the data and telemetry streams concurrently
// until ctx is cancelled. If either socket fails the other is stopped and
// the first error is returned. Cancellation of ctx returns nil.
func RunSensorListeners(ctx context.Context, cfg SensorListenerConfig) error {
	data := NewUDPListener(UDPListenerConfig{
		Name:          "msop",
		Address:       net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.DataPort)),
		RcvBuf:        cfg.RcvBuf,
		LogInterval:   cfg.LogInterval,
		Stats:         cfg.Dispatcher.Stats,
		Handler:       cfg.Dispatcher.DataHandler(),
		SocketFactory: cfg.SocketFactory,
		Clock:         cfg.Clock,
	})
	telemetry := NewUDPListener(UDPListenerConfig{
		Name:          "difop",
		Address:       net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.TelemetryPort)),
		Handler:       cfg.Dispatcher.TelemetryHandler(),
		SocketFactory: cfg.SocketFactory,
		Clock:         cfg.Clock,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return data.Start(gctx) })
	g.Go(func() error { return telemetry.Start(gctx) })

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
