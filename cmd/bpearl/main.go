// Command bpearl receives Bpearl data and telemetry streams, decodes them and
// records sensor telemetry to SQLite. With -pcap it replays a capture instead
// of opening sockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/bpearl/internal/config"
	"github.com/banshee-data/bpearl/internal/lidar/l1packets"
	"github.com/banshee-data/bpearl/internal/lidar/network"
	"github.com/banshee-data/bpearl/internal/lidar/parse"
	"github.com/banshee-data/bpearl/internal/lidardb"
	"github.com/banshee-data/bpearl/internal/monitoring"
	"github.com/banshee-data/bpearl/internal/version"
)

type options struct {
	configFile  string
	pcapFile    string
	showVersion bool
	overrides   map[string]func(*config.Config)
}

// parseFlags parses args. Flags that were set explicitly override the
// loaded config; unset flags leave config values alone.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("bpearl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{overrides: make(map[string]func(*config.Config))}
	fs.StringVar(&opts.configFile, "config", "", "Path to a config file (yaml, json or toml)")
	fs.StringVar(&opts.pcapFile, "pcap", "", "Replay a pcap/pcapng capture instead of listening")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	udpAddr := fs.String("udp-addr", "", "UDP bind address (default: all interfaces)")
	msopPort := fs.Int("msop-port", 0, "UDP port for data packets (default 6699)")
	difopPort := fs.Int("difop-port", 0, "UDP port for telemetry packets (default 7788)")
	rcvBuf := fs.Int("rcvbuf", 0, "UDP receive buffer size in bytes (default 4MB)")
	logInterval := fs.Duration("log-interval", 0, "Statistics logging interval (default 1m)")
	returnMode := fs.String("return-mode", "", "Return mode assumed until telemetry arrives: dual, strongest, last, first")
	timestampMode := fs.String("timestamp-mode", "", "Point time base: device or system")
	dbPath := fs.String("db", "", "Path to the SQLite database file (default bpearl.db)")
	noDB := fs.Bool("no-db", false, "Do not record telemetry")
	sensorID := fs.String("sensor-id", "", "Label for stored telemetry (default: serial number)")
	trace := fs.Bool("trace", false, "Enable the per-packet trace log stream")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "udp-addr":
			opts.overrides[f.Name] = func(c *config.Config) { c.UDPAddr = *udpAddr }
		case "msop-port":
			opts.overrides[f.Name] = func(c *config.Config) { c.MSOPPort = *msopPort }
		case "difop-port":
			opts.overrides[f.Name] = func(c *config.Config) { c.DIFOPPort = *difopPort }
		case "rcvbuf":
			opts.overrides[f.Name] = func(c *config.Config) { c.RcvBuf = *rcvBuf }
		case "log-interval":
			opts.overrides[f.Name] = func(c *config.Config) { c.LogInterval = *logInterval }
		case "return-mode":
			opts.overrides[f.Name] = func(c *config.Config) { c.FallbackReturnMode = *returnMode }
		case "timestamp-mode":
			opts.overrides[f.Name] = func(c *config.Config) { c.TimestampMode = *timestampMode }
		case "db":
			opts.overrides[f.Name] = func(c *config.Config) { c.DBPath = *dbPath }
		case "no-db":
			opts.overrides[f.Name] = func(c *config.Config) {
				if *noDB {
					c.DBPath = ""
				}
			}
		case "sensor-id":
			opts.overrides[f.Name] = func(c *config.Config) { c.SensorID = *sensorID }
		case "trace":
			opts.overrides[f.Name] = func(c *config.Config) { c.Log.Trace = *trace }
		}
	})
	return opts, nil
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	for _, apply := range opts.overrides {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config, w io.Writer) {
	var diag, trace io.Writer
	if cfg.Log.Diag {
		diag = w
	}
	if cfg.Log.Trace {
		trace = w
	}
	l1packets.SetLogWriters(w, diag, trace)
	network.SetLogWriters(w, diag, trace)
	monitoring.SetWriter(w, "[bpearl] ")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.String("bpearl"))
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	setupLogging(cfg, stderr)

	format, err := parse.LookupSensorFormat(cfg.SensorModel)
	if err != nil {
		return err
	}
	decoder := l1packets.NewDecoder(format, cfg.DecoderConfig())
	stats := network.NewPacketStats(nil)
	dispatcher := &network.Dispatcher{
		Parser:    decoder,
		Telemetry: decoder,
		Stats:     stats,
	}

	if cfg.DBPath != "" {
		ldb, err := lidardb.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open lidar database: %w", err)
		}
		defer ldb.Close()
		dispatcher.TelemetrySink = &lidardb.TelemetryRecorder{
			DB:          ldb,
			SensorID:    cfg.SensorID,
			MinInterval: cfg.TelemetryInterval,
		}
	}

	monitoring.Logf("%s: model %s, fallback return mode %s, timestamps from %s",
		version.String("bpearl"), format.Name(), cfg.FallbackReturnMode, cfg.TimestampMode)

	if opts.pcapFile != "" {
		replay := &network.PCAPReplay{
			Routes: map[uint16]network.PacketHandler{
				uint16(cfg.MSOPPort):  dispatcher.DataHandler(),
				uint16(cfg.DIFOPPort): dispatcher.TelemetryHandler(),
			},
			Timer: dispatcher,
		}
		summary, err := replay.ReadPCAPFile(ctx, opts.pcapFile)
		stats.LogStats()
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		data, telemetry := decoder.Counts()
		fmt.Fprintf(stdout, "replayed %d packets (%d data, %d telemetry, %d unrouted) spanning %v\n",
			summary.Packets, data, telemetry, summary.Unrouted, summary.Last.Sub(summary.First).Round(time.Millisecond))
		return nil
	}

	return network.RunSensorListeners(ctx, network.SensorListenerConfig{
		Host:          cfg.UDPAddr,
		DataPort:      cfg.MSOPPort,
		TelemetryPort: cfg.DIFOPPort,
		RcvBuf:        cfg.RcvBuf,
		LogInterval:   cfg.LogInterval,
		Dispatcher:    dispatcher,
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("bpearl: %v", err)
	}
}
