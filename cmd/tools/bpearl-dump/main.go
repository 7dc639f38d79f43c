// Command bpearl-dump replays a capture and prints each distinct telemetry
// record as JSON, followed by per-packet point and timing statistics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/bpearl/internal/lidar/l1packets"
	"github.com/banshee-data/bpearl/internal/lidar/network"
	"github.com/banshee-data/bpearl/internal/lidar/parse"
)

var (
	pcapFile   = flag.String("pcap", "", "Capture file to read (pcap or pcapng)")
	msopPort   = flag.Int("msop-port", 6699, "UDP port carrying data packets")
	difopPort  = flag.Int("difop-port", 7788, "UDP port carrying telemetry packets")
	returnMode = flag.String("return-mode", "strongest", "Return mode assumed until telemetry arrives")
	allRecords = flag.Bool("all", false, "Print every telemetry record, not only changes")
)

// Distribution summarises one series.
type Distribution struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func distribution(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}
	d := Distribution{
		N:    len(xs),
		Mean: stat.Mean(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
	}
	if len(xs) > 1 {
		d.StdDev = stat.StdDev(xs, nil)
	}
	return d
}

// Summary is printed after the replay.
type Summary struct {
	DataPackets      int          `json:"data_packets"`
	TelemetryRecords int          `json:"telemetry_records"`
	ReturnMode       string       `json:"return_mode"`
	PointsPerPacket  Distribution `json:"points_per_packet"`
	FiringSpanUs     Distribution `json:"firing_span_us"`
	PacketIntervalUs Distribution `json:"packet_interval_us"`
}

// collector gathers per-packet statistics and prints telemetry changes.
type collector struct {
	out     *json.Encoder
	all     bool
	last    *l1packets.TelemetrySnapshot
	records int

	points    []float64
	spans     []float64
	intervals []float64
	prevStart int64
}

func (c *collector) AddPoints(points []l1packets.PointPolar) {
	ts := make([]int64, len(points))
	for i, p := range points {
		ts[i] = p.Timestamp
	}
	start, end := slices.Min(ts), slices.Max(ts)

	c.points = append(c.points, float64(len(points)))
	c.spans = append(c.spans, float64(end-start)/1e3)
	if c.prevStart != 0 {
		c.intervals = append(c.intervals, float64(start-c.prevStart)/1e3)
	}
	c.prevStart = start
}

func (c *collector) RecordTelemetry(snap *l1packets.TelemetrySnapshot) error {
	if !c.all && c.last != nil && snap.ConfigEqual(c.last) {
		return nil
	}
	c.last = snap
	c.records++
	return c.out.Encode(struct {
		ReceivedAt string            `json:"received_at"`
		Info       map[string]string `json:"info"`
		GPRMC      string            `json:"gprmc,omitempty"`
	}{snap.ReceivedAt.Format("2006-01-02T15:04:05.000000Z07:00"), snap.Info, snap.GPRMC})
}

func dump(ctx context.Context, path string, data, telemetry uint16, fallback parse.ReturnMode, all bool, w io.Writer) (*Summary, error) {
	decoder := l1packets.NewDecoder(parse.BpearlV4{}, l1packets.DecoderConfig{FallbackReturnMode: fallback})
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	c := &collector{out: enc, all: all}

	dispatcher := &network.Dispatcher{
		Parser:        decoder,
		Telemetry:     decoder,
		Points:        c,
		TelemetrySink: c,
	}
	replay := &network.PCAPReplay{
		Routes: map[uint16]network.PacketHandler{
			data:      dispatcher.DataHandler(),
			telemetry: dispatcher.TelemetryHandler(),
		},
		Timer: dispatcher,
	}
	if _, err := replay.ReadPCAPFile(ctx, path); err != nil {
		return nil, err
	}

	dataPackets, _ := decoder.Counts()
	summary := &Summary{
		DataPackets:      int(dataPackets),
		TelemetryRecords: c.records,
		ReturnMode:       decoder.CurrentReturnMode().String(),
		PointsPerPacket:  distribution(c.points),
		FiringSpanUs:     distribution(c.spans),
		PacketIntervalUs: distribution(c.intervals),
	}
	return summary, enc.Encode(summary)
}

func main() {
	flag.Parse()
	if *pcapFile == "" {
		fmt.Fprintln(os.Stderr, "usage: bpearl-dump -pcap capture.pcap")
		flag.PrintDefaults()
		os.Exit(2)
	}

	fallback, err := parse.ParseReturnMode(*returnMode)
	if err != nil {
		log.Fatal(err)
	}

	l1packets.SetLogWriters(os.Stderr, nil, nil)
	network.SetLogWriters(os.Stderr, nil, nil)

	if _, err := dump(context.Background(), *pcapFile, uint16(*msopPort), uint16(*difopPort), fallback, *allRecords, os.Stdout); err != nil {
		log.Fatalf("bpearl-dump: %v", err)
	}
}
