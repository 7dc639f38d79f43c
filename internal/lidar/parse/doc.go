/*
Package parse decodes the RoboSense Bpearl v4 UDP wire format.

The sensor emits two packet kinds:

MSOP (main data stream, 1247 bytes):
├── Header (41 bytes)
│   └── magic id (8) + reserved (4) + packet counter (4) + reserved (4) +
│       timestamp (6-byte seconds + 4-byte microseconds) + lidar type (1) +
│       lidar model (1) + reserved (9)
├── Body (1200 bytes) - 12 blocks × 100 bytes
│   └── Each block: 2-byte flag + 2-byte azimuth (0.01°) + 32 units × 3 bytes
│       (2-byte distance in 0.25 cm + 1-byte reflectivity)
└── Tail (6 bytes)

DIFOP (device info, 1222 bytes): motor speed, network settings, field of view,
firmware versions, serial number, return mode, time sync state, operating
status, fault diagnosis, the raw GPRMC sentence and the per-channel angle
calibration. Large reserved regions are kept byte-for-byte.

All multi-byte fields are big-endian. Fields are read through an explicit
offset/width table (see layout.go) against a length-checked slice; nothing is
cast onto the buffer.

Everything in this package is a pure function of its input and the firing
offset tables, which are never written after package initialisation, so
decoding is safe from any number of goroutines.
*/
package parse
