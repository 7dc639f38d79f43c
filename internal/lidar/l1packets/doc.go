// Package l1packets owns Layer 1 (Packets) of the LiDAR data model.
//
// Responsibilities: turning decoded Bpearl v4 MSOP packets into timestamped
// polar points, and tracking the sensor state carried by DIFOP packets
// (return mode, motor speed, angle calibration) that point building depends
// on. Byte-level decoding lives in the parse package; socket and PCAP
// ingestion live in the network package.
//
// Dependency rule: L1 has no inward dependencies on higher layers.
package l1packets
