package lidardb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/bpearl/internal/lidar/l1packets"
	"github.com/banshee-data/bpearl/internal/lidar/parse"
)

// ErrNotFound is returned when no telemetry matches a query.
var ErrNotFound = errors.New("telemetry not found")

// TelemetryRecord is one stored telemetry snapshot.
type TelemetryRecord struct {
	ID              string
	SensorID        string
	SerialNumber    string
	ReturnMode      string // empty when the sensor reported an unmapped mode
	Info            map[string]string
	CalibrationBlob []byte
	GPRMC           string
	ReceivedAt      time.Time
}

// InsertTelemetry stores snap and returns the new record ID.
func (ldb *LidarDB) InsertTelemetry(sensorID string, snap *l1packets.TelemetrySnapshot) (string, error) {
	if snap == nil {
		return "", errors.New("nil telemetry snapshot")
	}

	info, err := json.Marshal(snap.Info)
	if err != nil {
		return "", fmt.Errorf("failed to encode sensor info: %w", err)
	}

	var mode sql.NullString
	if snap.ReturnMode != parse.ReturnModeUnknown {
		mode = sql.NullString{String: snap.ReturnMode.String(), Valid: true}
	}

	id := uuid.NewString()
	_, err = ldb.Exec(`
		INSERT INTO sensor_telemetry (
			telemetry_id, sensor_id, serial_number, return_mode,
			info_json, calibration_blob, gprmc, received_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sensorID, snap.SerialNumber, mode,
		string(info), snap.CalibrationBlob, snap.GPRMC, snap.ReceivedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert telemetry: %w", err)
	}
	return id, nil
}

const selectTelemetry = `
	SELECT telemetry_id, sensor_id, serial_number, return_mode,
	       info_json, calibration_blob, gprmc, received_at_ns
	FROM sensor_telemetry`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTelemetry(row rowScanner) (TelemetryRecord, error) {
	var (
		rec  TelemetryRecord
		mode sql.NullString
		info string
		ns   int64
	)
	if err := row.Scan(&rec.ID, &rec.SensorID, &rec.SerialNumber, &mode,
		&info, &rec.CalibrationBlob, &rec.GPRMC, &ns); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(info), &rec.Info); err != nil {
		return rec, fmt.Errorf("telemetry %s: invalid info_json: %w", rec.ID, err)
	}
	rec.ReturnMode = mode.String
	rec.ReceivedAt = time.Unix(0, ns).UTC()
	return rec, nil
}

// LatestTelemetry returns the most recent record for a sensor serial number.
func (ldb *LidarDB) LatestTelemetry(serial string) (*TelemetryRecord, error) {
	row := ldb.QueryRow(selectTelemetry+`
		WHERE serial_number = ?
		ORDER BY received_at_ns DESC, rowid DESC
		LIMIT 1`, serial)

	rec, err := scanTelemetry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("serial %s: %w", serial, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest telemetry: %w", err)
	}
	return &rec, nil
}

// ListTelemetry returns up to limit records, newest first. A limit of zero
// or less returns every record.
func (ldb *LidarDB) ListTelemetry(limit int) ([]TelemetryRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := ldb.Query(selectTelemetry+`
		ORDER BY received_at_ns DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list telemetry: %w", err)
	}
	defer rows.Close()

	var out []TelemetryRecord
	for rows.Next() {
		rec, err := scanTelemetry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
