// Package recorder persists published vehicle snapshots to a SQLite
// flight log for post-flight review.
package recorder

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	flightmanual "github.com/igsxf22/flight-manual"
)

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS flight_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at DATETIME NOT NULL,
    mode TEXT NOT NULL,
    armed BOOLEAN NOT NULL,
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    alt REAL NOT NULL,
    north REAL NOT NULL,
    east REAL NOT NULL,
    down REAL NOT NULL,
    roll_deg REAL NOT NULL,
    pitch_deg REAL NOT NULL,
    yaw_deg REAL NOT NULL,
    airspeed REAL NOT NULL,
    groundspeed REAL NOT NULL,
    battery_voltage REAL NOT NULL,
    battery_level REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flight_log_recorded_at ON flight_log(recorded_at);
`

const insertSQL = `
INSERT INTO flight_log (
    recorded_at, mode, armed,
    lat, lon, alt,
    north, east, down,
    roll_deg, pitch_deg, yaw_deg,
    airspeed, groundspeed,
    battery_voltage, battery_level
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store is a SQLite-backed flight log. It implements the bridge's
// Recorder interface.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open creates or opens the flight log at dbPath and initializes the
// schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3",
		fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", dbPath))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open flight log %s", dbPath)
	}
	if _, err := db.Exec(initSchemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "unable to initialize flight log schema")
	}
	insert, err := db.Prepare(insertSQL)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "unable to prepare flight log insert")
	}
	return &Store{db: db, insert: insert}, nil
}

// Record appends one snapshot to the log. Attitude is stored in degrees,
// positions at the system's working precision.
func (s *Store) Record(t time.Time, snap flightmanual.State) error {
	snap = snap.Rounded()
	_, err := s.insert.Exec(
		t.UTC(), snap.Mode, snap.Armed,
		snap.Global.Lat, snap.Global.Lon, snap.Global.Alt,
		snap.Local.North, snap.Local.East, snap.Local.Down,
		flightmanual.Degrees(snap.Attitude.Roll),
		flightmanual.Degrees(snap.Attitude.Pitch),
		flightmanual.Degrees(snap.Attitude.Yaw),
		snap.Airspeed, snap.Groundspeed,
		snap.Battery.Voltage, snap.Battery.Level,
	)
	return errors.Wrap(err, "unable to record snapshot")
}

// Count returns the number of recorded snapshots.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM flight_log").Scan(&n)
	return n, errors.Wrap(err, "unable to count flight log rows")
}

func (s *Store) Close() error {
	if err := s.insert.Close(); err != nil {
		_ = s.db.Close()
		return errors.Wrap(err, "unable to close flight log insert")
	}
	return errors.Wrap(s.db.Close(), "unable to close flight log")
}
