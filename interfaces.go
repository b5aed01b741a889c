package flightmanual

// Vehicle is the flight-controller connection. Implementations own the
// link protocol (handshake, heartbeats, parameter streams); callers only
// poll snapshots and issue commands.
type Vehicle interface {
	// State returns the current vehicle snapshot. An error means the
	// controller link is down; there is no partial result.
	State() (State, error)

	SetMode(mode string) error
	Arm(arm bool) error
	Armed() (bool, error)
	Takeoff(alt float64) error
	GoTo(lat, lon, alt float64) error

	Close() error
}
