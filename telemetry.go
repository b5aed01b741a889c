package flightmanual

// GlobalPosition is the vehicle position in the global frame.
type GlobalPosition struct {
	Lat float64 // decimal degrees
	Lon float64 // decimal degrees
	Alt float64 // meters above mean sea level
}

// LocalPosition is the vehicle position as north/east/down offsets in
// meters from the controller's local-frame origin. OK is false until the
// controller has locked an origin; the offsets are meaningless before then.
type LocalPosition struct {
	North float64
	East  float64
	Down  float64
	OK    bool
}

// Attitude in radians.
type Attitude struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

type Battery struct {
	Voltage float64 // volts
	Level   float64 // percent remaining
}

// State is a point-in-time snapshot of the vehicle.
type State struct {
	Mode  string
	Armed bool

	Battery Battery

	Global GlobalPosition
	Local  LocalPosition

	Attitude Attitude

	Airspeed    float64 // m/s
	Groundspeed float64 // m/s
	Velocity    [3]float64
}

// Rounded returns a copy with global-frame values rounded to 8 decimal
// places and local-frame offsets to 3, the precision the rest of the
// system works at.
func (s State) Rounded() State {
	s.Global.Lat = round(s.Global.Lat, 8)
	s.Global.Lon = round(s.Global.Lon, 8)
	s.Global.Alt = round(s.Global.Alt, 8)
	s.Local.North = round(s.Local.North, 3)
	s.Local.East = round(s.Local.East, 3)
	s.Local.Down = round(s.Local.Down, 3)
	return s
}
