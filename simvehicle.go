package flightmanual

import (
	"math"
	"sync"
	"time"
)

const (
	simOrbitRadius = 20.0 // meters
	simOrbitPeriod = 60.0 // seconds
	simAltitude    = 10.0 // meters above origin
)

// SimVehicle flies a synthetic orbit so the bridge can run without a
// flight controller. The local-frame origin locks only after the warm-up
// period, the same way a real controller withholds local offsets until it
// has a position estimate.
type SimVehicle struct {
	mu     sync.Mutex
	start  time.Time
	warmup time.Duration

	mode  string
	armed bool
	home  GlobalPosition
}

func NewSimVehicle(warmup time.Duration) *SimVehicle {
	return &SimVehicle{
		start:  time.Now(),
		warmup: warmup,
		mode:   "GUIDED",
		home:   GlobalPosition{Lat: 38.8719, Lon: -77.0563, Alt: 100},
	}
}

func (v *SimVehicle) State() (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := State{
		Mode:    v.mode,
		Armed:   v.armed,
		Battery: Battery{Voltage: 12.6, Level: 100},
		Global:  v.home,
	}

	elapsed := time.Since(v.start)
	if elapsed < v.warmup {
		return snap, nil
	}

	t := (elapsed - v.warmup).Seconds()
	w := 2 * math.Pi / simOrbitPeriod
	snap.Local = LocalPosition{
		North: simOrbitRadius * math.Sin(w*t),
		East:  simOrbitRadius * math.Cos(w*t),
		Down:  -simAltitude,
		OK:    true,
	}
	snap.Attitude = Attitude{
		Roll:  0.05 * math.Sin(w*t),
		Pitch: 0.05 * math.Cos(w*t),
		Yaw:   math.Mod(w*t, 2*math.Pi),
	}
	snap.Velocity = [3]float64{
		simOrbitRadius * w * math.Cos(w*t),
		-simOrbitRadius * w * math.Sin(w*t),
		0,
	}
	snap.Groundspeed = simOrbitRadius * w
	snap.Airspeed = snap.Groundspeed
	return snap, nil
}

func (v *SimVehicle) SetMode(mode string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = mode
	return nil
}

func (v *SimVehicle) Arm(arm bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.armed = arm
	return nil
}

func (v *SimVehicle) Armed() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.armed, nil
}

func (v *SimVehicle) Takeoff(alt float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.home.Alt += alt
	return nil
}

func (v *SimVehicle) GoTo(lat, lon, alt float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.home = GlobalPosition{Lat: lat, Lon: lon, Alt: alt}
	return nil
}

func (v *SimVehicle) Close() error {
	return nil
}
