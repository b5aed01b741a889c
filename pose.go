package flightmanual

import "math"

// Field layout of the outbound pose line. The visualization client decodes
// positionally, so these indexes are fixed by convention.
const (
	FieldNorth = iota
	FieldEast
	FieldDown
	FieldRoll
	FieldPitch
	FieldYaw
	FieldMount1Roll
	FieldMount1Pitch
	FieldMount1Yaw
	FieldMount2Roll
	FieldMount2Pitch
	FieldMount2Yaw
	FieldMountIndex
	FieldCameraFOV
)

const (
	// DefaultScale converts meters to the client's centimeter units.
	DefaultScale = 100

	// DefaultInvertDown flips the down axis: the controller's local frame
	// is down-positive, the client's rendering frame is up-positive.
	DefaultInvertDown = true
)

// PoseFields maps a vehicle snapshot onto fields [FieldNorth..FieldYaw] of
// the outbound line: local-frame offsets scaled and rounded to 3 decimal
// places, attitude converted to degrees and rounded to 3 decimal places.
func PoseFields(snap State, invertDown bool, scale float64) [6]float64 {
	down := snap.Local.Down * scale
	if invertDown {
		down = -down
	}
	return [6]float64{
		round(snap.Local.North*scale, 3),
		round(snap.Local.East*scale, 3),
		round(down, 3),
		round(Degrees(snap.Attitude.Roll), 3),
		round(Degrees(snap.Attitude.Pitch), 3),
		round(Degrees(snap.Attitude.Yaw), 3),
	}
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
