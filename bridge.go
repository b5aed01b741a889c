// Package flightmanual publishes a vehicle's pose to a visualization
// client: it polls the flight controller at a fixed rate, converts the
// snapshot to the client's wire fields and hands them to the relay. The
// relay owns the client connection; the publisher never waits on it.
package flightmanual

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/igsxf22/flight-manual/relay"
)

// DefaultRateHz is the default publish rate. The relay's loop interval
// must stay shorter than this period or it becomes the effective rate cap.
const DefaultRateHz = 30

// to allow testing
var originRetryDelay = 500 * time.Millisecond

// Recorder persists published snapshots. Record must not block the
// publish cycle for long; a failed record is logged, not fatal.
type Recorder interface {
	Record(t time.Time, snap State) error
}

// Bridge polls a Vehicle and keeps the relay's outbound message current,
// connected client or not.
type Bridge struct {
	Vehicle Vehicle
	Relay   *relay.Relay

	// Recorder, when set, receives every published snapshot.
	Recorder Recorder

	// OnPublish, when set, is called with every published snapshot.
	OnPublish func(State)

	RateHz     float64
	InvertDown bool
	Scale      float64

	// Mount orientations (degrees), selector and camera field-of-view for
	// fields [FieldMount1Roll..FieldCameraFOV]. The vehicle snapshot does
	// not carry these; they are owned by whoever configures the bridge.
	Mounts     [2][3]float64
	MountIndex float64
	CameraFOV  float64
}

func NewBridge(vehicle Vehicle, r *relay.Relay) *Bridge {
	return &Bridge{
		Vehicle:    vehicle,
		Relay:      r,
		RateHz:     DefaultRateHz,
		InvertDown: DefaultInvertDown,
		Scale:      DefaultScale,
		CameraFOV:  90,
	}
}

// Run blocks, polling the vehicle at RateHz and updating the relay until
// ctx is canceled or a vehicle read fails. A read failure is terminal: the
// bridge never synthesizes telemetry.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.waitForOrigin(ctx); err != nil {
		return err
	}

	limiter := time.Tick(time.Duration(float64(time.Second) / b.RateHz))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-limiter:
		}

		snap, err := b.Vehicle.State()
		if err != nil {
			return errors.Wrap(err, "unable to read vehicle state")
		}

		b.Relay.SetOutbound(b.fields(snap))

		if b.Recorder != nil {
			if err := b.Recorder.Record(time.Now(), snap); err != nil {
				log.WithError(err).Warn("unable to record snapshot")
			}
		}
		if b.OnPublish != nil {
			b.OnPublish(snap)
		}
	}
}

// waitForOrigin polls until the controller reports a locked local-frame
// origin. Offsets polled before the lock are degenerate zeros, so this is
// a not-ready condition to wait out, not an error.
func (b *Bridge) waitForOrigin(ctx context.Context) error {
	for {
		snap, err := b.Vehicle.State()
		if err != nil {
			return errors.Wrap(err, "unable to read vehicle state")
		}
		if snap.Local.OK {
			log.WithField("mode", snap.Mode).Info("local-frame origin locked, publishing")
			return nil
		}
		log.Debug("waiting for local-frame origin")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(originRetryDelay):
		}
	}
}

func (b *Bridge) fields(snap State) []float64 {
	f := make([]float64, FieldCameraFOV+1)
	pose := PoseFields(snap, b.InvertDown, b.Scale)
	copy(f[FieldNorth:], pose[:])
	copy(f[FieldMount1Roll:], b.Mounts[0][:])
	copy(f[FieldMount2Roll:], b.Mounts[1][:])
	f[FieldMountIndex] = b.MountIndex
	f[FieldCameraFOV] = b.CameraFOV
	return f
}
