package flightmanual

import (
	"bufio"
	"context"
	"math"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igsxf22/flight-manual/relay"
)

// stubVehicle replays a fixed snapshot sequence; the last snapshot repeats.
// Once the sequence is exhausted, err (if set) is returned instead.
type stubVehicle struct {
	mu    sync.Mutex
	snaps []State
	err   error
	calls int
}

func (v *stubVehicle) State() (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.calls > len(v.snaps) && v.err != nil {
		return State{}, v.err
	}
	i := v.calls - 1
	if i >= len(v.snaps) {
		i = len(v.snaps) - 1
	}
	return v.snaps[i], nil
}

func (v *stubVehicle) stateCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func (v *stubVehicle) SetMode(string) error       { return nil }
func (v *stubVehicle) Arm(bool) error             { return nil }
func (v *stubVehicle) Armed() (bool, error)       { return false, nil }
func (v *stubVehicle) Takeoff(float64) error      { return nil }
func (v *stubVehicle) GoTo(_, _, _ float64) error { return nil }
func (v *stubVehicle) Close() error               { return nil }

func openTestRelay(t *testing.T) *relay.Relay {
	r, err := relay.Open(&relay.Config{
		Host:           "127.0.0.1",
		Port:           0,
		LoopIntervalMs: 1,
		Newline:        true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func parseFields(t *testing.T, line string) []float64 {
	parts := strings.Fields(line)
	fields := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		require.NoError(t, err)
		fields[i] = f
	}
	return fields
}

func TestBridgeWaitsForOrigin(t *testing.T) {
	prevDelay := originRetryDelay
	originRetryDelay = time.Millisecond
	defer func() { originRetryDelay = prevDelay }()

	notReady := State{}
	ready := State{
		Local:    LocalPosition{North: 1, East: 2, Down: 3, OK: true},
		Attitude: Attitude{Yaw: math.Pi / 2},
	}
	vehicle := &stubVehicle{snaps: []State{notReady, notReady, ready}}

	rly := openTestRelay(t)
	bridge := NewBridge(vehicle, rly)
	bridge.RateHz = 200

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = bridge.Run(ctx)
	}()

	conn, err := net.Dial("tcp", rly.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	scanner := bufio.NewScanner(conn)
	var fields []float64
	for scanner.Scan() {
		fields = parseFields(t, scanner.Text())
		if fields[FieldNorth] != 0 {
			break
		}
	}
	require.NoError(t, scanner.Err())

	assert.Len(t, fields, relay.DefaultFieldCount)
	assert.Equal(t, 100.0, fields[FieldNorth])
	assert.Equal(t, 200.0, fields[FieldEast])
	assert.Equal(t, -300.0, fields[FieldDown])
	assert.Equal(t, 90.0, fields[FieldYaw])
	assert.Equal(t, 90.0, fields[FieldCameraFOV])
	assert.GreaterOrEqual(t, vehicle.stateCalls(), 3, "origin wait polls before publishing")
}

func TestBridgeVehicleReadFailureIsTerminal(t *testing.T) {
	ready := State{Local: LocalPosition{OK: true}}
	vehicle := &stubVehicle{
		snaps: []State{ready},
		err:   errors.New("link down"),
	}

	rly := openTestRelay(t)
	bridge := NewBridge(vehicle, rly)
	bridge.RateHz = 500

	err := bridge.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read vehicle state")
	assert.Contains(t, err.Error(), "link down")
}

func TestBridgeStopsOnContextCancel(t *testing.T) {
	vehicle := &stubVehicle{snaps: []State{{Local: LocalPosition{OK: true}}}}

	rly := openTestRelay(t)
	bridge := NewBridge(vehicle, rly)
	bridge.RateHz = 500

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- bridge.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop on cancellation")
	}
}

type countingRecorder struct {
	mu    sync.Mutex
	snaps []State
}

func (r *countingRecorder) Record(_ time.Time, snap State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	return nil
}

func (r *countingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func TestBridgeRecordsSnapshots(t *testing.T) {
	vehicle := &stubVehicle{snaps: []State{{Mode: "GUIDED", Local: LocalPosition{OK: true}}}}
	rec := &countingRecorder{}

	rly := openTestRelay(t)
	bridge := NewBridge(vehicle, rly)
	bridge.RateHz = 500
	bridge.Recorder = rec

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = bridge.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return rec.count() >= 3 },
		time.Second, time.Millisecond)
}
