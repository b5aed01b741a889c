// Package relay bridges a telemetry producer to a single visualization
// client over TCP. The producer overwrites an outbound slot at its own
// cadence; the relay's loop forwards the latest value to whichever client
// is currently connected and survives client disconnects on its own.
package relay

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// readTimeout bounds the per-cycle inbound read. The client is not
	// required to send anything, so this is effectively a non-blocking
	// poll rather than a liveness check.
	readTimeout = time.Millisecond

	acceptRetryDelay = time.Second
)

// Relay owns a listening socket and serves one client at a time. The
// outbound and inbound slots are latest-value-only: writes overwrite, reads
// see the most recent value, nothing is queued.
type Relay struct {
	cfg *Config
	ln  net.Listener

	outbound  atomic.Pointer[Message]
	inbound   atomic.Pointer[[]byte]
	connected atomic.Bool

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Open binds cfg's address, starts the communication loop in the
// background and returns immediately. A nil cfg uses all defaults.
func Open(cfg *Config) (*Relay, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg = cfg.withDefaults()

	ln, err := net.Listen("tcp", cfg.addr())
	if err != nil {
		return nil, errors.Wrapf(err, "unable to bind %s", cfg.addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Relay{
		cfg:    cfg,
		ln:     ln,
		cancel: cancel,
	}
	r.wg.Add(1)
	go r.loop(ctx)

	log.WithField("addr", ln.Addr()).Info("relay listening")
	return r, nil
}

// Addr is the bound listen address.
func (r *Relay) Addr() net.Addr {
	return r.ln.Addr()
}

// FieldCount is the fixed width of every outbound line.
func (r *Relay) FieldCount() int {
	return r.cfg.FieldCount
}

// Connected reports whether a client is currently attached. It is a
// snapshot and may lag the socket state by one loop iteration.
func (r *Relay) Connected() bool {
	return r.connected.Load()
}

// SetOutbound replaces the outbound message. It never blocks and never
// fails; an unsent previous value is simply overwritten. Fields beyond the
// configured width are dropped, missing fields are zero.
func (r *Relay) SetOutbound(fields []float64) {
	m := NewMessage(r.cfg.FieldCount)
	copy(m, fields)
	r.outbound.Store(&m)
}

// Inbound returns the most recently received client payload, or nil if
// nothing has arrived since the last read cycle or disconnect. The bytes
// are opaque to the relay.
func (r *Relay) Inbound() []byte {
	if b := r.inbound.Load(); b != nil {
		return *b
	}
	return nil
}

// Close stops the loop and releases the listening and client sockets. Safe
// to call more than once.
func (r *Relay) Close() error {
	r.closeOnce.Do(func() {
		r.cancel()
		r.closeErr = r.ln.Close()
		r.wg.Wait()
	})
	return r.closeErr
}

func (r *Relay) loop(ctx context.Context) {
	defer r.wg.Done()
	for {
		conn, err := r.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("accept failed")
			time.Sleep(acceptRetryDelay)
			continue
		}

		log.WithField("client", conn.RemoteAddr()).Info("client connected")
		r.connected.Store(true)
		r.serve(ctx, conn)
		r.connected.Store(false)
		r.inbound.Store(nil)

		if ctx.Err() != nil {
			return
		}
	}
}

// serve runs the per-connection exchange until the client goes away or the
// relay is closed. Read errors only mean a quiet client; a failed write is
// the one reliable signal that the peer is gone, and is the sole
// disconnect trigger.
func (r *Relay) serve(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			log.WithError(err).Warn("unable to close client connection")
		}
	}()

	buf := make([]byte, r.cfg.BufferSize)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			log.WithError(err).Info("client disconnected")
			return
		}
		n, err := conn.Read(buf)
		switch {
		case err != nil:
			log.WithError(err).Debug("no inbound data this cycle")
			r.inbound.Store(nil)
		case n > 0:
			in := make([]byte, n)
			copy(in, buf[:n])
			r.inbound.Store(&in)
		}

		if _, err := conn.Write(r.encodeOutbound()); err != nil {
			log.WithError(err).Info("client disconnected")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.cfg.loopInterval()):
		}
	}
}

func (r *Relay) encodeOutbound() []byte {
	m := r.outbound.Load()
	if m == nil {
		empty := NewMessage(r.cfg.FieldCount)
		return empty.Encode(r.cfg.Newline)
	}
	return m.Encode(r.cfg.Newline)
}
