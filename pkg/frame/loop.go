// Package frame runs the redraw loop. Redraw requests are coalesced: any
// number of Request calls between two frames produce one frame, and the loop
// keeps ticking for as long as the tick function reports more work.
//
// Native builds pace frames with a ticker goroutine. In the browser each
// frame is a requestAnimationFrame callback, so frames follow the display's
// refresh and pause in hidden tabs.
package frame

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TickFunc draws one frame and reports whether another frame is needed
// (an animation is still running).
type TickFunc func(now time.Time) (more bool)

// Loop schedules frames while there is work and sleeps
// otherwise.
type Loop struct {
	interval time.Duration
	tick     TickFunc
	log      *zap.Logger
	now      func() time.Time

	dirty   atomic.Bool
	running atomic.Bool

	mu  sync.Mutex
	drv driver

	frames atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for recovered tick panics.
func WithLogger(l *zap.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(lp *Loop) {
		if now != nil {
			lp.now = now
		}
	}
}

// NewLoop returns a stopped loop running tick at up to fps frames per second.
func NewLoop(fps int, tick TickFunc, opts ...Option) *Loop {
	if fps <= 0 {
		fps = 60
	}
	lp := &Loop{
		interval: time.Second / time.Duration(fps),
		tick:     tick,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(lp)
	}
	lp.initDriver()
	return lp
}

// Request asks for a frame. It never blocks; requests made before Start are
// served once the loop starts.
func (lp *Loop) Request() {
	if lp.dirty.CompareAndSwap(false, true) {
		lp.kick()
	}
}

// Start begins serving frame requests. Starting a running loop does nothing.
func (lp *Loop) Start() {
	if lp.running.CompareAndSwap(false, true) {
		lp.start()
	}
}

// Stop halts the loop. Natively it waits for the current frame to finish.
func (lp *Loop) Stop() {
	if lp.running.CompareAndSwap(true, false) {
		lp.halt()
	}
}

// Running reports whether the loop is serving requests.
func (lp *Loop) Running() bool { return lp.running.Load() }

// Frames returns how many frames have been drawn.
func (lp *Loop) Frames() uint64 { return lp.frames.Load() }

func (lp *Loop) frame() (more bool) {
	defer func() {
		if r := recover(); r != nil {
			lp.log.Error("frame panic",
				zap.String("panic", fmt.Sprint(r)),
				zap.ByteString("stack", debug.Stack()))
			more = false
		}
	}()
	lp.frames.Add(1)
	return lp.tick(lp.now())
}
