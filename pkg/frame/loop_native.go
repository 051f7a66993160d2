//go:build !js || !wasm

package frame

import "time"

// driver is the ticker goroutine's state.
type driver struct {
	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func (lp *Loop) initDriver() {
	lp.drv.wake = make(chan struct{}, 1)
}

func (lp *Loop) kick() {
	select {
	case lp.drv.wake <- struct{}{}:
	default:
	}
}

func (lp *Loop) start() {
	lp.mu.Lock()
	lp.drv.stop = make(chan struct{})
	lp.drv.done = make(chan struct{})
	stop, done := lp.drv.stop, lp.drv.done
	lp.mu.Unlock()
	go lp.run(stop, done)
}

func (lp *Loop) halt() {
	lp.mu.Lock()
	stop, done := lp.drv.stop, lp.drv.done
	lp.mu.Unlock()
	close(stop)
	<-done
}

func (lp *Loop) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(lp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-lp.drv.wake:
		}
		// Draw until idle.
		for {
			lp.dirty.Store(false)
			more := lp.frame()
			if !more && !lp.dirty.Load() {
				break
			}
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}
}
