//go:build js && wasm

package frame

import "syscall/js"

// driver holds the requestAnimationFrame callback. At most one frame is
// scheduled at a time; the fps given to NewLoop is ignored because the
// browser paces callbacks to the display.
type driver struct {
	cb        js.Func
	id        js.Value
	scheduled bool
}

func (lp *Loop) initDriver() {
	lp.drv.cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		lp.onFrame()
		return nil
	})
}

func (lp *Loop) kick() {
	lp.mu.Lock()
	lp.scheduleLocked()
	lp.mu.Unlock()
}

func (lp *Loop) start() {
	lp.mu.Lock()
	if lp.dirty.Load() {
		lp.scheduleLocked()
	}
	lp.mu.Unlock()
}

func (lp *Loop) halt() {
	lp.mu.Lock()
	if lp.drv.scheduled {
		js.Global().Call("cancelAnimationFrame", lp.drv.id)
		lp.drv.scheduled = false
	}
	lp.mu.Unlock()
}

func (lp *Loop) scheduleLocked() {
	if !lp.running.Load() || lp.drv.scheduled {
		return
	}
	lp.drv.scheduled = true
	lp.drv.id = js.Global().Call("requestAnimationFrame", lp.drv.cb)
}

// onFrame draws one frame and re-arms while the tick reports more work or a
// request arrived meanwhile.
func (lp *Loop) onFrame() {
	lp.mu.Lock()
	lp.drv.scheduled = false
	lp.mu.Unlock()
	if !lp.running.Load() {
		return
	}
	lp.dirty.Store(false)
	if more := lp.frame(); more || lp.dirty.Load() {
		lp.kick()
	}
}
