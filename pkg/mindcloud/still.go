package mindcloud

import (
	"time"

	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/motion"
	"github.com/recera/mindcloud/pkg/render"
)

var stillEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Still draws one settled frame of p onto canvas: no entrance animation,
// and with focus (if not empty) already reached. A zero Seed is fixed so
// the same payload always draws the same picture.
func Still(canvas render.Canvas, p *graph.Payload, opts Options, focus string) error {
	opts.Session = PlayedSession()
	opts.Hooks = Hooks{}
	opts.Tracker = nil
	opts.Now = func() time.Time { return stillEpoch }
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	c := New(opts)
	if err := c.SetPayload(p); err != nil {
		return err
	}
	if focus != "" {
		if err := c.Focus(focus); err != nil {
			return err
		}
	}
	c.Frame(canvas, stillEpoch.Add(motion.ExplosionDuration))
	return nil
}
