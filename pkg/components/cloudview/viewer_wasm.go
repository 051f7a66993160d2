//go:build js && wasm

package cloudview

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/recera/mindcloud/pkg/frame"
	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/graph"
	"github.com/recera/mindcloud/pkg/loader"
	"github.com/recera/mindcloud/pkg/mindcloud"
	"github.com/recera/mindcloud/pkg/waves"
)

// Viewer is a mind cloud mounted on a canvas element.
type Viewer struct {
	opts   Options
	log    *zap.Logger
	doc    js.Value
	canvas *jsCanvas
	cloud  *mindcloud.Cloud
	client *loader.Client
	loop   *frame.Loop
	cancel context.CancelFunc
	unbind []func()
}

// Mount binds a cloud to the canvas named by opts, starts its frame loop and
// fetches the graph in the background.
func Mount(ctx context.Context, opts Options) (*Viewer, error) {
	opts = opts.withDefaults()
	doc := js.Global().Get("document")
	el := doc.Call("getElementById", opts.CanvasID)
	if !el.Truthy() {
		return nil, fmt.Errorf("cloudview: no element #%s", opts.CanvasID)
	}

	log := opts.Logger
	if log == nil {
		log = ConsoleLogger(zapcore.InfoLevel)
	}
	base := opts.BaseURL
	if base == "" {
		base = js.Global().Get("location").Get("origin").String()
	}

	v := &Viewer{
		opts:   opts,
		log:    log.Named("viewer"),
		doc:    doc,
		canvas: newJSCanvas(el),
		client: loader.New(base, loader.WithLogger(log)),
	}
	v.loop = frame.NewLoop(opts.FPS, func(now time.Time) bool {
		return v.cloud.Frame(v.canvas, now)
	}, frame.WithLogger(log))

	session := mindcloud.NewSession()
	if introPlayed() {
		session = mindcloud.PlayedSession()
	}
	var field *waves.Field
	if opts.Waves {
		field = waves.New(waves.Options{})
	}
	w, h := v.canvas.fit()
	v.cloud = mindcloud.New(mindcloud.Options{
		Width:    w,
		Height:   h,
		Taxonomy: opts.Taxonomy,
		Session:  session,
		Tracker:  v.client,
		Logger:   log,
		Waves:    field,
		FPS:      opts.FPS,
		Hooks: mindcloud.Hooks{
			OnOpenDetail:  v.openDetail,
			OnClosePanel:  v.closePanel,
			OnFocusChange: opts.OnFocusChange,
			OnInvalidate:  v.loop.Request,
		},
	})

	v.bind()
	v.loop.Start()
	v.loop.Request()

	ctx, v.cancel = context.WithCancel(ctx)
	go func() {
		if err := v.cloud.Load(ctx, v.client); err != nil {
			return
		}
		markIntroPlayed()
	}()
	return v, nil
}

// Cloud returns the mounted cloud.
func (v *Viewer) Cloud() *mindcloud.Cloud { return v.cloud }

// Close stops the frame loop and removes every event listener.
func (v *Viewer) Close() {
	v.cancel()
	v.loop.Stop()
	for _, fn := range v.unbind {
		fn()
	}
	v.unbind = nil
}

func (v *Viewer) on(target js.Value, event string, passive bool, fn func(ev js.Value)) {
	if !target.Truthy() {
		return
	}
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		fn(args[0])
		return nil
	})
	target.Call("addEventListener", event, f, map[string]any{"passive": passive})
	v.unbind = append(v.unbind, func() {
		target.Call("removeEventListener", event, f)
		f.Release()
	})
}

func offset(ev js.Value) geom.Point {
	return geom.Pt(ev.Get("offsetX").Float(), ev.Get("offsetY").Float())
}

// touches returns the touch points relative to the canvas.
func (v *Viewer) touches(list js.Value) []geom.Point {
	rect := v.canvas.el.Call("getBoundingClientRect")
	left, top := rect.Get("left").Float(), rect.Get("top").Float()
	n := list.Get("length").Int()
	pts := make([]geom.Point, 0, n)
	for i := 0; i < n; i++ {
		t := list.Index(i)
		pts = append(pts, geom.Pt(t.Get("clientX").Float()-left, t.Get("clientY").Float()-top))
	}
	return pts
}

func (v *Viewer) bind() {
	el := v.canvas.el
	win := js.Global().Get("window")

	v.on(el, "mousedown", true, func(ev js.Value) { v.cloud.PointerDown(offset(ev)) })
	v.on(el, "mousemove", true, func(ev js.Value) {
		v.cloud.PointerMove(offset(ev))
		v.updateCursor()
	})
	v.on(el, "mouseup", true, func(ev js.Value) { v.cloud.PointerUp(offset(ev)) })
	v.on(el, "mouseleave", true, func(js.Value) { v.cloud.PointerLeave() })
	v.on(el, "wheel", false, func(ev js.Value) {
		ev.Call("preventDefault")
		v.cloud.Wheel(offset(ev), ev.Get("deltaY").Float())
	})

	v.on(el, "touchstart", false, func(ev js.Value) {
		ev.Call("preventDefault")
		v.cloud.TouchStart(v.touches(ev.Get("touches")))
	})
	v.on(el, "touchmove", false, func(ev js.Value) {
		ev.Call("preventDefault")
		v.cloud.TouchMove(v.touches(ev.Get("touches")))
	})
	touchEnd := func(ev js.Value) { v.cloud.TouchEnd(v.touches(ev.Get("touches"))) }
	v.on(el, "touchend", true, touchEnd)
	v.on(el, "touchcancel", true, touchEnd)

	v.on(win, "keydown", false, func(ev js.Value) {
		if v.cloud.Key(ev.Get("key").String()) {
			ev.Call("preventDefault")
		}
	})
	v.observeSize(win)
	v.on(v.doc.Call("getElementById", v.opts.DetailID+"-close"), "click", true, func(js.Value) {
		v.cloud.ClosePanel()
	})
}

// observeSize refits the canvas whenever its box changes: window resizes,
// layout shifts and the detail panel narrowing it. Browsers without
// ResizeObserver fall back to window resize events.
func (v *Viewer) observeSize(win js.Value) {
	refit := func() { v.cloud.Resize(v.canvas.fit()) }
	ctor := js.Global().Get("ResizeObserver")
	if !ctor.Truthy() {
		v.on(win, "resize", true, func(js.Value) { refit() })
		return
	}
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		refit()
		return nil
	})
	obs := ctor.New(f)
	obs.Call("observe", v.canvas.el)
	v.unbind = append(v.unbind, func() {
		obs.Call("disconnect")
		f.Release()
	})
}

// setPanelOpen toggles the detail panel and marks the body so the page's
// stylesheet can narrow the canvas beside it.
func (v *Viewer) setPanelOpen(panel js.Value, open bool) {
	method := "remove"
	if open {
		method = "add"
	}
	panel.Get("classList").Call(method, "open")
	if body := v.doc.Get("body"); body.Truthy() {
		body.Get("classList").Call(method, v.opts.DetailID+"-open")
	}
}

func (v *Viewer) updateCursor() {
	cursor := "default"
	if v.cloud.Hovered() != "" {
		cursor = "pointer"
	}
	v.canvas.el.Get("style").Set("cursor", cursor)
}

func (v *Viewer) openDetail(n *graph.Node) {
	if v.opts.OnOpenDetail != nil {
		v.opts.OnOpenDetail(n)
		return
	}
	panel := v.doc.Call("getElementById", v.opts.DetailID)
	body := v.doc.Call("getElementById", v.opts.DetailID+"-body")
	if !panel.Truthy() || !body.Truthy() {
		return
	}
	body.Set("textContent", "")
	v.fillDetail(body, n)
	v.setPanelOpen(panel, true)

	if n.Post != nil && n.Post.Excerpt == "" && n.Slug != "" {
		go v.fetchExcerpt(body, n)
	}
}

// fetchExcerpt fills in a post's excerpt when the graph payload left it out.
func (v *Viewer) fetchExcerpt(body js.Value, n *graph.Node) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	post, err := v.client.FetchPost(ctx, n.Slug)
	if err != nil {
		v.log.Debug("post detail", zap.String("slug", n.Slug), zap.Error(err))
		return
	}
	if d := v.cloud.Detail(); d == nil || d.ID != n.ID || post.Excerpt == "" {
		return
	}
	v.el(body, "p", "excerpt", post.Excerpt)
}

func (v *Viewer) fillDetail(body js.Value, n *graph.Node) {
	v.el(body, "h2", "title", n.Label)
	switch {
	case n.Project != nil:
		p := n.Project
		if p.Description != "" {
			v.el(body, "p", "description", p.Description)
		}
		meta := []string{}
		if p.Language != "" {
			meta = append(meta, p.Language)
		}
		meta = append(meta, fmt.Sprintf("★ %d", p.Stars), fmt.Sprintf("%d forks", p.Forks))
		v.el(body, "p", "meta", strings.Join(meta, " · "))
		if len(p.Technologies) > 0 {
			v.el(body, "p", "tech", strings.Join(p.Technologies, ", "))
		}
		v.link(body, p.GithubURL, "GitHub")
		v.link(body, p.LiveURL, "Live site")
	case n.Post != nil:
		p := n.Post
		if p.Excerpt != "" {
			v.el(body, "p", "excerpt", p.Excerpt)
		}
		meta := []string{}
		if p.CategoryName != "" {
			meta = append(meta, p.CategoryName)
		}
		if p.PublishedAt != nil {
			meta = append(meta, p.PublishedAt.Format("Jan 2, 2006"))
		}
		meta = append(meta, fmt.Sprintf("%d views", p.ViewCount))
		v.el(body, "p", "meta", strings.Join(meta, " · "))
		if n.Slug != "" {
			v.link(body, "/blog/"+n.Slug, "Read post")
		}
	}
}

// el appends a text element; textContent keeps payload text from being
// parsed as HTML.
func (v *Viewer) el(parent js.Value, tag, class, text string) js.Value {
	e := v.doc.Call("createElement", tag)
	e.Set("className", class)
	e.Set("textContent", text)
	parent.Call("appendChild", e)
	return e
}

func (v *Viewer) link(parent js.Value, href, text string) {
	if href == "" || !(strings.HasPrefix(href, "/") || strings.HasPrefix(href, "https://") || strings.HasPrefix(href, "http://")) {
		return
	}
	a := v.el(parent, "a", "link", text)
	a.Call("setAttribute", "href", href)
	if !strings.HasPrefix(href, "/") {
		a.Call("setAttribute", "target", "_blank")
		a.Call("setAttribute", "rel", "noopener")
	}
}

func (v *Viewer) closePanel() {
	if v.opts.OnClosePanel != nil {
		v.opts.OnClosePanel()
		return
	}
	if panel := v.doc.Call("getElementById", v.opts.DetailID); panel.Truthy() {
		v.setPanelOpen(panel, false)
	}
}

func introPlayed() bool {
	s := js.Global().Get("sessionStorage")
	return s.Truthy() && s.Call("getItem", IntroKey).String() == "1"
}

func markIntroPlayed() {
	if s := js.Global().Get("sessionStorage"); s.Truthy() {
		s.Call("setItem", IntroKey, "1")
	}
}
