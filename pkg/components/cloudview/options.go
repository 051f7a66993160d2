// Package cloudview mounts a mind cloud on an HTML canvas. It works only in
// js/wasm builds; elsewhere Mount returns ErrUnsupported.
package cloudview

import (
	"errors"

	"go.uber.org/zap"

	"github.com/recera/mindcloud/pkg/graph"
)

// ErrUnsupported is returned by Mount outside the browser.
var ErrUnsupported = errors.New("cloudview: requires GOOS=js GOARCH=wasm")

// IntroKey is the sessionStorage key recording that the entrance animation
// already played in this browser session.
const IntroKey = "mindcloud:intro-played"

// Options configure a mounted viewer.
type Options struct {
	// CanvasID is the id of the <canvas> element to draw on.
	CanvasID string
	// DetailID is the id of the detail panel. Its children "<id>-body" and
	// "<id>-close" hold the content and the close button. While it is open
	// the body carries the class "<id>-open".
	DetailID string
	// BaseURL is the API origin; empty means the page origin.
	BaseURL  string
	Waves    bool
	FPS      int
	Taxonomy *graph.Taxonomy
	Logger   *zap.Logger

	// OnOpenDetail replaces the built-in detail panel.
	OnOpenDetail  func(n *graph.Node)
	OnClosePanel  func()
	OnFocusChange func(id string)
}

func (o Options) withDefaults() Options {
	if o.CanvasID == "" {
		o.CanvasID = "mindcloud"
	}
	if o.DetailID == "" {
		o.DetailID = "detail"
	}
	if o.FPS <= 0 {
		o.FPS = 60
	}
	return o
}
