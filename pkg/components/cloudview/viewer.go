//go:build !js || !wasm

package cloudview

import (
	"context"

	"github.com/recera/mindcloud/pkg/mindcloud"
)

// Viewer is stubbed out for non-WASM builds.
type Viewer struct{}

// Mount always fails outside the browser.
func Mount(_ context.Context, _ Options) (*Viewer, error) {
	return nil, ErrUnsupported
}

// Cloud returns nil.
func (v *Viewer) Cloud() *mindcloud.Cloud { return nil }

// Close does nothing.
func (v *Viewer) Close() {}
