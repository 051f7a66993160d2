//go:build !js || !wasm

package cloudview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMount_Unsupported(t *testing.T) {
	v, err := Mount(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, v)
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, "mindcloud", o.CanvasID)
	assert.Equal(t, "detail", o.DetailID)
	assert.Equal(t, 60, o.FPS)

	o = Options{CanvasID: "c", FPS: 30}.withDefaults()
	assert.Equal(t, "c", o.CanvasID)
	assert.Equal(t, 30, o.FPS)
}
