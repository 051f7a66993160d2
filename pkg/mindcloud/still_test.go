package mindcloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/mindcloud/pkg/geom"
	"github.com/recera/mindcloud/pkg/render"
	"github.com/recera/mindcloud/pkg/waves"
)

func lastTransform(t *testing.T, rec *render.Recorder) geom.Transform {
	t.Helper()
	ops := rec.Filter("transform")
	require.NotEmpty(t, ops)
	return ops[len(ops)-1].Transform
}

func TestStill_Overview(t *testing.T) {
	rec := render.NewRecorder(1000, 800)
	require.NoError(t, Still(rec, payload(), Options{Width: 1000, Height: 800}, ""))

	assert.Equal(t, 1.0, lastTransform(t, rec).K)
	assert.NotEmpty(t, rec.Filter("circle"))
}

func TestStill_Focused(t *testing.T) {
	rec := render.NewRecorder(1000, 800)
	require.NoError(t, Still(rec, payload(), Options{Width: 1000, Height: 800}, "software"))
	assert.Equal(t, geom.FocusZoom, lastTransform(t, rec).K)

	assert.ErrorIs(t, Still(rec, payload(), Options{}, "ghost"), ErrUnknownNode)
}

func TestStill_Deterministic(t *testing.T) {
	a := render.NewSVG(640, 480)
	b := render.NewSVG(640, 480)
	opts := Options{Width: 640, Height: 480, Waves: waves.New(waves.Options{})}
	require.NoError(t, Still(a, payload(), opts, ""))
	require.NoError(t, Still(b, payload(), opts, ""))
	assert.Equal(t, a.String(), b.String())
}
