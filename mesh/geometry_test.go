package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneCounts(t *testing.T) {
	g := DefaultPlane()
	assert.Equal(t, 33*33, g.VertexCount())
	assert.Len(t, g.UVs, 33*33*2)
	assert.Len(t, g.Indices, 32*32*6)
	for _, i := range g.Indices {
		require.Less(t, int(i), g.VertexCount())
	}
}

func TestPlaneBoundsAndUV(t *testing.T) {
	g := Plane(2, 1, 1, 1)
	require.Equal(t, 4, g.VertexCount())
	// top-left, top-right, bottom-left, bottom-right
	assert.Equal(t, []float32{-1, 0.5, 0, 1, 0.5, 0, -1, -0.5, 0, 1, -0.5, 0}, g.Positions)
	assert.Equal(t, []float32{0, 1, 1, 1, 0, 0, 1, 0}, g.UVs)
	assert.Equal(t, []uint32{0, 2, 1, 2, 3, 1}, g.Indices)

	for _, uv := range DefaultPlane().UVs {
		assert.GreaterOrEqual(t, uv, float32(0))
		assert.LessOrEqual(t, uv, float32(1))
	}
}

func TestPlaneClampsSegments(t *testing.T) {
	g := Plane(1, 1, 0, -3)
	assert.Equal(t, 4, g.VertexCount())
}
