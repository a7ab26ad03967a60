package mesh

// Geometry is an indexed triangle mesh. Positions are xyz triples, UVs are
// uv pairs in [0,1].
type Geometry struct {
	Positions []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Plane builds a width x height plane centered on the origin in the XY
// plane, subdivided into segX x segY quads. uv (0,0) is the bottom-left
// corner.
func Plane(width, height float32, segX, segY int) Geometry {
	segX = max(segX, 1)
	segY = max(segY, 1)
	cols, rows := segX+1, segY+1
	g := Geometry{
		Positions: make([]float32, 0, cols*rows*3),
		UVs:       make([]float32, 0, cols*rows*2),
		Indices:   make([]uint32, 0, segX*segY*6),
	}
	for iy := 0; iy < rows; iy++ {
		v := float32(iy) / float32(segY)
		y := height/2 - v*height
		for ix := 0; ix < cols; ix++ {
			u := float32(ix) / float32(segX)
			x := u*width - width/2
			g.Positions = append(g.Positions, x, y, 0)
			g.UVs = append(g.UVs, u, 1-v)
		}
	}
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := uint32(iy*cols + ix)
			b := uint32((iy+1)*cols + ix)
			c := b + 1
			d := a + 1
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// DefaultPlane is the unit plane with 32x32 segments.
func DefaultPlane() Geometry {
	return Plane(1, 1, 32, 32)
}
