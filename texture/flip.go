package texture

import "image"

// FlipVertical returns a copy of src with its rows reversed. GL textures
// start at the bottom row, decoded images at the top.
func FlipVertical(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	flipped := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	height := b.Dy()
	rowSize := b.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[src.PixOffset(b.Min.X, b.Max.Y-1-y):]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}
