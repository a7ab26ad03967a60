// Package shader holds the reveal program: the GLSL vertex and fragment
// stages fed to the GPU, and a float32 reference of the same math used by
// the software rasterizer and the tests.
//
// The fragment stage samples the bound texture and multiplies its alpha by a
// reveal mask. The mask compares a per-pixel threshold, built from value
// noise drifting with time, against the reveal progress:
//
//	mask = smoothstep(t, t+edge, progress*(1+edge))
//
// Progress 0 hides every pixel, progress 1 shows the unmodified sample, and
// the mask never decreases as progress rises.
package shader
