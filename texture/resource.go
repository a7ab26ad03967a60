// Package texture turns image files into GPU textures for the reveal quad.
// Decoding runs off the render thread; uploading and every result hand-off
// happen on it, through Loader.Poll.
package texture

import "sync"

// Handle is a GPU-resident image. Release frees it.
type Handle interface {
	Release()
}

// Resource is a loaded texture and the native pixel size of its image.
// It is immutable; changing the image means building a new Resource.
type Resource struct {
	Path   string
	Width  int
	Height int
	Handle Handle

	placeholder bool
	once        sync.Once
}

// NewResource wraps an uploaded handle.
func NewResource(path string, width, height int, h Handle) *Resource {
	return &Resource{Path: path, Width: width, Height: height, Handle: h}
}

// Placeholder returns a 1x1 resource with no GPU storage, bound while the
// first real texture is still loading.
func Placeholder() *Resource {
	return &Resource{Width: 1, Height: 1, placeholder: true}
}

// IsPlaceholder reports whether r stands in for a texture still loading.
func (r *Resource) IsPlaceholder() bool {
	return r == nil || r.placeholder
}

// Release frees the GPU handle. Calling it more than once is harmless.
func (r *Resource) Release() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		if r.Handle != nil {
			r.Handle.Release()
		}
	})
}
