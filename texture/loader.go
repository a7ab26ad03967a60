package texture

import (
	"errors"
	"image"
	"sync"

	"github.com/richinsley/goreveal/logging"
)

var errLoaderClosed = errors.New("loader closed")

// RequestID identifies one load request. IDs increase monotonically, so a
// result whose ID is not the latest one asked for is stale.
type RequestID uint64

// Uploader moves decoded pixels to the GPU. It is only ever called from
// Loader.Poll, i.e. on the render thread.
type Uploader interface {
	Upload(path string, img *image.NRGBA) (Handle, error)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(path string, img *image.NRGBA) (Handle, error)

func (f UploaderFunc) Upload(path string, img *image.NRGBA) (Handle, error) { return f(path, img) }

// Result is a resolved request. Exactly one of Resource and Err is set.
type Result struct {
	ID       RequestID
	Path     string
	Resource *Resource
	Err      error
}

type decoded struct {
	id   RequestID
	path string
	img  *image.NRGBA
	err  error
}

// Loader decodes images on background goroutines and hands the results back
// to the render thread when it polls.
type Loader struct {
	uploader Uploader
	decode   func(path string) (*image.NRGBA, error)

	mu       sync.Mutex
	cond     *sync.Cond
	next     RequestID
	inflight int
	done     []decoded
	canceled map[RequestID]bool
	closed   bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDecoder replaces Decode, e.g. to read from an embedded filesystem.
func WithDecoder(fn func(path string) (*image.NRGBA, error)) LoaderOption {
	return func(l *Loader) { l.decode = fn }
}

// NewLoader returns a loader uploading through u.
func NewLoader(u Uploader, opts ...LoaderOption) *Loader {
	l := &Loader{
		uploader: u,
		decode:   Decode,
		canceled: make(map[RequestID]bool),
	}
	l.cond = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Request starts loading path and returns immediately.
func (l *Loader) Request(path string) RequestID {
	l.mu.Lock()
	l.next++
	id := l.next
	if l.closed {
		l.done = append(l.done, decoded{id: id, path: path, err: &AssetLoadError{Path: path, Err: errLoaderClosed}})
		l.mu.Unlock()
		return id
	}
	l.inflight++
	l.mu.Unlock()

	logging.Logger().Debug("Texture requested", "id", id, "path", path)
	go func() {
		img, err := l.decode(path)
		var ale *AssetLoadError
		if err != nil && !errors.As(err, &ale) {
			err = &AssetLoadError{Path: path, Err: err}
		}
		l.mu.Lock()
		l.done = append(l.done, decoded{id: id, path: path, img: img, err: err})
		l.inflight--
		l.cond.Broadcast()
		l.mu.Unlock()
	}()
	return id
}

// Cancel abandons a request. If it has not been uploaded yet it never will
// be, and Poll drops it silently.
func (l *Loader) Cancel(id RequestID) {
	l.mu.Lock()
	l.canceled[id] = true
	l.mu.Unlock()
}

// Poll collects finished requests, uploads the successful ones and returns
// them in completion order. It never blocks on a decode.
func (l *Loader) Poll() []Result {
	l.mu.Lock()
	batch := l.done
	l.done = nil
	canceled := make(map[RequestID]bool, len(batch))
	for _, d := range batch {
		if l.canceled[d.id] {
			canceled[d.id] = true
			delete(l.canceled, d.id)
		}
	}
	l.mu.Unlock()

	var results []Result
	for _, d := range batch {
		if canceled[d.id] {
			logging.Logger().Debug("Dropping canceled texture load", "id", d.id, "path", d.path)
			continue
		}
		if d.err != nil {
			results = append(results, Result{ID: d.id, Path: d.path, Err: d.err})
			continue
		}
		h, err := l.uploader.Upload(d.path, d.img)
		if err != nil {
			results = append(results, Result{ID: d.id, Path: d.path, Err: &AssetLoadError{Path: d.path, Err: err}})
			continue
		}
		b := d.img.Bounds()
		logging.Logger().Debug("Texture uploaded", "id", d.id, "path", d.path, "width", b.Dx(), "height", b.Dy())
		results = append(results, Result{ID: d.id, Path: d.path, Resource: NewResource(d.path, b.Dx(), b.Dy(), h)})
	}
	return results
}

// Wait blocks until no decode is in flight. Offscreen modes use it to load
// synchronously; the interactive loop never calls it.
func (l *Loader) Wait() {
	l.mu.Lock()
	for l.inflight > 0 {
		l.cond.Wait()
	}
	l.mu.Unlock()
}

// Pending returns the number of decodes still running.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight
}

// Close waits for running decodes and discards everything not yet polled.
// Later requests fail immediately.
func (l *Loader) Close() {
	l.Wait()
	l.mu.Lock()
	l.closed = true
	l.done = nil
	l.canceled = make(map[RequestID]bool)
	l.mu.Unlock()
}
