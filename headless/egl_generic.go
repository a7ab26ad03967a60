//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/goreveal/graphics"
)

// New fails on platforms without EGL device support.
func New(width, height int) (graphics.Context, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}
