package encoder

import (
	"fmt"
	"time"

	"github.com/richinsley/goreveal/logging"
)

// Source renders one frame at a simulated time. dt is the time since the
// previous frame. The returned pixels are owned by the caller.
type Source interface {
	RenderFrame(elapsed float64, dt time.Duration) ([]byte, error)
}

// FrameCount returns the number of frames in seconds of video at fps.
func FrameCount(seconds float64, fps int) int {
	if seconds <= 0 || fps <= 0 {
		return 0
	}
	return int(seconds * float64(fps))
}

// Record renders frames frames at a fixed rate and feeds them to enc, then
// closes it. Time is simulated, so the result does not depend on how fast
// frames render.
func Record(enc *Encoder, src Source, frames int) error {
	fps := enc.cfg.FPS
	frameDuration := time.Second / time.Duration(fps)
	logging.Logger().Info("Starting in record mode", "frames", frames, "fps", fps)

	var renderErr error
	for i := 0; i < frames; i++ {
		var dt time.Duration
		if i > 0 {
			dt = frameDuration
		}
		elapsed := float64(i) / float64(fps)
		pixels, err := src.RenderFrame(elapsed, dt)
		if err != nil {
			renderErr = fmt.Errorf("error rendering frame %d: %w", i, err)
			break
		}
		if err := enc.WriteFrame(&Frame{Pixels: pixels, PTS: int64(i)}); err != nil {
			renderErr = err
			break
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return renderErr
}
