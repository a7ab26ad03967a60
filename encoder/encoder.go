// Package encoder pipes raw RGBA frames into an ffmpeg process.
package encoder

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/richinsley/goreveal/logging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var (
	ErrClosed       = errors.New("encoder closed")
	errFFmpegExited = errors.New("ffmpeg exited")
)

// Frame is one rendered video frame: width*height*4 bytes of RGBA, rows
// top to bottom unless the encoder was configured with FlipVertical.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Config describes the output video.
type Config struct {
	Width, Height int
	FPS           int
	OutputFile    string
	FFmpegPath    string
	Bitrate       string
	Codec         string // "h264" or "hevc"
	FlipVertical  bool   // set for bottom-up GL readbacks
}

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid video size %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", c.FPS)
	}
	if c.OutputFile == "" {
		return errors.New("no output file")
	}
	switch c.Codec {
	case "", "h264", "hevc":
	default:
		return fmt.Errorf("unsupported codec %q", c.Codec)
	}
	return nil
}

func (c Config) frameSize() int { return c.Width * c.Height * 4 }

// Args returns the ffmpeg input and output arguments for cfg.
func Args(cfg Config) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"r":       strconv.Itoa(cfg.FPS),
	}

	outputArgs = ffmpeg.KwArgs{
		"pix_fmt": "yuv420p",
	}
	if cfg.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.EqualFold(filepath.Ext(cfg.OutputFile), ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	if cfg.Bitrate != "" {
		outputArgs["b:v"] = cfg.Bitrate
	}
	if cfg.FlipVertical {
		outputArgs["vf"] = "vflip"
	}
	return
}

// Command builds the ffmpeg invocation reading frames from r.
func Command(cfg Config, r io.Reader) *exec.Cmd {
	inputArgs, outputArgs := Args(cfg)
	stream := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.OutputFile, outputArgs).
		OverWriteOutput().WithInput(r).ErrorToStdOut()
	if cfg.FFmpegPath != "" {
		stream = stream.SetFfmpegPath(cfg.FFmpegPath)
	}
	return stream.Compile()
}

// Encoder consumes frames on its own goroutine.
type Encoder struct {
	cfg    Config
	frames chan *Frame
	done   chan error
	closed bool
	err    error
}

// Start launches ffmpeg. buffered is the number of frames that may queue
// before WriteFrame blocks.
func Start(cfg Config, buffered int) (*Encoder, error) {
	return start(cfg, buffered, func(r io.Reader) error {
		return Command(cfg, r).Run()
	})
}

func start(cfg Config, buffered int, run func(io.Reader) error) (*Encoder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Encoder{
		cfg:    cfg,
		frames: make(chan *Frame, max(buffered, 0)),
		done:   make(chan error, 1),
	}
	go e.consume(run)
	logging.Logger().Info("Started encoder", "output", cfg.OutputFile, "width", cfg.Width, "height", cfg.Height, "fps", cfg.FPS)
	return e, nil
}

func (e *Encoder) consume(run func(io.Reader) error) {
	pipeReader, pipeWriter := io.Pipe()
	errc := make(chan error, 1)
	go func() {
		err := run(pipeReader)
		if err == nil {
			err = errFFmpegExited
		}
		pipeReader.CloseWithError(err)
		errc <- err
	}()

	var werr error
	for frame := range e.frames {
		if werr != nil {
			continue
		}
		if len(frame.Pixels) != e.cfg.frameSize() {
			werr = fmt.Errorf("frame %d has %d bytes, want %d", frame.PTS, len(frame.Pixels), e.cfg.frameSize())
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			werr = fmt.Errorf("failed to write frame %d to ffmpeg: %w", frame.PTS, err)
		}
	}
	pipeWriter.Close()
	err := <-errc
	if errors.Is(err, errFFmpegExited) {
		err = nil
	}
	if werr != nil {
		err = errors.Join(werr, err)
	}
	e.done <- err
}

// WriteFrame queues a frame. Pixels must not be modified afterwards.
func (e *Encoder) WriteFrame(f *Frame) error {
	if e.closed {
		return ErrClosed
	}
	e.frames <- f
	return nil
}

// Close flushes queued frames and waits for ffmpeg to exit.
func (e *Encoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	close(e.frames)
	e.err = <-e.done
	if e.err != nil {
		logging.Logger().Error("Encoder finished with error", "error", e.err)
	} else {
		logging.Logger().Info("Encoder finished", "output", e.cfg.OutputFile)
	}
	return e.err
}
