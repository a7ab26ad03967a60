package encoder

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Width: 2, Height: 2, FPS: 30, OutputFile: "out.mp4"}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, testConfig().validate())

	bad := testConfig()
	bad.Width = 0
	assert.Error(t, bad.validate())

	bad = testConfig()
	bad.FPS = 0
	assert.Error(t, bad.validate())

	bad = testConfig()
	bad.OutputFile = ""
	assert.Error(t, bad.validate())

	bad = testConfig()
	bad.Codec = "vp9"
	assert.Error(t, bad.validate())
}

func TestArgs(t *testing.T) {
	cfg := Config{Width: 800, Height: 600, FPS: 60, OutputFile: "reveal.mp4", Codec: "hevc", FlipVertical: true}
	in, out := Args(cfg)
	assert.Equal(t, "rawvideo", in["f"])
	assert.Equal(t, "rgba", in["pix_fmt"])
	assert.Equal(t, "800x600", in["s"])
	assert.Equal(t, "60", in["r"])
	assert.Equal(t, "libx265", out["c:v"])
	assert.Equal(t, "hvc1", out["tag:v"])
	assert.Equal(t, "vflip", out["vf"])

	_, out = Args(testConfig())
	assert.Equal(t, "libx264", out["c:v"])
	assert.NotContains(t, out, "vf")
	assert.NotContains(t, out, "tag:v")
}

func TestCommand(t *testing.T) {
	cmd := Command(testConfig(), bytes.NewReader(nil))
	assert.Contains(t, cmd.Args, "pipe:")
	assert.Contains(t, cmd.Args, "rgba")
	assert.Contains(t, cmd.Args, "-y")
	assert.Contains(t, cmd.Args, "2x2")
	assert.Contains(t, cmd.Args, "out.mp4")
}

func TestFramesReachFFmpeg(t *testing.T) {
	var got bytes.Buffer
	e, err := start(testConfig(), 2, func(r io.Reader) error {
		_, err := io.Copy(&got, r)
		return err
	})
	require.NoError(t, err)

	a := bytes.Repeat([]byte{1}, 16)
	b := bytes.Repeat([]byte{2}, 16)
	require.NoError(t, e.WriteFrame(&Frame{Pixels: a, PTS: 0}))
	require.NoError(t, e.WriteFrame(&Frame{Pixels: b, PTS: 1}))
	require.NoError(t, e.Close())

	assert.Equal(t, append(a, b...), got.Bytes())
	assert.ErrorIs(t, e.WriteFrame(&Frame{Pixels: a}), ErrClosed)
	assert.NoError(t, e.Close())
}

func TestShortFrameFails(t *testing.T) {
	e, err := start(testConfig(), 1, func(r io.Reader) error {
		_, err := io.Copy(io.Discard, r)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, e.WriteFrame(&Frame{Pixels: make([]byte, 3)}))
	assert.Error(t, e.Close())
}

func TestFFmpegFailure(t *testing.T) {
	boom := errors.New("boom")
	e, err := start(testConfig(), 0, func(r io.Reader) error {
		return boom
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, e.WriteFrame(&Frame{Pixels: make([]byte, 16), PTS: int64(i)}))
	}
	assert.ErrorIs(t, e.Close(), boom)
}

type countingSource struct {
	size    int
	elapsed []float64
	dts     []time.Duration
	failAt  int
}

func (s *countingSource) RenderFrame(elapsed float64, dt time.Duration) ([]byte, error) {
	if s.failAt > 0 && len(s.elapsed) == s.failAt {
		return nil, errors.New("lost context")
	}
	s.elapsed = append(s.elapsed, elapsed)
	s.dts = append(s.dts, dt)
	return bytes.Repeat([]byte{byte(len(s.elapsed))}, s.size), nil
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 90, FrameCount(1.5, 60))
	assert.Equal(t, 0, FrameCount(0, 60))
	assert.Equal(t, 0, FrameCount(2, 0))
}

func TestRecord(t *testing.T) {
	var got bytes.Buffer
	e, err := start(testConfig(), 1, func(r io.Reader) error {
		_, err := io.Copy(&got, r)
		return err
	})
	require.NoError(t, err)

	src := &countingSource{size: 16}
	require.NoError(t, Record(e, src, 3))

	assert.Equal(t, []float64{0, 1.0 / 30, 2.0 / 30}, src.elapsed)
	assert.Equal(t, []time.Duration{0, time.Second / 30, time.Second / 30}, src.dts)
	assert.Equal(t, 48, got.Len())
}

func TestRecordStopsOnRenderError(t *testing.T) {
	var got bytes.Buffer
	e, err := start(testConfig(), 1, func(r io.Reader) error {
		_, err := io.Copy(&got, r)
		return err
	})
	require.NoError(t, err)

	err = Record(e, &countingSource{size: 16, failAt: 2}, 5)
	assert.ErrorContains(t, err, "lost context")
	assert.Equal(t, 32, got.Len())
}
