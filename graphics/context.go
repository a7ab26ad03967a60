package graphics

// Context is a window or offscreen surface with a current GL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the frame and processes pending input events.
	EndFrame()
	GetFramebufferSize() (int, int)
	// Time returns seconds since the context was created.
	Time() float64
	IsGLES() bool
}
