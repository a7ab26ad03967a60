package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// Uniform and attribute names shared by both stages.
const (
	UniformTexture  = "uTexture"
	UniformTime     = "uTime"
	UniformProgress = "uProgress"
	UniformMVP      = "uModelViewProjection"

	AttribPosition = "aPosition"
	AttribUV       = "aUv"

	LocationPosition = 0
	LocationUV       = 1
)

// RequiredUniforms must survive translation; a program that loses any of
// them cannot reveal anything.
var RequiredUniforms = []string{UniformTexture, UniformTime, UniformProgress, UniformMVP}

// DefaultEdge is the width of the soft band between hidden and revealed
// pixels, in threshold units.
const DefaultEdge float32 = 0.12

const vertexShaderSource = `#version 300 es
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec2 aUv;

uniform mat4 uModelViewProjection;

out vec2 vUv;

void main() {
    vUv = aUv;
    gl_Position = uModelViewProjection * vec4(aPosition, 1.0);
}
`

const fragmentShaderTemplate = `#version 300 es
precision highp float;

uniform sampler2D uTexture;
uniform float     uTime;
uniform float     uProgress;

in vec2 vUv;
out vec4 fragColor;

const float EDGE = %s;

float hash(vec2 p) {
    p = fract(p * vec2(123.34, 456.21));
    p += dot(p, p + 45.32);
    return fract(p.x * p.y);
}

// value noise in [0,1)
float noise(vec2 p) {
    vec2 i = floor(p);
    vec2 f = fract(p);
    vec2 u = f * f * (3.0 - 2.0 * f);
    float a = hash(i);
    float b = hash(i + vec2(1.0, 0.0));
    float c = hash(i + vec2(0.0, 1.0));
    float d = hash(i + vec2(1.0, 1.0));
    return mix(mix(a, b, u.x), mix(c, d, u.x), u.y);
}

float fbm(vec2 p) {
    float v = 0.0;
    float amp = 0.5;
    for (int i = 0; i < 4; i++) {
        v += amp * noise(p);
        p *= 2.0;
        amp *= 0.5;
    }
    return v / 0.9375;
}

float threshold(vec2 uv, float time) {
    vec2 drift = vec2(time * 0.08, time * -0.05);
    float n = fbm(uv * 3.0 + drift);
    return clamp(mix(1.0 - uv.y, n, 0.6), 0.0, 1.0);
}

void main() {
    vec4 color = texture(uTexture, vUv);
    float t = threshold(vUv, uTime);
    float p = clamp(uProgress, 0.0, 1.0);
    float mask = smoothstep(t, t + EDGE, p * (1.0 + EDGE));
    if (mask <= 0.0) {
        discard;
    }
    fragColor = vec4(color.rgb, color.a * mask);
}
`

// VertexSource returns the reveal vertex stage.
func VertexSource() string {
	return vertexShaderSource
}

// FragmentSource returns the reveal fragment stage for the given edge width.
func FragmentSource(edge float32) string {
	if !(edge > 0) {
		edge = DefaultEdge
	}
	lit := strconv.FormatFloat(float64(edge), 'f', -1, 32)
	if !strings.Contains(lit, ".") {
		lit += ".0"
	}
	return fmt.Sprintf(fragmentShaderTemplate, lit)
}

// Material describes how the reveal quad is drawn.
type Material struct {
	Vertex      string
	Fragment    string
	Transparent bool
}

// RevealMaterial returns the reveal program sources. It always blends:
// partially revealed pixels carry fractional alpha.
func RevealMaterial(edge float32) Material {
	return Material{
		Vertex:      VertexSource(),
		Fragment:    FragmentSource(edge),
		Transparent: true,
	}
}

// CompileError reports a shader that failed to translate, compile or link,
// or that lost a required uniform along the way.
type CompileError struct {
	Stage string
	Log   string
	Err   error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("shader compile error (%s stage)", e.Stage)
	if e.Log != "" {
		msg += ": " + e.Log
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }
