package blaze

import "math"

// Color represents an RGBA tint with components conceptually in [0, 1].
// Values are not clamped; they are forwarded to the backend as given.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the neutral tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, origins and scales.
type Vec2 struct {
	X, Y float64
}

// Rect is an integer pixel rectangle inside a texture, used to select the
// source region of a sprite. The origin is the top-left texel.
type Rect struct {
	X, Y, W, H uint32
}

// Flip mirrors the texture sampling direction of a sprite without moving
// its vertices.
type Flip uint8

const (
	FlipNone Flip = 0             // sample as stored
	FlipH    Flip = 1             // mirror horizontally
	FlipV    Flip = 2             // mirror vertically
	FlipBoth Flip = FlipH | FlipV // mirror on both axes
)

// InitFlags configures a SpriteBatch at creation time.
type InitFlags uint32

const (
	// InitDefault keeps bucket storage alive between presents and reuses it.
	InitDefault InitFlags = 0
	// InitNoBuffering discards and reallocates bucket storage on every present.
	InitNoBuffering InitFlags = 1
)

const initFlagsAll = InitNoBuffering

// ClearOptions selects which buffers Clear resets. Values can be combined
// with bitwise OR.
type ClearOptions uint8

const (
	ClearColor ClearOptions = 1 << iota // color buffer
	ClearDepth                          // depth buffer
	ClearStencil                        // stencil buffer

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// Degrees converts an angle in degrees to radians.
func Degrees(deg float64) float64 {
	return deg * math.Pi / 180
}
