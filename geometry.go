package blaze

import "math"

// Vertex is a single corner of a Quad: screen position, texture coordinate
// in [0, 1] texture space, and tint.
type Vertex struct {
	X, Y  float32
	U, V  float32
	Color Color
}

// Corner indices of a Quad. The order is fixed so that flips are pure
// permutations of texture coordinates.
const (
	CornerTL = iota
	CornerTR
	CornerBR
	CornerBL
)

// Quad is the four vertices of one sprite in TL, TR, BR, BL order.
type Quad [4]Vertex

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine leaves points unchanged.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// TranslateAffine returns a matrix that moves points by (x, y).
func TranslateAffine(x, y float64) Affine {
	return Affine{1, 0, 0, 1, x, y}
}

// Mul returns m * o, i.e. o applied first, then m.
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// DrawOptions describes one sprite for the high-level draw path. Nil
// pointers select the defaults: full texture, origin (0,0), scale (1,1).
type DrawOptions struct {
	Position Vec2
	Source   *Rect
	Rotation float64 // radians, counter-clockwise on screen
	Origin   *Vec2
	Scale    *Vec2
	Color    Color
	Flip     Flip
}

// spriteTransform builds the local-to-screen matrix for a sprite.
//
// Composition order:
//
//	Translate(-Origin) -> Scale -> Rotate -> Translate(Position)
//
// Screen space is y-down, so a counter-clockwise turn rotates +X toward -Y.
func spriteTransform(pos, origin, scale Vec2, rotation float64) Affine {
	sin, cos := math.Sincos(rotation)

	// After Scale * Translate(-origin):
	//   a=sx, d=sy, tx=-ox*sx, ty=-oy*sy
	preTx := -origin.X * scale.X
	preTy := -origin.Y * scale.Y

	// After Rotate:
	return Affine{
		cos * scale.X,
		-sin * scale.X,
		sin * scale.Y,
		cos * scale.Y,
		cos*preTx + sin*preTy + pos.X,
		-sin*preTx + cos*preTy + pos.Y,
	}
}

// BuildQuad turns a sprite description into screen-space geometry for a
// texture of the given pixel size. Input is not validated: NaN rotations or
// negative scales flow through unchanged.
func BuildQuad(texWidth, texHeight int, opts DrawOptions) Quad {
	src := Rect{W: uint32(texWidth), H: uint32(texHeight)}
	if opts.Source != nil {
		src = *opts.Source
	}
	var origin Vec2
	if opts.Origin != nil {
		origin = *opts.Origin
	}
	scale := Vec2{1, 1}
	if opts.Scale != nil {
		scale = *opts.Scale
	}

	m := spriteTransform(opts.Position, origin, scale, opts.Rotation)

	w, h := float64(src.W), float64(src.H)
	lx := [4]float64{0, w, w, 0}
	ly := [4]float64{0, 0, h, h}

	var u0, v0, u1, v1 float32
	if texWidth > 0 && texHeight > 0 {
		// Edges are summed in float64; X+W can exceed uint32.
		tw, th := float64(texWidth), float64(texHeight)
		u0 = float32(float64(src.X) / tw)
		v0 = float32(float64(src.Y) / th)
		u1 = float32((float64(src.X) + w) / tw)
		v1 = float32((float64(src.Y) + h) / th)
	}
	us := [4]float32{u0, u1, u1, u0}
	vs := [4]float32{v0, v0, v1, v1}

	var q Quad
	for i := range q {
		x, y := m.Apply(lx[i], ly[i])
		q[i] = Vertex{
			X:     float32(x),
			Y:     float32(y),
			U:     us[i],
			V:     vs[i],
			Color: opts.Color,
		}
	}
	return q.Flipped(opts.Flip)
}

// Flipped returns q with texture coordinates mirrored according to f.
// Positions and colors stay in place. Flipping twice with the same value
// restores the original mapping.
func (q Quad) Flipped(f Flip) Quad {
	if f&FlipH != 0 {
		swapUV(&q[CornerTL], &q[CornerTR])
		swapUV(&q[CornerBL], &q[CornerBR])
	}
	if f&FlipV != 0 {
		swapUV(&q[CornerTL], &q[CornerBL])
		swapUV(&q[CornerTR], &q[CornerBR])
	}
	return q
}

func swapUV(a, b *Vertex) {
	a.U, b.U = b.U, a.U
	a.V, b.V = b.V, a.V
}

// Transformed returns q with every position multiplied by m. Texture
// coordinates and colors are untouched.
func (q Quad) Transformed(m Affine) Quad {
	for i := range q {
		x, y := m.Apply(float64(q[i].X), float64(q[i].Y))
		q[i].X, q[i].Y = float32(x), float32(y)
	}
	return q
}

// Bounds returns the axis-aligned bounding box of the quad's positions.
func (q Quad) Bounds() (minX, minY, maxX, maxY float32) {
	minX, minY = q[0].X, q[0].Y
	maxX, maxY = minX, minY
	for _, v := range q[1:] {
		minX = min(minX, v.X)
		minY = min(minY, v.Y)
		maxX = max(maxX, v.X)
		maxY = max(maxY, v.Y)
	}
	return minX, minY, maxX, maxY
}
