package blaze

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Sprite is a retained draw request: a texture plus the options it is drawn
// with. Tweens animate its fields between frames.
type Sprite struct {
	Texture *Texture
	DrawOptions
}

// NewSprite returns a white-tinted sprite of tex at (x, y).
func NewSprite(tex *Texture, x, y float64) *Sprite {
	return &Sprite{
		Texture: tex,
		DrawOptions: DrawOptions{
			Position: Vec2{x, y},
			Color:    ColorWhite,
		},
	}
}

// Draw queues the sprite into b.
func (s *Sprite) Draw(b *SpriteBatch) error {
	return b.Draw(s.Texture, s.DrawOptions)
}

// TweenGroup animates up to 4 sprite fields at once. Call Update(dt) each
// frame; values are written straight into the sprite.
//
// There is no global animation manager; callers own their groups.
type TweenGroup struct {
	tweens [4]*gween.Tween
	set    [4]func(float32)
	count  int
	Done   bool
}

// Update advances all tweens by dt seconds and writes the new values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.set[i](val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

func (g *TweenGroup) add(from, to float32, duration float32, fn ease.TweenFunc, set func(float32)) {
	g.tweens[g.count] = gween.New(from, to, duration, fn)
	g.set[g.count] = set
	g.count++
}

// TweenPosition animates the sprite position to (toX, toY).
func TweenPosition(s *Sprite, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(float32(s.Position.X), float32(toX), duration, fn, func(v float32) { s.Position.X = float64(v) })
	g.add(float32(s.Position.Y), float32(toY), duration, fn, func(v float32) { s.Position.Y = float64(v) })
	return g
}

// TweenRotation animates the sprite rotation (radians) to the target value.
func TweenRotation(s *Sprite, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(float32(s.Rotation), float32(to), duration, fn, func(v float32) { s.Rotation = float64(v) })
	return g
}

// TweenScale animates the sprite scale. A nil scale starts from (1, 1).
func TweenScale(s *Sprite, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	if s.Scale == nil {
		s.Scale = &Vec2{1, 1}
	}
	sc := s.Scale
	g := &TweenGroup{}
	g.add(float32(sc.X), float32(toSX), duration, fn, func(v float32) { sc.X = float64(v) })
	g.add(float32(sc.Y), float32(toSY), duration, fn, func(v float32) { sc.Y = float64(v) })
	return g
}

// TweenColor animates all four tint components to the target color.
func TweenColor(s *Sprite, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(s.Color.R, to.R, duration, fn, func(v float32) { s.Color.R = v })
	g.add(s.Color.G, to.G, duration, fn, func(v float32) { s.Color.G = v })
	g.add(s.Color.B, to.B, duration, fn, func(v float32) { s.Color.B = v })
	g.add(s.Color.A, to.A, duration, fn, func(v float32) { s.Color.A = v })
	return g
}
