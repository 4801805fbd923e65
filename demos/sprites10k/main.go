// sprites10k spawns 10,000 sprites that rotate, scale, fade and bounce
// around the screen. All of them share one texture, so each frame is a
// single draw call.
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/blaze"
	"github.com/phanxgames/blaze/ebitenbackend"
)

const (
	screenW = 1280
	screenH = 720
	count   = 10_000
	texSize = 64
)

type sprite struct {
	opts       blaze.DrawOptions
	scale      blaze.Vec2
	dx, dy     float64
	rotSpeed   float64
	scaleSpeed float64
	scaleBase  float64
	scaleAmp   float64
	alphaSpeed float64
	phase      float64
}

type game struct {
	backend *ebitenbackend.Backend
	batch   *blaze.SpriteBatch
	tex     *blaze.Texture
	sprites []sprite
	frame   float64
}

func main() {
	backend := ebitenbackend.New()
	backend.SetClearColor(blaze.Color{R: 0.06, G: 0.06, B: 0.09, A: 1})
	if err := blaze.SetViewport(backend, screenW, screenH); err != nil {
		log.Fatal(err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, diamond(texSize)); err != nil {
		log.Fatal(err)
	}
	tex, err := blaze.LoadTextureFromMemory(backend, buf.Bytes(), blaze.ChannelsRGBA, blaze.ImageMultiplyAlpha)
	if err != nil {
		log.Fatalf("load texture: %v", err)
	}
	defer tex.Free()

	batch, err := blaze.NewSpriteBatch(backend, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: count})
	if err != nil {
		log.Fatal(err)
	}
	defer batch.Free()

	g := &game{backend: backend, batch: batch, tex: tex, sprites: make([]sprite, count)}
	origin := &blaze.Vec2{X: texSize / 2, Y: texSize / 2}
	for i := range g.sprites {
		base := 0.3 + rand.Float64()*0.4
		g.sprites[i] = sprite{
			opts: blaze.DrawOptions{
				Position: blaze.Vec2{X: rand.Float64() * screenW, Y: rand.Float64() * screenH},
				Origin:   origin,
				Color: blaze.Color{
					R: 0.5 + rand.Float32()*0.5,
					G: 0.5 + rand.Float32()*0.5,
					B: 0.5 + rand.Float32()*0.5,
					A: 1,
				},
			},
			dx:         (rand.Float64() - 0.5) * 4,
			dy:         (rand.Float64() - 0.5) * 4,
			rotSpeed:   (rand.Float64() - 0.5) * 0.08,
			scaleSpeed: 1 + rand.Float64()*2,
			scaleBase:  base,
			scaleAmp:   0.05 + rand.Float64()*0.1,
			alphaSpeed: 0.5 + rand.Float64()*2,
			phase:      rand.Float64() * math.Pi * 2,
		}
	}

	ebiten.SetWindowTitle("Blaze - 10k Sprites")
	ebiten.SetWindowSize(screenW, screenH)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

func (g *game) Update() error {
	g.frame++
	t := g.frame / 60.0
	for i := range g.sprites {
		s := &g.sprites[i]
		p := &s.opts.Position

		p.X += s.dx
		p.Y += s.dy
		if p.X < 0 || p.X > screenW {
			s.dx = -s.dx
		}
		if p.Y < 0 || p.Y > screenH {
			s.dy = -s.dy
		}

		s.opts.Rotation += s.rotSpeed
		sc := s.scaleBase + s.scaleAmp*math.Sin(t*s.scaleSpeed+s.phase)
		s.scale = blaze.Vec2{X: sc, Y: sc}
		s.opts.Scale = &s.scale
		s.opts.Color.A = float32(0.5 + 0.5*math.Sin(t*s.alphaSpeed+s.phase))
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.backend.SetTarget(screen)
	g.backend.Clear(blaze.ClearColor)
	for i := range g.sprites {
		if err := g.batch.Draw(g.tex, g.sprites[i].opts); err != nil {
			log.Printf("draw: %v", err)
			break
		}
	}
	if err := g.batch.Present(); err != nil {
		log.Printf("present: %v", err)
	}
	st := g.batch.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.0f  sprites: %d  draw calls: %d  present: %v",
		ebiten.ActualFPS(), st.Quads, st.DrawCalls, st.Duration))
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.backend.Layout(outsideWidth, outsideHeight)
}

func diamond(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Abs(float64(x)+0.5-c) + math.Abs(float64(y)+0.5-c)
			if d < c {
				a := uint8(255 * (1 - d/c))
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: a})
			}
		}
	}
	return img
}
