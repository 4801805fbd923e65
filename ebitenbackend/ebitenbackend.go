// Package ebitenbackend implements blaze.Backend on top of Ebitengine.
// Each bucket becomes one DrawTriangles32 call on the current render target:
// the bound RenderTarget, or the image given to SetTarget.
package ebitenbackend

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/blaze"
	"github.com/phanxgames/blaze/imageload"
)

// Backend draws into an *ebiten.Image set with SetTarget, normally the
// screen passed to ebiten.Game.Draw, unless a RenderTarget is bound.
type Backend struct {
	screen     *ebiten.Image
	bound      *RenderTarget
	mode       blaze.BlendMode
	blend      ebiten.Blend
	viewport   [2]int
	clearColor color.NRGBA

	textures map[uint32]*Texture
	nextID   uint32
}

var _ blaze.Backend = (*Backend)(nil)

// New returns a backend with normal blending and no target.
func New() *Backend {
	return &Backend{
		mode:     blaze.BlendNormal,
		blend:    EbitenBlend(blaze.BlendNormal),
		textures: make(map[uint32]*Texture),
		nextID:   1,
	}
}

// SetTarget selects the default image draws render into while no
// RenderTarget is bound.
func (b *Backend) SetTarget(img *ebiten.Image) {
	b.screen = img
}

// Target returns the image draws currently render into.
func (b *Backend) Target() *ebiten.Image {
	if b.bound != nil {
		return b.bound.tex.img
	}
	return b.screen
}

// BlendMode returns the current blend mode.
func (b *Backend) BlendMode() blaze.BlendMode {
	return b.mode
}

// SetBlendMode implements blaze.Backend.
func (b *Backend) SetBlendMode(mode blaze.BlendMode) error {
	b.mode = mode
	b.blend = EbitenBlend(mode)
	return nil
}

// SetViewport implements blaze.Backend. Ebitengine scales the logical
// screen to the window; Layout reports this size.
func (b *Backend) SetViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", width, height)
	}
	b.viewport = [2]int{width, height}
	return nil
}

// Layout returns the viewport size, or the outside size when no viewport
// was set. Call it from ebiten.Game.Layout.
func (b *Backend) Layout(outsideWidth, outsideHeight int) (int, int) {
	if b.viewport[0] > 0 {
		return b.viewport[0], b.viewport[1]
	}
	return outsideWidth, outsideHeight
}

// SetClearColor implements blaze.Backend.
func (b *Backend) SetClearColor(c blaze.Color) {
	b.clearColor = toNRGBA(c)
}

// Clear implements blaze.Backend. Ebitengine images have no depth or
// stencil buffers, so only ClearColor has an effect.
func (b *Backend) Clear(opts blaze.ClearOptions) {
	target := b.Target()
	if target == nil || opts&blaze.ClearColor == 0 {
		return
	}
	target.Fill(b.clearColor)
}

// CreateRenderTarget implements blaze.Backend. The target is a plain
// offscreen image owned by the caller until Free.
func (b *Backend) CreateRenderTarget(width, height int) (blaze.RenderTargetHandle, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render target size %dx%d", width, height)
	}
	t, err := b.NewTextureFromImage(ebiten.NewImage(width, height), 0)
	if err != nil {
		return nil, err
	}
	rt := &RenderTarget{tex: t}
	t.target = rt
	return rt, nil
}

// BindRenderTarget implements blaze.Backend.
func (b *Backend) BindRenderTarget(h blaze.RenderTargetHandle) error {
	if h == nil {
		b.bound = nil
		return nil
	}
	rt, ok := h.(*RenderTarget)
	if !ok || rt.tex.backend != b || rt.tex.img == nil {
		return errors.New("render target is not a live ebitenbackend target")
	}
	b.bound = rt
	return nil
}

// LoadTexture implements blaze.TextureLoader.
func (b *Backend) LoadTexture(data []byte, channels blaze.ImageChannels, id uint32, flags blaze.ImageFlags) (blaze.TextureHandle, error) {
	dec, err := imageload.Decode(data, channels, flags)
	if err != nil {
		return nil, err
	}
	if ignored := dec.Pending &^ blaze.ImageTextureRepeats; ignored != 0 {
		blaze.Logger().Debug("ebitenbackend: image flags not supported, ignored", "flags", ignored.String())
	}
	// NewImageFromImage premultiplies NRGBA input; already premultiplied
	// pixels are handed over as RGBA so alpha is applied once.
	var src image.Image = dec.Image
	if dec.Premultiplied {
		src = &image.RGBA{Pix: dec.Image.Pix, Stride: dec.Image.Stride, Rect: dec.Image.Rect}
	}
	t, err := b.NewTextureFromImage(ebiten.NewImageFromImage(src), id)
	if err != nil {
		return nil, err
	}
	if flags.Has(blaze.ImageTextureRepeats) {
		t.address = ebiten.AddressRepeat
	}
	return t, nil
}

// NewTextureFromImage wraps an existing image. An id of 0 picks the next
// free id. Freeing the texture deallocates img.
func (b *Backend) NewTextureFromImage(img *ebiten.Image, id uint32) (*Texture, error) {
	if id == 0 {
		for b.textures[b.nextID] != nil {
			b.nextID++
		}
		id = b.nextID
		b.nextID++
	} else if b.textures[id] != nil {
		return nil, fmt.Errorf("texture id %d already in use", id)
	}
	bounds := img.Bounds()
	t := &Texture{backend: b, img: img, id: id, width: bounds.Dx(), height: bounds.Dy()}
	b.textures[id] = t
	return t, nil
}

// CreateBatch implements blaze.Backend.
func (b *Backend) CreateBatch(opts blaze.Options) (blaze.BatchHandle, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &batchHandle{
		backend: b,
		verts:   make([][]ebiten.Vertex, opts.MaxBuckets),
		indices: quadIndices(opts.MaxSpritesPerBucket),
		max:     opts.MaxSpritesPerBucket,
	}, nil
}

type batchHandle struct {
	backend *Backend
	verts   [][]ebiten.Vertex
	indices []uint32
	max     int
	freed   bool
}

func (h *batchHandle) DrawBucket(slot int, tex blaze.TextureHandle, quads []blaze.Quad) error {
	if h.freed {
		return errors.New("draw on freed batch")
	}
	target := h.backend.Target()
	if target == nil {
		return errors.New("no render target, call SetTarget first")
	}
	if slot < 0 || slot >= len(h.verts) {
		return fmt.Errorf("bucket slot %d out of range", slot)
	}
	if len(quads) > h.max {
		return fmt.Errorf("bucket overflow: %d quads, capacity %d", len(quads), h.max)
	}
	t, ok := tex.(*Texture)
	if !ok || t.backend != h.backend || t.img == nil {
		return errors.New("texture is not a live ebitenbackend texture")
	}
	if t.img == target {
		return fmt.Errorf("texture %d is the bound render target", t.id)
	}
	if h.verts[slot] == nil {
		h.verts[slot] = make([]ebiten.Vertex, 0, h.max*4)
	}
	h.verts[slot] = appendVertices(h.verts[slot][:0], quads, float32(t.width), float32(t.height))

	var op ebiten.DrawTrianglesOptions
	op.Blend = h.backend.blend
	op.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	op.Filter = t.filter
	op.Address = t.address
	target.DrawTriangles32(h.verts[slot], h.indices[:len(quads)*6], t.img, &op)
	return nil
}

func (h *batchHandle) ReleaseBucket(slot int) error {
	if slot < 0 || slot >= len(h.verts) {
		return fmt.Errorf("bucket slot %d out of range", slot)
	}
	h.verts[slot] = nil
	return nil
}

func (h *batchHandle) Free() error {
	if h.freed {
		return errors.New("batch freed twice")
	}
	h.freed = true
	h.verts = nil
	h.indices = nil
	return nil
}

// Texture is an Ebitengine-backed texture.
type Texture struct {
	backend       *Backend
	img           *ebiten.Image
	id            uint32
	width, height int
	filter        ebiten.Filter
	address       ebiten.Address
	target        *RenderTarget
}

// ID implements blaze.TextureHandle.
func (t *Texture) ID() uint32 { return t.id }

// Size implements blaze.TextureHandle.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// SetFilter implements blaze.TextureHandle. Ebitengine samples with one
// filter per draw, so the magnification filter is used.
func (t *Texture) SetFilter(minFilter, magFilter blaze.TextureFilter) error {
	if t.img == nil {
		return fmt.Errorf("texture %d is freed", t.id)
	}
	if minFilter != magFilter {
		blaze.Logger().Debug("ebitenbackend: separate min filter not supported, using mag filter",
			"id", t.id, "min", minFilter.String(), "mag", magFilter.String())
	}
	f, err := ebitenFilter(magFilter)
	if err != nil {
		return err
	}
	t.filter = f
	return nil
}

// SetWrap implements blaze.TextureHandle. Ebitengine has one address mode
// for both axes.
func (t *Texture) SetWrap(wrapS, wrapT blaze.TextureWrap) error {
	if t.img == nil {
		return fmt.Errorf("texture %d is freed", t.id)
	}
	if wrapS != wrapT {
		return fmt.Errorf("per-axis wrap modes not supported: %s/%s", wrapS, wrapT)
	}
	a, err := ebitenAddress(wrapS)
	if err != nil {
		return err
	}
	t.address = a
	return nil
}

// Filter returns the filter draws of t use.
func (t *Texture) Filter() ebiten.Filter { return t.filter }

// Address returns the address mode draws of t use.
func (t *Texture) Address() ebiten.Address { return t.address }

// Image returns the underlying image, or nil once freed.
func (t *Texture) Image() *ebiten.Image { return t.img }

// Free implements blaze.TextureHandle.
func (t *Texture) Free() error {
	if t.img == nil {
		return fmt.Errorf("texture %d freed twice", t.id)
	}
	if t.target != nil && !t.target.freed {
		return fmt.Errorf("texture %d belongs to a render target", t.id)
	}
	t.img.Deallocate()
	t.img = nil
	delete(t.backend.textures, t.id)
	return nil
}

// RenderTarget is an offscreen image that draws can be redirected into.
type RenderTarget struct {
	tex   *Texture
	freed bool
}

// Texture implements blaze.RenderTargetHandle.
func (r *RenderTarget) Texture() blaze.TextureHandle { return r.tex }

// Free implements blaze.RenderTargetHandle. The image is deallocated.
func (r *RenderTarget) Free() error {
	if r.freed {
		return fmt.Errorf("render target %d freed twice", r.tex.id)
	}
	r.freed = true
	if r.tex.backend.bound == r {
		r.tex.backend.bound = nil
	}
	return r.tex.Free()
}
