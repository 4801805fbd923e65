// Package headless is a blaze.Backend that needs no GPU. It records every
// draw call with a copy of the submitted quads, which makes it the backend
// of choice for tests, CI and offline script replay.
package headless

import (
	"errors"
	"fmt"
	"slices"

	"github.com/phanxgames/blaze"
	"github.com/phanxgames/blaze/imageload"
)

// DrawCall is one recorded DrawBucket call.
type DrawCall struct {
	Batch     int // creation index of the batch handle
	Slot      int
	TextureID uint32
	Blend     blaze.BlendMode
	Target    uint32 // texture id of the bound render target, 0 for the default target
	Quads     []blaze.Quad
}

// Backend records draw calls and resource lifetimes.
type Backend struct {
	// DrawCalls holds every draw in submission order.
	DrawCalls []DrawCall

	// BatchesCreated and BatchesFreed count CreateBatch and handle Free calls.
	BatchesCreated int
	BatchesFreed   int
	// BucketReleases counts ReleaseBucket calls across all batches.
	BucketReleases int
	// BufferAllocs counts bucket storage allocations across all batches.
	BufferAllocs int

	// TexturesFreed counts texture handle frees.
	TexturesFreed int

	// RenderTargetsCreated counts CreateRenderTarget calls.
	RenderTargetsCreated int
	// Binds records every BindRenderTarget as the target's texture id, 0
	// for the default target.
	Binds []uint32

	Blend      blaze.BlendMode
	Viewport   [2]int
	ClearColor blaze.Color
	Clears     []blaze.ClearOptions

	textures map[uint32]*Texture
	nextID   uint32
	failNext string
	bound    *RenderTarget
}

var _ blaze.Backend = (*Backend)(nil)

// New returns an empty recorder with normal blending.
func New() *Backend {
	return &Backend{
		Blend:    blaze.BlendNormal,
		textures: make(map[uint32]*Texture),
		nextID:   1,
	}
}

// FailNextDraw makes the next DrawBucket fail with msg. An empty msg fails
// without a message.
func (b *Backend) FailNextDraw(msg string) {
	b.failNext = msg
	if msg == "" {
		b.failNext = "\x00"
	}
}

// Reset forgets recorded draw calls.
func (b *Backend) Reset() {
	b.DrawCalls = b.DrawCalls[:0]
}

// CreateBatch implements blaze.Backend.
func (b *Backend) CreateBatch(opts blaze.Options) (blaze.BatchHandle, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	h := &batchHandle{
		backend: b,
		index:   b.BatchesCreated,
		storage: make([][]blaze.Quad, opts.MaxBuckets),
		max:     opts.MaxSpritesPerBucket,
	}
	b.BatchesCreated++
	return h, nil
}

// SetBlendMode implements blaze.Backend.
func (b *Backend) SetBlendMode(mode blaze.BlendMode) error {
	b.Blend = mode
	return nil
}

// SetViewport implements blaze.Backend.
func (b *Backend) SetViewport(width, height int) error {
	b.Viewport = [2]int{width, height}
	return nil
}

// SetClearColor implements blaze.Backend.
func (b *Backend) SetClearColor(c blaze.Color) {
	b.ClearColor = c
}

// Clear implements blaze.Backend.
func (b *Backend) Clear(opts blaze.ClearOptions) {
	b.Clears = append(b.Clears, opts)
}

// CreateRenderTarget implements blaze.Backend.
func (b *Backend) CreateRenderTarget(width, height int) (blaze.RenderTargetHandle, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render target size %dx%d", width, height)
	}
	t, err := b.NewTexture(width, height, 0)
	if err != nil {
		return nil, err
	}
	rt := &RenderTarget{tex: t}
	t.target = rt
	b.RenderTargetsCreated++
	return rt, nil
}

// BindRenderTarget implements blaze.Backend.
func (b *Backend) BindRenderTarget(h blaze.RenderTargetHandle) error {
	if h == nil {
		b.bound = nil
		b.Binds = append(b.Binds, 0)
		return nil
	}
	rt, ok := h.(*RenderTarget)
	if !ok || rt.tex.backend != b {
		return errors.New("render target belongs to another backend")
	}
	if rt.freed {
		return fmt.Errorf("render target %d is freed", rt.tex.id)
	}
	b.bound = rt
	b.Binds = append(b.Binds, rt.tex.id)
	return nil
}

// Bound returns the texture id of the bound render target, or 0 when the
// default target is bound.
func (b *Backend) Bound() uint32 {
	if b.bound == nil {
		return 0
	}
	return b.bound.tex.id
}

// LoadTexture implements blaze.TextureLoader. Only the image header is
// decoded; pixels are never needed without a GPU.
func (b *Backend) LoadTexture(data []byte, channels blaze.ImageChannels, id uint32, flags blaze.ImageFlags) (blaze.TextureHandle, error) {
	cfg, _, err := imageload.DecodeConfig(data)
	if err != nil {
		return nil, err
	}
	w, h := cfg.Width, cfg.Height
	if flags.Has(blaze.ImagePowerOfTwo) && !flags.Has(blaze.ImageTextureRectangle) {
		w, h = imageload.NextPowerOfTwo(w), imageload.NextPowerOfTwo(h)
	}
	t, err := b.NewTexture(w, h, id)
	if err != nil {
		return nil, err
	}
	if flags.Has(blaze.ImageTextureRepeats) {
		t.wrap = [2]blaze.TextureWrap{blaze.WrapRepeat, blaze.WrapRepeat}
	}
	return t, nil
}

// NewTexture creates a blank texture of the given size. An id of 0 picks
// the next free id.
func (b *Backend) NewTexture(width, height int, id uint32) (*Texture, error) {
	if id == 0 {
		for b.textures[b.nextID] != nil {
			b.nextID++
		}
		id = b.nextID
		b.nextID++
	} else if b.textures[id] != nil {
		return nil, fmt.Errorf("texture id %d already in use", id)
	}
	t := &Texture{backend: b, id: id, width: width, height: height}
	b.textures[id] = t
	return t, nil
}

// Live reports how many textures are loaded and not yet freed.
func (b *Backend) Live() int {
	return len(b.textures)
}

func (b *Backend) takeFailure() error {
	if b.failNext == "" {
		return nil
	}
	msg := b.failNext
	b.failNext = ""
	if msg == "\x00" {
		return errors.New("")
	}
	return errors.New(msg)
}

type batchHandle struct {
	backend *Backend
	index   int
	storage [][]blaze.Quad
	max     int
	freed   bool
}

func (h *batchHandle) DrawBucket(slot int, tex blaze.TextureHandle, quads []blaze.Quad) error {
	if h.freed {
		return errors.New("draw on freed batch")
	}
	if slot < 0 || slot >= len(h.storage) {
		return fmt.Errorf("bucket slot %d out of range", slot)
	}
	if len(quads) > h.max {
		return fmt.Errorf("bucket overflow: %d quads, capacity %d", len(quads), h.max)
	}
	t, ok := tex.(*Texture)
	if !ok || t.backend != h.backend {
		return errors.New("texture belongs to another backend")
	}
	if t.freed {
		return fmt.Errorf("texture %d is freed", t.id)
	}
	if bound := h.backend.bound; bound != nil && bound.tex == t {
		return fmt.Errorf("texture %d is the bound render target", t.id)
	}
	if err := h.backend.takeFailure(); err != nil {
		return err
	}
	if h.storage[slot] == nil {
		h.storage[slot] = make([]blaze.Quad, 0, h.max)
		h.backend.BufferAllocs++
	}
	h.storage[slot] = append(h.storage[slot][:0], quads...)
	h.backend.DrawCalls = append(h.backend.DrawCalls, DrawCall{
		Batch:     h.index,
		Slot:      slot,
		TextureID: t.id,
		Blend:     h.backend.Blend,
		Target:    h.backend.Bound(),
		Quads:     slices.Clone(quads),
	})
	return nil
}

func (h *batchHandle) ReleaseBucket(slot int) error {
	if slot < 0 || slot >= len(h.storage) {
		return fmt.Errorf("bucket slot %d out of range", slot)
	}
	h.storage[slot] = nil
	h.backend.BucketReleases++
	return nil
}

func (h *batchHandle) Free() error {
	if h.freed {
		return errors.New("batch freed twice")
	}
	h.freed = true
	h.storage = nil
	h.backend.BatchesFreed++
	return nil
}

// Texture is a headless texture: an id, a size and sampler state.
type Texture struct {
	backend       *Backend
	id            uint32
	width, height int
	filter        [2]blaze.TextureFilter
	wrap          [2]blaze.TextureWrap
	target        *RenderTarget
	freed         bool
}

// ID implements blaze.TextureHandle.
func (t *Texture) ID() uint32 { return t.id }

// Size implements blaze.TextureHandle.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// SetFilter implements blaze.TextureHandle.
func (t *Texture) SetFilter(minFilter, magFilter blaze.TextureFilter) error {
	if t.freed {
		return fmt.Errorf("texture %d is freed", t.id)
	}
	t.filter = [2]blaze.TextureFilter{minFilter, magFilter}
	return nil
}

// Filter returns the minification and magnification filters.
func (t *Texture) Filter() (minFilter, magFilter blaze.TextureFilter) {
	return t.filter[0], t.filter[1]
}

// SetWrap implements blaze.TextureHandle.
func (t *Texture) SetWrap(wrapS, wrapT blaze.TextureWrap) error {
	if t.freed {
		return fmt.Errorf("texture %d is freed", t.id)
	}
	t.wrap = [2]blaze.TextureWrap{wrapS, wrapT}
	return nil
}

// Wrap returns the wrap modes of the s and t axes.
func (t *Texture) Wrap() (wrapS, wrapT blaze.TextureWrap) {
	return t.wrap[0], t.wrap[1]
}

// Free implements blaze.TextureHandle.
func (t *Texture) Free() error {
	if t.freed {
		return fmt.Errorf("texture %d freed twice", t.id)
	}
	if t.target != nil && !t.target.freed {
		return fmt.Errorf("texture %d belongs to a render target", t.id)
	}
	t.freed = true
	delete(t.backend.textures, t.id)
	t.backend.TexturesFreed++
	return nil
}

// RenderTarget is a headless offscreen target backed by a Texture.
type RenderTarget struct {
	tex   *Texture
	freed bool
}

// Texture implements blaze.RenderTargetHandle.
func (r *RenderTarget) Texture() blaze.TextureHandle { return r.tex }

// Free implements blaze.RenderTargetHandle.
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
