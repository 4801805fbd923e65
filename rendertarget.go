package blaze

import "fmt"

// RenderTarget is an offscreen image. While bound, draws and clears go into
// it instead of the default target; its Texture can then be drawn like any
// loaded texture.
type RenderTarget struct {
	Texture *Texture

	handle RenderTargetHandle
}

// NewRenderTarget allocates a width x height offscreen target on b.
func NewRenderTarget(b Backend, width, height int) (*RenderTarget, error) {
	if b == nil {
		return nil, invalidArg("nil backend")
	}
	if width <= 0 || height <= 0 {
		return nil, invalidArg("render target %dx%d", width, height)
	}
	h, err := b.CreateRenderTarget(width, height)
	if err != nil {
		return nil, backendError("create render target", err)
	}
	if h == nil || h.Texture() == nil {
		return nil, backendError("create render target", nil)
	}
	th := h.Texture()
	w, ht := th.Size()
	rt := &RenderTarget{
		Texture: &Texture{ID: th.ID(), Width: w, Height: ht, handle: th, target: true},
		handle:  h,
	}
	Logger().Debug("blaze: render target created", "id", rt.Texture.ID, "width", w, "height", ht)
	return rt, nil
}

// BindRenderTarget redirects draws and clears on b into rt. A nil rt binds
// the default target again.
//
// Batches hold sprites until Present, so present any batch whose sprites
// belong to the previous target before switching.
func BindRenderTarget(b Backend, rt *RenderTarget) error {
	if b == nil {
		return invalidArg("nil backend")
	}
	var h RenderTargetHandle
	if rt != nil {
		if rt.handle == nil {
			return fmt.Errorf("%w: render target %d", ErrFreed, rt.Texture.ID)
		}
		h = rt.handle
	}
	if err := b.BindRenderTarget(h); err != nil {
		return backendError("bind render target", err)
	}
	return nil
}

// Freed reports whether Free has been called.
func (rt *RenderTarget) Freed() bool {
	return rt.handle == nil
}

// Free releases the target and its texture. Later calls do nothing.
func (rt *RenderTarget) Free() error {
	if rt.handle == nil {
		return nil
	}
	h := rt.handle
	rt.handle = nil
	rt.Texture.handle = nil
	if err := h.Free(); err != nil {
		return backendError("free render target", err)
	}
	return nil
}
