package blaze

// Backend is the GPU-facing collaborator a SpriteBatch submits to. It owns
// the graphics context: texture storage, per-batch vertex storage, blend
// state, viewport and clear state.
//
// Every fallible call returns its own error value; there is no shared
// last-error state to read afterwards.
type Backend interface {
	TextureLoader

	// CreateBatch acquires backend storage for a batch with the given limits.
	CreateBatch(opts Options) (BatchHandle, error)

	// SetBlendMode changes the blend factors used by subsequent draws.
	SetBlendMode(mode BlendMode) error

	// SetViewport sets the size of the pixel space sprites are drawn in.
	SetViewport(width, height int) error

	// SetClearColor sets the color used by Clear.
	SetClearColor(c Color)

	// Clear resets the selected buffers of the current target.
	Clear(opts ClearOptions)

	// CreateRenderTarget allocates an offscreen target of the given size.
	CreateRenderTarget(width, height int) (RenderTargetHandle, error)

	// BindRenderTarget redirects later draws and clears into rt. A nil rt
	// restores the default target.
	BindRenderTarget(rt RenderTargetHandle) error
}

// BatchHandle is the backend side of one batch. Slots are the batch's bucket
// indices in creation order.
type BatchHandle interface {
	// DrawBucket uploads quads as the vertex stream of slot and draws them
	// with tex in a single draw call.
	DrawBucket(slot int, tex TextureHandle, quads []Quad) error

	// ReleaseBucket discards the storage backing slot. The next DrawBucket
	// for that slot allocates fresh storage.
	ReleaseBucket(slot int) error

	// Free releases all storage held by the handle.
	Free() error
}

// TextureLoader creates textures from encoded image bytes.
type TextureLoader interface {
	// LoadTexture decodes data and uploads it. An id of 0 lets the backend
	// pick one.
	LoadTexture(data []byte, channels ImageChannels, id uint32, flags ImageFlags) (TextureHandle, error)
}

// TextureHandle is a backend texture.
type TextureHandle interface {
	ID() uint32
	Size() (width, height int)
	SetFilter(minFilter, magFilter TextureFilter) error
	SetWrap(wrapS, wrapT TextureWrap) error
	Free() error
}

// RenderTargetHandle is an offscreen image owned by a backend.
type RenderTargetHandle interface {
	// Texture is the target's color image, sampled like any other texture.
	Texture() TextureHandle
	// Free releases the target and its texture. A bound target is unbound
	// first.
	Free() error
}

// SetViewport forwards the viewport size to b after checking it is positive.
func SetViewport(b Backend, width, height int) error {
	if b == nil {
		return invalidArg("nil backend")
	}
	if width <= 0 || height <= 0 {
		return invalidArg("viewport %dx%d", width, height)
	}
	if err := b.SetViewport(width, height); err != nil {
		return backendError("set viewport", err)
	}
	return nil
}
