package blaze

// StaticBatch holds sprites of a single texture that are drawn once and
// presented many times. Presenting does not clear the batch.
type StaticBatch struct {
	handle  BatchHandle
	tex     *Texture
	quads   []Quad
	scratch []Quad
	max     int
}

// NewStaticBatch acquires backend storage for up to maxSprites quads of tex.
func NewStaticBatch(backend Backend, tex *Texture, maxSprites int) (*StaticBatch, error) {
	if backend == nil {
		return nil, invalidArg("nil backend")
	}
	if tex == nil || tex.Freed() {
		return nil, invalidArg("static batch needs a live texture")
	}
	opts := Options{MaxBuckets: 1, MaxSpritesPerBucket: maxSprites}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	h, err := backend.CreateBatch(opts)
	if err != nil {
		return nil, backendError("create static batch", err)
	}
	if h == nil {
		return nil, backendError("create static batch", nil)
	}
	return &StaticBatch{
		handle: h,
		tex:    tex,
		quads:  make([]Quad, 0, maxSprites),
		max:    maxSprites,
	}, nil
}

// Len returns the number of baked quads.
func (b *StaticBatch) Len() int {
	return len(b.quads)
}

// Draw bakes a sprite into the batch.
func (b *StaticBatch) Draw(opts DrawOptions) error {
	return b.LowerDraw(BuildQuad(b.tex.Width, b.tex.Height, opts))
}

// LowerDraw bakes a caller-built quad into the batch.
func (b *StaticBatch) LowerDraw(q Quad) error {
	if b.handle == nil {
		return ErrFreed
	}
	if len(b.quads) >= b.max {
		return &CapacityError{Resource: CapacitySprites, Limit: b.max}
	}
	b.quads = append(b.quads, q)
	return nil
}

// Reset drops every baked quad.
func (b *StaticBatch) Reset() {
	b.quads = b.quads[:0]
}

// Present draws all baked quads in one call. A non-nil transform is applied
// to every position for this present only.
func (b *StaticBatch) Present(transform *Affine) error {
	if b.handle == nil {
		return ErrFreed
	}
	if len(b.quads) == 0 {
		return nil
	}
	h := b.tex.Handle()
	if h == nil {
		return ErrFreed
	}
	quads := b.quads
	if transform != nil {
		b.scratch = b.scratch[:0]
		for _, q := range b.quads {
			b.scratch = append(b.scratch, q.Transformed(*transform))
		}
		quads = b.scratch
	}
	if err := b.handle.DrawBucket(0, h, quads); err != nil {
		return backendError("draw static", err)
	}
	return nil
}

// Free releases the backend storage. Later calls do nothing.
func (b *StaticBatch) Free() error {
	if b.handle == nil {
		return nil
	}
	h := b.handle
	b.handle = nil
	b.quads, b.scratch = nil, nil
	if err := h.Free(); err != nil {
		Logger().Warn("blaze: free static batch", "err", err)
		return backendError("free static batch", err)
	}
	return nil
}
