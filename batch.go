package blaze

import (
	"fmt"
	"time"
)

// Options configures a SpriteBatch.
type Options struct {
	// MaxBuckets is the number of distinct textures a batch can hold
	// between presents. Must be greater than zero.
	MaxBuckets int `yaml:"max_buckets" json:"max_buckets"`
	// MaxSpritesPerBucket is the number of quads each bucket can hold.
	// Must be greater than zero.
	MaxSpritesPerBucket int `yaml:"max_sprites_per_bucket" json:"max_sprites_per_bucket"`
	// Flags selects the buffering mode.
	Flags InitFlags `yaml:"flags" json:"flags"`
}

// Validate reports ErrInvalidArgument for non-positive limits or undefined flags.
func (o Options) Validate() error {
	if o.MaxBuckets <= 0 {
		return invalidArg("max buckets must be greater than zero, got %d", o.MaxBuckets)
	}
	if o.MaxSpritesPerBucket <= 0 {
		return invalidArg("max sprites per bucket must be greater than zero, got %d", o.MaxSpritesPerBucket)
	}
	if o.Flags&^initFlagsAll != 0 {
		return invalidArg("undefined init flags 0x%x", uint32(o.Flags&^initFlagsAll))
	}
	return nil
}

// SpriteBatch collects sprites into per-texture buckets and draws each
// non-empty bucket with one backend call on Present.
//
// Buckets are drawn in the order their textures were first seen, and quads
// within a bucket in submission order. A SpriteBatch is not safe for
// concurrent use.
type SpriteBatch struct {
	backend Backend
	handle  BatchHandle
	opts    Options
	set     bucketSet
	stats   FrameStats

	// immediate is a one-quad handle created on first DrawImmediate.
	immediate BatchHandle
	scratch   [1]Quad
}

// NewSpriteBatch validates opts and acquires backend storage. On failure
// nothing is held and the returned batch is nil.
func NewSpriteBatch(backend Backend, opts Options) (*SpriteBatch, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, invalidArg("nil backend")
	}
	h, err := backend.CreateBatch(opts)
	if err != nil {
		return nil, backendError("create batch", err)
	}
	if h == nil {
		return nil, backendError("create batch", nil)
	}
	return &SpriteBatch{
		backend: backend,
		handle:  h,
		opts:    opts,
		set:     newBucketSet(opts.MaxBuckets, opts.MaxSpritesPerBucket),
	}, nil
}

// Options returns the limits the batch was created with.
func (b *SpriteBatch) Options() Options {
	return b.opts
}

// BucketCount returns the number of buckets created so far.
func (b *SpriteBatch) BucketCount() int {
	return len(b.set.buckets)
}

// Len returns the number of quads waiting for the next Present.
func (b *SpriteBatch) Len() int {
	return b.set.len()
}

// Stats returns the statistics of the most recent Present.
func (b *SpriteBatch) Stats() FrameStats {
	return b.stats
}

// Draw queues a sprite of tex described by opts.
func (b *SpriteBatch) Draw(tex *Texture, opts DrawOptions) error {
	if err := b.checkTexture(tex); err != nil {
		return err
	}
	return b.set.submit(tex, BuildQuad(tex.Width, tex.Height, opts))
}

// LowerDraw queues a caller-built quad for tex, skipping geometry
// computation. It is subject to the same capacity limits as Draw.
func (b *SpriteBatch) LowerDraw(tex *Texture, q Quad) error {
	if err := b.checkTexture(tex); err != nil {
		return err
	}
	return b.set.submit(tex, q)
}

// DrawImmediate draws one sprite now, in its own draw call, with the
// current blend mode and target. Queued sprites are left untouched and are
// drawn on the next Present.
func (b *SpriteBatch) DrawImmediate(tex *Texture, opts DrawOptions) error {
	if err := b.checkTexture(tex); err != nil {
		return err
	}
	return b.drawImmediate(tex, BuildQuad(tex.Width, tex.Height, opts))
}

// LowerDrawImmediate draws a caller-built quad now, in its own draw call.
func (b *SpriteBatch) LowerDrawImmediate(tex *Texture, q Quad) error {
	if err := b.checkTexture(tex); err != nil {
		return err
	}
	return b.drawImmediate(tex, q)
}

func (b *SpriteBatch) drawImmediate(tex *Texture, q Quad) error {
	if b.immediate == nil {
		h, err := b.backend.CreateBatch(Options{MaxBuckets: 1, MaxSpritesPerBucket: 1})
		if err != nil {
			return backendError("create immediate batch", err)
		}
		if h == nil {
			return backendError("create immediate batch", nil)
		}
		b.immediate = h
	}
	b.scratch[0] = q
	if err := b.immediate.DrawBucket(0, tex.handle, b.scratch[:]); err != nil {
		return backendError("draw immediate", err)
	}
	return nil
}

func (b *SpriteBatch) checkTexture(tex *Texture) error {
	if b.handle == nil {
		return ErrFreed
	}
	if tex == nil {
		return invalidArg("nil texture")
	}
	if tex.Freed() {
		return fmt.Errorf("%w: texture %d", ErrFreed, tex.ID)
	}
	return nil
}

// Present draws every non-empty bucket in slot order and resets them for
// the next frame. Presenting an empty batch issues no draw calls.
//
// If a draw fails the remaining buckets are skipped, every bucket is still
// reset so the frame is never re-submitted, and the first error is returned.
func (b *SpriteBatch) Present() error {
	if b.handle == nil {
		return ErrFreed
	}
	start := time.Now()
	noBuffering := b.opts.Flags&InitNoBuffering != 0

	stats := FrameStats{Buckets: len(b.set.buckets)}
	var firstErr error
	for slot := range b.set.buckets {
		bk := &b.set.buckets[slot]
		if len(bk.quads) == 0 {
			continue
		}
		if firstErr == nil {
			firstErr = b.drawBucket(slot, bk)
			if firstErr == nil {
				stats.DrawCalls++
				stats.Quads += len(bk.quads)
			}
		}
		if noBuffering {
			if err := b.handle.ReleaseBucket(slot); err != nil && firstErr == nil {
				firstErr = backendError("release bucket", err)
			}
			bk.quads = nil
		} else {
			bk.quads = bk.quads[:0]
		}
	}

	stats.Duration = time.Since(start)
	b.stats = stats
	stats.log()
	return firstErr
}

func (b *SpriteBatch) drawBucket(slot int, bk *bucket) error {
	h := bk.tex.Handle()
	if h == nil {
		return fmt.Errorf("%w: texture %d freed before present", ErrFreed, bk.tex.ID)
	}
	if err := b.handle.DrawBucket(slot, h, bk.quads); err != nil {
		return backendError("draw", err)
	}
	return nil
}

// Free releases the backend storage of every bucket. It is safe to call on
// a batch that was never presented, and later calls do nothing.
func (b *SpriteBatch) Free() error {
	if b.handle == nil {
		return nil
	}
	h := b.handle
	b.handle = nil
	b.set = bucketSet{}
	if b.immediate != nil {
		if err := b.immediate.Free(); err != nil {
			Logger().Warn("blaze: free immediate batch", "err", err)
		}
		b.immediate = nil
	}
	if err := h.Free(); err != nil {
		Logger().Warn("blaze: free batch", "err", err)
		return backendError("free batch", err)
	}
	return nil
}
