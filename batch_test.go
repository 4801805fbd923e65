package blaze_test

import (
	"errors"
	"math"
	"testing"

	"github.com/phanxgames/blaze"
	"github.com/phanxgames/blaze/headless"
)

func newBatch(t *testing.T, opts blaze.Options) (*headless.Backend, *blaze.SpriteBatch) {
	t.Helper()
	b := headless.New()
	batch, err := blaze.NewSpriteBatch(b, opts)
	if err != nil {
		t.Fatalf("NewSpriteBatch: %v", err)
	}
	t.Cleanup(func() { batch.Free() })
	return b, batch
}

func newTexture(t *testing.T, b *headless.Backend, w, h int) *blaze.Texture {
	t.Helper()
	th, err := b.NewTexture(w, h, 0)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	tex, err := blaze.NewTexture(th)
	if err != nil {
		t.Fatalf("wrap texture: %v", err)
	}
	return tex
}

func at(x, y float64) blaze.DrawOptions {
	return blaze.DrawOptions{Position: blaze.Vec2{X: x, Y: y}, Color: blaze.ColorWhite}
}

// --- creation and release ---

func TestNewSpriteBatchRejectsZeroLimits(t *testing.T) {
	cases := []blaze.Options{
		{MaxBuckets: 0, MaxSpritesPerBucket: 0},
		{MaxBuckets: 0, MaxSpritesPerBucket: 10},
		{MaxBuckets: 4, MaxSpritesPerBucket: 0},
		{MaxBuckets: -1, MaxSpritesPerBucket: 10},
		{MaxBuckets: 1, MaxSpritesPerBucket: 1, Flags: 4},
	}
	for _, opts := range cases {
		b := headless.New()
		batch, err := blaze.NewSpriteBatch(b, opts)
		if !errors.Is(err, blaze.ErrInvalidArgument) {
			t.Errorf("%+v: err = %v, want ErrInvalidArgument", opts, err)
		}
		if batch != nil {
			t.Errorf("%+v: batch returned on error", opts)
		}
		if b.BatchesCreated != 0 {
			t.Errorf("%+v: backend storage acquired on invalid options", opts)
		}
	}
}

func TestNewSpriteBatchNilBackend(t *testing.T) {
	_, err := blaze.NewSpriteBatch(nil, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 1})
	if !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestFreeReleasesOnce(t *testing.T) {
	b := headless.New()
	batch, err := blaze.NewSpriteBatch(b, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := batch.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := batch.Free(); err != nil {
		t.Fatalf("second Free: %v", err)
	}
	if b.BatchesFreed != 1 {
		t.Errorf("BatchesFreed = %d, want 1", b.BatchesFreed)
	}

	tex := newTexture(t, b, 4, 4)
	if err := batch.Draw(tex, at(0, 0)); !errors.Is(err, blaze.ErrFreed) {
		t.Errorf("Draw after Free: %v", err)
	}
	if err := batch.Present(); !errors.Is(err, blaze.ErrFreed) {
		t.Errorf("Present after Free: %v", err)
	}
}

func TestFreeBeforePresent(t *testing.T) {
	b := headless.New()
	batch, err := blaze.NewSpriteBatch(b, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 2})
	if err != nil {
		t.Fatal(err)
	}
	tex := newTexture(t, b, 4, 4)
	if err := batch.Draw(tex, at(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := batch.Free(); err != nil {
		t.Fatal(err)
	}
	if len(b.DrawCalls) != 0 || b.BatchesFreed != 1 {
		t.Errorf("draws=%d freed=%d", len(b.DrawCalls), b.BatchesFreed)
	}
}

// --- batching ---

func TestTwoTexturesTwelveRotations(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 100})
	texA := newTexture(t, b, 32, 32)
	texB := newTexture(t, b, 64, 16)

	for i := 0; i < 12; i++ {
		opts := at(100, 100)
		opts.Rotation = blaze.Degrees(float64(i * 30))
		if err := batch.Draw(texA, opts); err != nil {
			t.Fatalf("draw A %d: %v", i, err)
		}
		if err := batch.Draw(texB, opts); err != nil {
			t.Fatalf("draw B %d: %v", i, err)
		}
	}
	if err := batch.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	if len(b.DrawCalls) != 2 {
		t.Fatalf("draw calls = %d, want 2", len(b.DrawCalls))
	}
	for i, want := range []uint32{texA.ID, texB.ID} {
		dc := b.DrawCalls[i]
		if dc.TextureID != want || dc.Slot != i {
			t.Errorf("call %d: texture %d slot %d, want texture %d slot %d", i, dc.TextureID, dc.Slot, want, i)
		}
		if len(dc.Quads) != 12 {
			t.Errorf("call %d: %d quads, want 12", i, len(dc.Quads))
		}
	}

	// Quads keep submission order: the TR corner of sprite i sits at angle
	// i*30, counter-clockwise on the y-down screen.
	for i, q := range b.DrawCalls[0].Quads {
		a := math.Atan2(float64(100-q[1].Y), float64(q[1].X-100))
		want := blaze.Degrees(float64(i * 30))
		diff := math.Remainder(a-want, 2*math.Pi)
		if math.Abs(diff) > 1e-4 {
			t.Errorf("quad %d angle = %v, want %v", i, a, want)
		}
	}

	st := batch.Stats()
	if st.Buckets != 2 || st.DrawCalls != 2 || st.Quads != 24 {
		t.Errorf("stats = %+v", st)
	}
}

func TestPresentEmptyIssuesNothing(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 2})
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if len(b.DrawCalls) != 0 {
		t.Errorf("draw calls = %d, want 0", len(b.DrawCalls))
	}
}

func TestPresentTwiceIsIdempotent(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 2})
	tex := newTexture(t, b, 8, 8)
	if err := batch.Draw(tex, at(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if len(b.DrawCalls) != 1 {
		t.Errorf("draw calls = %d, want 1", len(b.DrawCalls))
	}
	if batch.Len() != 0 {
		t.Errorf("Len = %d after present", batch.Len())
	}
}

func TestEmptyBucketSkippedButSlotKept(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 2})
	texA := newTexture(t, b, 8, 8)
	texB := newTexture(t, b, 8, 8)
	batch.Draw(texA, at(0, 0))
	batch.Draw(texB, at(0, 0))
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	b.Reset()

	// Second frame only uses B, which keeps slot 1.
	batch.Draw(texB, at(0, 0))
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if len(b.DrawCalls) != 1 || b.DrawCalls[0].Slot != 1 {
		t.Errorf("draw calls = %+v", b.DrawCalls)
	}
	if batch.BucketCount() != 2 {
		t.Errorf("BucketCount = %d, want 2", batch.BucketCount())
	}
}

func TestBucketCapacity(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 4})
	for i := 0; i < 2; i++ {
		if err := batch.Draw(newTexture(t, b, 4, 4), at(0, 0)); err != nil {
			t.Fatal(err)
		}
	}
	err := batch.Draw(newTexture(t, b, 4, 4), at(0, 0))
	var ce *blaze.CapacityError
	if !errors.As(err, &ce) || ce.Resource != blaze.CapacityBuckets {
		t.Fatalf("err = %v, want bucket capacity error", err)
	}

	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if len(b.DrawCalls) != 2 {
		t.Errorf("draw calls = %d, want 2", len(b.DrawCalls))
	}
}

func TestSpriteCapacity(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 3})
	tex := newTexture(t, b, 4, 4)
	for i := 0; i < 3; i++ {
		if err := batch.Draw(tex, at(float64(i), 0)); err != nil {
			t.Fatal(err)
		}
	}
	err := batch.Draw(tex, at(99, 0))
	if !errors.Is(err, blaze.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if n := len(b.DrawCalls[0].Quads); n != 3 {
		t.Errorf("quads = %d, want 3", n)
	}

	// Capacity is per frame.
	if err := batch.Draw(tex, at(0, 0)); err != nil {
		t.Errorf("draw after present: %v", err)
	}
}

func TestLowerDrawPassesQuadThrough(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 2})
	tex := newTexture(t, b, 4, 4)
	q := blaze.Quad{
		{X: 1, Y: 2, U: 0.1, V: 0.2, Color: blaze.Color{R: 1, A: 1}},
		{X: 3, Y: 4, U: 0.3, V: 0.4},
		{X: 5, Y: 6, U: 0.5, V: 0.6},
		{X: 7, Y: 8, U: 0.7, V: 0.8},
	}
	if err := batch.LowerDraw(tex, q); err != nil {
		t.Fatal(err)
	}
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if got := b.DrawCalls[0].Quads[0]; got != q {
		t.Errorf("quad = %v, want %v", got, q)
	}
}

func TestDrawImmediateLeavesBucketsAlone(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 1})
	queued := newTexture(t, b, 4, 4)
	other := newTexture(t, b, 8, 8)
	if err := batch.Draw(queued, at(0, 0)); err != nil {
		t.Fatal(err)
	}

	// Neither the full bucket set nor the full bucket limits immediate draws.
	if err := batch.DrawImmediate(other, at(10, 20)); err != nil {
		t.Fatalf("DrawImmediate: %v", err)
	}
	q := blaze.BuildQuad(8, 8, at(1, 2))
	if err := batch.LowerDrawImmediate(other, q); err != nil {
		t.Fatalf("LowerDrawImmediate: %v", err)
	}
	if len(b.DrawCalls) != 2 {
		t.Fatalf("draw calls = %d, want 2", len(b.DrawCalls))
	}
	for i, dc := range b.DrawCalls {
		if dc.TextureID != other.ID || len(dc.Quads) != 1 {
			t.Errorf("call %d = texture %d, %d quads", i, dc.TextureID, len(dc.Quads))
		}
	}
	if got := b.DrawCalls[0].Quads[0][blaze.CornerTL]; got.X != 10 || got.Y != 20 {
		t.Errorf("immediate TL = (%v,%v), want (10,20)", got.X, got.Y)
	}
	if b.DrawCalls[1].Quads[0] != q {
		t.Error("LowerDrawImmediate changed the quad")
	}
	if batch.Len() != 1 || batch.BucketCount() != 1 {
		t.Errorf("Len=%d buckets=%d, want 1/1", batch.Len(), batch.BucketCount())
	}

	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if len(b.DrawCalls) != 3 || b.DrawCalls[2].TextureID != queued.ID {
		t.Errorf("present did not draw the queued sprite: %+v", b.DrawCalls)
	}
	if st := batch.Stats(); st.DrawCalls != 1 {
		t.Errorf("present stats = %+v, want one draw call", st)
	}
}

func TestDrawImmediateErrors(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 1})
	tex := newTexture(t, b, 4, 4)

	b.FailNextDraw("lost context")
	err := batch.DrawImmediate(tex, at(0, 0))
	var be *blaze.BackendError
	if !errors.As(err, &be) || be.Message != "lost context" {
		t.Errorf("err = %v, want backend error", err)
	}
	if err := batch.DrawImmediate(nil, at(0, 0)); !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Errorf("nil texture: %v", err)
	}

	if err := batch.Free(); err != nil {
		t.Fatal(err)
	}
	// The batch handle and the lazily created immediate handle.
	if b.BatchesCreated != 2 || b.BatchesFreed != 2 {
		t.Errorf("created=%d freed=%d, want 2/2", b.BatchesCreated, b.BatchesFreed)
	}
	if err := batch.LowerDrawImmediate(tex, blaze.Quad{}); !errors.Is(err, blaze.ErrFreed) {
		t.Errorf("after Free: %v", err)
	}
}

func TestDrawInvalidTexture(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 2})
	if err := batch.Draw(nil, at(0, 0)); !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Errorf("nil texture: %v", err)
	}
	tex := newTexture(t, b, 4, 4)
	tex.Free()
	if err := batch.Draw(tex, at(0, 0)); !errors.Is(err, blaze.ErrFreed) {
		t.Errorf("freed texture: %v", err)
	}
	if err := batch.LowerDraw(tex, blaze.Quad{}); !errors.Is(err, blaze.ErrFreed) {
		t.Errorf("freed texture lower draw: %v", err)
	}
}

// --- buffering ---

func TestDefaultBufferingReusesStorage(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 4})
	tex := newTexture(t, b, 4, 4)
	for frame := 0; frame < 3; frame++ {
		batch.Draw(tex, at(0, 0))
		if err := batch.Present(); err != nil {
			t.Fatal(err)
		}
	}
	if b.BufferAllocs != 1 || b.BucketReleases != 0 {
		t.Errorf("allocs=%d releases=%d, want 1 and 0", b.BufferAllocs, b.BucketReleases)
	}
}

func TestNoBufferingReleasesEveryPresent(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 4, Flags: blaze.InitNoBuffering})
	texA := newTexture(t, b, 4, 4)
	texB := newTexture(t, b, 4, 4)
	for frame := 0; frame < 3; frame++ {
		batch.Draw(texA, at(0, 0))
		batch.Draw(texB, at(0, 0))
		if err := batch.Present(); err != nil {
			t.Fatal(err)
		}
	}
	if b.BucketReleases != 6 {
		t.Errorf("BucketReleases = %d, want 6", b.BucketReleases)
	}
	if b.BufferAllocs != 6 {
		t.Errorf("BufferAllocs = %d, want 6", b.BufferAllocs)
	}
	if len(b.DrawCalls) != 6 {
		t.Errorf("draw calls = %d, want 6", len(b.DrawCalls))
	}
}

// --- backend failures ---

func TestPresentBackendErrorWithoutMessage(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 4})
	tex := newTexture(t, b, 4, 4)
	batch.Draw(tex, at(0, 0))
	b.FailNextDraw("")

	err := batch.Present()
	var be *blaze.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BackendError", err)
	}
	if be.Message != "Unknown error" {
		t.Errorf("Message = %q, want Unknown error", be.Message)
	}
}

func TestPresentBackendErrorResetsAllBuckets(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 2, MaxSpritesPerBucket: 4})
	texA := newTexture(t, b, 4, 4)
	texB := newTexture(t, b, 4, 4)
	batch.Draw(texA, at(0, 0))
	batch.Draw(texB, at(0, 0))
	b.FailNextDraw("device lost")

	err := batch.Present()
	var be *blaze.BackendError
	if !errors.As(err, &be) || be.Message != "device lost" {
		t.Fatalf("err = %v", err)
	}
	if len(b.DrawCalls) != 0 {
		t.Errorf("draw calls after failure = %d, want 0", len(b.DrawCalls))
	}
	if batch.Len() != 0 {
		t.Errorf("Len = %d, want 0", batch.Len())
	}

	// The next frame works normally.
	batch.Draw(texB, at(0, 0))
	if err := batch.Present(); err != nil {
		t.Fatal(err)
	}
	if len(b.DrawCalls) != 1 {
		t.Errorf("draw calls = %d, want 1", len(b.DrawCalls))
	}
}

func TestPresentTextureFreedAfterDraw(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 4})
	tex := newTexture(t, b, 4, 4)
	batch.Draw(tex, at(0, 0))
	tex.Free()
	if err := batch.Present(); !errors.Is(err, blaze.ErrFreed) {
		t.Errorf("err = %v, want ErrFreed", err)
	}
}

// --- blend and viewport ---

func TestBlendModeAppliesToFollowingPresents(t *testing.T) {
	b, batch := newBatch(t, blaze.Options{MaxBuckets: 1, MaxSpritesPerBucket: 4})
	tex := newTexture(t, b, 4, 4)

	if err := blaze.SetBlendMode(b, blaze.BlendAdditive); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		batch.Draw(tex, at(0, 0))
		if err := batch.Present(); err != nil {
			t.Fatal(err)
		}
	}
	for i, dc := range b.DrawCalls {
		if dc.Blend != blaze.BlendAdditive {
			t.Errorf("call %d blend = %v, want additive", i, dc.Blend)
		}
	}
}

func TestSetBlendModeRejectsUndefinedFactor(t *testing.T) {
	b := headless.New()
	err := blaze.SetBlendMode(b, blaze.BlendMode{Src: blaze.BlendFactor(42), Dst: blaze.BlendFactorOne})
	if !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if b.Blend != blaze.BlendNormal {
		t.Errorf("blend changed to %v", b.Blend)
	}
}

func TestBackendHelpersRejectNilBackend(t *testing.T) {
	if err := blaze.SetBlendMode(nil, blaze.BlendAdditive); !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Errorf("SetBlendMode(nil) = %v, want ErrInvalidArgument", err)
	}
	if err := blaze.SetViewport(nil, 640, 480); !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Errorf("SetViewport(nil) = %v, want ErrInvalidArgument", err)
	}
}

func TestParseBlendMode(t *testing.T) {
	cases := map[string]blaze.BlendMode{
		"normal":   blaze.BlendNormal,
		"Additive": blaze.BlendAdditive,
		"multiply": blaze.BlendMultiply,
	}
	for name, want := range cases {
		got, err := blaze.ParseBlendMode(name)
		if err != nil || got != want {
			t.Errorf("ParseBlendMode(%q) = %v, %v", name, got, err)
		}
		if got.String() != want.String() {
			t.Errorf("String mismatch for %q", name)
		}
	}
	if _, err := blaze.ParseBlendMode("screen"); !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Errorf("unknown mode: %v", err)
	}
}

func TestSetViewport(t *testing.T) {
	b := headless.New()
	if err := blaze.SetViewport(b, 0, 10); !errors.Is(err, blaze.ErrInvalidArgument) {
		t.Errorf("zero width: %v", err)
	}
	if err := blaze.SetViewport(b, 640, 480); err != nil {
		t.Fatal(err)
	}
	if b.Viewport != [2]int{640, 480} {
		t.Errorf("Viewport = %v", b.Viewport)
	}
}

func TestClearAndClearColor(t *testing.T) {
	b := headless.New()
	c := blaze.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	b.SetClearColor(c)
	b.Clear(blaze.ClearColor | blaze.ClearDepth)
	if b.ClearColor != c {
		t.Errorf("ClearColor = %v", b.ClearColor)
	}
	if len(b.Clears) != 1 || b.Clears[0] != blaze.ClearColor|blaze.ClearDepth {
		t.Errorf("Clears = %v", b.Clears)
	}
}
