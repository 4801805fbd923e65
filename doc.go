// Package blaze is a bucketed 2D sprite batcher.
//
// Sprites are turned into quads on the CPU and grouped by texture into a
// fixed number of buckets. [SpriteBatch.Present] then issues one backend
// draw call per non-empty bucket, in the order the textures were first
// seen, so a frame of thousands of sprites costs as many draw calls as it
// has distinct textures.
//
// # Quick start
//
//	backend := ebitenbackend.New()
//	batch, err := blaze.NewSpriteBatch(backend, blaze.Options{
//		MaxBuckets:          4,
//		MaxSpritesPerBucket: 1000,
//	})
//	if err != nil {
//		return err
//	}
//	defer batch.Free()
//
//	tex, err := blaze.LoadTextureFromFile(backend, "hero.png", blaze.ChannelsAuto, blaze.ImageNone)
//	if err != nil {
//		return err
//	}
//	defer tex.Free()
//
//	batch.Draw(tex, blaze.DrawOptions{Position: blaze.Vec2{X: 20, Y: 20}, Color: blaze.ColorWhite})
//	return batch.Present()
//
// # Geometry
//
// [BuildQuad] applies, in order: translate by -Origin, scale, rotate, then
// translate to Position. Vertices are stored TL, TR, BR, BL. [Flip] only
// permutes texture coordinates; positions never move.
//
// # Limits
//
// A batch holds at most MaxBuckets distinct textures and MaxSpritesPerBucket
// quads per texture between presents. Exceeding either returns a
// [*CapacityError]; nothing is silently dropped beyond the rejected quad.
//
// # Backends
//
// The GPU side is the [Backend] interface. Package ebitenbackend draws with
// [Ebitengine]; package headless records draw calls without a GPU and is
// what the tests and the blazereplay tool use.
//
// [Ebitengine]: https://ebitengine.org
package blaze
