// Package ecs connects blaze to a [Donburi] world.
//
// Entities carrying [SpriteComponent] are drawn by [DrawSprites]. [Present]
// additionally flushes the batch and publishes the frame statistics as a
// [PresentedEventType] event, so ECS systems can react to draw-call counts.
//
// Usage:
//
//	e := world.Create(ecs.SpriteComponent)
//	ecs.SpriteComponent.SetValue(world.Entry(e), *blaze.NewSprite(tex, 10, 10))
//	...
//	if err := ecs.Present(world, batch); err != nil {
//		return err
//	}
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
