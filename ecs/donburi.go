package ecs

import (
	"fmt"

	"github.com/phanxgames/blaze"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"
)

// SpriteComponent stores a retained sprite on an entity.
var SpriteComponent = donburi.NewComponentType[blaze.Sprite]()

// PresentedEventType carries the stats of every Present call.
// Subscribe to it and call ProcessEvents to receive them.
var PresentedEventType = events.NewEventType[blaze.FrameStats]()

var spriteQuery = query.NewQuery(filter.Contains(SpriteComponent))

// DrawSprites queues every sprite entity of world into batch. Entities
// whose sprite has no texture are skipped. After the first failure the
// remaining entities are skipped and the error is returned with the
// entity that caused it.
func DrawSprites(world donburi.World, batch *blaze.SpriteBatch) error {
	var firstErr error
	spriteQuery.Each(world, func(entry *donburi.Entry) {
		if firstErr != nil {
			return
		}
		s := SpriteComponent.Get(entry)
		if s.Texture == nil {
			return
		}
		if err := s.Draw(batch); err != nil {
			firstErr = fmt.Errorf("ecs: draw entity %v: %w", entry.Entity(), err)
		}
	})
	return firstErr
}

// Present draws all sprite entities, presents the batch and publishes the
// resulting stats to PresentedEventType.
func Present(world donburi.World, batch *blaze.SpriteBatch) error {
	if err := DrawSprites(world, batch); err != nil {
		return err
	}
	if err := batch.Present(); err != nil {
		return err
	}
	PresentedEventType.Publish(world, batch.Stats())
	return nil
}
