package blaze

// bucket groups quads that share a texture and are drawn together in a
// single backend call.
type bucket struct {
	tex   *Texture
	quads []Quad
}

// bucketSet is a capacity-checked multiplexer from textures to buckets.
// Slots are assigned in first-seen order and never reassigned.
type bucketSet struct {
	buckets    []bucket
	slots      map[*Texture]int
	maxBuckets int
	maxQuads   int
}

func newBucketSet(maxBuckets, maxQuads int) bucketSet {
	return bucketSet{
		buckets:    make([]bucket, 0, maxBuckets),
		slots:      make(map[*Texture]int, maxBuckets),
		maxBuckets: maxBuckets,
		maxQuads:   maxQuads,
	}
}

// submit appends q to the bucket keyed by tex, creating it if needed.
func (s *bucketSet) submit(tex *Texture, q Quad) error {
	slot, ok := s.slots[tex]
	if !ok {
		if len(s.buckets) >= s.maxBuckets {
			return &CapacityError{Resource: CapacityBuckets, Limit: s.maxBuckets}
		}
		slot = len(s.buckets)
		s.buckets = append(s.buckets, bucket{
			tex:   tex,
			quads: make([]Quad, 0, s.maxQuads),
		})
		s.slots[tex] = slot
		Logger().Debug("blaze: bucket created", "slot", slot, "texture", tex.ID)
	}
	b := &s.buckets[slot]
	if len(b.quads) >= s.maxQuads {
		return &CapacityError{Resource: CapacitySprites, Limit: s.maxQuads}
	}
	b.quads = append(b.quads, q)
	return nil
}

// len returns the number of queued quads across all buckets.
func (s *bucketSet) len() int {
	n := 0
	for i := range s.buckets {
		n += len(s.buckets[i].quads)
	}
	return n
}
