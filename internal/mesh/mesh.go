// Package mesh implements the full-connectivity messaging fabric shards use
// to exchange data and control traffic: every shard can send directly to
// every other shard, and each shard drains its own inbound queue.
package mesh

// Mesh is a full N-shard mesh: any shard may send to any other shard's
// inbox. Ordering is only guaranteed per sender (no fairness across
// senders is promised or needed).
type Mesh[T any] struct {
	nrShards int
	inboxes  []chan T
}

// New builds a mesh of nrShards shards, each with an inbound channel of the
// given capacity.
func New[T any](nrShards, capacityPerLink int) *Mesh[T] {
	m := &Mesh[T]{nrShards: nrShards, inboxes: make([]chan T, nrShards)}
	for i := range m.inboxes {
		m.inboxes[i] = make(chan T, capacityPerLink)
	}
	return m
}

// NrShards returns the number of shards in the mesh.
func (m *Mesh[T]) NrShards() int {
	return m.nrShards
}

// Shard returns the view of the mesh belonging to shard id.
func (m *Mesh[T]) Shard(id int) *Shard[T] {
	return &Shard[T]{id: id, mesh: m}
}

// Shard is one participant's view of a Mesh: it can send to any shard
// (including itself) and receives only what is sent to its own id.
type Shard[T any] struct {
	id   int
	mesh *Mesh[T]
}

// ID returns this shard's id within the mesh.
func (s *Shard[T]) ID() int {
	return s.id
}

// NrShards returns the total number of shards in the mesh this shard
// belongs to.
func (s *Shard[T]) NrShards() int {
	return s.mesh.nrShards
}

// SendTo delivers a value to the given shard's inbox. It blocks if that
// shard's inbox is full, providing the mesh's only backpressure.
func (s *Shard[T]) SendTo(to int, v T) {
	s.mesh.inboxes[to] <- v
}

// Recv blocks until a value arrives in this shard's own inbox, or the
// inbox is closed (ok is false).
func (s *Shard[T]) Recv() (v T, ok bool) {
	v, ok = <-s.mesh.inboxes[s.id]
	return v, ok
}

// Close closes this shard's inbox. Only the owning shard should call
// Close, once, after it is done receiving.
func (s *Shard[T]) Close() {
	close(s.mesh.inboxes[s.id])
}
