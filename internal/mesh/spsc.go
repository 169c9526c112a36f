package mesh

import "github.com/corepath/shardbench/internal/msg"

// SPSC is a single-producer single-consumer bounded channel of messages,
// used for the generator-to-controller hop that sits outside the full
// mesh (the generator is not itself a mesh shard).
type SPSC struct {
	ch chan *msg.Msg
}

// NewSPSC allocates a bounded SPSC channel with the given capacity.
func NewSPSC(capacity int) *SPSC {
	return &SPSC{ch: make(chan *msg.Msg, capacity)}
}

// Send delivers m to the consumer, blocking if the channel is full.
func (s *SPSC) Send(m *msg.Msg) {
	s.ch <- m
}

// Recv blocks until a message arrives, or the channel is closed (ok is
// false).
func (s *SPSC) Recv() (m *msg.Msg, ok bool) {
	m, ok = <-s.ch
	return m, ok
}

// Close closes the channel. Only the producer should call this, once, when
// it has no more messages to send.
func (s *SPSC) Close() {
	close(s.ch)
}
