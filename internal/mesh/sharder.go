package mesh

import "github.com/corepath/shardbench/internal/pcore"

// Sharder drains a shard's inbox on its owning executor's goroutine but
// detaches each message's actual handling onto the same executor's task
// queue via Spawn, rather than running the handler inline. Running a
// handler inline that itself calls SendTo back into this shard's own
// inbox would deadlock once the inbox fills; detaching lets the receive
// loop keep draining while queued handlers run in submission order.
type Sharder[T any] struct {
	shard    *Shard[T]
	executor *pcore.Executor
	handle   func(T)
}

// NewSharder binds a shard's inbox to an executor, dispatching every
// received value to handle via the executor's task queue.
func NewSharder[T any](shard *Shard[T], executor *pcore.Executor, handle func(T)) *Sharder[T] {
	return &Sharder[T]{shard: shard, executor: executor, handle: handle}
}

// Serve blocks, receiving from the shard's inbox and detaching each value
// to the executor, until the inbox is closed.
func (s *Sharder[T]) Serve() {
	for {
		v, ok := s.shard.Recv()
		if !ok {
			return
		}
		s.executor.Spawn(func() {
			s.handle(v)
		})
	}
}
