// Package control defines the small message vocabulary exchanged on the
// control mesh, separate from the data mesh carrying msg.Msg traffic.
package control

// Message is sent between a worker and the controller shard over the
// control mesh.
type Message int

const (
	// WorkerInitComplete is sent by a worker to the controller once it has
	// joined the data mesh and is ready to receive traffic.
	WorkerInitComplete Message = iota
	// Shutdown is sent by the controller to every worker once the run has
	// drained, telling the worker to close its data mesh shard and exit.
	Shutdown
)

func (m Message) String() string {
	switch m {
	case WorkerInitComplete:
		return "WORKER_INIT_COMPLETE"
	case Shutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}
