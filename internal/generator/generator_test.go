package generator

import (
	"testing"
	"time"

	"github.com/corepath/shardbench/internal/mesh"
	"github.com/corepath/shardbench/internal/msg"
	"github.com/stretchr/testify/assert"
)

func TestRunToChannelStopsAtDeadline(t *testing.T) {
	var p msg.Pipeline
	ch := mesh.NewSPSC(1024)
	stop := time.Now().Add(20 * time.Millisecond)

	done := make(chan Stats)
	go func() { done <- RunToChannel(ch, &p, stop) }()

	count := 0
	for {
		_, ok := ch.Recv()
		if !ok {
			break
		}
		count++
	}
	stats := <-done
	assert.Equal(t, stats.Sent, uint64(count))
	assert.Greater(t, count, 0)
}

type fakeDispatcher struct {
	got []*msg.Msg
}

func (f *fakeDispatcher) Dispatch(m *msg.Msg) {
	f.got = append(f.got, m)
}

func TestRunInlineStopsAtDeadline(t *testing.T) {
	var p msg.Pipeline
	stop := time.Now().Add(20 * time.Millisecond)
	d := &fakeDispatcher{}

	stats := RunInline(d, &p, stop)
	assert.Equal(t, uint64(len(d.got)), stats.Sent)
	assert.Greater(t, len(d.got), 0)
}
