package mesh

import (
	"sync"
	"testing"

	"github.com/corepath/shardbench/internal/pcore"
	"github.com/stretchr/testify/assert"
)

func TestSharderDispatchesEveryValue(t *testing.T) {
	m := New[int](2, 8)
	exec := pcore.NewExecutor(0)
	defer exec.Close()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	wg.Add(5)

	sh := NewSharder(m.Shard(1), exec, func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		wg.Done()
	})
	go sh.Serve()

	for i := 0; i < 5; i++ {
		m.Shard(0).SendTo(1, i)
	}
	wg.Wait()
	m.Shard(1).Close()

	assert.Len(t, got, 5)
}
