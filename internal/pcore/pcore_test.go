package pcore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyLayoutRejectsEmpty(t *testing.T) {
	err := VerifyLayout(nil)
	assert.Error(t, err)
}

func TestVerifyLayoutRejectsDuplicates(t *testing.T) {
	err := VerifyLayout([]int{0, 1, 1})
	assert.Error(t, err)
}

func TestVerifyLayoutRejectsOutOfRange(t *testing.T) {
	err := VerifyLayout([]int{0, 1_000_000})
	assert.Error(t, err)
}

func TestVerifyLayoutAcceptsValid(t *testing.T) {
	online, err := OnlineCores()
	assert.NoError(t, err)
	if online < 1 {
		t.Skip("no online cores reported")
	}
	err = VerifyLayout([]int{0})
	assert.NoError(t, err)
}

func TestExecutorRunsTasksInOrder(t *testing.T) {
	e := NewExecutor(0)
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		e.Spawn(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()
	e.Close()

	for i := 0; i < 10; i++ {
		assert.Equal(t, i, order[i])
	}
}

func TestPoolJoinAll(t *testing.T) {
	p := NewPool([]int{0})
	done := make(chan struct{})
	p.Executor(0).Spawn(func() { close(done) })
	<-done
	p.JoinAll()
}
