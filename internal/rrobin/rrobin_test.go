package rrobin

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	cases := []struct {
		nrShards, prev, want int
	}{
		{4, 0, 1},
		{4, 1, 2},
		{4, 2, 3},
		{4, 3, 1},
		{2, 0, 1},
		{2, 1, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Next(c.nrShards, c.prev))
	}
}

func TestCounterSequence(t *testing.T) {
	c := NewCounter(4)
	var got []int
	for i := 0; i < 6; i++ {
		got = append(got, c.Advance())
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, got)
}

func TestCounterNeverYieldsZero(t *testing.T) {
	c := NewCounter(5)
	var wg sync.WaitGroup
	seen := make(chan int, 1000)
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- c.Advance()
		}()
	}
	wg.Wait()
	close(seen)
	for v := range seen {
		assert.NotEqual(t, 0, v)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 4)
	}
}
