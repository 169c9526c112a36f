package tsc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	assert.Equal(t, uint64(3), diff(10, 7))
	assert.Equal(t, uint64(3), diff(7, 10))
	assert.Equal(t, uint64(0), diff(5, 5))
}

func TestMax1(t *testing.T) {
	assert.Equal(t, uint64(1), max1(0))
	assert.Equal(t, uint64(5), max1(5))
}

func TestBurnDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { Burn(1000) })
}

func TestCyclesAverageFastReturnsPositive(t *testing.T) {
	c := New(true)
	avg := c.CyclesAverage(1000)
	assert.Greater(t, avg, uint64(0))
}

func TestReadTSCMonotonicWithinBurn(t *testing.T) {
	start := readTSC()
	Burn(10_000)
	end := readTSC()
	assert.GreaterOrEqual(t, end, start)
}
