package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAndEnumerate(t *testing.T) {
	h := New(5)
	for _, v := range []uint64{0, 4, 5, 6, 6, 9} {
		h.Add(v)
	}

	got := h.Enumerate()
	want := []Bucket{
		{Value: 0, Count: 1},
		{Value: 4, Count: 1},
		{Value: 5, Count: 1},
		{Value: 6, Count: 2},
		{Value: 9, Count: 1},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, uint64(9), h.Max())
}

func TestMaxWithNoOverflow(t *testing.T) {
	h := New(10)
	h.Add(3)
	h.Add(7)
	assert.Equal(t, uint64(7), h.Max())
}

func TestMaxEmpty(t *testing.T) {
	h := New(10)
	assert.Equal(t, uint64(0), h.Max())
}

func TestMerge(t *testing.T) {
	a := New(5)
	a.Add(1)
	a.Add(9)
	b := New(5)
	b.Add(1)
	b.Add(2)
	b.Add(9)

	a.Merge(b)

	got := a.Enumerate()
	want := []Bucket{
		{Value: 1, Count: 2},
		{Value: 2, Count: 1},
		{Value: 9, Count: 2},
	}
	assert.Equal(t, want, got)
}

func TestSetMergeColumn(t *testing.T) {
	s := NewSet(3, 1, 5)
	s.At(0, 0).Add(1)
	s.At(1, 0).Add(1)
	s.At(2, 0).Add(2)

	merged := s.MergeColumn(0)
	want := []Bucket{
		{Value: 1, Count: 2},
		{Value: 2, Count: 1},
	}
	assert.Equal(t, want, merged.Enumerate())
}
