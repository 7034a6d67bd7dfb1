package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrainRunsInOrder(t *testing.T) {
	q := New()

	var order []int
	q.Push(func() { order = append(order, 1) })
	q.Push(func() { order = append(order, 2) })

	assert.Equal(t, 2, q.Len())
	q.Drain()
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, q.Len())
}

func TestPushDuringDrainRunsSamePass(t *testing.T) {
	q := New()

	var order []int
	q.Push(func() {
		order = append(order, 1)
		q.Push(func() { order = append(order, 2) })
	})

	q.Drain()
	assert.Equal(t, []int{1, 2}, order)
}

func TestDrainEmptyIsNoOp(t *testing.T) {
	q := New()
	q.Drain()
	assert.Equal(t, 0, q.Len())
}
