package cbl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go3dic/floorplanner/pkg/block"
)

func TestDequeFrontOrdering(t *testing.T) {
	d := &Deque{}
	a := block.New("a", 0, 1, 0.5, 2, false)
	b := block.New("b", 1, 1, 0.5, 2, false)

	d.PushFront(a)
	d.PushFront(b)

	require.Equal(t, b, d.Front())
	assert.Equal(t, 2, d.Len())

	popped := d.PopFront()
	assert.Equal(t, b, popped)
	assert.Equal(t, a, d.Front())
}

func TestDequeRemoveAndContains(t *testing.T) {
	d := &Deque{}
	a := block.New("a", 0, 1, 0.5, 2, false)
	b := block.New("b", 1, 1, 0.5, 2, false)
	d.PushBack(a)
	d.PushBack(b)

	assert.True(t, d.Contains(a))
	d.Remove(a)
	assert.False(t, d.Contains(a))
	assert.Equal(t, b, d.Front())
}

func TestDequeCloneIsIndependent(t *testing.T) {
	d := &Deque{}
	a := block.New("a", 0, 1, 0.5, 2, false)
	d.PushBack(a)

	cp := d.Clone()
	cp.PushBack(block.New("b", 1, 1, 0.5, 2, false))

	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 2, cp.Len())
}

func TestDirectionFlipAndString(t *testing.T) {
	assert.Equal(t, Vertical, Horizontal.Flip())
	assert.Equal(t, Horizontal, Vertical.Flip())
	assert.Equal(t, "HORIZONTAL", Horizontal.String())
	assert.Equal(t, "VERTICAL", Vertical.String())
}

func TestCBLSwap(t *testing.T) {
	c := New()
	a := block.New("a", 0, 1, 0.5, 2, false)
	b := block.New("b", 1, 1, 0.5, 2, false)
	c.Append(Tuple{Block: a, L: Horizontal})
	c.Append(Tuple{Block: b, L: Vertical})

	c.Swap(0, 1)

	assert.Equal(t, b, c.Tuples[0].Block)
	assert.Equal(t, a, c.Tuples[1].Block)
}

func TestCloneSharesBlockPointers(t *testing.T) {
	c := New()
	a := block.New("a", 0, 1, 0.5, 2, false)
	c.Append(Tuple{Block: a, L: Horizontal})

	cp := c.Clone()
	require.Len(t, cp.Tuples, 1)
	assert.Same(t, a, cp.Tuples[0].Block)

	// Mutating the original's tuple sequence must not affect the clone.
	c.Append(Tuple{Block: block.New("b", 1, 1, 0.5, 2, false)})
	assert.Len(t, cp.Tuples, 1)
}

func TestCloneDeepCopiesBlockValues(t *testing.T) {
	c := New()
	a := block.New("a", 0, 1, 0.5, 2, false)
	a.Layer = 3
	c.Append(Tuple{Block: a, L: Horizontal})

	cp := c.CloneDeep()
	require.Len(t, cp.Tuples, 1)
	assert.NotSame(t, a, cp.Tuples[0].Block)
	assert.Equal(t, 3, cp.Tuples[0].Block.Layer)

	// Mutating the live block must not drift the deep-cloned snapshot.
	a.Layer = 9
	assert.Equal(t, 3, cp.Tuples[0].Block.Layer)
}

func TestNewLayoutAndCloneDeep(t *testing.T) {
	l := NewLayout(2)
	require.Len(t, l.Dies, 2)

	a := block.New("a", 0, 1, 0.5, 2, false)
	l.Dies[0].Append(Tuple{Block: a, L: Horizontal})

	cp := l.CloneDeep()
	require.Len(t, cp.Dies, 2)
	require.Len(t, cp.Dies[0].Tuples, 1)
	assert.NotSame(t, a, cp.Dies[0].Tuples[0].Block)
}

func TestResetClearsPackingStateNotTuples(t *testing.T) {
	c := New()
	a := block.New("a", 0, 1, 0.5, 2, false)
	c.Append(Tuple{Block: a, L: Horizontal})
	c.Hi.PushFront(a)
	c.PI = 1

	c.Reset()

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.Hi.Len())
	assert.Equal(t, 0, c.PI)
}
