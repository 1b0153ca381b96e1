package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoltageBitsetAlwaysHasTopBit(t *testing.T) {
	b := NewVoltageBitset(3)
	assert.True(t, b.HasBit(MaxVoltages-1))
	assert.Equal(t, 1, b.Count())
}

func TestVoltageBitsetAndMinIndex(t *testing.T) {
	a := NewVoltageBitset(0) // all bits
	c := NewVoltageBitset(2) // {2,3}
	and := a.And(c)
	assert.Equal(t, 2, and.Count())
	assert.Equal(t, 2, and.MinIndex())
}

func TestVoltageBitsetTrivial(t *testing.T) {
	single := NewVoltageBitset(MaxVoltages - 1)
	assert.True(t, single.Trivial())

	multi := NewVoltageBitset(0)
	assert.False(t, multi.Trivial())
}

func TestBlockPowerAndDelay(t *testing.T) {
	b := New("b0", 0, 100, 0.5, 2.0, false)
	b.PowerDensity = 10
	b.PowerFactor[1] = 0.8
	b.BaseDelay = 2.0
	b.DelayFactor[1] = 1.5
	b.AssignedVoltageIdx = 1

	assert.InDelta(t, 10*0.8*100*1e-6, b.Power(1), 1e-12)
	assert.InDelta(t, 2.0*1.5, b.Delay(), 1e-12)
}

func TestBlockAspectRatioInvariant(t *testing.T) {
	b := New("b1", 1, 16, 0.5, 2.0, true)
	b.BB.UR.X = 4
	b.BB.UR.Y = 4
	assert.True(t, b.WithinAspectRatio())

	b.BB.UR.X = 100
	assert.False(t, b.WithinAspectRatio())
}

func TestBlockBackupRestore(t *testing.T) {
	b := New("b2", 2, 10, 0.5, 2.0, false)
	b.BB.UR.X, b.BB.UR.Y = 5, 2
	b.Backup()
	b.BB.UR.X = 99
	b.Restore()
	assert.InDelta(t, 5.0, b.BB.UR.X, 1e-9)
}
