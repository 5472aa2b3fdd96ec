package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

var ranks = []string{"d", "c", "b", "a"}

func TestTiered_NonConvergingStepIsDetected(t *testing.T) {
	calls := 0
	stuck := func(p *rankPool, mod int) (int, bool) {
		calls++
		return mod, false
	}
	_, err := tiered(ruleset.Quantities{"d": 1}, 1, ranks, stuck)
	assert.ErrorIs(t, err, ruleset.ErrInvariant)
	assert.Equal(t, MaxIterations, calls)
}

func TestRankPool_Selection(t *testing.T) {
	p := newRankPool(ruleset.Quantities{"a": 1, "c": 2, "d": 0}, ranks)
	assert.Equal(t, []int{1, 1, 3}, p.dice)
	assert.Equal(t, 2, p.count(1))
	assert.Equal(t, 0, p.lowestBelowTop())
	assert.Equal(t, 2, p.highest())

	p.remove(0)
	assert.Equal(t, []int{1, 3}, p.dice)

	top := newRankPool(ruleset.Quantities{"a": 2}, ranks)
	assert.Equal(t, -1, top.lowestBelowTop())
	assert.Equal(t, -1, newRankPool(ruleset.Quantities{}, ranks).highest())
}

// TestStep_Progress_Property verifies each step that does not stop the loop
// moves the modifier toward zero without crossing it.
func TestStep_Progress_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		q := make(ruleset.Quantities)
		for _, k := range ranks {
			q[k] = rapid.IntRange(0, 4).Draw(rt, k)
		}
		mod := rapid.IntRange(-5, 5).Filter(func(n int) bool { return n != 0 }).Draw(rt, "mod")

		p := newRankPool(q, ranks)
		before := len(p.dice)
		next, done := step(p, mod)
		if done {
			assert.Zero(rt, next)
			return
		}
		require.NotEmpty(rt, p.dice)
		if mod > 0 {
			assert.True(rt, next >= 0 && next < mod, "mod %d -> %d", mod, next)
			assert.GreaterOrEqual(rt, len(p.dice), before)
		} else {
			assert.Equal(rt, mod+1, next)
			assert.LessOrEqual(rt, len(p.dice), before)
		}
	})
}
