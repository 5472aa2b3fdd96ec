package modifier

import (
	"fmt"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// rankPool is the ranked part of a quantity snapshot flattened into one rank
// index per die, weakest rank first.
type rankPool struct {
	dice []int
	top  int
}

func newRankPool(q ruleset.Quantities, ranks []string) *rankPool {
	p := &rankPool{top: len(ranks) - 1}
	for i, key := range ranks {
		for n := 0; n < q[key]; n++ {
			p.dice = append(p.dice, i)
		}
	}
	return p
}

// count returns the number of dice at rank.
func (p *rankPool) count(rank int) int {
	n := 0
	for _, r := range p.dice {
		if r == rank {
			n++
		}
	}
	return n
}

// lowestBelowTop returns the index of the weakest die not at the top rank, or -1.
func (p *rankPool) lowestBelowTop() int {
	best := -1
	for i, r := range p.dice {
		if r < p.top && (best < 0 || r < p.dice[best]) {
			best = i
		}
	}
	return best
}

// highest returns the index of the strongest die, or -1 for an empty pool.
func (p *rankPool) highest() int {
	best := -1
	for i, r := range p.dice {
		if best < 0 || r > p.dice[best] {
			best = i
		}
	}
	return best
}

func (p *rankPool) remove(i int) {
	p.dice = append(p.dice[:i], p.dice[i+1:]...)
}

// stepFunc applies one unit of mod to p and returns the remaining modifier and
// whether the loop must stop.
type stepFunc func(p *rankPool, mod int) (int, bool)

// tiered applies mod one unit at a time to the ranked dice of q. Dice whose
// keys are not ranks pass through unchanged; ranks left at zero are dropped.
func tiered(q ruleset.Quantities, mod int, ranks []string, next stepFunc) (ruleset.Quantities, error) {
	p := newRankPool(q, ranks)
	for i := 0; mod != 0; i++ {
		if i >= MaxIterations {
			return nil, fmt.Errorf("%w: tiered modifier did not converge after %d iterations (remaining %+d)",
				ruleset.ErrInvariant, MaxIterations, mod)
		}
		var done bool
		mod, done = next(p, mod)
		if done {
			break
		}
	}

	out := q.Clone()
	for i, key := range ranks {
		delete(out, key)
		if n := p.count(i); n > 0 {
			out[key] = n
		}
	}
	return out, nil
}

// step is the Twilight 2000 rank rule. Improving upgrades the weakest die that
// is not yet at the top rank; worsening downgrades the strongest die, and a
// downgraded bottom-rank die leaves the pool. The pool never becomes empty.
func step(p *rankPool, mod int) (int, bool) {
	size := len(p.dice)
	if mod > 0 {
		if size > 2 || p.count(p.top) >= 2 {
			return 0, true
		}
		if size <= 1 {
			p.dice = append(p.dice, 0)
			mod--
			if mod == 0 {
				return 0, true
			}
		}
		i := p.lowestBelowTop()
		if i < 0 {
			return 0, true
		}
		p.dice[i]++
		return mod - 1, false
	}

	switch {
	case size == 0:
		p.dice = []int{0}
		return 0, true
	case size == 1 && p.dice[0] == 0:
		return 0, true
	case size == 2 && p.count(0) == 2:
		p.dice = []int{0}
		return 0, true
	}
	i := p.highest()
	if p.dice[i] == 0 {
		p.remove(i)
	} else {
		p.dice[i]--
	}
	return mod + 1, false
}
