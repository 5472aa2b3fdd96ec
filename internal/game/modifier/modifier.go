// Package modifier rewrites a dice-quantity snapshot so that its effective
// difficulty changes by a signed number of steps, following the modifier rule
// of the roll's game variant. It never touches an existing roll: the result is
// the quantities of a new one.
package modifier

import (
	"fmt"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// MaxIterations bounds the tiered rule's step loop. Reaching it means the rank
// bookkeeping failed to converge.
const MaxIterations = 100

// Modify returns q adjusted by mod steps under variant's modifier rule.
//
// Postcondition: returns an ErrConfiguration error for an unknown variant or
// die-type key, an ErrInvariant error for negative counts or a non-converging
// tiered loop, or a new Quantities; q is never mutated. Modify(q, 0) returns a
// copy of q.
func Modify(reg *ruleset.Registry, q ruleset.Quantities, mod int, variant string) (ruleset.Quantities, error) {
	v, err := reg.Variant(variant)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(v); err != nil {
		return nil, err
	}
	if mod == 0 {
		return q.Clone(), nil
	}

	rule := v.Modifier
	switch rule.Kind {
	case ruleset.RuleGeneric:
		return generic(q, mod, rule.Skill), nil
	case ruleset.RulePooled:
		return pooled(q, mod, rule.Skill, rule.Negative), nil
	case ruleset.RuleTiered:
		return tiered(q, mod, rule.Ranks, step)
	default:
		return nil, fmt.Errorf("%w: variant %q has unknown modifier rule %q", ruleset.ErrConfiguration, v.ID, rule.Kind)
	}
}

// generic adds mod to the skill count, never dropping below one skill die.
func generic(q ruleset.Quantities, mod int, skill string) ruleset.Quantities {
	out := q.Clone()
	out[skill] = max(1, q[skill]+mod)
	return out
}

// pooled cancels skill against negative dice pairwise, then applies mod to the
// skill count; the part of a penalty that exceeds the skill dice becomes
// negative dice.
func pooled(q ruleset.Quantities, mod int, skill, negative string) ruleset.Quantities {
	out := q.Clone()
	s, n := q[skill], q[negative]
	cancel := min(s, n)
	s -= cancel
	n -= cancel

	out[skill] = max(0, s+mod)
	out[negative] = n + max(0, -mod-s)
	return out
}
