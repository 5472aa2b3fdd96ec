package dice

import (
	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// Pool is an ordered collection of dice of mixed types. It is built once from
// a Quantities snapshot and never restructured; pushes mutate its dice in place.
type Pool struct {
	variant *ruleset.Variant
	dice    []*Die
}

// BuildPool builds an unrolled pool for variant from q using the registry.
//
// Dice are ordered by the variant's die-type declaration order.
//
// Postcondition: returns an ErrConfiguration error for an unknown variant or
// die-type key, an ErrInvariant error for a negative count, or a pool with
// exactly q[k] dice of every key k.
func BuildPool(reg *ruleset.Registry, q ruleset.Quantities, variant string) (*Pool, error) {
	v, err := reg.Variant(variant)
	if err != nil {
		return nil, err
	}
	return buildPool(v, q, v.MaxPush)
}

func buildPool(v *ruleset.Variant, q ruleset.Quantities, maxPush int) (*Pool, error) {
	if err := q.Validate(v); err != nil {
		return nil, err
	}
	p := &Pool{variant: v, dice: make([]*Die, 0, q.Total())}
	for _, key := range v.Keys() {
		t, _ := v.DieType(key)
		for i := 0; i < q[key]; i++ {
			p.dice = append(p.dice, NewDie(t, maxPush))
		}
	}
	return p, nil
}

// Variant returns the game variant the pool was built for.
func (p *Pool) Variant() *ruleset.Variant { return p.variant }

// Dice returns the pool's dice in order. The dice are shared, not copied.
func (p *Pool) Dice() []*Die { return p.dice }

// Len returns the number of dice in the pool.
func (p *Pool) Len() int { return len(p.dice) }

// Quantities returns the count of dice per die-type key.
//
// Postcondition: BuildPool(reg, p.Quantities(), variant) yields a pool of the same shape.
func (p *Pool) Quantities() ruleset.Quantities {
	q := make(ruleset.Quantities)
	for _, d := range p.dice {
		q[d.typ.Key]++
	}
	return q
}

// OfKind returns the dice whose type is of any of kinds, in pool order.
func (p *Pool) OfKind(kinds ...ruleset.Kind) []*Die {
	var out []*Die
	for _, d := range p.dice {
		for _, k := range kinds {
			if d.typ.Kind == k {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
