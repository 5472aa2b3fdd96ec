package dice

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// Snapshot is the plain-data form of a Roll, suitable for JSON persistence and
// for rebuilding an equivalent Roll.
//
// Only Variant, MaxPush, and Dice are required. A snapshot written by another
// host may omit ID and Evaluated: FromSnapshot then assigns a fresh ID and
// derives the evaluated state from the dice results.
type Snapshot struct {
	ID        string        `json:"id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Variant   string        `json:"variant"`
	MaxPush   int           `json:"max_push"`
	Evaluated *bool         `json:"evaluated,omitempty"`
	Dice      []DieSnapshot `json:"dice"`
}

// DieSnapshot is the plain-data form of one Die.
type DieSnapshot struct {
	Key     string   `json:"key"`
	Results []Result `json:"results"`
}

// Snapshot captures the roll's full state, including superseded results.
func (r *Roll) Snapshot() Snapshot {
	evaluated := r.evaluated
	s := Snapshot{
		ID:        r.id,
		Name:      r.name,
		Variant:   r.pool.variant.ID,
		MaxPush:   r.maxPush,
		Evaluated: &evaluated,
		Dice:      make([]DieSnapshot, 0, len(r.pool.dice)),
	}
	for _, d := range r.pool.dice {
		s.Dice = append(s.Dice, DieSnapshot{Key: d.typ.Key, Results: d.Results()})
	}
	return s
}

// Quantities returns the count of dice per die-type key recorded in s.
func (s Snapshot) Quantities() ruleset.Quantities {
	q := make(ruleset.Quantities)
	for _, d := range s.Dice {
		q[d.Key]++
	}
	return q
}

// FromSnapshot rebuilds a Roll from s. Further pushes roll with src.
//
// Precondition: reg and src must be non-nil.
// A missing ID is replaced by a new one. A missing Evaluated flag is derived:
// every die rolled means evaluated, no die rolled means unevaluated, and a mix
// is rejected.
//
// Postcondition: returns an ErrConfiguration error for an unknown variant or
// key, an ErrInvariant error for a history the engine could not have produced,
// or a Roll whose statistics equal those of the roll s was taken from.
func FromSnapshot(reg *ruleset.Registry, s Snapshot, src Source) (*Roll, error) {
	v, err := reg.Variant(s.Variant)
	if err != nil {
		return nil, err
	}
	if s.MaxPush < 0 {
		return nil, fmt.Errorf("%w: snapshot max push %d is negative", ruleset.ErrInvariant, s.MaxPush)
	}
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	r := &Roll{
		id:      id,
		name:    s.Name,
		maxPush: s.MaxPush,
		src:     src,
		pool:    &Pool{variant: v, dice: make([]*Die, 0, len(s.Dice))},
	}
	rolled := 0
	for i, ds := range s.Dice {
		t, err := v.DieType(ds.Key)
		if err != nil {
			return nil, err
		}
		d := NewDie(t, s.MaxPush)
		for _, res := range ds.Results {
			got, err := d.Force(res.PushRound, res.Value)
			if err != nil {
				return nil, fmt.Errorf("snapshot die %d: %w", i, err)
			}
			if got.Locked != res.Locked {
				return nil, fmt.Errorf("%w: snapshot die %d round %d locked=%v, die type says %v",
					ruleset.ErrInvariant, i, res.PushRound, res.Locked, got.Locked)
			}
		}
		if n := len(ds.Results); n > 0 {
			if !ds.Results[n-1].Active {
				return nil, fmt.Errorf("%w: snapshot die %d has no active result", ruleset.ErrInvariant, i)
			}
			for _, res := range ds.Results[:n-1] {
				if res.Active {
					return nil, fmt.Errorf("%w: snapshot die %d has more than one active result", ruleset.ErrInvariant, i)
				}
			}
			rolled++
		}
		r.pool.dice = append(r.pool.dice, d)
	}
	if rolled != 0 && rolled != len(s.Dice) {
		return nil, fmt.Errorf("%w: snapshot has %d of %d dice rolled",
			ruleset.ErrInvariant, rolled, len(s.Dice))
	}
	evaluated := len(s.Dice) > 0 && rolled == len(s.Dice)
	if s.Evaluated != nil {
		if len(s.Dice) > 0 && *s.Evaluated != evaluated {
			return nil, fmt.Errorf("%w: snapshot evaluated=%v but %d of %d dice rolled",
				ruleset.ErrInvariant, *s.Evaluated, rolled, len(s.Dice))
		}
		evaluated = *s.Evaluated
	}
	r.evaluated = evaluated
	return r, nil
}
