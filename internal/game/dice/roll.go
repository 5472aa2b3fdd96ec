package dice

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// Roll wraps a Pool with its metadata and drives the roll lifecycle:
// Unevaluated → Evaluated → (Pushed → Evaluated)*.
//
// Every statistic is derived from the current die state on each call, so it
// always reflects the latest completed push.
//
// A Roll is not safe for concurrent use: callers must serialize Push calls on
// the same Roll.
type Roll struct {
	id        string
	name      string
	pool      *Pool
	maxPush   int
	evaluated bool
	src       Source
}

// Option customizes a Roll at construction.
type Option func(*Roll)

// WithName sets the roll's display name.
func WithName(name string) Option {
	return func(r *Roll) { r.name = name }
}

// WithMaxPush overrides the variant's default push ceiling.
//
// Precondition: n >= 0.
func WithMaxPush(n int) Option {
	return func(r *Roll) { r.maxPush = n }
}

// WithID sets the roll ID instead of generating one.
func WithID(id string) Option {
	return func(r *Roll) { r.id = id }
}

// NewRoll builds an unevaluated roll of q for variant, rolling with src.
//
// Precondition: reg and src must be non-nil.
// Postcondition: returns an ErrConfiguration error for an unknown variant or
// die-type key, an ErrInvariant error for a negative count or push ceiling,
// or a Roll with a fresh ID whose pool matches q.
func NewRoll(reg *ruleset.Registry, q ruleset.Quantities, variant string, src Source, opts ...Option) (*Roll, error) {
	v, err := reg.Variant(variant)
	if err != nil {
		return nil, err
	}
	r := &Roll{maxPush: v.MaxPush, src: src}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxPush < 0 {
		return nil, fmt.Errorf("%w: max push must be >= 0, got %d", ruleset.ErrInvariant, r.maxPush)
	}
	if r.id == "" {
		r.id = uuid.New().String()
	}
	pool, err := buildPool(v, q, r.maxPush)
	if err != nil {
		return nil, err
	}
	r.pool = pool
	return r, nil
}

// ID returns the roll's unique identifier.
func (r *Roll) ID() string { return r.id }

// Name returns the roll's display name.
func (r *Roll) Name() string { return r.name }

// Variant returns the ID of the roll's game variant.
func (r *Roll) Variant() string { return r.pool.variant.ID }

// Pool returns the roll's dice pool.
func (r *Roll) Pool() *Pool { return r.pool }

// MaxPush returns the roll's push ceiling.
func (r *Roll) MaxPush() int { return r.maxPush }

// Evaluated reports whether Evaluate has run.
func (r *Roll) Evaluated() bool { return r.evaluated }

// SetMaxPush changes the push ceiling of the roll and of every die in it.
//
// Precondition: n >= 0.
// Postcondition: returns an ErrInvariant error if n is below the pushes
// already made, leaving the roll unchanged.
func (r *Roll) SetMaxPush(n int) error {
	if n < 0 || n < r.PushCount() {
		return fmt.Errorf("%w: max push %d below pushes made (%d)", ruleset.ErrInvariant, n, r.PushCount())
	}
	r.maxPush = n
	for _, d := range r.pool.dice {
		d.SetMaxPush(n)
	}
	return nil
}

// Evaluate rolls every die once at push round 0. Calling it again is a no-op.
//
// Postcondition: r.Evaluated() is true on success.
func (r *Roll) Evaluate() error {
	if r.evaluated {
		return nil
	}
	for _, d := range r.pool.dice {
		if _, err := d.Roll(0, r.src); err != nil {
			return err
		}
	}
	r.evaluated = true
	return nil
}

// Push rerolls every pushable die at the next push round, leaving dice that
// show a locked face untouched.
//
// Postcondition: returns false and leaves the roll unchanged when it is not
// pushable; otherwise returns true and PushCount() has grown by one.
func (r *Roll) Push() (bool, error) {
	if !r.Pushable() {
		return false, nil
	}
	round := r.PushCount() + 1
	for _, d := range r.pool.dice {
		if !d.Pushable() {
			continue
		}
		if _, err := d.Roll(round, r.src); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Duplicate returns a copy of the roll under a new ID: the same dice with the
// same results and push history, sharing this roll's Source. Pushing the copy
// leaves r untouched.
func (r *Roll) Duplicate() *Roll {
	dup := r.sameShape()
	dup.evaluated = r.evaluated
	dup.pool = &Pool{variant: r.pool.variant, dice: make([]*Die, 0, len(r.pool.dice))}
	for _, d := range r.pool.dice {
		dup.pool.dice = append(dup.pool.dice, &Die{typ: d.typ, results: d.Results(), maxPush: d.maxPush})
	}
	return dup
}

// Reroll returns a new unevaluated roll with the same dice, variant, name,
// and push ceiling, sharing this roll's Source.
func (r *Roll) Reroll() *Roll {
	dup := r.sameShape()
	// The pool shape already passed validation when r was built.
	dup.pool, _ = buildPool(r.pool.variant, r.pool.Quantities(), r.maxPush)
	return dup
}

func (r *Roll) sameShape() *Roll {
	return &Roll{
		id:      uuid.New().String(),
		name:    r.name,
		maxPush: r.maxPush,
		src:     r.src,
	}
}

// DiceQuantities returns the count of dice per die-type key.
func (r *Roll) DiceQuantities() ruleset.Quantities {
	return r.pool.Quantities()
}

// Formula returns the roll's dice in formula notation, e.g. "2da+1dm".
func (r *Roll) Formula() string {
	return Formula(r.pool.variant, r.pool.Quantities())
}

// String returns a one-line audit string: name, formula, dice, and successes.
func (r *Roll) String() string {
	name := r.name
	if name == "" {
		name = "roll"
	}
	vals := make([]string, 0, len(r.pool.dice))
	for _, d := range r.pool.dice {
		vals = append(vals, d.String())
	}
	return fmt.Sprintf("%s %s → %v successes=%d pushes=%d/%d",
		name, r.Formula(), vals, r.SuccessCount(), r.PushCount(), r.maxPush)
}
