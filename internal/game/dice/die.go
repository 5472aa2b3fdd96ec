// Package dice implements the Year Zero dice pool: typed dice with push
// history, pools built from quantity snapshots, and rolls that evaluate, push,
// and derive their statistics from the current die state.
package dice

import (
	"fmt"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// Result is one face rolled by a Die during one push round.
//
// Active is false once a later push has superseded the value; inactive results
// are history only and never count toward statistics. Locked is true when the
// value is in the die type's locked set and therefore cannot be pushed.
type Result struct {
	Value     int  `json:"value"`
	PushRound int  `json:"push_round"`
	Active    bool `json:"active"`
	Locked    bool `json:"locked"`
}

// Die is a single die and its full push history.
//
// Invariant: at most one result per push round, rounds strictly increasing,
// and only the latest result is active.
type Die struct {
	typ     *ruleset.DieType
	results []Result
	maxPush int
}

// NewDie returns an unrolled die of type t that may be pushed up to maxPush times.
//
// Precondition: t must be non-nil; maxPush >= 0.
func NewDie(t *ruleset.DieType, maxPush int) *Die {
	if t == nil {
		panic("dice: NewDie precondition violated: die type must be non-nil")
	}
	return &Die{typ: t, maxPush: maxPush}
}

// Type returns the die's type.
func (d *Die) Type() *ruleset.DieType { return d.typ }

// MaxPush returns the highest push round this die may reach.
func (d *Die) MaxPush() int { return d.maxPush }

// SetMaxPush changes the push ceiling of the die.
func (d *Die) SetMaxPush(n int) { d.maxPush = n }

// Results returns a copy of the die's history in roll order.
func (d *Die) Results() []Result {
	out := make([]Result, len(d.results))
	copy(out, d.results)
	return out
}

// Active returns the current result and whether the die has been rolled.
func (d *Die) Active() (Result, bool) {
	if len(d.results) == 0 {
		return Result{}, false
	}
	r := d.results[len(d.results)-1]
	return r, r.Active
}

// Value returns the active face, or 0 when the die has not been rolled.
func (d *Die) Value() int {
	r, ok := d.Active()
	if !ok {
		return 0
	}
	return r.Value
}

// LastRound returns the push round of the latest result, or -1 when unrolled.
func (d *Die) LastRound() int {
	if len(d.results) == 0 {
		return -1
	}
	return d.results[len(d.results)-1].PushRound
}

// Roll rolls the die for pushRound using src.
//
// Precondition: src must be non-nil.
// Postcondition: on success the new result is the only active one; returns an
// ErrInvariant error if pushRound does not follow the latest round, exceeds the
// push ceiling, or would reroll a locked face.
func (d *Die) Roll(pushRound int, src Source) (Result, error) {
	if err := d.checkRound(pushRound); err != nil {
		return Result{}, err
	}
	return d.record(pushRound, src.Intn(d.typ.Faces)+1), nil
}

// Force records value as the die's result for pushRound instead of rolling.
//
// Postcondition: same as Roll; additionally returns an ErrInvariant error if
// value is outside [1, faces].
func (d *Die) Force(pushRound, value int) (Result, error) {
	if value < 1 || value > d.typ.Faces {
		return Result{}, fmt.Errorf("%w: forced value %d outside [1, %d] for %s", ruleset.ErrInvariant, value, d.typ.Faces, d.typ)
	}
	if err := d.checkRound(pushRound); err != nil {
		return Result{}, err
	}
	return d.record(pushRound, value), nil
}

func (d *Die) checkRound(pushRound int) error {
	last := d.LastRound()
	if pushRound <= last {
		return fmt.Errorf("%w: %s already rolled for round %d", ruleset.ErrInvariant, d.typ, last)
	}
	if last < 0 && pushRound != 0 {
		return fmt.Errorf("%w: %s must be rolled at round 0 before round %d", ruleset.ErrInvariant, d.typ, pushRound)
	}
	if pushRound > d.maxPush {
		return fmt.Errorf("%w: %s push round %d exceeds ceiling %d", ruleset.ErrInvariant, d.typ, pushRound, d.maxPush)
	}
	if cur, ok := d.Active(); ok && cur.Locked {
		return fmt.Errorf("%w: %s shows locked face %d", ruleset.ErrInvariant, d.typ, cur.Value)
	}
	return nil
}

func (d *Die) record(pushRound, value int) Result {
	for i := range d.results {
		d.results[i].Active = false
	}
	r := Result{
		Value:     value,
		PushRound: pushRound,
		Active:    true,
		Locked:    d.typ.IsLocked(value),
	}
	d.results = append(d.results, r)
	return r
}

// Pushable reports whether the active face may be rerolled.
//
// Postcondition: false when the die is unrolled or shows a locked face.
func (d *Die) Pushable() bool {
	r, ok := d.Active()
	return ok && !r.Locked
}

// SuccessValue returns the die's signed success contribution, or 0 when unrolled.
func (d *Die) SuccessValue() int {
	r, ok := d.Active()
	if !ok {
		return 0
	}
	return d.typ.Success.Successes(r.Value)
}

// FailureValue returns 1 when the active face is a 1, otherwise 0.
func (d *Die) FailureValue() int {
	if d.Value() == 1 {
		return 1
	}
	return 0
}

// String returns the die as "key(dN)=v", or "key(dN)=?" when unrolled.
func (d *Die) String() string {
	if v := d.Value(); v > 0 {
		return fmt.Sprintf("%s=%d", d.typ, v)
	}
	return fmt.Sprintf("%s=?", d.typ)
}
