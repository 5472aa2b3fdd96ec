package dice

import "github.com/cory-johannsen/yzdice/internal/game/ruleset"

// DefaultBaneKinds are the die kinds whose ones count as banes when BaneCount
// is called without an explicit kind list.
var DefaultBaneKinds = []ruleset.Kind{
	ruleset.KindBase,
	ruleset.KindGear,
	ruleset.KindStress,
	ruleset.KindAmmo,
}

// Size returns the number of dice in the roll.
func (r *Roll) Size() int { return r.pool.Len() }

// PushCount returns the highest push round reached by any die.
//
// Postcondition: 0 <= PushCount() <= MaxPush().
func (r *Roll) PushCount() int {
	n := 0
	for _, d := range r.pool.dice {
		if round := d.LastRound(); round > n {
			n = round
		}
	}
	return n
}

// Pushed reports whether the roll has been pushed at least once.
func (r *Roll) Pushed() bool { return r.PushCount() > 0 }

// Pushable reports whether Push would reroll anything: the roll is evaluated,
// below its push ceiling, and at least one die shows an unlocked face.
func (r *Roll) Pushable() bool {
	if !r.evaluated || r.PushCount() >= r.maxPush {
		return false
	}
	for _, d := range r.pool.dice {
		if d.Pushable() {
			return true
		}
	}
	return false
}

// SuccessCount returns the signed sum of every die's success value.
func (r *Roll) SuccessCount() int {
	n := 0
	for _, d := range r.pool.dice {
		n += d.SuccessValue()
	}
	return n
}

// BaneCount returns the number of active ones on dice of kinds, defaulting to
// DefaultBaneKinds when none are given.
func (r *Roll) BaneCount(kinds ...ruleset.Kind) int {
	if len(kinds) == 0 {
		kinds = DefaultBaneKinds
	}
	n := 0
	for _, d := range r.pool.OfKind(kinds...) {
		n += d.FailureValue()
	}
	return n
}

// Count returns the number of dice of kind whose active face equals face.
func (r *Roll) Count(kind ruleset.Kind, face int) int {
	n := 0
	for _, d := range r.pool.OfKind(kind) {
		if d.Value() == face {
			n++
		}
	}
	return n
}

// AttributeTrauma returns the number of banes on base dice.
func (r *Roll) AttributeTrauma() int { return r.BaneCount(ruleset.KindBase) }

// GearDamage returns the number of banes on gear dice.
func (r *Roll) GearDamage() int { return r.BaneCount(ruleset.KindGear) }

// StressCount returns the number of stress dice in the roll.
func (r *Roll) StressCount() int { return len(r.pool.OfKind(ruleset.KindStress)) }

// Panic reports whether any stress die shows a one.
func (r *Roll) Panic() bool { return r.BaneCount(ruleset.KindStress) > 0 }

// AmmoSpent returns the sum of every value ever rolled on ammo dice, active or
// superseded: each push fires the rerolled rounds again.
func (r *Roll) AmmoSpent() int {
	n := 0
	for _, d := range r.pool.OfKind(ruleset.KindAmmo) {
		for _, res := range d.results {
			n += res.Value
		}
	}
	return n
}

// HitCount returns the number of ammo dice showing a six.
func (r *Roll) HitCount() int { return r.Count(ruleset.KindAmmo, 6) }

// JamCount returns ammo banes plus base banes when at least one ammo die shows
// a one, and 0 otherwise.
func (r *Roll) JamCount() int {
	ammo := r.BaneCount(ruleset.KindAmmo)
	if ammo < 1 {
		return 0
	}
	return ammo + r.AttributeTrauma()
}

// HitLocations returns the active faces of location dice in pool order.
func (r *Roll) HitLocations() []int {
	locs := r.pool.OfKind(ruleset.KindLocation)
	out := make([]int, 0, len(locs))
	for _, d := range locs {
		if v := d.Value(); v > 0 {
			out = append(out, v)
		}
	}
	return out
}
