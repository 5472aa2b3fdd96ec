// Package ruleset defines the per-game die-type catalogue used to build Year
// Zero dice pools: die kinds, success rules, locked faces, and the modifier
// rule each game variant applies.
package ruleset

import (
	"fmt"
	"sort"
)

// Kind classifies what a die represents in the fiction. Statistics filter on
// Kind rather than on the die-type key, so ranked dice of different sizes can
// all count as base dice.
type Kind string

// Die kinds known to the engine.
const (
	KindBase     Kind = "base"
	KindSkill    Kind = "skill"
	KindGear     Kind = "gear"
	KindNegative Kind = "neg"
	KindStress   Kind = "stress"
	KindArtifact Kind = "arto"
	KindAmmo     Kind = "ammo"
	KindLocation Kind = "loc"
)

var validKinds = map[Kind]struct{}{
	KindBase:     {},
	KindSkill:    {},
	KindGear:     {},
	KindNegative: {},
	KindStress:   {},
	KindArtifact: {},
	KindAmmo:     {},
	KindLocation: {},
}

// ValidKind reports whether k is a recognised die kind.
func ValidKind(k Kind) bool {
	_, ok := validKinds[k]
	return ok
}

// SuccessRule converts a face value into a signed success count.
//
// A threshold rule counts 1 for any face >= Threshold. A table rule holds an
// explicit count for every face; faces absent from the source table count 0.
type SuccessRule struct {
	threshold int
	table     []int
}

// ThresholdRule returns a rule counting one success on any face >= threshold.
//
// Precondition: threshold >= 1.
func ThresholdRule(threshold int) SuccessRule {
	if threshold < 1 {
		panic("ruleset: ThresholdRule precondition violated: threshold must be >= 1")
	}
	return SuccessRule{threshold: threshold}
}

// TableRule returns a rule that classifies every face in [1, faces] using
// counts; faces missing from counts score 0. A nil or empty counts map yields
// a die that never scores.
//
// Precondition: faces >= 1 and every key of counts is within [1, faces].
func TableRule(faces int, counts map[int]int) SuccessRule {
	table := make([]int, faces+1)
	for face, n := range counts {
		if face < 1 || face > faces {
			panic(fmt.Sprintf("ruleset: TableRule precondition violated: face %d outside [1, %d]", face, faces))
		}
		table[face] = n
	}
	return SuccessRule{table: table}
}

// IsTable reports whether the rule is table based.
func (r SuccessRule) IsTable() bool { return r.table != nil }

// Threshold returns the threshold of a threshold rule, or 0 for a table rule.
func (r SuccessRule) Threshold() int { return r.threshold }

// Successes returns the signed success count for face.
//
// Postcondition: faces outside the table score 0.
func (r SuccessRule) Successes(face int) int {
	if r.table == nil {
		if face >= r.threshold {
			return 1
		}
		return 0
	}
	if face < 1 || face >= len(r.table) {
		return 0
	}
	return r.table[face]
}

// DieType is an immutable registry entry describing every die of one kind
// within a game variant.
type DieType struct {
	Key          string
	Kind         Kind
	Faces        int
	Denomination string
	Success      SuccessRule

	locked map[int]struct{}
}

// IsLocked reports whether face may not be rerolled by a push.
func (t *DieType) IsLocked(face int) bool {
	_, ok := t.locked[face]
	return ok
}

// LockedValues returns the locked faces in ascending order.
func (t *DieType) LockedValues() []int {
	out := make([]int, 0, len(t.locked))
	for v := range t.locked {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// String returns the die type as "key(dN)".
func (t *DieType) String() string {
	return fmt.Sprintf("%s(d%d)", t.Key, t.Faces)
}
