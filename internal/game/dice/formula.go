package dice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// MaxDicePerType is the most dice of a single type one formula may ask for.
const MaxDicePerType = 100

// Parse parses a dice formula such as "3db+2ds+1dg" into Quantities for v.
// Each term is an optional count followed by 'd' and a die denomination of v;
// repeated denominations accumulate. Whitespace is ignored.
//
// Precondition: v must be non-nil.
// Postcondition: Returns the Quantities or an ErrConfiguration error naming the
// offending term. No die type exceeds MaxDicePerType.
func Parse(v *ruleset.Variant, expr string) (ruleset.Quantities, error) {
	s := strings.ToLower(strings.Join(strings.Fields(expr), ""))
	if s == "" {
		return nil, fmt.Errorf("%w: dice: empty formula", ruleset.ErrConfiguration)
	}

	q := make(ruleset.Quantities)
	for _, term := range strings.Split(s, "+") {
		dIdx := strings.Index(term, "d")
		if dIdx < 0 {
			return nil, fmt.Errorf("%w: dice: missing 'd' in term %q of %q", ruleset.ErrConfiguration, term, expr)
		}

		// Count defaults to 1 when omitted.
		count := 1
		if countStr := term[:dIdx]; countStr != "" {
			n, err := strconv.Atoi(countStr)
			if err != nil {
				return nil, fmt.Errorf("%w: dice: invalid die count in %q: %v", ruleset.ErrConfiguration, term, err)
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: dice: invalid die count in %q: must be >= 0", ruleset.ErrConfiguration, term)
			}
			count = n
		}

		t, err := v.ByDenomination(term[dIdx+1:])
		if err != nil {
			return nil, err
		}
		q[t.Key] += count
		if q[t.Key] > MaxDicePerType {
			return nil, fmt.Errorf("%w: dice: %q asks for %d %s dice, limit is %d",
				ruleset.ErrConfiguration, expr, q[t.Key], t.Key, MaxDicePerType)
		}
	}
	return q, nil
}

// Formula renders q in formula notation using v's denominations, in v's
// declaration order, skipping zero counts. An empty q renders as "".
//
// Precondition: every key of q must be declared by v.
func Formula(v *ruleset.Variant, q ruleset.Quantities) string {
	var terms []string
	for _, key := range v.Keys() {
		n := q[key]
		if n <= 0 {
			continue
		}
		t, _ := v.DieType(key)
		terms = append(terms, fmt.Sprintf("%dd%s", n, t.Denomination))
	}
	return strings.Join(terms, "+")
}
