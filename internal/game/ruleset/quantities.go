package ruleset

import (
	"fmt"
	"sort"
)

// Quantities maps a die-type key to the number of dice of that type. It is
// both the input to pool construction and the input/output of the modifier
// engine.
type Quantities map[string]int

// Clone returns an independent copy of q.
//
// Postcondition: mutating the result never affects q.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for k, n := range q {
		out[k] = n
	}
	return out
}

// Total returns the number of dice described by q.
func (q Quantities) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}

// Compact returns a copy of q without zero-count entries.
func (q Quantities) Compact() Quantities {
	out := make(Quantities, len(q))
	for k, n := range q {
		if n != 0 {
			out[k] = n
		}
	}
	return out
}

// Equal reports whether q and other describe the same dice, treating a
// missing key and a zero count as equivalent.
func (q Quantities) Equal(other Quantities) bool {
	a, b := q.Compact(), other.Compact()
	if len(a) != len(b) {
		return false
	}
	for k, n := range a {
		if b[k] != n {
			return false
		}
	}
	return true
}

// Keys returns the die-type keys of q in lexical order.
func (q Quantities) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks q against variant v.
//
// Postcondition: returns an ErrConfiguration error for a key unknown to v, an
// ErrInvariant error for a negative count, or nil.
func (q Quantities) Validate(v *Variant) error {
	for _, k := range q.Keys() {
		if _, err := v.DieType(k); err != nil {
			return err
		}
		if q[k] < 0 {
			return fmt.Errorf("%w: negative count %d for die type %q", ErrInvariant, q[k], k)
		}
	}
	return nil
}
