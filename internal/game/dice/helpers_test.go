package dice_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/yzdice/internal/game/dice"
	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// seqSource returns the faces in vals, in order, as Intn results.
type seqSource struct {
	vals []int
	i    int
}

func newSeq(faces ...int) *seqSource { return &seqSource{vals: faces} }

func (s *seqSource) Intn(n int) int {
	if s.i >= len(s.vals) {
		panic(fmt.Sprintf("seqSource exhausted after %d values", len(s.vals)))
	}
	v := s.vals[s.i]
	s.i++
	if v < 1 || v > n {
		panic(fmt.Sprintf("seqSource value %d outside [1, %d]", v, n))
	}
	return v - 1
}

// fixedSource always rolls face, clamped to the die size.
type fixedSource struct{ face int }

func (f fixedSource) Intn(n int) int {
	if f.face >= n {
		return n - 1
	}
	return f.face - 1
}

func registry(t testing.TB) *ruleset.Registry {
	t.Helper()
	reg, err := ruleset.Default()
	require.NoError(t, err)
	return reg
}

// values returns the active face of every die in the roll, in pool order.
func values(r *dice.Roll) []int {
	out := make([]int, 0, r.Size())
	for _, d := range r.Pool().Dice() {
		out = append(out, d.Value())
	}
	return out
}
