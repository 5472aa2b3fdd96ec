package modifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/yzdice/internal/game/modifier"
	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

func registry(t testing.TB) *ruleset.Registry {
	t.Helper()
	reg, err := ruleset.Default()
	require.NoError(t, err)
	return reg
}

func TestModify_Generic(t *testing.T) {
	reg := registry(t)
	cases := []struct {
		name    string
		variant string
		in      ruleset.Quantities
		mod     int
		want    ruleset.Quantities
	}{
		{"improve", "vae", ruleset.Quantities{"skill": 2}, 3, ruleset.Quantities{"skill": 5}},
		{"worsen floors at one", "vae", ruleset.Quantities{"skill": 2}, -5, ruleset.Quantities{"skill": 1}},
		{"adds missing skill", "vae", ruleset.Quantities{}, 2, ruleset.Quantities{"skill": 2}},
		{"stress untouched", "alien", ruleset.Quantities{"base": 4, "stress": 2}, -2, ruleset.Quantities{"base": 2, "stress": 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := modifier.Modify(reg, tc.in, tc.mod, tc.variant)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModify_Pooled(t *testing.T) {
	reg := registry(t)
	cases := []struct {
		name string
		in   ruleset.Quantities
		mod  int
		want ruleset.Quantities
	}{
		{"penalty beyond skill becomes negative dice", ruleset.Quantities{"skill": 3, "neg": 0}, -5, ruleset.Quantities{"skill": 0, "neg": 2}},
		{"bonus adds skill", ruleset.Quantities{"base": 3, "skill": 1}, 2, ruleset.Quantities{"base": 3, "skill": 3, "neg": 0}},
		{"cancel before bonus", ruleset.Quantities{"skill": 2, "neg": 1}, 1, ruleset.Quantities{"skill": 2, "neg": 0}},
		{"cancel before penalty", ruleset.Quantities{"skill": 1, "neg": 3}, -1, ruleset.Quantities{"skill": 0, "neg": 3}},
		{"penalty within skill", ruleset.Quantities{"skill": 4, "gear": 2}, -2, ruleset.Quantities{"skill": 2, "neg": 0, "gear": 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := modifier.Modify(reg, tc.in, tc.mod, "myz")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModify_Tiered(t *testing.T) {
	reg := registry(t)
	cases := []struct {
		name string
		in   ruleset.Quantities
		mod  int
		want ruleset.Quantities
	}{
		{"single die gains a bottom die", ruleset.Quantities{"d": 1}, 1, ruleset.Quantities{"d": 2}},
		{"added die then upgraded", ruleset.Quantities{"d": 1}, 2, ruleset.Quantities{"c": 1, "d": 1}},
		{"added die upgraded to match", ruleset.Quantities{"c": 1}, 2, ruleset.Quantities{"c": 2}},
		{"top die gains a bottom die", ruleset.Quantities{"a": 1}, 1, ruleset.Quantities{"a": 1, "d": 1}},
		{"weakest die upgraded", ruleset.Quantities{"a": 1, "b": 1}, 1, ruleset.Quantities{"a": 2}},
		{"two top dice stop", ruleset.Quantities{"a": 2}, 3, ruleset.Quantities{"a": 2}},
		{"three dice stop", ruleset.Quantities{"d": 3}, 1, ruleset.Quantities{"d": 3}},
		{"empty pool improved", ruleset.Quantities{}, 1, ruleset.Quantities{"d": 1}},
		{"strongest die downgraded", ruleset.Quantities{"a": 1, "d": 1}, -3, ruleset.Quantities{"d": 2}},
		{"two bottom dice collapse", ruleset.Quantities{"a": 1, "d": 1}, -4, ruleset.Quantities{"d": 1}},
		{"single die downgraded", ruleset.Quantities{"c": 1}, -1, ruleset.Quantities{"d": 1}},
		{"bottom die cannot drop", ruleset.Quantities{"d": 1}, -2, ruleset.Quantities{"d": 1}},
		{"empty pool worsened", ruleset.Quantities{}, -1, ruleset.Quantities{"d": 1}},
		{"bottom die removed from large pool", ruleset.Quantities{"d": 3}, -1, ruleset.Quantities{"d": 2}},
		{"zero ranks dropped", ruleset.Quantities{"b": 1, "c": 0}, -1, ruleset.Quantities{"c": 1}},
		{"ammo and location pass through", ruleset.Quantities{"a": 1, "ammo": 3, "loc": 1}, -1,
			ruleset.Quantities{"b": 1, "ammo": 3, "loc": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := modifier.Modify(reg, tc.in, tc.mod, "t2k")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModify_TieredLargePoolHitsIterationCap(t *testing.T) {
	_, err := modifier.Modify(registry(t), ruleset.Quantities{"a": 40}, -200, "t2k")
	assert.ErrorIs(t, err, ruleset.ErrInvariant)
}

func TestModify_Errors(t *testing.T) {
	reg := registry(t)

	_, err := modifier.Modify(reg, ruleset.Quantities{"skill": 1}, 1, "coriolis")
	assert.ErrorIs(t, err, ruleset.ErrConfiguration)

	_, err = modifier.Modify(reg, ruleset.Quantities{"ammo": 1}, 1, "myz")
	assert.ErrorIs(t, err, ruleset.ErrConfiguration)

	_, err = modifier.Modify(reg, ruleset.Quantities{"skill": -1}, 0, "myz")
	assert.ErrorIs(t, err, ruleset.ErrInvariant)
}

func TestModify_ZeroReturnsCopy(t *testing.T) {
	in := ruleset.Quantities{"a": 2, "ammo": 1}
	got, err := modifier.Modify(registry(t), in, 0, "t2k")
	require.NoError(t, err)
	assert.Equal(t, in, got)
	got["a"] = 9
	assert.Equal(t, 2, in["a"])
}

// TestModify_Property verifies, across every variant, that the input is never
// mutated, counts stay non-negative, and each rule's floor holds.
func TestModify_Property(t *testing.T) {
	reg := registry(t)
	ids := reg.IDs()

	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.SampledFrom(ids).Draw(rt, "variant")
		v, err := reg.Variant(id)
		require.NoError(rt, err)
		q := make(ruleset.Quantities)
		for _, k := range v.Keys() {
			q[k] = rapid.IntRange(0, 3).Draw(rt, k)
		}
		before := q.Clone()
		mod := rapid.IntRange(-10, 10).Draw(rt, "mod")

		got, err := modifier.Modify(reg, q, mod, id)
		require.NoError(rt, err)
		assert.Equal(rt, before, q, "input mutated")
		require.NoError(rt, got.Validate(v))

		rule := v.Modifier
		switch {
		case mod == 0:
			assert.Equal(rt, q, got)
		case rule.Kind == ruleset.RuleGeneric:
			assert.GreaterOrEqual(rt, got[rule.Skill], 1)
		case rule.Kind == ruleset.RulePooled:
			assert.False(rt, got[rule.Skill] > 0 && got[rule.Negative] > 0 && mod < 0,
				"a penalty never leaves both skill and negative dice")
		case rule.Kind == ruleset.RuleTiered:
			ranked := 0
			for _, k := range rule.Ranks {
				ranked += got[k]
			}
			assert.GreaterOrEqual(rt, ranked, 1, "a modified tiered pool is never empty")
			for k, n := range q {
				if !contains(rule.Ranks, k) {
					assert.Equal(rt, n, got[k], "non-rank key %s changed", k)
				}
			}
		}
	})
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
