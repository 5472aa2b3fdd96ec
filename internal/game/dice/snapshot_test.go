package dice_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/yzdice/internal/game/dice"
	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

func pushedTwilightRoll(t *testing.T, reg *ruleset.Registry) *dice.Roll {
	t.Helper()
	roll, err := dice.NewRoll(reg, ruleset.Quantities{"b": 1, "d": 1, "ammo": 3, "loc": 1}, "t2k",
		newSeq(7, 1, 6, 1, 3, 5, 2, 5), dice.WithName("Suppressive fire"))
	require.NoError(t, err)
	require.NoError(t, roll.Evaluate())
	pushed, err := roll.Push()
	require.NoError(t, err)
	require.True(t, pushed)
	return roll
}

func TestSnapshot_RoundTrip(t *testing.T) {
	reg := registry(t)
	roll := pushedTwilightRoll(t, reg)

	data, err := json.Marshal(roll.Snapshot())
	require.NoError(t, err)
	var s dice.Snapshot
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, roll.Snapshot(), s)

	restored, err := dice.FromSnapshot(reg, s, newSeq())
	require.NoError(t, err)
	assert.Equal(t, roll.ID(), restored.ID())
	assert.Equal(t, roll.Name(), restored.Name())
	assert.Equal(t, roll.SuccessCount(), restored.SuccessCount())
	assert.Equal(t, roll.PushCount(), restored.PushCount())
	assert.Equal(t, roll.AmmoSpent(), restored.AmmoSpent())
	assert.Equal(t, roll.HitLocations(), restored.HitLocations())
	assert.Equal(t, roll.Pushable(), restored.Pushable())
	assert.True(t, roll.DiceQuantities().Equal(s.Quantities()))
}

func TestSnapshot_JSONShape(t *testing.T) {
	reg := registry(t)
	roll, err := dice.NewRoll(reg, ruleset.Quantities{"skill": 1}, "vae", newSeq(4), dice.WithID("r1"))
	require.NoError(t, err)
	require.NoError(t, roll.Evaluate())

	data, err := json.Marshal(roll.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "r1",
		"variant": "vae",
		"max_push": 1,
		"evaluated": true,
		"dice": [{"key": "skill", "results": [{"value": 4, "push_round": 0, "active": true, "locked": false}]}]
	}`, string(data))
}

func TestSnapshot_RestoredRollKeepsPushing(t *testing.T) {
	reg := registry(t)
	roll, err := dice.NewRoll(reg, ruleset.Quantities{"skill": 1}, "vae", newSeq(3), dice.WithMaxPush(2))
	require.NoError(t, err)
	require.NoError(t, roll.Evaluate())

	restored, err := dice.FromSnapshot(reg, roll.Snapshot(), newSeq(6))
	require.NoError(t, err)
	pushed, err := restored.Push()
	require.NoError(t, err)
	require.True(t, pushed)
	assert.Equal(t, 1, restored.SuccessCount())
	assert.Equal(t, 0, roll.SuccessCount(), "the original roll is independent")
}

func TestSnapshot_Unevaluated(t *testing.T) {
	reg := registry(t)
	roll, err := dice.NewRoll(reg, ruleset.Quantities{"base": 2}, "myz", newSeq())
	require.NoError(t, err)

	restored, err := dice.FromSnapshot(reg, roll.Snapshot(), newSeq(6, 6))
	require.NoError(t, err)
	assert.False(t, restored.Evaluated())
	require.NoError(t, restored.Evaluate())
	assert.Equal(t, 2, restored.SuccessCount())
}

func TestFromSnapshot_Malformed(t *testing.T) {
	reg := registry(t)
	valid := func() dice.Snapshot {
		return dice.Snapshot{
			ID: "r1", Variant: "myz", MaxPush: 1, Evaluated: ptr(true),
			Dice: []dice.DieSnapshot{{Key: "skill", Results: []dice.Result{
				{Value: 2, PushRound: 0, Active: false},
				{Value: 6, PushRound: 1, Active: true, Locked: true},
			}}},
		}
	}
	_, err := dice.FromSnapshot(reg, valid(), newSeq())
	require.NoError(t, err)

	cases := map[string]struct {
		mutate func(s *dice.Snapshot)
		want   error
	}{
		"unknown variant": {func(s *dice.Snapshot) { s.Variant = "coriolis" }, ruleset.ErrConfiguration},
		"unknown key":     {func(s *dice.Snapshot) { s.Dice[0].Key = "ammo" }, ruleset.ErrConfiguration},
		"negative push":   {func(s *dice.Snapshot) { s.MaxPush = -1 }, ruleset.ErrInvariant},
		"beyond ceiling":  {func(s *dice.Snapshot) { s.MaxPush = 0 }, ruleset.ErrInvariant},
		"value out of range": {func(s *dice.Snapshot) {
			s.Dice[0].Results[1].Value = 9
		}, ruleset.ErrInvariant},
		"lock flag mismatch": {func(s *dice.Snapshot) {
			s.Dice[0].Results[1].Locked = false
		}, ruleset.ErrInvariant},
		"stale result active": {func(s *dice.Snapshot) {
			s.Dice[0].Results[0].Active = true
		}, ruleset.ErrInvariant},
		"latest result inactive": {func(s *dice.Snapshot) {
			s.Dice[0].Results[1].Active = false
		}, ruleset.ErrInvariant},
		"pushed a locked face": {func(s *dice.Snapshot) {
			s.Dice[0].Results[0] = dice.Result{Value: 6, PushRound: 0, Locked: true}
		}, ruleset.ErrInvariant},
		"evaluated without results": {func(s *dice.Snapshot) {
			s.Dice = append(s.Dice, dice.DieSnapshot{Key: "base"})
		}, ruleset.ErrInvariant},
		"results but not evaluated": {func(s *dice.Snapshot) { s.Evaluated = ptr(false) }, ruleset.ErrInvariant},
		"partly rolled without flag": {func(s *dice.Snapshot) {
			s.Evaluated = nil
			s.Dice = append(s.Dice, dice.DieSnapshot{Key: "base"})
		}, ruleset.ErrInvariant},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid()
			tc.mutate(&s)
			_, err := dice.FromSnapshot(reg, s, newSeq())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestFromSnapshot_OptionalFields(t *testing.T) {
	reg := registry(t)
	cases := map[string]struct {
		dice          []dice.DieSnapshot
		wantEvaluated bool
	}{
		"rolled dice imply evaluated": {
			dice: []dice.DieSnapshot{{Key: "skill", Results: []dice.Result{{Value: 6, Active: true, Locked: true}}}},
			wantEvaluated: true,
		},
		"unrolled dice imply unevaluated": {
			dice:          []dice.DieSnapshot{{Key: "skill"}, {Key: "base"}},
			wantEvaluated: false,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := dice.Snapshot{Variant: "myz", MaxPush: 1, Dice: tc.dice}
			roll, err := dice.FromSnapshot(reg, s, newSeq())
			require.NoError(t, err)
			assert.NotEmpty(t, roll.ID())
			assert.Equal(t, tc.wantEvaluated, roll.Evaluated())
		})
	}
}

func TestFromSnapshot_HostJSON(t *testing.T) {
	reg := registry(t)
	var s dice.Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{
		"variant": "t2k",
		"max_push": 1,
		"dice": [{"key": "d", "results": [
			{"value": 3, "push_round": 0, "active": false, "locked": false},
			{"value": 6, "push_round": 1, "active": true, "locked": true}
		]}]
	}`), &s))

	roll, err := dice.FromSnapshot(reg, s, newSeq())
	require.NoError(t, err)
	assert.NotEmpty(t, roll.ID())
	assert.True(t, roll.Evaluated())
	assert.Equal(t, 1, roll.SuccessCount())
	assert.Equal(t, 1, roll.PushCount())
	assert.False(t, roll.Pushable())

	again, err := dice.FromSnapshot(reg, s, newSeq())
	require.NoError(t, err)
	assert.NotEqual(t, roll.ID(), again.ID(), "each restore without an id gets its own")
}

// TestSnapshot_RoundTrip_Property verifies a restored roll reports the same
// statistics as the roll it was captured from.
func TestSnapshot_RoundTrip_Property(t *testing.T) {
	reg := registry(t)
	v, err := reg.Variant("t2k")
	require.NoError(t, err)
	keys := v.Keys()

	rapid.Check(t, func(rt *rapid.T) {
		q := make(ruleset.Quantities)
		for _, k := range keys {
			q[k] = rapid.IntRange(0, 3).Draw(rt, k)
		}
		seed := rapid.Uint64().Draw(rt, "seed")
		push := rapid.Bool().Draw(rt, "push")

		roll, err := dice.NewRoll(reg, q, "t2k", dice.NewSeededSource(seed))
		require.NoError(rt, err)
		require.NoError(rt, roll.Evaluate())
		if push {
			_, err := roll.Push()
			require.NoError(rt, err)
		}

		restored, err := dice.FromSnapshot(reg, roll.Snapshot(), dice.NewSeededSource(seed))
		require.NoError(rt, err)
		assert.Equal(rt, roll.Snapshot(), restored.Snapshot())
		assert.Equal(rt, roll.SuccessCount(), restored.SuccessCount())
		assert.Equal(rt, roll.BaneCount(), restored.BaneCount())
		assert.Equal(rt, roll.PushCount(), restored.PushCount())
		assert.Equal(rt, roll.AmmoSpent(), restored.AmmoSpent())
		assert.Equal(rt, roll.JamCount(), restored.JamCount())
		assert.Equal(rt, roll.HitLocations(), restored.HitLocations())
	})
}
