package armor

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/yzdice/internal/game/dice"
	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// AblationResult is the outcome of one hit against a piece of armor.
type AblationResult struct {
	Penetrated bool
	Ablated    bool
	// Rating is the armor rating after the check.
	Rating int
	// Roll is the ablation sub-roll, or nil when no check was needed.
	Roll *dice.Roll
}

// AblationCheck resolves damage against a and, when the hit dealt damage,
// rolls a single die of the variant's weakest rank (or its first base die when
// the variant has no ranks). A bane on that die lowers the rating by one.
// Damage exceeding the rating is reported as penetrating; its consequences
// belong to the caller.
//
// Precondition: roller and a must be non-nil.
// Postcondition: a is not mutated; returns ctx.Err() if ctx is done before the
// sub-roll, or a configuration error from the roller.
func AblationCheck(ctx context.Context, roller *dice.Roller, variant string, a *ArmorDef, damage int) (AblationResult, error) {
	res := AblationResult{Rating: a.Rating, Penetrated: damage > a.Rating}
	if damage <= 0 || a.Rating == 0 {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	key, err := ablationDie(roller.Registry(), variant)
	if err != nil {
		return res, err
	}
	roll, err := roller.New(ruleset.Quantities{key: 1}, variant,
		dice.WithName(fmt.Sprintf("ablation %s", a.ID)),
		dice.WithMaxPush(0),
	)
	if err != nil {
		return res, err
	}
	if err := roller.Evaluate(roll); err != nil {
		return res, err
	}

	res.Roll = roll
	if roll.BaneCount(ruleset.KindBase) > 0 {
		res.Ablated = true
		res.Rating = a.Rating - 1
	}
	return res, nil
}

func ablationDie(reg *ruleset.Registry, variant string) (string, error) {
	v, err := reg.Variant(variant)
	if err != nil {
		return "", err
	}
	if v.Modifier.Kind == ruleset.RuleTiered {
		return v.Modifier.Ranks[0], nil
	}
	if keys := v.KeysOfKind(ruleset.KindBase); len(keys) > 0 {
		return keys[0], nil
	}
	return "", fmt.Errorf("%w: variant %q has no base die for ablation", ruleset.ErrConfiguration, variant)
}
