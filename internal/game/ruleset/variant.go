package ruleset

import (
	"errors"
	"fmt"
	"strings"
)

// RuleKind names the difficulty-modifier algorithm a variant uses.
type RuleKind string

// Modifier algorithms.
const (
	// RuleGeneric adds the modifier to the skill die count, floored at 1.
	RuleGeneric RuleKind = "generic"
	// RulePooled cancels skill against negative dice, then moves the modifier
	// into skill dice or, past zero skill dice, into negative dice.
	RulePooled RuleKind = "pooled"
	// RuleTiered upgrades or downgrades ranked dice one step at a time.
	RuleTiered RuleKind = "tiered"
)

// ModifierRule configures the modifier engine for one variant.
//
// Skill is used by RuleGeneric and RulePooled; Negative by RulePooled; Ranks,
// ordered weakest to strongest, by RuleTiered.
type ModifierRule struct {
	Kind     RuleKind
	Skill    string
	Negative string
	Ranks    []string
}

// Variant is one game's die-type catalogue.
type Variant struct {
	ID       string
	Name     string
	MaxPush  int
	Modifier ModifierRule

	order   []string
	dice    map[string]*DieType
	byDenom map[string]*DieType
}

// DieType returns the die type registered under key.
//
// Postcondition: returns an ErrConfiguration error when key is unknown.
func (v *Variant) DieType(key string) (*DieType, error) {
	t, ok := v.dice[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown die type %q for variant %q", ErrConfiguration, key, v.ID)
	}
	return t, nil
}

// ByDenomination returns the die type written as denom in formula notation.
//
// Postcondition: returns an ErrConfiguration error when denom is unknown.
func (v *Variant) ByDenomination(denom string) (*DieType, error) {
	t, ok := v.byDenom[strings.ToLower(denom)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown die denomination %q for variant %q", ErrConfiguration, denom, v.ID)
	}
	return t, nil
}

// Keys returns the die-type keys in declaration order.
func (v *Variant) Keys() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// KeysOfKind returns the keys of every die type of kind k in declaration order.
func (v *Variant) KeysOfKind(k Kind) []string {
	var out []string
	for _, key := range v.order {
		if v.dice[key].Kind == k {
			out = append(out, key)
		}
	}
	return out
}

// VariantDef is the YAML form of a Variant.
type VariantDef struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	MaxPush  int          `yaml:"max_push"`
	Dice     []DieTypeDef `yaml:"dice"`
	Modifier ModifierDef  `yaml:"modifier"`
}

// DieTypeDef is the YAML form of a DieType.
type DieTypeDef struct {
	Key          string     `yaml:"key"`
	Kind         string     `yaml:"kind"`
	Faces        int        `yaml:"faces"`
	Denomination string     `yaml:"denomination"`
	Locked       []int      `yaml:"locked"`
	Success      SuccessDef `yaml:"success"`
}

// SuccessDef is the YAML form of a SuccessRule. Rule is "threshold", "table",
// or "none".
type SuccessDef struct {
	Rule      string      `yaml:"rule"`
	Threshold int         `yaml:"threshold"`
	Table     map[int]int `yaml:"table"`
}

// ModifierDef is the YAML form of a ModifierRule.
type ModifierDef struct {
	Rule     string   `yaml:"rule"`
	Skill    string   `yaml:"skill"`
	Negative string   `yaml:"negative"`
	Ranks    []string `yaml:"ranks"`
}

// Build validates d and converts it into a Variant.
//
// Postcondition: returns a Variant whose die types all satisfy
// locked ⊆ [1, faces] and classify every face, or an ErrConfiguration error
// listing every violation.
func (d VariantDef) Build() (*Variant, error) {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.MaxPush < 0 {
		errs = append(errs, fmt.Errorf("max_push must be >= 0, got %d", d.MaxPush))
	}
	if len(d.Dice) == 0 {
		errs = append(errs, errors.New("dice must not be empty"))
	}

	v := &Variant{
		ID:      d.ID,
		Name:    d.Name,
		MaxPush: d.MaxPush,
		dice:    make(map[string]*DieType, len(d.Dice)),
		byDenom: make(map[string]*DieType, len(d.Dice)),
	}
	for _, def := range d.Dice {
		t, err := def.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := v.dice[t.Key]; dup {
			errs = append(errs, fmt.Errorf("die type %q declared twice", t.Key))
			continue
		}
		if _, dup := v.byDenom[t.Denomination]; dup {
			errs = append(errs, fmt.Errorf("denomination %q declared twice", t.Denomination))
			continue
		}
		v.dice[t.Key] = t
		v.byDenom[t.Denomination] = t
		v.order = append(v.order, t.Key)
	}

	rule, err := d.Modifier.build(v)
	if err != nil {
		errs = append(errs, err)
	}
	v.Modifier = rule

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: variant %q: %v", ErrConfiguration, d.ID, errors.Join(errs...))
	}
	return v, nil
}

func (d DieTypeDef) build() (*DieType, error) {
	var errs []string
	if d.Key == "" {
		errs = append(errs, "key must not be empty")
	}
	if !ValidKind(Kind(d.Kind)) {
		errs = append(errs, fmt.Sprintf("kind %q is not a valid die kind", d.Kind))
	}
	if d.Faces < 2 {
		errs = append(errs, fmt.Sprintf("faces must be >= 2, got %d", d.Faces))
	}
	if d.Denomination == "" {
		errs = append(errs, "denomination must not be empty")
	}
	locked := make(map[int]struct{}, len(d.Locked))
	for _, v := range d.Locked {
		if v < 1 || v > d.Faces {
			errs = append(errs, fmt.Sprintf("locked value %d outside [1, %d]", v, d.Faces))
			continue
		}
		locked[v] = struct{}{}
	}

	var rule SuccessRule
	switch d.Success.Rule {
	case "threshold":
		if d.Success.Threshold < 1 || d.Success.Threshold > d.Faces {
			errs = append(errs, fmt.Sprintf("success threshold %d outside [1, %d]", d.Success.Threshold, d.Faces))
		} else {
			rule = ThresholdRule(d.Success.Threshold)
		}
	case "table":
		ok := true
		for face := range d.Success.Table {
			if face < 1 || face > d.Faces {
				errs = append(errs, fmt.Sprintf("success table face %d outside [1, %d]", face, d.Faces))
				ok = false
			}
		}
		if ok && d.Faces >= 2 {
			rule = TableRule(d.Faces, d.Success.Table)
		}
	case "none":
		if d.Faces >= 2 {
			rule = TableRule(d.Faces, nil)
		}
	default:
		errs = append(errs, fmt.Sprintf("success.rule must be one of [threshold, table, none], got %q", d.Success.Rule))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("die type %q: %s", d.Key, strings.Join(errs, "; "))
	}
	return &DieType{
		Key:          d.Key,
		Kind:         Kind(d.Kind),
		Faces:        d.Faces,
		Denomination: strings.ToLower(d.Denomination),
		Success:      rule,
		locked:       locked,
	}, nil
}

func (d ModifierDef) build(v *Variant) (ModifierRule, error) {
	rule := ModifierRule{
		Kind:     RuleKind(d.Rule),
		Skill:    d.Skill,
		Negative: d.Negative,
		Ranks:    append([]string(nil), d.Ranks...),
	}
	known := func(key string) bool {
		_, ok := v.dice[key]
		return ok
	}
	switch rule.Kind {
	case RuleGeneric:
		if !known(d.Skill) {
			return rule, fmt.Errorf("modifier.skill %q is not a declared die type", d.Skill)
		}
	case RulePooled:
		if !known(d.Skill) {
			return rule, fmt.Errorf("modifier.skill %q is not a declared die type", d.Skill)
		}
		if !known(d.Negative) {
			return rule, fmt.Errorf("modifier.negative %q is not a declared die type", d.Negative)
		}
	case RuleTiered:
		if len(d.Ranks) < 2 {
			return rule, fmt.Errorf("modifier.ranks must list at least 2 die types, got %d", len(d.Ranks))
		}
		seen := make(map[string]bool, len(d.Ranks))
		for _, k := range d.Ranks {
			if !known(k) {
				return rule, fmt.Errorf("modifier rank %q is not a declared die type", k)
			}
			if seen[k] {
				return rule, fmt.Errorf("modifier rank %q listed twice", k)
			}
			seen[k] = true
		}
	default:
		return rule, fmt.Errorf("modifier.rule must be one of [generic, pooled, tiered], got %q", d.Rule)
	}
	return rule, nil
}
