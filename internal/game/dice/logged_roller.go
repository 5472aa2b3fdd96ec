package dice

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
)

// Roller builds, evaluates, and pushes rolls against one registry and Source,
// logging every step at debug level with the roll ID, variant, formula, and
// resulting statistics.
type Roller struct {
	reg    *ruleset.Registry
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller over reg that rolls with src and logs to logger.
//
// Precondition: reg, src, and logger must be non-nil.
func NewLoggedRoller(reg *ruleset.Registry, src Source, logger *zap.Logger) *Roller {
	return &Roller{reg: reg, src: src, logger: logger}
}

// Registry returns the roller's die-type registry.
func (r *Roller) Registry() *ruleset.Registry { return r.reg }

// New builds an unevaluated roll of q for variant.
//
// Postcondition: same as NewRoll.
func (r *Roller) New(q ruleset.Quantities, variant string, opts ...Option) (*Roll, error) {
	roll, err := NewRoll(r.reg, q, variant, r.src, opts...)
	if err != nil {
		r.logger.Debug("dice roll rejected",
			zap.String("variant", variant),
			zap.Any("quantities", q),
			zap.Error(err),
		)
		return nil, err
	}
	r.logger.Debug("dice roll built",
		zap.String("roll_id", roll.ID()),
		zap.String("variant", variant),
		zap.String("formula", roll.Formula()),
		zap.Int("max_push", roll.MaxPush()),
	)
	return roll, nil
}

// RollFormula parses expr for variant, builds the roll, and evaluates it.
//
// Postcondition: Returns an evaluated Roll or a parse/configuration error.
func (r *Roller) RollFormula(variant, expr string, opts ...Option) (*Roll, error) {
	v, err := r.reg.Variant(variant)
	if err != nil {
		return nil, err
	}
	q, err := Parse(v, expr)
	if err != nil {
		return nil, err
	}
	roll, err := r.New(q, variant, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Evaluate(roll); err != nil {
		return nil, err
	}
	return roll, nil
}

// Evaluate evaluates roll and logs the outcome.
func (r *Roller) Evaluate(roll *Roll) error {
	if err := roll.Evaluate(); err != nil {
		r.logger.Error("dice roll evaluation failed", zap.String("roll_id", roll.ID()), zap.Error(err))
		return err
	}
	r.logger.Debug("dice roll evaluated", r.fields(roll)...)
	return nil
}

// Push pushes roll and logs the outcome. It reports whether anything was rerolled.
func (r *Roller) Push(roll *Roll) (bool, error) {
	pushed, err := roll.Push()
	if err != nil {
		r.logger.Error("dice roll push failed", zap.String("roll_id", roll.ID()), zap.Error(err))
		return false, err
	}
	if !pushed {
		r.logger.Debug("dice roll not pushable", zap.String("roll_id", roll.ID()), zap.Int("push_count", roll.PushCount()))
		return false, nil
	}
	r.logger.Debug("dice roll pushed", r.fields(roll)...)
	return true, nil
}

// Restore rebuilds a roll from s; further pushes use the roller's Source.
func (r *Roller) Restore(s Snapshot) (*Roll, error) {
	roll, err := FromSnapshot(r.reg, s, r.src)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("dice roll restored", r.fields(roll)...)
	return roll, nil
}

func (r *Roller) fields(roll *Roll) []zap.Field {
	values := make([]int, 0, roll.Size())
	for _, d := range roll.Pool().Dice() {
		values = append(values, d.Value())
	}
	return []zap.Field{
		zap.String("roll_id", roll.ID()),
		zap.String("variant", roll.Variant()),
		zap.String("formula", roll.Formula()),
		zap.Ints("dice", values),
		zap.Int("successes", roll.SuccessCount()),
		zap.Int("banes", roll.BaneCount()),
		zap.Int("push_count", roll.PushCount()),
		zap.Bool("pushable", roll.Pushable()),
	}
}
