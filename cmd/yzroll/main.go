// Package main provides a CLI for building, modifying, pushing, and storing
// Year Zero dice rolls.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/yzdice/internal/config"
	"github.com/cory-johannsen/yzdice/internal/game/armor"
	"github.com/cory-johannsen/yzdice/internal/game/dice"
	"github.com/cory-johannsen/yzdice/internal/game/modifier"
	"github.com/cory-johannsen/yzdice/internal/game/ruleset"
	"github.com/cory-johannsen/yzdice/internal/observability"
	"github.com/cory-johannsen/yzdice/internal/storage/postgres"
)

// options are the parsed command-line flags.
type options struct {
	configPath string
	variant    string
	formula    string
	name       string
	mod        int
	pushes     int
	maxPush    int
	replay     string
	armorDir   string
	damage     int
	save       bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger("yzroll", cfg.Logging)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repo *postgres.RollRepository
	if opts.save || opts.replay != "" {
		if !cfg.Storage.Enabled {
			logger.Fatal("storage is disabled; -save and -replay need storage.enabled")
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("roll store not ready", zap.Error(err))
		}
		repo = pool.Rolls()
	}

	if err := run(ctx, cfg, opts, repo, logger, os.Stdout); err != nil {
		logger.Fatal("roll failed", zap.Error(err))
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("yzroll", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to configuration file (optional)")
	fs.StringVar(&o.variant, "variant", "", "game variant (defaults to dice.default_variant)")
	fs.StringVar(&o.formula, "formula", "", `dice formula, e.g. "1db+1dd+3dm+1dl"`)
	fs.StringVar(&o.name, "name", "", "roll name")
	fs.IntVar(&o.mod, "mod", 0, "difficulty modifier applied before rolling")
	fs.IntVar(&o.pushes, "push", 0, "number of times to push after evaluating")
	fs.IntVar(&o.maxPush, "max-push", -1, "override the push ceiling (of the variant, or of the replayed roll)")
	fs.StringVar(&o.replay, "replay", "", "ID of a stored roll to restore instead of rolling a formula")
	fs.StringVar(&o.armorDir, "armor", "", "directory of armor YAML worn by the target")
	fs.IntVar(&o.damage, "damage", 0, "damage dealt per hit when checking armor ablation")
	fs.BoolVar(&o.save, "save", false, "store the roll in the database")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.formula == "" && o.replay == "" {
		return options{}, errors.New("one of -formula or -replay is required")
	}
	if o.replay != "" {
		var conflicts []string
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "formula", "mod", "variant", "name":
				conflicts = append(conflicts, "-"+f.Name)
			}
		})
		if len(conflicts) > 0 {
			return options{}, fmt.Errorf("-replay restores a stored roll and cannot be combined with %s",
				strings.Join(conflicts, ", "))
		}
	}
	return o, nil
}

// run executes one CLI invocation. repo may be nil when neither -save nor
// -replay is requested.
func run(ctx context.Context, cfg config.Config, o options, repo *postgres.RollRepository, logger *zap.Logger, out io.Writer) error {
	reg, err := ruleset.LoadDir(cfg.Dice.ContentDir)
	if err != nil {
		return fmt.Errorf("loading dice content: %w", err)
	}
	var src dice.Source = dice.NewCryptoSource()
	if cfg.Dice.Seed != 0 {
		src = dice.NewSeededSource(cfg.Dice.Seed)
	}
	roller := dice.NewLoggedRoller(reg, src, logger)

	var roll *dice.Roll
	if o.replay != "" {
		rec, err := repo.Get(ctx, o.replay)
		if err != nil {
			return err
		}
		if roll, err = roller.Restore(rec.Snapshot); err != nil {
			return err
		}
		if o.maxPush >= 0 {
			if err := roll.SetMaxPush(o.maxPush); err != nil {
				return err
			}
		}
	} else {
		if roll, err = buildRoll(roller, cfg, o, logger); err != nil {
			return err
		}
	}

	for i := 0; i < o.pushes; i++ {
		pushed, err := roller.Push(roll)
		if err != nil {
			return err
		}
		if !pushed {
			fmt.Fprintf(out, "roll is no longer pushable after %d push(es)\n", roll.PushCount())
			break
		}
	}

	report(out, roll)
	rollLog := observability.WithRoll(logger, roll.ID(), roll.Variant())

	if o.armorDir != "" {
		if err := checkArmor(ctx, roller, roll, o, rollLog, out); err != nil {
			return err
		}
	}

	if repo != nil && (o.save || o.replay != "") {
		if err := repo.Save(ctx, roll); err != nil {
			return err
		}
		rollLog.Info("roll saved", zap.Int("push_count", roll.PushCount()))
		fmt.Fprintf(out, "saved roll %s\n", roll.ID())
	}
	return nil
}

func buildRoll(roller *dice.Roller, cfg config.Config, o options, logger *zap.Logger) (*dice.Roll, error) {
	variant := o.variant
	if variant == "" {
		variant = cfg.Dice.DefaultVariant
	}
	v, err := roller.Registry().Variant(variant)
	if err != nil {
		return nil, err
	}
	q, err := dice.Parse(v, o.formula)
	if err != nil {
		return nil, err
	}
	if o.mod != 0 {
		modified, err := modifier.Modify(roller.Registry(), q, o.mod, variant)
		if err != nil {
			return nil, err
		}
		logger.Debug("difficulty modifier applied",
			zap.Int("mod", o.mod),
			zap.String("from", dice.Formula(v, q)),
			zap.String("to", dice.Formula(v, modified)),
		)
		q = modified
	}

	opts := []dice.Option{dice.WithName(o.name)}
	if o.maxPush >= 0 {
		opts = append(opts, dice.WithMaxPush(o.maxPush))
	}
	roll, err := roller.New(q, variant, opts...)
	if err != nil {
		return nil, err
	}
	if err := roller.Evaluate(roll); err != nil {
		return nil, err
	}
	return roll, nil
}

func report(out io.Writer, roll *dice.Roll) {
	fmt.Fprintln(out, roll.String())
	fmt.Fprintf(out, "  successes: %d\n", roll.SuccessCount())
	fmt.Fprintf(out, "  banes:     %d\n", roll.BaneCount())
	fmt.Fprintf(out, "  pushes:    %d/%d (pushable=%v)\n", roll.PushCount(), roll.MaxPush(), roll.Pushable())

	v := roll.Pool().Variant()
	if len(v.KeysOfKind(ruleset.KindAmmo)) > 0 {
		fmt.Fprintf(out, "  ammo:      spent=%d hits=%d jams=%d\n", roll.AmmoSpent(), roll.HitCount(), roll.JamCount())
	}
	if locs := roll.HitLocations(); len(locs) > 0 {
		strs := make([]string, len(locs))
		for i, l := range locs {
			strs[i] = fmt.Sprint(l)
		}
		fmt.Fprintf(out, "  locations: %s\n", strings.Join(strs, ", "))
	}
	if len(v.KeysOfKind(ruleset.KindStress)) > 0 {
		fmt.Fprintf(out, "  stress:    %d (panic=%v)\n", roll.StressCount(), roll.Panic())
	}
}

func checkArmor(ctx context.Context, roller *dice.Roller, roll *dice.Roll, o options, logger *zap.Logger, out io.Writer) error {
	worn, err := armor.LoadArmors(o.armorDir)
	if err != nil {
		return err
	}
	for _, loc := range roll.HitLocations() {
		a := armor.ForLocation(worn, loc)
		if a == nil {
			fmt.Fprintf(out, "  location %d: unarmored\n", loc)
			continue
		}
		res, err := armor.AblationCheck(ctx, roller, roll.Variant(), a, o.damage)
		if err != nil {
			return err
		}
		if res.Ablated {
			logger.Info("armor ablated",
				zap.String("armor", a.ID),
				zap.Int("location", loc),
				zap.Int("rating", res.Rating),
			)
		}
		fmt.Fprintf(out, "  location %d: %s penetrated=%v ablated=%v rating=%d\n",
			loc, a.Name, res.Penetrated, res.Ablated, res.Rating)
	}
	return nil
}
