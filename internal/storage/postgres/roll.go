package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/yzdice/internal/game/dice"
)

// ErrRollNotFound is returned when a roll lookup yields no results.
var ErrRollNotFound = errors.New("roll not found")

// RollRecord is one persisted roll: its snapshot plus the summary columns
// written alongside it for listing without decoding.
type RollRecord struct {
	Snapshot  dice.Snapshot
	Formula   string
	Successes int
	PushCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RollRepository persists roll snapshots for history replay and pushing from
// a previously shared roll.
type RollRepository struct {
	db *pgxpool.Pool
}

// NewRollRepository creates a RollRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRollRepository(db *pgxpool.Pool) *RollRepository {
	return &RollRepository{db: db}
}

// Save inserts roll, or replaces the stored state of a roll with the same ID
// so that later pushes overwrite earlier ones.
//
// Precondition: roll must be non-nil.
// Postcondition: Get(roll.ID()) returns the roll's current snapshot.
func (r *RollRepository) Save(ctx context.Context, roll *dice.Roll) error {
	snap := roll.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding roll snapshot: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO rolls (id, name, variant, formula, successes, push_count, snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		     name = EXCLUDED.name,
		     formula = EXCLUDED.formula,
		     successes = EXCLUDED.successes,
		     push_count = EXCLUDED.push_count,
		     snapshot = EXCLUDED.snapshot,
		     updated_at = NOW()`,
		snap.ID, snap.Name, snap.Variant, roll.Formula(), roll.SuccessCount(), roll.PushCount(), data,
	)
	if err != nil {
		return fmt.Errorf("saving roll %s: %w", snap.ID, err)
	}
	return nil
}

// Get retrieves a roll by ID.
//
// Postcondition: Returns the record or ErrRollNotFound.
func (r *RollRepository) Get(ctx context.Context, id string) (RollRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT formula, successes, push_count, snapshot, created_at, updated_at
		 FROM rolls WHERE id = $1`,
		id,
	)
	rec, err := scanRoll(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RollRecord{}, ErrRollNotFound
		}
		return RollRecord{}, fmt.Errorf("querying roll %s: %w", id, err)
	}
	return rec, nil
}

// ListRecent returns up to limit rolls of variant, newest first. An empty
// variant lists every variant.
//
// Precondition: limit > 0.
func (r *RollRepository) ListRecent(ctx context.Context, variant string, limit int) ([]RollRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT formula, successes, push_count, snapshot, created_at, updated_at
		 FROM rolls
		 WHERE $1 = '' OR variant = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		variant, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rolls: %w", err)
	}
	defer rows.Close()

	out := []RollRecord{}
	for rows.Next() {
		rec, err := scanRoll(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning roll: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing rolls: %w", err)
	}
	return out, nil
}

func scanRoll(row pgx.Row) (RollRecord, error) {
	var rec RollRecord
	var data []byte
	if err := row.Scan(&rec.Formula, &rec.Successes, &rec.PushCount, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return RollRecord{}, err
	}
	if err := json.Unmarshal(data, &rec.Snapshot); err != nil {
		return RollRecord{}, fmt.Errorf("decoding roll snapshot: %w", err)
	}
	return rec, nil
}
