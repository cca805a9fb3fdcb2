package weekly

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a database-backed repository for weekly plans and drafts.
// All engine writes go through it; adapters never touch these tables.
type Store struct {
	db *sql.DB
	q  querier
}

// NewStore creates a new Store.
func NewStore(d *sql.DB) *Store {
	return &Store{db: d, q: d}
}

// withTx runs fn against a transaction-scoped copy of the store.
func (s *Store) withTx(ctx context.Context, fn func(*Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPlan retrieves the plan for a week key, or nil if none exists.
func (s *Store) GetPlan(ctx context.Context, weekStart string) (*Plan, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, week_start, days, created_at, updated_at
		 FROM weekly_plans WHERE week_start = ?`, weekStart)

	var p Plan
	var daysJSON string
	if err := row.Scan(&p.ID, &p.WeekStart, &daysJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weekly plan: %w", err)
	}

	if err := json.Unmarshal([]byte(daysJSON), &p.Days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan days: %w", err)
	}
	return &p, nil
}

// UpsertPlan writes the plan for a week key, overwriting any existing row.
func (s *Store) UpsertPlan(ctx context.Context, weekStart string, days Days) error {
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("failed to marshal plan days: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO weekly_plans (week_start, days, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (week_start)
		 DO UPDATE SET days = excluded.days, updated_at = excluded.updated_at`,
		weekStart, string(daysJSON), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly plan: %w", err)
	}
	return nil
}

// GetDraft retrieves the open draft for a week key, or nil if none exists.
func (s *Store) GetDraft(ctx context.Context, weekStart string) (*Draft, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, week_start, base_plan_id, proposed_days, requested_swaps, avoid_ids, revision, created_at
		 FROM weekly_plan_drafts WHERE week_start = ?`, weekStart)

	var d Draft
	var proposedJSON, swapsJSON, avoidJSON string
	err := row.Scan(&d.ID, &d.WeekStart, &d.BasePlanID, &proposedJSON, &swapsJSON, &avoidJSON, &d.Revision, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weekly plan draft: %w", err)
	}

	if err := json.Unmarshal([]byte(proposedJSON), &d.ProposedDays); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposed days: %w", err)
	}
	if err := json.Unmarshal([]byte(swapsJSON), &d.RequestedSwaps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal requested swaps: %w", err)
	}
	if err := json.Unmarshal([]byte(avoidJSON), &d.AvoidIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal avoid ids: %w", err)
	}
	return &d, nil
}

// CreateDraft inserts a new draft row. The unique index on week_start keeps
// a single draft per week; conflict=true signals that another caller won
// the race and the draft should be re-read.
func (s *Store) CreateDraft(ctx context.Context, d *Draft) (conflict bool, err error) {
	proposedJSON, err := json.Marshal(d.ProposedDays)
	if err != nil {
		return false, fmt.Errorf("failed to marshal proposed days: %w", err)
	}
	swapsJSON, err := json.Marshal(emptyIfNilInts(d.RequestedSwaps))
	if err != nil {
		return false, fmt.Errorf("failed to marshal requested swaps: %w", err)
	}
	avoidJSON, err := json.Marshal(emptyIfNilStrings(d.AvoidIDs))
	if err != nil {
		return false, fmt.Errorf("failed to marshal avoid ids: %w", err)
	}

	_, err = s.q.ExecContext(ctx,
		`INSERT INTO weekly_plan_drafts
		   (week_start, base_plan_id, proposed_days, requested_swaps, avoid_ids, revision, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)`,
		d.WeekStart, d.BasePlanID, string(proposedJSON), string(swapsJSON), string(avoidJSON), time.Now().UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return true, nil
		}
		return false, fmt.Errorf("failed to create draft: %w", err)
	}
	return false, nil
}

// UpdateDraft persists a reroll result. The update is compare-and-swap on
// the revision the caller read; false means the draft moved underneath us.
func (s *Store) UpdateDraft(ctx context.Context, d *Draft) (updated bool, err error) {
	proposedJSON, err := json.Marshal(d.ProposedDays)
	if err != nil {
		return false, fmt.Errorf("failed to marshal proposed days: %w", err)
	}
	swapsJSON, err := json.Marshal(emptyIfNilInts(d.RequestedSwaps))
	if err != nil {
		return false, fmt.Errorf("failed to marshal requested swaps: %w", err)
	}
	avoidJSON, err := json.Marshal(emptyIfNilStrings(d.AvoidIDs))
	if err != nil {
		return false, fmt.Errorf("failed to marshal avoid ids: %w", err)
	}

	res, err := s.q.ExecContext(ctx,
		`UPDATE weekly_plan_drafts
		 SET proposed_days = ?, requested_swaps = ?, avoid_ids = ?, revision = revision + 1
		 WHERE week_start = ? AND revision = ?`,
		string(proposedJSON), string(swapsJSON), string(avoidJSON), d.WeekStart, d.Revision)
	if err != nil {
		return false, fmt.Errorf("failed to update draft: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// DeleteDraft removes the draft for a week key, reporting whether one existed.
func (s *Store) DeleteDraft(ctx context.Context, weekStart string) (deleted bool, err error) {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM weekly_plan_drafts WHERE week_start = ?`, weekStart)
	if err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func emptyIfNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func emptyIfNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
